package gallery

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

var (
	// ErrUnauthorized is returned when the backend rejects the moderator session.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNoSession is returned when a moderator-only endpoint is called without a token.
	ErrNoSession = errors.New("moderator session required")

	// ErrNoModerator is returned by moderation calls when no credentials are configured.
	ErrNoModerator = errors.New("no moderator credentials configured")
)

// APIError is a non-success HTTP response from the backend.
type APIError struct {
	Endpoint string
	Status   int
	Body     string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s HTTP %d", e.Endpoint, e.Status)
	}
	return fmt.Sprintf("%s HTTP %d: %s", e.Endpoint, e.Status, e.Body)
}

// Unwrap lets errors.Is(err, ErrUnauthorized) match 401/403 responses.
func (e *APIError) Unwrap() error {
	if e.Status == 401 || e.Status == 403 {
		return ErrUnauthorized
	}
	return nil
}

// errorClass categorizes backend responses for targeted handling.
type errorClass int

const (
	errNone         errorClass = iota
	errUnauthorized            // 401
	errForbidden               // 403
	errNotFound                // 404
	errRateLimited             // 429
	errServer                  // 5xx, retryable
	errClient                  // other 4xx
)

// classifyStatus maps an HTTP status to an errorClass. ok lists the statuses
// the endpoint treats as success.
func classifyStatus(status int, ok ...int) errorClass {
	for _, s := range ok {
		if status == s {
			return errNone
		}
	}
	switch {
	case status == 401:
		return errUnauthorized
	case status == 403:
		return errForbidden
	case status == 404:
		return errNotFound
	case status == 429:
		return errRateLimited
	case status >= 500:
		return errServer
	case len(ok) == 0 && status >= 200 && status < 300:
		return errNone
	default:
		return errClient
	}
}

// retryable reports whether a GET may be repeated after this class.
func (ec errorClass) retryable() bool {
	return ec == errRateLimited || ec == errServer
}

// parseRetryAfter parses a Retry-After header given in seconds.
// Falls back to one minute from now if missing or invalid.
func parseRetryAfter(v string) time.Time {
	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return time.Now().Add(time.Duration(secs) * time.Second)
	}
	return time.Now().Add(time.Minute)
}
