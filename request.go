package gallery

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// request describes a single backend call.
type request struct {
	endpoint string
	method   string
	url      string
	payload  []byte
	token    string
	ok       []int // success statuses; any 2xx when empty
	retry    bool  // repeat on transport errors, 429 and 5xx
}

// do executes r with bounded retry and per-endpoint throttling. It returns the
// response body and status of the successful attempt.
//
// After a 429 or a local throttle the next attempt waits until the endpoint
// is available again. If that is further away than MaxRateLimitWait the call
// gives up instead of sleeping.
func (c *Client) do(ctx context.Context, r request) ([]byte, int, error) {
	if Endpoints[r.endpoint].Auth && r.token == "" {
		return nil, 0, fmt.Errorf("%s: %w", r.endpoint, ErrNoSession)
	}

	attempts := 1
	if r.retry {
		attempts = c.cfg.MaxRetries
	}

	var (
		lastErr  error
		resumeAt time.Time
		tried    int
	)
	for attempt := range attempts {
		if attempt > 0 {
			delay := c.cfg.Backoff.Duration(attempt)
			if wait := time.Until(resumeAt); wait > delay {
				delay = wait
			}
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, 0, ctx.Err()
			}
		}
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		tried++

		if !c.allowRequest(r.endpoint) {
			c.recordAPICall(r.endpoint, false, true)
			resumeAt = c.availableAt(r.endpoint)
			lastErr = fmt.Errorf("%s throttled until %s", r.endpoint, resumeAt.Format(time.TimeOnly))
			if c.tooLongToWait(resumeAt) {
				break
			}
			continue
		}

		var body io.Reader
		if r.payload != nil {
			body = bytes.NewReader(r.payload)
		}
		respBody, respHdrs, status, err := c.client.DoWithHeaderOrder(r.method, r.url, apiHeaders(r.token, c.userAgent), body, apiHeaderOrder)
		if err != nil {
			c.recordAPICall(r.endpoint, false, false)
			slog.Warn("request failed", slog.String("endpoint", r.endpoint), slog.Int("attempt", attempt+1), slog.Any("error", err))
			lastErr = err
			continue
		}

		class := classifyStatus(status, r.ok...)
		switch class {
		case errNone:
			c.recordAPICall(r.endpoint, true, false)
			return respBody, status, nil
		case errRateLimited:
			c.recordAPICall(r.endpoint, false, true)
			resumeAt = parseRetryAfter(respHdrs["retry-after"])
			c.markRateLimited(r.endpoint, resumeAt)
		default:
			c.recordAPICall(r.endpoint, false, false)
		}

		apiErr := &APIError{Endpoint: r.endpoint, Status: status, Body: truncateBytes(respBody, 200)}
		if !class.retryable() {
			return nil, status, apiErr
		}
		lastErr = apiErr
		if attempt+1 < attempts && class == errRateLimited && c.tooLongToWait(resumeAt) {
			slog.Warn("rate limited past max wait", slog.String("endpoint", r.endpoint), slog.Time("until", resumeAt))
			return nil, status, apiErr
		}
		slog.Warn("non-success status", slog.String("endpoint", r.endpoint), slog.Int("status", status), slog.Int("attempt", attempt+1))
	}

	if tried <= 1 {
		return nil, 0, lastErr
	}
	return nil, 0, fmt.Errorf("%s failed after %d attempts: %w", r.endpoint, tried, lastErr)
}

// tooLongToWait reports whether resuming at t exceeds MaxRateLimitWait.
func (c *Client) tooLongToWait(t time.Time) bool {
	return time.Until(t) > c.cfg.MaxRateLimitWait
}

func truncateBytes(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
