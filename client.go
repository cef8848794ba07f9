// Package gallery is a client for the tweet gallery backend: paged feed reads,
// the participants counter and moderator-only delete/ban calls.
package gallery

import (
	"errors"
	"fmt"
	"io"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/ratelimit"
)

// Doer performs one HTTP exchange. *stealth.BrowserClient satisfies it.
type Doer interface {
	DoWithHeaderOrder(method, url string, headers map[string]string, body io.Reader, order []string) ([]byte, map[string]string, int, error)
}

// Client talks to the gallery backend.
type Client struct {
	client    Doer
	limiter   *ratelimit.Limiter
	userAgent string
	cfg       ClientConfig
}

// NewClient creates a fully-wired gallery client.
func NewClient(cfg ClientConfig) (*Client, error) {
	cfg.defaults()
	if cfg.APIURL == "" {
		return nil, errors.New("gallery: API URL is required")
	}

	profile := stealth.BuiltinProfiles[0]
	c := &Client{
		client:    cfg.Transport,
		userAgent: profile.UserAgent,
		cfg:       cfg,
	}

	if !cfg.DisableRateLimit {
		c.limiter = ratelimit.NewLimiter(cfg.RateLimit)
	}

	if c.client == nil {
		opts := []stealth.ClientOption{
			stealth.WithProfile(profile.TLSProfile),
			stealth.WithHeaderOrder(apiHeaderOrder),
		}
		if cfg.Proxy != "" {
			opts = append(opts, stealth.WithProxy(cfg.Proxy))
		}
		bc, err := stealth.NewClient(opts...)
		if err != nil {
			return nil, fmt.Errorf("stealth client: %w", err)
		}
		c.client = bc
	}

	return c, nil
}

// Paging returns the configured feed page sizes.
func (c *Client) Paging() Constants {
	return c.cfg.Paging
}

// Moderator returns the configured moderator, or nil.
func (c *Client) Moderator() *Moderator {
	return c.cfg.Moderator
}

// allowRequest checks the per-endpoint throttle.
func (c *Client) allowRequest(endpoint string) bool {
	if c.limiter == nil {
		return true
	}
	return c.limiter.Allow(endpoint)
}

// markRateLimited blocks endpoint until the given time.
func (c *Client) markRateLimited(endpoint string, until time.Time) {
	if c.limiter == nil {
		return
	}
	c.limiter.MarkRateLimited(endpoint, until)
}

// availableAt returns when endpoint may be called again; zero when it is free.
func (c *Client) availableAt(endpoint string) time.Time {
	if c.limiter == nil {
		return time.Time{}
	}
	return c.limiter.AvailableAt(endpoint)
}

// recordAPICall calls the metrics hook if configured.
func (c *Client) recordAPICall(endpoint string, success, rateLimited bool) {
	if c.cfg.MetricsHook != nil {
		c.cfg.MetricsHook(endpoint, success, rateLimited)
	}
}
