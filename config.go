package gallery

import (
	"os"
	"strconv"
	"strings"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/ratelimit"
)

// Constants are the paging sizes used by the feed.
type Constants struct {
	// InitialAmount is the page size of the first fetch.
	InitialAmount int

	// PerPage is the page size of every fetch after the first.
	PerPage int
}

// DefaultConstants matches the sizes the gallery ships with.
var DefaultConstants = Constants{InitialAmount: 120, PerPage: 60}

// ClientConfig holds all configuration for the gallery API client.
type ClientConfig struct {
	// APIURL is the backend base URL, e.g. https://api.example.org/api.
	APIURL string

	// Proxy is an optional proxy URL for all requests.
	Proxy string

	// Moderator holds credentials for delete/ban calls. Optional.
	Moderator *Moderator

	// Paging configures the feed page sizes.
	Paging Constants

	// MaxRetries bounds attempts for idempotent GET requests.
	MaxRetries int

	// Backoff spaces retried attempts. Default: stealth.DefaultBackoff.
	Backoff stealth.BackoffConfig

	// SessionTTL controls how long saved moderator sessions are considered valid.
	SessionTTL time.Duration

	// SessionDir overrides the default session persistence directory.
	// Default: ~/.go-gallery/sessions
	SessionDir string

	// RateLimit configures per-endpoint client-side throttling.
	RateLimit ratelimit.Config

	// MaxRateLimitWait bounds how long a retried GET sleeps for a rate-limited
	// endpoint to reopen. Longer waits fail the call. Default: 30s.
	MaxRateLimitWait time.Duration

	// DisableRateLimit turns client-side throttling off.
	DisableRateLimit bool

	// MetricsHook is called on each API request for external metrics collection.
	MetricsHook func(endpoint string, success, rateLimited bool)

	// Transport replaces the default go-stealth client. Used by tests.
	Transport Doer
}

// defaults fills in zero-value config fields with sensible defaults.
func (cfg *ClientConfig) defaults() {
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	if cfg.Paging.InitialAmount <= 0 {
		cfg.Paging.InitialAmount = DefaultConstants.InitialAmount
	}
	if cfg.Paging.PerPage <= 0 {
		cfg.Paging.PerPage = DefaultConstants.PerPage
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Backoff.InitialWait == 0 {
		cfg.Backoff = stealth.DefaultBackoff
	}
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = 12 * time.Hour
	}
	if cfg.MaxRateLimitWait == 0 {
		cfg.MaxRateLimitWait = 30 * time.Second
	}
	if cfg.RateLimit.RequestsPerWindow == 0 {
		cfg.RateLimit = ratelimit.DefaultConfig
	}
}

// ConfigFromEnv builds a ClientConfig from environment variables:
// API_URL, GALLERY_PROXY, GALLERY_INITIAL_AMOUNT, GALLERY_PER_PAGE,
// GALLERY_MOD_USER, GALLERY_MOD_PASS and GALLERY_MOD_TOTP.
func ConfigFromEnv() ClientConfig {
	cfg := ClientConfig{
		APIURL: os.Getenv("API_URL"),
		Proxy:  os.Getenv("GALLERY_PROXY"),
		Paging: Constants{
			InitialAmount: envInt("GALLERY_INITIAL_AMOUNT"),
			PerPage:       envInt("GALLERY_PER_PAGE"),
		},
	}
	if user := os.Getenv("GALLERY_MOD_USER"); user != "" {
		cfg.Moderator = &Moderator{
			Username:   user,
			Password:   os.Getenv("GALLERY_MOD_PASS"),
			TOTPSecret: os.Getenv("GALLERY_MOD_TOTP"),
		}
	}
	return cfg
}

func envInt(key string) int {
	n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return 0
	}
	return n
}
