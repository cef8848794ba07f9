package gallery

import (
	"strings"
	"sync"
)

// Moderator holds the credentials used for delete and ban calls.
type Moderator struct {
	Username   string
	Password   string
	TOTPSecret string

	mu    sync.Mutex
	token string
}

// Token returns the current session token under lock.
func (m *Moderator) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// SetToken replaces the session token.
func (m *Moderator) SetToken(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
}

// IsAuthenticated reports whether a session token is held.
func (m *Moderator) IsAuthenticated() bool {
	return m != nil && m.Token() != ""
}

// ParseModerator parses "user:pass" or "user:pass:totp_secret".
// It returns nil for an empty or malformed entry.
func ParseModerator(raw string) *Moderator {
	raw = strings.TrimSpace(raw)
	parts := strings.SplitN(raw, ":", 3)
	if len(parts) < 2 || parts[0] == "" {
		return nil
	}
	m := &Moderator{Username: parts[0], Password: parts[1]}
	if len(parts) == 3 {
		m.TOTPSecret = parts[2]
	}
	return m
}
