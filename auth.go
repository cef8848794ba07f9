package gallery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pquerna/otp/totp"
)

// sessionDir returns the directory for persisting moderator sessions.
func sessionDir(override string) string {
	if override != "" {
		return override
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".go-gallery", "sessions")
}

// sessionPath returns the file path for a given username's session.
func sessionPath(dir, username string) string {
	return filepath.Join(dir, username+".json")
}

// savedSession holds a serialized moderator token.
type savedSession struct {
	Token   string    `json:"token"`
	SavedAt time.Time `json:"saved_at"`
}

// saveSession persists a token to disk.
func saveSession(dir, username, token string) error {
	d := sessionDir(dir)
	if err := os.MkdirAll(d, 0700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	s := savedSession{Token: token, SavedAt: time.Now()}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	path := sessionPath(d, username)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write session %s: %w", path, err)
	}
	slog.Debug("session saved", slog.String("user", username))
	return nil
}

// loadSession loads a persisted token, returning "" when missing or older than ttl.
func loadSession(dir, username string, ttl time.Duration) (string, error) {
	data, err := os.ReadFile(sessionPath(sessionDir(dir), username))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	var s savedSession
	if err := json.Unmarshal(data, &s); err != nil {
		return "", err
	}
	if time.Since(s.SavedAt) > ttl {
		slog.Debug("session expired", slog.String("user", username))
		return "", nil
	}
	return s.Token, nil
}

// Login authenticates the configured moderator, reusing a saved session when
// one is still within SessionTTL.
func (c *Client) Login(ctx context.Context) error {
	m := c.cfg.Moderator
	if m == nil {
		return ErrNoModerator
	}

	token, err := loadSession(c.cfg.SessionDir, m.Username, c.cfg.SessionTTL)
	if err != nil {
		slog.Warn("error loading session", slog.String("user", m.Username), slog.Any("error", err))
	}
	if token != "" {
		m.SetToken(token)
		slog.Debug("loaded session from disk", slog.String("user", m.Username))
		return nil
	}

	return c.login(ctx, m)
}

// login posts the moderator credentials and stores the returned token.
func (c *Client) login(ctx context.Context, m *Moderator) error {
	if m.Password == "" {
		return fmt.Errorf("no session and no password for moderator %s", m.Username)
	}
	slog.Info("logging in", slog.String("user", m.Username))

	payload := map[string]string{
		"username": m.Username,
		"password": m.Password,
	}
	if m.TOTPSecret != "" {
		code, err := totp.GenerateCode(m.TOTPSecret, time.Now())
		if err != nil {
			return fmt.Errorf("TOTP code generation failed for %s: %w", m.Username, err)
		}
		payload["otp"] = code
	}
	body, _ := json.Marshal(payload)

	ep, url, err := c.endpointURL("Login")
	if err != nil {
		return err
	}
	resp, _, err := c.do(ctx, request{
		endpoint: "Login",
		method:   ep.Method,
		url:      url,
		payload:  body,
		ok:       []int{200, 201},
	})
	if err != nil {
		return fmt.Errorf("login %s: %w", m.Username, err)
	}

	token, err := parseLoginResponse(resp)
	if err != nil {
		return fmt.Errorf("login %s: %w", m.Username, err)
	}
	m.SetToken(token)
	if err := saveSession(c.cfg.SessionDir, m.Username, token); err != nil {
		slog.Warn("session save failed", slog.String("user", m.Username), slog.Any("error", err))
	}
	slog.Info("login successful", slog.String("user", m.Username))
	return nil
}

// relogin drops the saved session and performs a fresh login.
func (c *Client) relogin(ctx context.Context, m *Moderator) error {
	m.SetToken("")
	_ = os.Remove(sessionPath(sessionDir(c.cfg.SessionDir), m.Username))
	if err := c.login(ctx, m); err != nil {
		return fmt.Errorf("relogin %s: %w", m.Username, err)
	}
	return nil
}

// Logout clears the moderator token and its saved session.
func (c *Client) Logout() error {
	m := c.cfg.Moderator
	if m == nil {
		return ErrNoModerator
	}
	m.SetToken("")
	err := os.Remove(sessionPath(sessionDir(c.cfg.SessionDir), m.Username))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// moderatorToken returns a usable token, logging in first if needed.
func (c *Client) moderatorToken(ctx context.Context) (*Moderator, string, error) {
	m := c.cfg.Moderator
	if m == nil {
		return nil, "", ErrNoModerator
	}
	if tok := m.Token(); tok != "" {
		return m, tok, nil
	}
	if err := c.Login(ctx); err != nil {
		return nil, "", err
	}
	return m, m.Token(), nil
}
