// Package session keeps server-side login sessions referenced by an opaque
// cookie.
package session

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"
)

const userIDKey = "user_id"

// Config configures the session cookie and its backing storage.
type Config struct {
	CookieName string
	Expiration time.Duration
	Secure     bool
	// Storage defaults to Fiber's in-memory storage when nil.
	Storage fiber.Storage
}

// Manager binds authenticated user ids to sessions.
type Manager struct {
	store *session.Store
}

// New constructs a Manager.
func New(cfg Config) *Manager {
	return &Manager{
		store: session.New(session.Config{
			Expiration:     cfg.Expiration,
			Storage:        cfg.Storage,
			KeyLookup:      "cookie:" + cfg.CookieName,
			CookieHTTPOnly: true,
			CookieSecure:   cfg.Secure,
			CookieSameSite: fiber.CookieSameSiteLaxMode,
			CookiePath:     "/",
			KeyGenerator:   uuid.NewString,
		}),
	}
}

// Login starts a new session for userID, discarding any id the client
// presented, and returns the new session id.
func (m *Manager) Login(c *fiber.Ctx, userID uuid.UUID) (string, error) {
	sess, err := m.store.Get(c)
	if err != nil {
		return "", fmt.Errorf("load session: %w", err)
	}
	if err := sess.Regenerate(); err != nil {
		return "", fmt.Errorf("regenerate session: %w", err)
	}
	sess.Set(userIDKey, userID.String())
	id := sess.ID()
	if err := sess.Save(); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	return id, nil
}

// Active reports whether the session with id still exists.
func (m *Manager) Active(id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	raw, err := m.store.Storage.Get(id)
	if err != nil {
		return false, fmt.Errorf("load session: %w", err)
	}
	return raw != nil, nil
}

// Revoke deletes the session with id, wherever it was presented from.
func (m *Manager) Revoke(id string) error {
	if id == "" {
		return nil
	}
	if err := m.store.Storage.Delete(id); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// UserID returns the user bound to the request's session, if any.
func (m *Manager) UserID(c *fiber.Ctx) (uuid.UUID, bool, error) {
	sess, err := m.store.Get(c)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("load session: %w", err)
	}
	if sess.Fresh() {
		return uuid.Nil, false, nil
	}

	raw, ok := sess.Get(userIDKey).(string)
	if !ok {
		return uuid.Nil, false, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false, nil
	}
	return id, true, nil
}

// Logout destroys the request's session and expires its cookie.
func (m *Manager) Logout(c *fiber.Ctx) error {
	sess, err := m.store.Get(c)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if err := sess.Destroy(); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}
