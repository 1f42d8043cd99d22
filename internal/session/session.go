// Package session tracks the current user per browser session and carries
// one-shot flash messages between requests.
package session

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"
	redisstorage "github.com/gofiber/storage/redis/v3"
	"github.com/google/uuid"
)

const (
	cookieName = "quill_session"
	userIDKey  = "user_id"
	flashKey   = "flash"
	// Unit separator; flash messages are plain user-facing text and never
	// contain control characters.
	flashSep = "\x1f"
)

// Manager wraps the Fiber session store with the application's auth and
// flash-message semantics.
type Manager struct {
	store *fibersession.Store
}

// NewManager creates a session manager. A nil storage keeps sessions in
// process memory.
func NewManager(ttl time.Duration, storage fiber.Storage) *Manager {
	return &Manager{
		store: fibersession.New(fibersession.Config{
			Expiration:     ttl,
			Storage:        storage,
			KeyLookup:      "cookie:" + cookieName,
			KeyGenerator:   uuid.NewString,
			CookieHTTPOnly: true,
			CookieSameSite: "Lax",
		}),
	}
}

// RedisStorage opens a Redis-backed session storage. The address may be a
// bare host:port or a full redis:// URL.
func RedisStorage(addr string) *redisstorage.Storage {
	if !strings.Contains(addr, "://") {
		addr = "redis://" + addr
	}
	return redisstorage.New(redisstorage.Config{URL: addr})
}

// Login transitions the session to authenticated(userID). The session id is
// regenerated so a pre-login cookie can never be replayed as a logged-in one.
func (m *Manager) Login(c *fiber.Ctx, userID uint) error {
	sess, err := m.store.Get(c)
	if err != nil {
		return err
	}
	if err := sess.Regenerate(); err != nil {
		return err
	}
	sess.Set(userIDKey, userID)
	return sess.Save()
}

// Logout transitions the session back to anonymous and invalidates the token.
func (m *Manager) Logout(c *fiber.Ctx) error {
	sess, err := m.store.Get(c)
	if err != nil {
		return err
	}
	return sess.Destroy()
}

// UserID returns the authenticated user's id, or false while anonymous.
func (m *Manager) UserID(c *fiber.Ctx) (uint, bool) {
	sess, err := m.store.Get(c)
	if err != nil {
		return 0, false
	}
	if id, ok := sess.Get(userIDKey).(uint); ok {
		return id, true
	}
	return 0, false
}

// Flash appends a one-shot message shown on the next rendered page.
func (m *Manager) Flash(c *fiber.Ctx, message string) error {
	sess, err := m.store.Get(c)
	if err != nil {
		return err
	}
	existing, _ := sess.Get(flashKey).(string)
	if existing != "" {
		existing += flashSep
	}
	sess.Set(flashKey, existing+message)
	return sess.Save()
}

// PopFlashes drains and returns the pending flash messages in order.
func (m *Manager) PopFlashes(c *fiber.Ctx) []string {
	sess, err := m.store.Get(c)
	if err != nil {
		return nil
	}
	joined, _ := sess.Get(flashKey).(string)
	if joined == "" {
		return nil
	}
	sess.Delete(flashKey)
	if err := sess.Save(); err != nil {
		return nil
	}
	return strings.Split(joined, flashSep)
}
