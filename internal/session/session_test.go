package session

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestApp wires the manager into a minimal app exercising every session
// transition.
func newTestApp(m *Manager) *fiber.App {
	app := fiber.New()

	app.Post("/login/:id", func(c *fiber.Ctx) error {
		id, _ := c.ParamsInt("id")
		if err := m.Login(c, uint(id)); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusOK)
	})
	app.Post("/logout", func(c *fiber.Ctx) error {
		if err := m.Logout(c); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/whoami", func(c *fiber.Ctx) error {
		id, ok := m.UserID(c)
		if !ok {
			return c.SendString("anonymous")
		}
		return c.SendString(strconv.FormatUint(uint64(id), 10))
	})
	app.Post("/flash", func(c *fiber.Ctx) error {
		if err := m.Flash(c, c.FormValue("msg")); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/flashes", func(c *fiber.Ctx) error {
		return c.SendString(strings.Join(m.PopFlashes(c), "|"))
	})

	return app
}

// do sends a request reusing the session cookie collected from earlier
// responses, the way a browser would.
func do(t *testing.T, app *fiber.App, cookie *string, method, target, body string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if *cookie != "" {
		req.Header.Set("Cookie", *cookie)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	if sc := resp.Header.Get("Set-Cookie"); sc != "" {
		*cookie = strings.SplitN(sc, ";", 2)[0]
	}
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestAnonymousByDefault(t *testing.T) {
	app := newTestApp(NewManager(time.Hour, nil))
	cookie := ""

	resp := do(t, app, &cookie, "GET", "/whoami", "")
	assert.Equal(t, "anonymous", readBody(t, resp))
}

func TestLoginLogoutTransitions(t *testing.T) {
	app := newTestApp(NewManager(time.Hour, nil))
	cookie := ""

	resp := do(t, app, &cookie, "POST", "/login/7", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()
	require.NotEmpty(t, cookie)

	resp = do(t, app, &cookie, "GET", "/whoami", "")
	assert.Equal(t, "7", readBody(t, resp))

	resp = do(t, app, &cookie, "POST", "/logout", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp = do(t, app, &cookie, "GET", "/whoami", "")
	assert.Equal(t, "anonymous", readBody(t, resp))
}

func TestLoginRegeneratesSessionID(t *testing.T) {
	app := newTestApp(NewManager(time.Hour, nil))
	cookie := ""

	resp := do(t, app, &cookie, "GET", "/whoami", "")
	_ = resp.Body.Close()
	anonCookie := cookie

	resp = do(t, app, &cookie, "POST", "/login/3", "")
	_ = resp.Body.Close()

	assert.NotEqual(t, anonCookie, cookie)
}

func TestFlashesAreOneShot(t *testing.T) {
	app := newTestApp(NewManager(time.Hour, nil))
	cookie := ""

	resp := do(t, app, &cookie, "POST", "/flash", "msg=first")
	_ = resp.Body.Close()
	resp = do(t, app, &cookie, "POST", "/flash", "msg=second")
	_ = resp.Body.Close()

	resp = do(t, app, &cookie, "GET", "/flashes", "")
	assert.Equal(t, "first|second", readBody(t, resp))

	// Drained after one read.
	resp = do(t, app, &cookie, "GET", "/flashes", "")
	assert.Equal(t, "", readBody(t, resp))
}

func TestRedisBackedSessions(t *testing.T) {
	mr := miniredis.RunT(t)

	storage := RedisStorage(mr.Addr())
	defer func() { _ = storage.Close() }()

	app := newTestApp(NewManager(time.Hour, storage))
	cookie := ""

	resp := do(t, app, &cookie, "POST", "/login/9", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp = do(t, app, &cookie, "GET", "/whoami", "")
	assert.Equal(t, "9", readBody(t, resp))

	resp = do(t, app, &cookie, "POST", "/flash", "msg=hello")
	_ = resp.Body.Close()
	resp = do(t, app, &cookie, "GET", "/flashes", "")
	assert.Equal(t, "hello", readBody(t, resp))
}
