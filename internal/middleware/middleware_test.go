package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/unilift/backend/internal/apperr"
	"github.com/unilift/backend/internal/models"
)

func newApp() *fiber.App {
	return fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if appErr, ok := apperr.As(err); ok {
				return c.Status(apperr.Status(appErr.Kind)).SendString(appErr.Message)
			}
			return fiber.DefaultErrorHandler(c, err)
		},
	})
}

func get(t *testing.T, app *fiber.App, path string, headers ...string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestRateLimiter(t *testing.T) {
	app := newApp()
	app.Get("/otp", RateLimiter(2, time.Minute, nil), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	assert.Equal(t, http.StatusOK, get(t, app, "/otp").StatusCode)
	assert.Equal(t, http.StatusOK, get(t, app, "/otp").StatusCode)

	limited := get(t, app, "/otp")
	assert.Equal(t, http.StatusTooManyRequests, limited.StatusCode)
	assert.NotEmpty(t, limited.Header.Get(fiber.HeaderRetryAfter))
}

func TestRequireAdmin(t *testing.T) {
	app := newApp()
	withUser := func(user *models.User) fiber.Handler {
		return func(c *fiber.Ctx) error {
			if user != nil {
				c.Locals(userContextKey, user)
			}
			return c.Next()
		}
	}
	ok := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) }

	app.Get("/anon", withUser(nil), RequireAdmin(), ok)
	app.Get("/rider", withUser(&models.User{Role: models.RoleRider}), RequireAdmin(), ok)
	app.Get("/admin", withUser(&models.User{IsAdmin: true}), RequireAdmin(), ok)

	assert.Equal(t, http.StatusUnauthorized, get(t, app, "/anon").StatusCode)
	assert.Equal(t, http.StatusForbidden, get(t, app, "/rider").StatusCode)
	assert.Equal(t, http.StatusNoContent, get(t, app, "/admin").StatusCode)
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	app := newApp()
	app.Use(RequestLogger(zap.New(core)))
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/denied", func(c *fiber.Ctx) error { return apperr.ErrAccessDenied })

	resp := get(t, app, "/ok", requestIDHeader, "req-1")
	assert.Equal(t, "req-1", resp.Header.Get(requestIDHeader))

	resp = get(t, app, "/denied")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(requestIDHeader))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "req-1", entries[0].ContextMap()["request_id"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.EqualValues(t, http.StatusForbidden, entries[1].ContextMap()["status"])
}
