package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/storefront-backend/internal/auth/authtest"
)

func newApp(cfg Config) *fiber.App {
	app := authtest.NewApp()
	app.Get("/ping", New(cfg), func(c *fiber.Ctx) error { return c.SendString("pong") })
	return app
}

func TestLimiter_RejectsOverLimit(t *testing.T) {
	app := newApp(Config{Enabled: true, Max: 2, Window: time.Minute})

	for i := 0; i < 2; i++ {
		res, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/ping", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, res.StatusCode)
	}
	res, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/ping", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, res.StatusCode)
}

func TestLimiter_KeysByUser(t *testing.T) {
	app := newApp(Config{Enabled: true, Max: 1, Window: time.Minute})

	send := func(userID string) int {
		req := httptest.NewRequest(fiber.MethodGet, "/ping", nil)
		req.Header.Set(authtest.HeaderUserID, userID)
		res, err := app.Test(req, -1)
		require.NoError(t, err)
		return res.StatusCode
	}
	assert.Equal(t, fiber.StatusOK, send("1"))
	assert.Equal(t, fiber.StatusOK, send("2"))
	assert.Equal(t, fiber.StatusTooManyRequests, send("1"))
}

func TestLimiter_Disabled(t *testing.T) {
	app := newApp(Config{Enabled: false, Max: 1, Window: time.Minute})

	for i := 0; i < 5; i++ {
		res, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/ping", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, res.StatusCode)
	}
}
