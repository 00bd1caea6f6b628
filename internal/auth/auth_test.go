package auth

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func makeApp() *fiber.App {
	app := fiber.New()
	app.Get("/me", RequireAuth(testSecret), func(c *fiber.Ctx) error {
		id, err := UserIDFromCtx(c)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"id": id, "email": EmailFromCtx(c), "admin": IsAdmin(c)})
	})
	app.Get("/admin", RequireAuth(testSecret), RequireAdmin(), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/maybe", OptionalAuth(testSecret), func(c *fiber.Ctx) error {
		if _, err := UserIDFromCtx(c); err != nil {
			return c.SendString("guest")
		}
		return c.SendString("user")
	})
	return app
}

func bearer(t *testing.T, id uint, role string) string {
	t.Helper()
	tok, err := NewIssuer(testSecret, time.Hour).Issue(id, "A@Example.com", role)
	require.NoError(t, err)
	return "Bearer " + tok
}

func TestRequireAuth(t *testing.T) {
	app := makeApp()

	res, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	res, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)

	req = httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", bearer(t, 7, RoleCustomer))
	res, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
}

func TestRequireAdmin(t *testing.T) {
	app := makeApp()

	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", bearer(t, 7, RoleCustomer))
	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, res.StatusCode)

	req = httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", bearer(t, 1, RoleAdmin))
	res, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
}

func TestOptionalAuth(t *testing.T) {
	app := makeApp()

	res, err := app.Test(httptest.NewRequest("GET", "/maybe", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)

	body, _ := io.ReadAll(res.Body)
	assert.Equal(t, "guest", string(body))

	req := httptest.NewRequest("GET", "/maybe", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	res, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
	body, _ = io.ReadAll(res.Body)
	assert.Equal(t, "guest", string(body))

	expired, err := NewIssuer(testSecret, -time.Hour).Issue(7, "a@example.com", RoleCustomer)
	require.NoError(t, err)
	req = httptest.NewRequest("GET", "/maybe", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	res, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
	body, _ = io.ReadAll(res.Body)
	assert.Equal(t, "guest", string(body))

	req = httptest.NewRequest("GET", "/maybe", nil)
	req.Header.Set("Authorization", bearer(t, 7, RoleCustomer))
	res, err = app.Test(req)
	require.NoError(t, err)
	body, _ = io.ReadAll(res.Body)
	assert.Equal(t, "user", string(body))
}

func TestIsAdminEmail(t *testing.T) {
	admins := []string{" boss@shop.test ", "ops@shop.test"}
	assert.True(t, IsAdminEmail("Boss@Shop.test", admins))
	assert.False(t, IsAdminEmail("someone@shop.test", admins))
}
