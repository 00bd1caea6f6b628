package category

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/storefront-backend/internal/auth"
	"github.com/wichananm65/storefront-backend/internal/auth/authtest"
)

func makeApp(repo Repository) *fiber.App {
	app := authtest.NewApp()
	NewHandler(NewService(repo)).RegisterRoutes(app.Group("/api/v1"), authtest.Guards())
	return app
}

func send(t *testing.T, app *fiber.App, method, path, role, body string) (int, string) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set(authtest.HeaderUserID, "1")
		req.Header.Set(authtest.HeaderRole, role)
	}
	res, err := app.Test(req)
	require.NoError(t, err)
	b, _ := io.ReadAll(res.Body)
	return res.StatusCode, string(b)
}

func TestCategoryPublicRoutes(t *testing.T) {
	repo := NewInMemoryRepository([]Category{
		{ID: 1, Name: "Toys", Slug: "toys"},
		{ID: 2, Name: "Food", Slug: "food"},
	})
	app := makeApp(repo)

	status, body := send(t, app, "GET", "/api/v1/categories", "", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Less(t, strings.Index(body, "Food"), strings.Index(body, "Toys"), "ordered by name")

	status, body = send(t, app, "GET", "/api/v1/categories/toys", "", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, `"categoryId":1`)

	status, _ = send(t, app, "GET", "/api/v1/categories/nope", "", "")
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestCategoryAdminRoutes(t *testing.T) {
	repo := NewInMemoryRepository(nil)
	app := makeApp(repo)

	status, _ := send(t, app, "POST", "/api/v1/admin/categories", "", `{"name":"Cat Food"}`)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	status, _ = send(t, app, "POST", "/api/v1/admin/categories", auth.RoleCustomer, `{"name":"Cat Food"}`)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, body := send(t, app, "POST", "/api/v1/admin/categories", auth.RoleAdmin, `{"name":"Cat Food & Treats"}`)
	require.Equal(t, fiber.StatusCreated, status, body)
	assert.Contains(t, body, `"slug":"cat-food-and-treats"`)

	status, _ = send(t, app, "POST", "/api/v1/admin/categories", auth.RoleAdmin, `{"name":"Cat food and treats"}`)
	assert.Equal(t, fiber.StatusConflict, status)

	status, _ = send(t, app, "POST", "/api/v1/admin/categories", auth.RoleAdmin, `{"name":"  "}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = send(t, app, "PATCH", "/api/v1/admin/categories/1", auth.RoleAdmin, `{"name":"Cat Treats"}`)
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, `"slug":"cat-food-and-treats"`, "slug kept when not sent")

	repo.MarkInUse(1)
	status, _ = send(t, app, "DELETE", "/api/v1/admin/categories/1", auth.RoleAdmin, "")
	assert.Equal(t, fiber.StatusConflict, status)

	status, _ = send(t, app, "DELETE", "/api/v1/admin/categories/99", auth.RoleAdmin, "")
	assert.Equal(t, fiber.StatusNotFound, status)
}
