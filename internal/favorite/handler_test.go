package favorite

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/wichananm65/storefront-backend/internal/auth/authtest"
	"github.com/wichananm65/storefront-backend/internal/product"
)

func makeAppWithFavoriteHandler(repo Repository) *fiber.App {
	catalog := product.NewService(product.NewInMemoryRepository([]product.Product{
		{ID: 12, Name: "Cat Sweater", Slug: "cat-sweater", Price: decimal.NewFromInt(26), Stock: 3},
		{ID: 13, Name: "Cat Hat", Slug: "cat-hat", Price: decimal.NewFromInt(10), Stock: 3},
	}), nil, nil)
	app := authtest.NewApp()
	NewHandler(NewService(repo, catalog)).RegisterRoutes(app.Group("/api/v1"), authtest.Guards())
	return app
}

func request(t *testing.T, app *fiber.App, method, path string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set(authtest.HeaderUserID, "1")
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	b, _ := io.ReadAll(res.Body)
	return res.StatusCode, string(b)
}

func TestFavoriteRoutes(t *testing.T) {
	repo := NewInMemoryRepository([]Favorite{{UserID: 1, ProductID: 12}})
	app := makeAppWithFavoriteHandler(repo)

	res, _ := app.Test(httptest.NewRequest("GET", "/api/v1/favorites", nil))
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.StatusCode)
	}

	status, body := request(t, app, "GET", "/api/v1/favorites")
	if status != fiber.StatusOK || !strings.Contains(body, "Cat Sweater") {
		t.Fatalf("unexpected list response %d: %s", status, body)
	}

	// adding twice keeps a single row
	for range 2 {
		status, _ = request(t, app, "POST", "/api/v1/favorites/13")
		if status != fiber.StatusOK {
			t.Fatalf("expected 200 for add, got %d", status)
		}
	}
	favs, _ := repo.List(t.Context(), 1)
	if len(favs) != 2 {
		t.Fatalf("expected 2 favorites, got %d", len(favs))
	}
	if favs[0].ProductID != 13 {
		t.Fatalf("expected newest favorite first, got %d", favs[0].ProductID)
	}

	status, _ = request(t, app, "POST", "/api/v1/favorites/99")
	if status != fiber.StatusNotFound {
		t.Fatalf("expected 404 for unknown product, got %d", status)
	}

	status, body = request(t, app, "GET", "/api/v1/favorites/13")
	if status != fiber.StatusOK || !strings.Contains(body, `"favorite":true`) {
		t.Fatalf("unexpected check response %d: %s", status, body)
	}

	status, _ = request(t, app, "DELETE", "/api/v1/favorites/13")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 for remove, got %d", status)
	}
	_, body = request(t, app, "GET", "/api/v1/favorites/13")
	if !strings.Contains(body, `"favorite":false`) {
		t.Fatalf("expected favorite false after remove: %s", body)
	}
}
