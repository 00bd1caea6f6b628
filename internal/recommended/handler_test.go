package recommended

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/storefront-backend/internal/auth/authtest"
	"github.com/wichananm65/storefront-backend/internal/product"
)

func makeAppWithRecommendedHandler() *fiber.App {
	toys, food := uint(1), uint(2)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	seed := []product.Product{
		{ID: 1, Name: "Ball", Slug: "ball", Price: decimal.NewFromInt(10), Stock: 3, CategoryID: &toys, CreatedAt: base},
		{ID: 2, Name: "Rope", Slug: "rope", Price: decimal.NewFromInt(5), Stock: 3, CategoryID: &toys, CreatedAt: base.Add(time.Hour)},
		{ID: 3, Name: "Squeaker", Slug: "squeaker", Price: decimal.NewFromInt(4), Stock: 2, CategoryID: &toys, CreatedAt: base, Featured: true},
		{ID: 4, Name: "Frisbee", Slug: "frisbee", Price: decimal.NewFromInt(7), Stock: 0, CategoryID: &toys, CreatedAt: base},
		{ID: 5, Name: "Kibble", Slug: "kibble", Price: decimal.NewFromInt(30), Stock: 9, CategoryID: &food, CreatedAt: base},
	}
	catalog := product.NewService(product.NewInMemoryRepository(seed), nil, nil)

	app := authtest.NewApp()
	NewHandler(NewService(NewInMemoryRepository(seed), catalog)).
		RegisterRoutes(app.Group("/api/v1"), authtest.Guards())
	return app
}

func TestRecommended_SameCategoryInStock(t *testing.T) {
	app := makeAppWithRecommendedHandler()

	res, err := app.Test(httptest.NewRequest("GET", "/api/v1/products/ball/recommended", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, res.StatusCode)

	var env struct {
		Data []product.View `json:"data"`
	}
	b, _ := io.ReadAll(res.Body)
	require.NoError(t, json.Unmarshal(b, &env))

	slugs := make([]string, 0, len(env.Data))
	for _, v := range env.Data {
		slugs = append(slugs, v.Slug)
	}
	assert.Equal(t, []string{"squeaker", "rope"}, slugs, "featured first, then newest; sold out and other categories excluded")
}

func TestRecommended_Limit(t *testing.T) {
	app := makeAppWithRecommendedHandler()

	res, err := app.Test(httptest.NewRequest("GET", "/api/v1/products/ball/recommended?limit=1", nil))
	require.NoError(t, err)
	var env struct {
		Data []product.View `json:"data"`
	}
	b, _ := io.ReadAll(res.Body)
	require.NoError(t, json.Unmarshal(b, &env))
	assert.Len(t, env.Data, 1)
}

func TestRecommended_UnknownProduct(t *testing.T) {
	app := makeAppWithRecommendedHandler()

	res, err := app.Test(httptest.NewRequest("GET", "/api/v1/products/nope/recommended", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, res.StatusCode)
}
