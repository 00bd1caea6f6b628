package cart

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/wichananm65/storefront-backend/internal/auth/authtest"
	"github.com/wichananm65/storefront-backend/internal/product"
)

func makeAppWithCartHandler(repo Repository) *fiber.App {
	catalog := product.NewService(product.NewInMemoryRepository([]product.Product{
		{ID: 1, Name: "Ball", Slug: "ball", Price: decimal.RequireFromString("2.50"), Stock: 5},
		{ID: 2, Name: "Rope", Slug: "rope", Price: decimal.RequireFromString("4.00"), Stock: 2},
		{ID: 3, Name: "Sold out", Slug: "sold-out", Price: decimal.RequireFromString("1.00"), Stock: 0},
	}), nil, nil)
	app := authtest.NewApp()
	NewHandler(NewService(repo, catalog)).RegisterRoutes(app.Group("/api/v1"), authtest.Guards())
	return app
}

func call(t *testing.T, app *fiber.App, method, path, body string) (int, Cart) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(authtest.HeaderUserID, "42")
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	var env struct {
		Data Cart `json:"data"`
	}
	b, _ := io.ReadAll(res.Body)
	_ = json.Unmarshal(b, &env)
	return res.StatusCode, env.Data
}

func quantityOf(c Cart, productID uint) int {
	for _, l := range c.Items {
		if l.ProductID == productID {
			return l.Quantity
		}
	}
	return 0
}

func TestCartRoutes_RequireAuth(t *testing.T) {
	app := makeAppWithCartHandler(NewInMemoryRepository(nil))
	res, _ := app.Test(httptest.NewRequest("GET", "/api/v1/cart", nil))
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for unauthenticated GET, got %d", res.StatusCode)
	}
}

func TestCart_AddTwiceIncrements(t *testing.T) {
	repo := NewInMemoryRepository(nil)
	app := makeAppWithCartHandler(repo)

	status, cart := call(t, app, "POST", "/api/v1/cart/items", `{"productId":1}`)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 for add, got %d", status)
	}
	if quantityOf(cart, 1) != 1 {
		t.Fatalf("expected default quantity 1, got %d", quantityOf(cart, 1))
	}

	status, cart = call(t, app, "POST", "/api/v1/cart/items", `{"productId":1,"quantity":2}`)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 for second add, got %d", status)
	}
	if len(cart.Items) != 1 || quantityOf(cart, 1) != 3 {
		t.Fatalf("expected one row with quantity 3, got %+v", cart.Items)
	}
	if cart.Subtotal.StringFixed(2) != "7.50" {
		t.Fatalf("expected subtotal 7.50, got %s", cart.Subtotal)
	}

	rows, _ := repo.List(t.Context(), 42)
	if len(rows) != 1 {
		t.Fatalf("expected a single stored row, got %d", len(rows))
	}
}

func TestCart_AddValidation(t *testing.T) {
	app := makeAppWithCartHandler(NewInMemoryRepository(nil))

	cases := []struct {
		body   string
		status int
	}{
		{`{"productId":1,"quantity":0}`, fiber.StatusBadRequest},
		{`{"productId":1,"quantity":6}`, fiber.StatusBadRequest},
		{`{"productId":99}`, fiber.StatusNotFound},
		{`{"quantity":1}`, fiber.StatusBadRequest},
	}
	for _, tc := range cases {
		status, _ := call(t, app, "POST", "/api/v1/cart/items", tc.body)
		if status != tc.status {
			t.Errorf("%s: expected %d, got %d", tc.body, tc.status, status)
		}
	}
}

func TestCart_SetQuantity(t *testing.T) {
	repo := NewInMemoryRepository([]CartItem{{UserID: 42, ProductID: 1, Quantity: 2}})
	app := makeAppWithCartHandler(repo)

	status, cart := call(t, app, "PATCH", "/api/v1/cart/items/1", `{"quantity":4}`)
	if status != fiber.StatusOK || quantityOf(cart, 1) != 4 {
		t.Fatalf("expected quantity 4, got %d (status %d)", quantityOf(cart, 1), status)
	}

	status, _ = call(t, app, "PATCH", "/api/v1/cart/items/1", `{"quantity":-1}`)
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for negative quantity, got %d", status)
	}
	status, _ = call(t, app, "PATCH", "/api/v1/cart/items/1", `{"quantity":9}`)
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 above stock, got %d", status)
	}

	status, cart = call(t, app, "PATCH", "/api/v1/cart/items/1", `{"quantity":0}`)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 for quantity 0, got %d", status)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("expected item removed, got %+v", cart.Items)
	}
	if _, err := repo.Get(t.Context(), 42, 1); err != ErrItemNotFound {
		t.Fatalf("expected row deleted, got %v", err)
	}
}

func TestCart_RemoveAndClear(t *testing.T) {
	repo := NewInMemoryRepository([]CartItem{
		{UserID: 42, ProductID: 1, Quantity: 1},
		{UserID: 42, ProductID: 2, Quantity: 1},
		{UserID: 7, ProductID: 1, Quantity: 1},
	})
	app := makeAppWithCartHandler(repo)

	status, cart := call(t, app, "DELETE", "/api/v1/cart/items/1", "")
	if status != fiber.StatusOK || len(cart.Items) != 1 {
		t.Fatalf("expected one item left, got %d items (status %d)", len(cart.Items), status)
	}

	status, _ = call(t, app, "DELETE", "/api/v1/cart", "")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 for clear, got %d", status)
	}
	mine, _ := repo.List(t.Context(), 42)
	other, _ := repo.List(t.Context(), 7)
	if len(mine) != 0 || len(other) != 1 {
		t.Fatalf("clear touched the wrong rows: mine=%d other=%d", len(mine), len(other))
	}
}

func TestCart_MergeCapsAtStock(t *testing.T) {
	repo := NewInMemoryRepository([]CartItem{{UserID: 42, ProductID: 2, Quantity: 1}})
	app := makeAppWithCartHandler(repo)

	status, cart := call(t, app, "POST", "/api/v1/cart/merge",
		`{"items":[{"productId":1,"quantity":3},{"productId":2,"quantity":5},{"productId":3,"quantity":1},{"productId":99,"quantity":1}]}`)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 for merge, got %d", status)
	}
	if quantityOf(cart, 1) != 3 {
		t.Fatalf("expected product 1 quantity 3, got %d", quantityOf(cart, 1))
	}
	if quantityOf(cart, 2) != 2 {
		t.Fatalf("expected product 2 capped at stock 2, got %d", quantityOf(cart, 2))
	}
	if len(cart.Items) != 2 {
		t.Fatalf("expected sold-out and unknown products skipped, got %+v", cart.Items)
	}
}

func TestCart_AddHugeQuantityAfterExistingRow(t *testing.T) {
	repo := NewInMemoryRepository(nil)
	app := makeAppWithCartHandler(repo)

	if status, _ := call(t, app, "POST", "/api/v1/cart/items", `{"productId":1}`); status != fiber.StatusOK {
		t.Fatalf("expected 200 for first add, got %d", status)
	}
	body := fmt.Sprintf(`{"productId":1,"quantity":%d}`, math.MaxInt)
	if status, _ := call(t, app, "POST", "/api/v1/cart/items", body); status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for a quantity past stock, got %d", status)
	}

	rows, _ := repo.List(t.Context(), 42)
	if len(rows) != 1 || rows[0].Quantity != 1 {
		t.Fatalf("expected stored quantity to stay 1, got %+v", rows)
	}
}

func TestCart_MergeHugeQuantityCapsAtStock(t *testing.T) {
	repo := NewInMemoryRepository([]CartItem{{UserID: 42, ProductID: 1, Quantity: 2}})
	app := makeAppWithCartHandler(repo)

	body := fmt.Sprintf(`{"items":[{"productId":1,"quantity":%d}]}`, math.MaxInt)
	status, cart := call(t, app, "POST", "/api/v1/cart/merge", body)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 for merge, got %d", status)
	}
	if quantityOf(cart, 1) != 5 {
		t.Fatalf("expected product 1 capped at stock 5, got %d", quantityOf(cart, 1))
	}
}
