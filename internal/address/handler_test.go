package address

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/storefront-backend/internal/auth/authtest"
)

func makeAppWithAddressHandler(a *Handler) *fiber.App {
	app := authtest.NewApp()
	a.RegisterRoutes(app.Group("/api/v1"), authtest.Guards())
	return app
}

func do(app *fiber.App, method, path, userID, body string) (*httptestResult, error) {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(authtest.HeaderUserID, userID)
	}
	res, err := app.Test(req)
	if err != nil {
		return nil, err
	}
	b, _ := io.ReadAll(res.Body)
	return &httptestResult{status: res.StatusCode, body: string(b)}, nil
}

type httptestResult struct {
	status int
	body   string
}

const homeJSON = `{"label":"Home","recipient":"Jane Doe","line1":"123 Main","city":"Springfield","postalCode":"12345","country":"US"}`

func TestAddressRoutes(t *testing.T) {
	seed := []Address{
		{ID: 1, UserID: 42, Recipient: "Jane", Line1: "1 Elm", City: "X", PostalCode: "1", Country: "US"},
		{ID: 2, UserID: 99, Recipient: "Other", Line1: "9 Oak", City: "Y", PostalCode: "2", Country: "US"},
	}
	app := makeAppWithAddressHandler(NewHandler(NewService(NewInMemoryRepository(seed))))

	res, err := do(app, "GET", "/api/v1/addresses", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if res.status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.status)
	}

	res, _ = do(app, "GET", "/api/v1/addresses", "42", "")
	if res.status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.status)
	}
	if !strings.Contains(res.body, "1 Elm") || strings.Contains(res.body, "9 Oak") {
		t.Fatalf("list leaked or missed addresses: %s", res.body)
	}

	res, _ = do(app, "POST", "/api/v1/addresses", "42", homeJSON)
	if res.status != fiber.StatusCreated {
		t.Fatalf("expected 201 for add, got %d: %s", res.status, res.body)
	}
	if !strings.Contains(res.body, `"addressId":3`) {
		t.Fatalf("unexpected add response: %s", res.body)
	}

	res, _ = do(app, "POST", "/api/v1/addresses", "42", `{"recipient":"Jane"}`)
	if res.status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for incomplete address, got %d", res.status)
	}

	res, _ = do(app, "PATCH", "/api/v1/addresses/3", "42", strings.Replace(homeJSON, "123 Main", "456 Side", 1))
	if res.status != fiber.StatusOK || !strings.Contains(res.body, "456 Side") {
		t.Fatalf("patch failed: %d %s", res.status, res.body)
	}

	// another user's address reads as missing
	res, _ = do(app, "PATCH", "/api/v1/addresses/2", "42", homeJSON)
	if res.status != fiber.StatusNotFound {
		t.Fatalf("expected 404 for foreign address, got %d", res.status)
	}
	res, _ = do(app, "DELETE", "/api/v1/addresses/2", "42", "")
	if res.status != fiber.StatusNotFound {
		t.Fatalf("expected 404 deleting foreign address, got %d", res.status)
	}

	res, _ = do(app, "DELETE", "/api/v1/addresses/3", "42", "")
	if res.status != fiber.StatusOK {
		t.Fatalf("expected 200 for delete, got %d", res.status)
	}
	res, _ = do(app, "DELETE", "/api/v1/addresses/abc", "42", "")
	if res.status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", res.status)
	}
}
