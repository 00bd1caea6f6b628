package order

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/storefront-backend/internal/auth"
	"github.com/wichananm65/storefront-backend/internal/auth/authtest"
	"github.com/wichananm65/storefront-backend/internal/payment"
)

type envelope struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func makeAppWithOrderHandler(h harness) *fiber.App {
	app := authtest.NewApp()
	NewHandler(h.svc).RegisterRoutes(app.Group("/api/v1"), authtest.Guards())
	return app
}

type caller struct {
	userID string
	role   string
	email  string
	header map[string]string
}

func send(t *testing.T, app *fiber.App, method, path, body string, who caller) (int, envelope) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if who.userID != "" {
		req.Header.Set(authtest.HeaderUserID, who.userID)
		req.Header.Set(authtest.HeaderRole, who.role)
		req.Header.Set(authtest.HeaderEmail, who.email)
	}
	for k, v := range who.header {
		req.Header.Set(k, v)
	}
	res, err := app.Test(req, -1)
	require.NoError(t, err)
	var env envelope
	b, _ := io.ReadAll(res.Body)
	_ = json.Unmarshal(b, &env)
	return res.StatusCode, env
}

var (
	anonymous = caller{}
	customer  = caller{userID: "42", role: auth.RoleCustomer, email: "guest@example.com"}
	admin     = caller{userID: "1", role: auth.RoleAdmin, email: "admin@example.com"}
)

const guestCheckout = `{
	"email": "guest@example.com",
	"items": [{"productId": 1, "quantity": 1}],
	"shippingAddress": {"name": "Ann", "line1": "1 Main St", "city": "Springfield", "postalCode": "12345", "country": "US"}
}`

func TestCheckoutRoute_Guest(t *testing.T) {
	h := newHarness(t)
	app := makeAppWithOrderHandler(h)

	status, env := send(t, app, "POST", "/api/v1/checkout", guestCheckout, anonymous)
	require.Equal(t, fiber.StatusCreated, status, env.Error)

	var res CheckoutResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.NotZero(t, res.OrderID)
	assert.NotEmpty(t, res.GuestToken)
	assert.NotEmpty(t, res.CheckoutURL)

	status, env = send(t, app, "GET", "/api/v1/orders/guest/"+res.GuestToken, "", anonymous)
	assert.Equal(t, fiber.StatusOK, status)
	var o Order
	require.NoError(t, json.Unmarshal(env.Data, &o))
	assert.Equal(t, res.OrderID, o.ID)
}

func TestCheckoutRoute_MissingAddress(t *testing.T) {
	app := makeAppWithOrderHandler(newHarness(t))
	status, env := send(t, app, "POST", "/api/v1/checkout",
		`{"email":"a@b.co","items":[{"productId":1,"quantity":1}]}`, anonymous)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.False(t, env.Success)
	assert.Equal(t, ErrAddressRequired.Message, env.Error)
}

func TestGuestLookupRoute(t *testing.T) {
	h := newHarness(t)
	app := makeAppWithOrderHandler(h)
	o := h.guestOrder(t, 1)
	id := strconv.FormatUint(uint64(o.ID), 10)

	status, _ := send(t, app, "POST", "/api/v1/orders/guest/lookup",
		`{"email":"guest@example.com","orderId":`+id+`}`, anonymous)
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = send(t, app, "POST", "/api/v1/orders/guest/lookup",
		`{"email":"someone@example.com","orderId":`+id+`}`, anonymous)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = send(t, app, "POST", "/api/v1/orders/guest/lookup", `{"orderId":`+id+`}`, anonymous)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestCustomerOrderRoutes(t *testing.T) {
	h := newHarness(t)
	app := makeAppWithOrderHandler(h)
	o := h.guestOrder(t, 1)
	path := "/api/v1/orders/" + strconv.FormatUint(uint64(o.ID), 10)

	status, _ := send(t, app, "GET", "/api/v1/orders", "", anonymous)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = send(t, app, "GET", path, "", customer)
	assert.Equal(t, fiber.StatusNotFound, status, "guest order is not visible before linking")

	status, env := send(t, app, "POST", "/api/v1/orders/link", "", customer)
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"linked":1}`, string(env.Data))

	status, env = send(t, app, "GET", "/api/v1/orders", "", customer)
	require.Equal(t, fiber.StatusOK, status)
	var mine []Order
	require.NoError(t, json.Unmarshal(env.Data, &mine))
	require.Len(t, mine, 1)

	status, _ = send(t, app, "GET", path, "", customer)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestWebhookRoute(t *testing.T) {
	h := newHarness(t)
	app := makeAppWithOrderHandler(h)
	o := h.guestOrder(t, 1)
	b, _ := json.Marshal(payment.Event{ID: "evt_1", Type: payment.EventCheckoutCompleted, OrderID: o.ID})

	status, _ := send(t, app, "POST", "/api/v1/webhooks/stripe", string(b), anonymous)
	assert.Equal(t, fiber.StatusBadRequest, status, "signature header is required")

	signed := caller{header: map[string]string{signatureHeader: "valid"}}
	status, _ = send(t, app, "POST", "/api/v1/webhooks/stripe", string(b), signed)
	assert.Equal(t, fiber.StatusOK, status)
	status, _ = send(t, app, "POST", "/api/v1/webhooks/stripe", string(b), signed)
	assert.Equal(t, fiber.StatusOK, status, "replayed events are acknowledged")

	got, _ := h.orders.Get(t.Context(), o.ID)
	assert.Equal(t, StatusProcessing, got.Status)
}

func TestAdminOrderRoutes(t *testing.T) {
	h := newHarness(t)
	app := makeAppWithOrderHandler(h)
	o := paidOrder(t, h)
	base := "/api/v1/admin/orders/" + strconv.FormatUint(uint64(o.ID), 10)

	status, _ := send(t, app, "POST", base+"/ship", "", customer)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = send(t, app, "POST", base+"/deliver", "", admin)
	assert.Equal(t, fiber.StatusBadRequest, status, "delivering requires SHIPPED")

	status, env := send(t, app, "POST", base+"/ship", "", admin)
	require.Equal(t, fiber.StatusOK, status, env.Error)

	status, _ = send(t, app, "POST", base+"/deliver", "", admin)
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = send(t, app, "POST", base+"/cancel", "", admin)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, env = send(t, app, "GET", "/api/v1/admin/orders?status=delivered", "", admin)
	require.Equal(t, fiber.StatusOK, status)
	var page struct {
		Items []Order `json:"items"`
		Total int64   `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.EqualValues(t, 1, page.Total)
	assert.Equal(t, StatusDelivered, page.Items[0].Status)

	status, _ = send(t, app, "GET", "/api/v1/admin/orders?status=lost", "", admin)
	assert.Equal(t, fiber.StatusBadRequest, status)
}
