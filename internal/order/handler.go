package order

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/storefront-backend/internal/auth"
	"github.com/wichananm65/storefront-backend/internal/httpx"
)

const signatureHeader = "Stripe-Signature"

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterRoutes(r fiber.Router, g httpx.Guards) {
	g = g.Normalize()
	r.Post("/checkout", g.OptionalAuth, g.RateLimit, h.checkout)
	r.Post("/webhooks/stripe", h.webhook)

	r.Post("/orders/link", g.Auth, h.link)
	r.Post("/orders/guest/lookup", g.RateLimit, h.guestLookup)
	r.Get("/orders/guest/:token", g.RateLimit, h.guestByToken)
	r.Get("/orders", g.Auth, h.listMine)
	r.Get("/orders/:id", g.Auth, h.getMine)

	r.Get("/admin/orders", g.Auth, g.Admin, h.adminList)
	r.Get("/admin/orders/:id", g.Auth, g.Admin, h.adminGet)
	r.Post("/admin/orders/:id/ship", g.Auth, g.Admin, h.ship)
	r.Post("/admin/orders/:id/deliver", g.Auth, g.Admin, h.deliver)
	r.Post("/admin/orders/:id/cancel", g.Auth, g.Admin, h.cancel)
}

type checkoutRequest struct {
	Email           string           `json:"email"`
	Items           []LineInput      `json:"items"`
	AddressID       uint             `json:"addressId"`
	ShippingAddress *ShippingAddress `json:"shippingAddress"`
}

func (h *Handler) checkout(c *fiber.Ctx) error {
	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.Fail(c, httpx.ErrInvalidBody)
	}
	in := CheckoutInput{
		Email:     req.Email,
		Items:     req.Items,
		AddressID: req.AddressID,
		Address:   req.ShippingAddress,
	}
	if userID, err := auth.UserIDFromCtx(c); err == nil {
		in.UserID = userID
		if email := auth.EmailFromCtx(c); email != "" {
			in.Email = email
		}
	}
	res, err := h.service.Checkout(c.UserContext(), in)
	if err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.Created(c, res)
}

func (h *Handler) webhook(c *fiber.Ctx) error {
	sig := c.Get(signatureHeader)
	if sig == "" {
		return httpx.Fail(c, httpx.BadRequest("missing signature"))
	}
	if err := h.service.HandleWebhook(c.UserContext(), c.Body(), sig); err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.OK(c, fiber.Map{"received": true})
}

func (h *Handler) link(c *fiber.Ctx) error {
	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return httpx.Fail(c, err)
	}
	n, err := h.service.Link(c.UserContext(), userID, auth.EmailFromCtx(c))
	if err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.OK(c, fiber.Map{"linked": n})
}

type guestLookupRequest struct {
	Email   string `json:"email"`
	OrderID uint   `json:"orderId"`
}

func (h *Handler) guestLookup(c *fiber.Ctx) error {
	var req guestLookupRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.Fail(c, httpx.ErrInvalidBody)
	}
	o, err := h.service.GuestLookup(c.UserContext(), req.Email, req.OrderID)
	if err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.OK(c, o)
}

func (h *Handler) guestByToken(c *fiber.Ctx) error {
	o, err := h.service.GetByGuestToken(c.UserContext(), c.Params("token"))
	if err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.OK(c, o)
}

func (h *Handler) listMine(c *fiber.Ctx) error {
	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return httpx.Fail(c, err)
	}
	orders, err := h.service.ListForUser(c.UserContext(), userID)
	if err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.OK(c, orders)
}

func (h *Handler) getMine(c *fiber.Ctx) error {
	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return httpx.Fail(c, err)
	}
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return httpx.Fail(c, err)
	}
	o, err := h.service.GetForUser(c.UserContext(), userID, id)
	if err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.OK(c, o)
}

func (h *Handler) adminList(c *fiber.Ctx) error {
	page, limit := httpx.Paging(c)
	res, err := h.service.List(c.UserContext(), Filter{
		Status: strings.TrimSpace(c.Query("status")),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.OK(c, res)
}

func (h *Handler) adminGet(c *fiber.Ctx) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return httpx.Fail(c, err)
	}
	o, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.OK(c, o)
}

func (h *Handler) ship(c *fiber.Ctx) error {
	return h.transition(c, h.service.Ship)
}

func (h *Handler) deliver(c *fiber.Ctx) error {
	return h.transition(c, h.service.Deliver)
}

func (h *Handler) cancel(c *fiber.Ctx) error {
	return h.transition(c, h.service.Cancel)
}

func (h *Handler) transition(c *fiber.Ctx, fn func(ctx context.Context, id uint) (Order, error)) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return httpx.Fail(c, err)
	}
	o, err := fn(c.UserContext(), id)
	if err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.OK(c, o)
}
