package cart

import (
	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/storefront-backend/internal/auth"
	"github.com/wichananm65/storefront-backend/internal/httpx"
)

// Handler delegates cart operations to the cart service.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterRoutes(r fiber.Router, g httpx.Guards) {
	g = g.Normalize()
	r.Get("/cart", g.Auth, h.getCart)
	r.Delete("/cart", g.Auth, h.clearCart)
	r.Post("/cart/items", g.Auth, h.addToCart)
	r.Patch("/cart/items/:productId", g.Auth, h.setQuantity)
	r.Delete("/cart/items/:productId", g.Auth, h.removeItem)
	r.Post("/cart/merge", g.Auth, h.merge)
}

type addRequest struct {
	ProductID uint `json:"productId"`
	Quantity  *int `json:"quantity"`
}

type quantityRequest struct {
	Quantity *int `json:"quantity"`
}

type mergeRequest struct {
	Items []MergeItem `json:"items"`
}

func (h *Handler) getCart(c *fiber.Ctx) error {
	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return httpx.Fail(c, err)
	}
	cart, err := h.service.Get(c.UserContext(), userID)
	if err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.OK(c, cart)
}

func (h *Handler) addToCart(c *fiber.Ctx) error {
	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return httpx.Fail(c, err)
	}
	payload := new(addRequest)
	if err := c.BodyParser(payload); err != nil {
		return httpx.Fail(c, httpx.ErrInvalidBody)
	}
	if payload.ProductID == 0 {
		return httpx.Fail(c, httpx.BadRequest("invalid productId"))
	}
	qty := 1
	if payload.Quantity != nil {
		qty = *payload.Quantity
	}
	cart, err := h.service.Add(c.UserContext(), userID, payload.ProductID, qty)
	if err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.OK(c, cart)
}

func (h *Handler) setQuantity(c *fiber.Ctx) error {
	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return httpx.Fail(c, err)
	}
	productID, err := httpx.ParamID(c, "productId")
	if err != nil {
		return httpx.Fail(c, err)
	}
	payload := new(quantityRequest)
	if err := c.BodyParser(payload); err != nil || payload.Quantity == nil {
		return httpx.Fail(c, httpx.BadRequest("quantity is required"))
	}
	cart, err := h.service.SetQuantity(c.UserContext(), userID, productID, *payload.Quantity)
	if err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.OK(c, cart)
}

func (h *Handler) removeItem(c *fiber.Ctx) error {
	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return httpx.Fail(c, err)
	}
	productID, err := httpx.ParamID(c, "productId")
	if err != nil {
		return httpx.Fail(c, err)
	}
	cart, err := h.service.Remove(c.UserContext(), userID, productID)
	if err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.OK(c, cart)
}

func (h *Handler) clearCart(c *fiber.Ctx) error {
	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return httpx.Fail(c, err)
	}
	if err := h.service.Clear(c.UserContext(), userID); err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.OK(c, fiber.Map{"cleared": true})
}

func (h *Handler) merge(c *fiber.Ctx) error {
	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return httpx.Fail(c, err)
	}
	payload := new(mergeRequest)
	if err := c.BodyParser(payload); err != nil {
		return httpx.Fail(c, httpx.ErrInvalidBody)
	}
	cart, err := h.service.Merge(c.UserContext(), userID, payload.Items)
	if err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.OK(c, cart)
}
