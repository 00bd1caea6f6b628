package recent

import (
	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/storefront-backend/internal/auth"
	"github.com/wichananm65/storefront-backend/internal/httpx"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterRoutes(r fiber.Router, g httpx.Guards) {
	g = g.Normalize()
	r.Get("/recently-viewed", g.Auth, h.list)
	r.Post("/recently-viewed/:productId", g.Auth, h.record)
	r.Delete("/recently-viewed", g.Auth, h.clear)
}

func (h *Handler) list(c *fiber.Ctx) error {
	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return httpx.Fail(c, err)
	}
	items, err := h.service.List(c.UserContext(), userID)
	if err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.OK(c, items)
}

func (h *Handler) record(c *fiber.Ctx) error {
	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return httpx.Fail(c, err)
	}
	productID, err := httpx.ParamID(c, "productId")
	if err != nil {
		return httpx.Fail(c, err)
	}
	if err := h.service.Record(c.UserContext(), userID, productID); err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.OK(c, fiber.Map{"recorded": productID})
}

func (h *Handler) clear(c *fiber.Ctx) error {
	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return httpx.Fail(c, err)
	}
	if err := h.service.Clear(c.UserContext(), userID); err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.OK(c, fiber.Map{"cleared": true})
}
