package recommended

import (
	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/storefront-backend/internal/httpx"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterRoutes(r fiber.Router, _ httpx.Guards) {
	r.Get("/products/:slug/recommended", h.getRecommended)
}

func (h *Handler) getRecommended(c *fiber.Ctx) error {
	items, err := h.service.ForProduct(c.UserContext(), c.Params("slug"), c.QueryInt("limit", defaultLimit))
	if err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.OK(c, items)
}
