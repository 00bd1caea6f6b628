package favorite

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
	r.Get("/favorites", g.Auth, h.list)
	r.Get("/favorites/:productId", g.Auth, h.check)
	r.Post("/favorites/:productId", g.Auth, h.add)
	r.Delete("/favorites/:productId", g.Auth, h.remove)
}

func ids(c *fiber.Ctx) (userID, productID uint, err error) {
	if userID, err = auth.UserIDFromCtx(c); err != nil {
		return 0, 0, err
	}
	if productID, err = httpx.ParamID(c, "productId"); err != nil {
		return 0, 0, err
	}
	return userID, productID, nil
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

func (h *Handler) check(c *fiber.Ctx) error {
	userID, productID, err := ids(c)
	if err != nil {
		return httpx.Fail(c, err)
	}
	ok, err := h.service.IsFavorite(c.UserContext(), userID, productID)
	if err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.OK(c, fiber.Map{"favorite": ok})
}

func (h *Handler) add(c *fiber.Ctx) error {
	userID, productID, err := ids(c)
	if err != nil {
		return httpx.Fail(c, err)
	}
	if err := h.service.Add(c.UserContext(), userID, productID); err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.OK(c, fiber.Map{"favorite": true})
}

func (h *Handler) remove(c *fiber.Ctx) error {
	userID, productID, err := ids(c)
	if err != nil {
		return httpx.Fail(c, err)
	}
	if err := h.service.Remove(c.UserContext(), userID, productID); err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.OK(c, fiber.Map{"favorite": false})
}
