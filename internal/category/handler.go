package category

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

type categoryRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
}

func (p categoryRequest) input() Input {
	return Input{Name: p.Name, Slug: p.Slug, Description: p.Description, ImageURL: p.ImageURL}
}

func (h *Handler) RegisterRoutes(r fiber.Router, g httpx.Guards) {
	g = g.Normalize()
	r.Get("/categories", h.list)
	r.Get("/categories/:slug", h.getBySlug)

	r.Post("/admin/categories", g.Auth, g.Admin, h.create)
	r.Patch("/admin/categories/:id", g.Auth, g.Admin, h.update)
	r.Delete("/admin/categories/:id", g.Auth, g.Admin, h.delete)
}

func (h *Handler) list(c *fiber.Ctx) error {
	items, err := h.service.List(c.UserContext())
	if err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.OK(c, items)
}

func (h *Handler) getBySlug(c *fiber.Ctx) error {
	item, err := h.service.GetBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.OK(c, item)
}

func (h *Handler) create(c *fiber.Ctx) error {
	payload := new(categoryRequest)
	if err := c.BodyParser(payload); err != nil {
		return httpx.Fail(c, httpx.ErrInvalidBody)
	}
	item, err := h.service.Create(c.UserContext(), payload.input())
	if err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.Created(c, item)
}

func (h *Handler) update(c *fiber.Ctx) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return httpx.Fail(c, err)
	}
	payload := new(categoryRequest)
	if err := c.BodyParser(payload); err != nil {
		return httpx.Fail(c, httpx.ErrInvalidBody)
	}
	item, err := h.service.Update(c.UserContext(), id, payload.input())
	if err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.OK(c, item)
}

func (h *Handler) delete(c *fiber.Ctx) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return httpx.Fail(c, err)
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.OK(c, fiber.Map{"deleted": id})
}
