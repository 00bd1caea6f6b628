package sale

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/wichananm65/storefront-backend/internal/httpx"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

type saleRequest struct {
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	StartsAt        time.Time       `json:"startsAt"`
	EndsAt          time.Time       `json:"endsAt"`
	Active          *bool           `json:"active"`
	CategoryIDs     []uint          `json:"categoryIds"`
}

func (p saleRequest) input() Input {
	active := true
	if p.Active != nil {
		active = *p.Active
	}
	return Input{
		Name:            p.Name,
		Description:     p.Description,
		DiscountPercent: p.DiscountPercent,
		StartsAt:        p.StartsAt,
		EndsAt:          p.EndsAt,
		Active:          active,
		CategoryIDs:     p.CategoryIDs,
	}
}

func (h *Handler) RegisterRoutes(r fiber.Router, g httpx.Guards) {
	g = g.Normalize()
	r.Get("/sales", h.listActive)

	r.Get("/admin/sales", g.Auth, g.Admin, h.listAll)
	r.Get("/admin/sales/:id", g.Auth, g.Admin, h.get)
	r.Post("/admin/sales", g.Auth, g.Admin, h.create)
	r.Patch("/admin/sales/:id", g.Auth, g.Admin, h.update)
	r.Delete("/admin/sales/:id", g.Auth, g.Admin, h.delete)
}

func (h *Handler) listActive(c *fiber.Ctx) error {
	items, err := h.service.ListActive(c.UserContext())
	if err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.OK(c, items)
}

func (h *Handler) listAll(c *fiber.Ctx) error {
	items, err := h.service.List(c.UserContext())
	if err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.OK(c, items)
}

func (h *Handler) get(c *fiber.Ctx) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return httpx.Fail(c, err)
	}
	item, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.OK(c, item)
}

func (h *Handler) create(c *fiber.Ctx) error {
	payload := new(saleRequest)
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
	payload := new(saleRequest)
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
