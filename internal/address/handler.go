package address

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

type addressRequest struct {
	Label      string `json:"label"`
	Recipient  string `json:"recipient"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

func (p addressRequest) toAddress() Address {
	return Address{
		Label:      p.Label,
		Recipient:  p.Recipient,
		Line1:      p.Line1,
		Line2:      p.Line2,
		City:       p.City,
		State:      p.State,
		PostalCode: p.PostalCode,
		Country:    p.Country,
		Phone:      p.Phone,
	}
}

func (h *Handler) RegisterRoutes(r fiber.Router, g httpx.Guards) {
	g = g.Normalize()
	r.Get("/addresses", g.Auth, h.list)
	r.Post("/addresses", g.Auth, h.create)
	r.Patch("/addresses/:id", g.Auth, h.update)
	r.Delete("/addresses/:id", g.Auth, h.delete)
}

func (h *Handler) list(c *fiber.Ctx) error {
	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return httpx.Fail(c, err)
	}
	addrs, err := h.service.List(c.UserContext(), userID)
	if err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.OK(c, addrs)
}

func (h *Handler) create(c *fiber.Ctx) error {
	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return httpx.Fail(c, err)
	}
	payload := new(addressRequest)
	if err := c.BodyParser(payload); err != nil {
		return httpx.Fail(c, httpx.ErrInvalidBody)
	}
	addr, err := h.service.Add(c.UserContext(), userID, payload.toAddress())
	if err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.Created(c, addr)
}

func (h *Handler) update(c *fiber.Ctx) error {
	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return httpx.Fail(c, err)
	}
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return httpx.Fail(c, err)
	}
	payload := new(addressRequest)
	if err := c.BodyParser(payload); err != nil {
		return httpx.Fail(c, httpx.ErrInvalidBody)
	}
	addr, err := h.service.Update(c.UserContext(), userID, id, payload.toAddress())
	if err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.OK(c, addr)
}

func (h *Handler) delete(c *fiber.Ctx) error {
	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return httpx.Fail(c, err)
	}
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return httpx.Fail(c, err)
	}
	if err := h.service.Delete(c.UserContext(), userID, id); err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.OK(c, fiber.Map{"deleted": id})
}
