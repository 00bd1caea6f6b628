package product

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/wichananm65/storefront-backend/internal/httpx"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type imageRequest struct {
	URL string `json:"url"`
	Alt string `json:"alt"`
}

type productRequest struct {
	Name        *string          `json:"name"`
	Slug        *string          `json:"slug"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	CategoryID  *uint            `json:"categoryId"`
	Featured    *bool            `json:"featured"`
	Images      *[]imageRequest  `json:"images"`
}

func (p productRequest) input() Input {
	in := Input{
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		CategoryID:  p.CategoryID,
		Featured:    p.Featured,
	}
	if p.Images != nil {
		imgs := make([]ImageInput, 0, len(*p.Images))
		for _, img := range *p.Images {
			imgs = append(imgs, ImageInput{URL: img.URL, Alt: img.Alt})
		}
		in.Images = &imgs
	}
	return in
}

func (h *Handler) RegisterRoutes(r fiber.Router, g httpx.Guards) {
	g = g.Normalize()
	r.Get("/products", h.list)
	r.Get("/products/:slug", h.getBySlug)

	r.Get("/admin/products/:id", g.Auth, g.Admin, h.getByID)
	r.Post("/admin/products", g.Auth, g.Admin, h.create)
	r.Patch("/admin/products/:id", g.Auth, g.Admin, h.update)
	r.Delete("/admin/products/:id", g.Auth, g.Admin, h.delete)
}

func parseFilter(c *fiber.Ctx) (Filter, error) {
	page, limit := httpx.Paging(c)
	f := Filter{
		CategorySlug: c.Query("category"),
		Query:        c.Query("q"),
		Sort:         c.Query("sort"),
		Page:         page,
		Limit:        limit,
	}
	for key, dst := range map[string]**decimal.Decimal{"minPrice": &f.MinPrice, "maxPrice": &f.MaxPrice} {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		v, err := decimal.NewFromString(raw)
		if err != nil || v.IsNegative() {
			return Filter{}, httpx.BadRequest("invalid " + key)
		}
		*dst = &v
	}
	if raw := c.Query("featured"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return Filter{}, httpx.BadRequest("invalid featured")
		}
		f.Featured = &v
	}
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return Filter{}, httpx.BadRequest("minPrice cannot exceed maxPrice")
	}
	return f, nil
}

func (h *Handler) list(c *fiber.Ctx) error {
	f, err := parseFilter(c)
	if err != nil {
		return httpx.Fail(c, err)
	}
	page, err := h.service.List(c.UserContext(), f)
	if err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.OK(c, page)
}

func (h *Handler) getBySlug(c *fiber.Ctx) error {
	p, err := h.service.GetBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.OK(c, p)
}

func (h *Handler) getByID(c *fiber.Ctx) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return httpx.Fail(c, err)
	}
	p, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.OK(c, p)
}

func (h *Handler) create(c *fiber.Ctx) error {
	payload := new(productRequest)
	if err := c.BodyParser(payload); err != nil {
		return httpx.Fail(c, httpx.ErrInvalidBody)
	}
	p, err := h.service.Create(c.UserContext(), payload.input())
	if err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.Created(c, p)
}

func (h *Handler) update(c *fiber.Ctx) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return httpx.Fail(c, err)
	}
	payload := new(productRequest)
	if err := c.BodyParser(payload); err != nil {
		return httpx.Fail(c, httpx.ErrInvalidBody)
	}
	p, err := h.service.Update(c.UserContext(), id, payload.input())
	if err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.OK(c, p)
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
