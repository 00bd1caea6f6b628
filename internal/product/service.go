package product

import (
	"context"
	"errors"
	"strings"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"github.com/wichananm65/storefront-backend/internal/category"
	"github.com/wichananm65/storefront-backend/internal/httpx"
	"github.com/wichananm65/storefront-backend/internal/sale"
)

var (
	ErrNameRequired    = httpx.BadRequest("name is required")
	ErrInvalidPrice    = httpx.BadRequest("price must be greater than 0")
	ErrInvalidStock    = httpx.BadRequest("stock cannot be negative")
	ErrUnknownCategory = httpx.BadRequest("unknown category")
	ErrInvalidSort     = httpx.BadRequest("invalid sort")
)

// Pricer yields the discounts that apply right now.
type Pricer interface {
	Discounts(ctx context.Context) sale.Discounts
}

// CategoryLookup resolves category ids on writes.
type CategoryLookup interface {
	GetByID(ctx context.Context, id uint) (category.Category, error)
}

type Service struct {
	repo       Repository
	categories CategoryLookup
	pricer     Pricer
}

func NewService(repo Repository, categories CategoryLookup, pricer Pricer) *Service {
	return &Service{repo: repo, categories: categories, pricer: pricer}
}

// ImageInput is one image in display order.
type ImageInput struct {
	URL string
	Alt string
}

// Input holds product writes. Nil fields are left unchanged on update;
// Create requires Name and Price.
type Input struct {
	Name        *string
	Slug        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int
	CategoryID  *uint
	Featured    *bool
	Images      *[]ImageInput
}

func (s *Service) List(ctx context.Context, f Filter) (httpx.Page[View], error) {
	switch f.Sort {
	case "":
		f.Sort = SortNewest
	case SortNewest, SortPriceAsc, SortPriceDesc, SortName:
	default:
		return httpx.Page[View]{}, ErrInvalidSort
	}
	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		return httpx.Page[View]{}, err
	}
	return httpx.Page[View]{
		Items: s.Decorate(ctx, items),
		Total: total,
		Page:  f.Page,
		Limit: f.Limit,
	}, nil
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (View, error) {
	p, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return View{}, err
	}
	return s.Decorate(ctx, []Product{p})[0], nil
}

func (s *Service) GetByID(ctx context.Context, id uint) (View, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return View{}, err
	}
	return s.Decorate(ctx, []Product{p})[0], nil
}

// Lookup returns priced views for the ids that exist.
func (s *Service) Lookup(ctx context.Context, ids []uint) (map[uint]View, error) {
	found, err := s.repo.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[uint]View, len(found))
	if len(found) == 0 {
		return out, nil
	}
	discounts := s.discounts(ctx)
	for id, p := range found {
		out[id] = price(p, discounts)
	}
	return out, nil
}

// Decorate attaches sale pricing to products.
func (s *Service) Decorate(ctx context.Context, ps []Product) []View {
	out := make([]View, 0, len(ps))
	if len(ps) == 0 {
		return out
	}
	discounts := s.discounts(ctx)
	for _, p := range ps {
		out = append(out, price(p, discounts))
	}
	return out
}

func (s *Service) discounts(ctx context.Context) sale.Discounts {
	if s.pricer == nil {
		return nil
	}
	return s.pricer.Discounts(ctx)
}

func price(p Product, d sale.Discounts) View {
	v := View{Product: p}
	if p.Images == nil {
		v.Images = []Image{}
	}
	if salePrice, pct, ok := d.Apply(p.CategoryID, p.Price); ok {
		v.SalePrice = &salePrice
		v.DiscountPercent = &pct
	}
	return v
}

func (s *Service) Create(ctx context.Context, in Input) (View, error) {
	if in.Name == nil || in.Price == nil {
		return View{}, httpx.BadRequest("name and price are required")
	}
	p := Product{}
	if err := s.apply(ctx, &p, in); err != nil {
		return View{}, err
	}
	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return View{}, err
	}
	return s.Decorate(ctx, []Product{created})[0], nil
}

func (s *Service) Update(ctx context.Context, id uint, in Input) (View, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return View{}, err
	}
	if err := s.apply(ctx, &p, in); err != nil {
		return View{}, err
	}
	updated, err := s.repo.Update(ctx, p, in.Images != nil)
	if err != nil {
		return View{}, err
	}
	return s.Decorate(ctx, []Product{updated})[0], nil
}

func (s *Service) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) apply(ctx context.Context, p *Product, in Input) error {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return ErrNameRequired
		}
		p.Name = name
	}
	switch {
	case in.Slug != nil && *in.Slug != "":
		p.Slug = slug.Make(*in.Slug)
	case p.Slug == "":
		p.Slug = slug.Make(p.Name)
	}
	if p.Slug == "" {
		return httpx.BadRequest("invalid slug")
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		if !in.Price.IsPositive() {
			return ErrInvalidPrice
		}
		p.Price = in.Price.Round(2)
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			return ErrInvalidStock
		}
		p.Stock = *in.Stock
	}
	if in.CategoryID != nil {
		if *in.CategoryID == 0 {
			p.CategoryID, p.Category = nil, nil
		} else {
			c, err := s.categories.GetByID(ctx, *in.CategoryID)
			if err != nil {
				if errors.Is(err, category.ErrNotFound) {
					return ErrUnknownCategory
				}
				return err
			}
			id := c.ID
			p.CategoryID, p.Category = &id, &c
		}
	}
	if in.Featured != nil {
		p.Featured = *in.Featured
	}
	if in.Images != nil {
		p.Images = make([]Image, 0, len(*in.Images))
		for i, img := range *in.Images {
			if strings.TrimSpace(img.URL) == "" {
				return httpx.BadRequest("image url is required")
			}
			p.Images = append(p.Images, Image{URL: img.URL, Alt: img.Alt, Position: i})
		}
	}
	return nil
}
