package category

import (
	"context"
	"strings"

	"github.com/gosimple/slug"
	"github.com/wichananm65/storefront-backend/internal/httpx"
)

var ErrNameRequired = httpx.BadRequest("name is required")

// Service provides business logic for categories.
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

// Input carries the writable category fields. An empty Slug is derived from Name.
type Input struct {
	Name        string
	Slug        string
	Description string
	ImageURL    string
}

func (s *Service) List(ctx context.Context) ([]Category, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (Category, error) {
	return s.repo.GetBySlug(ctx, slug)
}

func (s *Service) GetByID(ctx context.Context, id uint) (Category, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, in Input) (Category, error) {
	c, err := in.toCategory()
	if err != nil {
		return Category{}, err
	}
	return s.repo.Create(ctx, c)
}

func (s *Service) Update(ctx context.Context, id uint, in Input) (Category, error) {
	cur, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Category{}, err
	}
	if in.Slug == "" {
		in.Slug = cur.Slug
	}
	c, err := in.toCategory()
	if err != nil {
		return Category{}, err
	}
	c.ID = id
	return s.repo.Update(ctx, c)
}

func (s *Service) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

func (in Input) toCategory() (Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Category{}, ErrNameRequired
	}
	s := in.Slug
	if s == "" {
		s = name
	}
	s = slug.Make(s)
	if s == "" {
		return Category{}, httpx.BadRequest("invalid slug")
	}
	return Category{
		Name:        name,
		Slug:        s,
		Description: in.Description,
		ImageURL:    in.ImageURL,
	}, nil
}
