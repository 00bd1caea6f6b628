package recommended

import (
	"context"

	"github.com/wichananm65/storefront-backend/internal/product"
)

const (
	defaultLimit = 8
	maxLimit     = 24
)

type Catalog interface {
	GetBySlug(ctx context.Context, slug string) (product.View, error)
	Decorate(ctx context.Context, ps []product.Product) []product.View
}

type Service struct {
	repo    Repository
	catalog Catalog
}

func NewService(repo Repository, catalog Catalog) *Service {
	return &Service{repo: repo, catalog: catalog}
}

// ForProduct returns priced recommendations for the product with slug.
func (s *Service) ForProduct(ctx context.Context, slug string, limit int) ([]product.View, error) {
	if limit < 1 {
		limit = defaultLimit
	}
	limit = min(limit, maxLimit)

	v, err := s.catalog.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	related, err := s.repo.Related(ctx, v.Product, limit)
	if err != nil {
		return nil, err
	}
	return s.catalog.Decorate(ctx, related), nil
}
