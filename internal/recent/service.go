package recent

import (
	"context"
	"time"

	"github.com/wichananm65/storefront-backend/internal/product"
)

type Catalog interface {
	Lookup(ctx context.Context, ids []uint) (map[uint]product.View, error)
}

type Service struct {
	repo    Repository
	catalog Catalog
	now     func() time.Time
}

func NewService(repo Repository, catalog Catalog) *Service {
	return &Service{repo: repo, catalog: catalog, now: time.Now}
}

func (s *Service) Record(ctx context.Context, userID, productID uint) error {
	found, err := s.catalog.Lookup(ctx, []uint{productID})
	if err != nil {
		return err
	}
	if _, ok := found[productID]; !ok {
		return product.ErrNotFound
	}
	return s.repo.Record(ctx, userID, productID, s.now().UTC(), Keep)
}

func (s *Service) List(ctx context.Context, userID uint) ([]Item, error) {
	views, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(views))
	for _, v := range views {
		ids = append(ids, v.ProductID)
	}
	products, err := s.catalog.Lookup(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]Item, 0, len(views))
	for _, v := range views {
		if p, ok := products[v.ProductID]; ok {
			out = append(out, Item{ProductID: v.ProductID, ViewedAt: v.ViewedAt, Product: p})
		}
	}
	return out, nil
}

func (s *Service) Clear(ctx context.Context, userID uint) error {
	return s.repo.Clear(ctx, userID)
}
