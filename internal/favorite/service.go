package favorite

import (
	"context"

	"github.com/wichananm65/storefront-backend/internal/product"
)

type Catalog interface {
	Lookup(ctx context.Context, ids []uint) (map[uint]product.View, error)
}

type Service struct {
	repo    Repository
	catalog Catalog
}

func NewService(repo Repository, catalog Catalog) *Service {
	return &Service{repo: repo, catalog: catalog}
}

func (s *Service) List(ctx context.Context, userID uint) ([]Item, error) {
	favs, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(favs))
	for _, f := range favs {
		ids = append(ids, f.ProductID)
	}
	products, err := s.catalog.Lookup(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]Item, 0, len(favs))
	for _, f := range favs {
		if p, ok := products[f.ProductID]; ok {
			out = append(out, Item{ProductID: f.ProductID, AddedAt: f.CreatedAt, Product: p})
		}
	}
	return out, nil
}

func (s *Service) Add(ctx context.Context, userID, productID uint) error {
	found, err := s.catalog.Lookup(ctx, []uint{productID})
	if err != nil {
		return err
	}
	if _, ok := found[productID]; !ok {
		return product.ErrNotFound
	}
	return s.repo.Add(ctx, userID, productID)
}

func (s *Service) Remove(ctx context.Context, userID, productID uint) error {
	return s.repo.Remove(ctx, userID, productID)
}

func (s *Service) IsFavorite(ctx context.Context, userID, productID uint) (bool, error) {
	return s.repo.Exists(ctx, userID, productID)
}
