package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/storefront-backend/internal/httpx"
	"github.com/wichananm65/storefront-backend/internal/product"
)

var (
	ErrInvalidQuantity   = httpx.BadRequest("quantity must be at least 1")
	ErrNegativeQuantity  = httpx.BadRequest("quantity cannot be negative")
	ErrInsufficientStock = httpx.BadRequest("not enough stock")
)

// Catalog prices products for the cart.
type Catalog interface {
	Lookup(ctx context.Context, ids []uint) (map[uint]product.View, error)
}

// Service orchestrates cart operations.
type Service struct {
	repo    Repository
	catalog Catalog
}

func NewService(repo Repository, catalog Catalog) *Service {
	return &Service{repo: repo, catalog: catalog}
}

func (s *Service) Get(ctx context.Context, userID uint) (Cart, error) {
	items, err := s.repo.List(ctx, userID)
	if err != nil {
		return Cart{}, err
	}
	ids := make([]uint, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := s.catalog.Lookup(ctx, ids)
	if err != nil {
		return Cart{}, err
	}

	c := Cart{Items: make([]Line, 0, len(items)), Subtotal: decimal.Zero}
	for _, it := range items {
		p, ok := products[it.ProductID]
		if !ok {
			continue
		}
		unit := p.UnitPrice()
		line := Line{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: unit,
			LineTotal: unit.Mul(decimal.NewFromInt(int64(it.Quantity))),
			Product:   p,
		}
		c.Items = append(c.Items, line)
		c.ItemCount += it.Quantity
		c.Subtotal = c.Subtotal.Add(line.LineTotal)
	}
	return c, nil
}

// Items returns the raw rows, used by checkout.
func (s *Service) Items(ctx context.Context, userID uint) ([]CartItem, error) {
	return s.repo.List(ctx, userID)
}

func (s *Service) product(ctx context.Context, id uint) (product.View, error) {
	found, err := s.catalog.Lookup(ctx, []uint{id})
	if err != nil {
		return product.View{}, err
	}
	p, ok := found[id]
	if !ok {
		return product.View{}, product.ErrNotFound
	}
	return p, nil
}

func (s *Service) current(ctx context.Context, userID, productID uint) (int, error) {
	it, err := s.repo.Get(ctx, userID, productID)
	if errors.Is(err, ErrItemNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return it.Quantity, nil
}

// Add increments the product's quantity, creating the row on first add.
func (s *Service) Add(ctx context.Context, userID, productID uint, qty int) (Cart, error) {
	if qty < 1 {
		return Cart{}, ErrInvalidQuantity
	}
	p, err := s.product(ctx, productID)
	if err != nil {
		return Cart{}, err
	}
	cur, err := s.current(ctx, userID, productID)
	if err != nil {
		return Cart{}, err
	}
	if qty > p.Stock-cur {
		return Cart{}, ErrInsufficientStock
	}
	if _, err := s.repo.Increment(ctx, userID, productID, qty); err != nil {
		return Cart{}, err
	}
	return s.Get(ctx, userID)
}

// SetQuantity sets the exact quantity; 0 removes the row.
func (s *Service) SetQuantity(ctx context.Context, userID, productID uint, qty int) (Cart, error) {
	if qty < 0 {
		return Cart{}, ErrNegativeQuantity
	}
	if qty == 0 {
		return s.Remove(ctx, userID, productID)
	}
	p, err := s.product(ctx, productID)
	if err != nil {
		return Cart{}, err
	}
	if qty > p.Stock {
		return Cart{}, ErrInsufficientStock
	}
	if _, err := s.repo.SetQuantity(ctx, userID, productID, qty); err != nil {
		return Cart{}, err
	}
	return s.Get(ctx, userID)
}

func (s *Service) Remove(ctx context.Context, userID, productID uint) (Cart, error) {
	if err := s.repo.Remove(ctx, userID, productID); err != nil {
		return Cart{}, err
	}
	return s.Get(ctx, userID)
}

func (s *Service) Clear(ctx context.Context, userID uint) error {
	return s.repo.Clear(ctx, userID)
}

// Merge folds guest cart lines into the user's cart. Unknown products are
// skipped and each resulting quantity is capped at stock.
func (s *Service) Merge(ctx context.Context, userID uint, items []MergeItem) (Cart, error) {
	ids := make([]uint, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := s.catalog.Lookup(ctx, ids)
	if err != nil {
		return Cart{}, err
	}
	for _, it := range items {
		p, ok := products[it.ProductID]
		if !ok || it.Quantity < 1 || p.Stock < 1 {
			continue
		}
		cur, err := s.current(ctx, userID, it.ProductID)
		if err != nil {
			return Cart{}, err
		}
		target := p.Stock
		if it.Quantity < p.Stock-cur {
			target = cur + it.Quantity
		}
		if target <= cur {
			continue
		}
		if _, err := s.repo.SetQuantity(ctx, userID, it.ProductID, target); err != nil {
			return Cart{}, fmt.Errorf("cart.Merge: %w", err)
		}
	}
	return s.Get(ctx, userID)
}
