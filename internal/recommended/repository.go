package recommended

import (
	"context"
	"sort"
	"sync"

	"github.com/wichananm65/storefront-backend/internal/product"
)

// Repository finds products to show next to a given product.
type Repository interface {
	// Related returns in-stock products sharing p's category, or featured
	// products when p has none. p itself is never included.
	Related(ctx context.Context, p product.Product, limit int) ([]product.Product, error)
}

// InMemoryRepository is a simple in-memory implementation useful for tests.
type InMemoryRepository struct {
	mu       sync.RWMutex
	products []product.Product
}

func NewInMemoryRepository(seed []product.Product) *InMemoryRepository {
	return &InMemoryRepository{products: append([]product.Product(nil), seed...)}
}

func sameCategory(a, b *uint) bool {
	return a != nil && b != nil && *a == *b
}

func (r *InMemoryRepository) Related(_ context.Context, p product.Product, limit int) ([]product.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]product.Product, 0)
	for _, c := range r.products {
		if c.ID == p.ID || c.Stock < 1 {
			continue
		}
		if p.CategoryID != nil && !sameCategory(c.CategoryID, p.CategoryID) {
			continue
		}
		if p.CategoryID == nil && !c.Featured {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Featured != out[j].Featured {
			return out[i].Featured
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
