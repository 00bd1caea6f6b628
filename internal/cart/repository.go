package cart

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/wichananm65/storefront-backend/internal/httpx"
)

var ErrItemNotFound = httpx.NotFound("item not in cart")

type Repository interface {
	List(ctx context.Context, userID uint) ([]CartItem, error)
	Get(ctx context.Context, userID, productID uint) (CartItem, error)
	// Increment adds qty to the row, creating it when missing.
	Increment(ctx context.Context, userID, productID uint, qty int) (CartItem, error)
	// SetQuantity upserts the row with exactly qty.
	SetQuantity(ctx context.Context, userID, productID uint, qty int) (CartItem, error)
	Remove(ctx context.Context, userID, productID uint) error
	Clear(ctx context.Context, userID uint) error
}

type key struct{ user, product uint }

// InMemoryRepository for tests
type InMemoryRepository struct {
	mu     sync.Mutex
	rows   map[key]CartItem
	nextID uint
}

func NewInMemoryRepository(seed []CartItem) *InMemoryRepository {
	r := &InMemoryRepository{rows: map[key]CartItem{}, nextID: 1}
	for _, it := range seed {
		if it.ID == 0 {
			it.ID = r.nextID
		}
		r.rows[key{it.UserID, it.ProductID}] = it
		if it.ID >= r.nextID {
			r.nextID = it.ID + 1
		}
	}
	return r
}

func (r *InMemoryRepository) List(_ context.Context, userID uint) ([]CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]CartItem, 0)
	for k, it := range r.rows {
		if k.user == userID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *InMemoryRepository) Get(_ context.Context, userID, productID uint) (CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.rows[key{userID, productID}]
	if !ok {
		return CartItem{}, ErrItemNotFound
	}
	return it, nil
}

func (r *InMemoryRepository) upsert(userID, productID uint, qty func(cur int) int) CartItem {
	k := key{userID, productID}
	now := time.Now().UTC()
	it, ok := r.rows[k]
	if !ok {
		it = CartItem{ID: r.nextID, UserID: userID, ProductID: productID, CreatedAt: now}
		r.nextID++
	}
	it.Quantity = qty(it.Quantity)
	it.UpdatedAt = now
	r.rows[k] = it
	return it
}

func (r *InMemoryRepository) Increment(_ context.Context, userID, productID uint, qty int) (CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.upsert(userID, productID, func(cur int) int { return cur + qty }), nil
}

func (r *InMemoryRepository) SetQuantity(_ context.Context, userID, productID uint, qty int) (CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.upsert(userID, productID, func(int) int { return qty }), nil
}

func (r *InMemoryRepository) Remove(_ context.Context, userID, productID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, key{userID, productID})
	return nil
}

func (r *InMemoryRepository) Clear(_ context.Context, userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k := range r.rows {
		if k.user == userID {
			delete(r.rows, k)
		}
	}
	return nil
}
