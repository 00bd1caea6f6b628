package category

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/wichananm65/storefront-backend/internal/httpx"
)

var (
	ErrNotFound   = httpx.NotFound("category not found")
	ErrSlugExists = httpx.Conflict("category slug already exists")
	ErrInUse      = httpx.Conflict("category has products")
)

// Repository provides access to category rows.
type Repository interface {
	List(ctx context.Context) ([]Category, error)
	GetByID(ctx context.Context, id uint) (Category, error)
	GetBySlug(ctx context.Context, slug string) (Category, error)
	Create(ctx context.Context, c Category) (Category, error)
	Update(ctx context.Context, c Category) (Category, error)
	// Delete fails with ErrInUse while products reference the category.
	Delete(ctx context.Context, id uint) error
}

type InMemoryRepository struct {
	mu     sync.RWMutex
	rows   map[uint]Category
	inUse  map[uint]bool
	nextID uint
}

func NewInMemoryRepository(seed []Category) *InMemoryRepository {
	r := &InMemoryRepository{rows: map[uint]Category{}, inUse: map[uint]bool{}, nextID: 1}
	for _, c := range seed {
		r.rows[c.ID] = c
		if c.ID >= r.nextID {
			r.nextID = c.ID + 1
		}
	}
	return r
}

// MarkInUse flags a category as referenced by a product.
func (r *InMemoryRepository) MarkInUse(id uint) {
	r.mu.Lock()
	r.inUse[id] = true
	r.mu.Unlock()
}

func (r *InMemoryRepository) List(_ context.Context) ([]Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Category, 0, len(r.rows))
	for _, c := range r.rows {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name) })
	return out, nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id uint) (Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.rows[id]
	if !ok {
		return Category{}, ErrNotFound
	}
	return c, nil
}

func (r *InMemoryRepository) GetBySlug(_ context.Context, slug string) (Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.rows {
		if c.Slug == slug {
			return c, nil
		}
	}
	return Category{}, ErrNotFound
}

func (r *InMemoryRepository) slugTaken(slug string, except uint) bool {
	for _, c := range r.rows {
		if c.Slug == slug && c.ID != except {
			return true
		}
	}
	return false
}

func (r *InMemoryRepository) Create(_ context.Context, c Category) (Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.slugTaken(c.Slug, 0) {
		return Category{}, ErrSlugExists
	}
	c.ID = r.nextID
	r.nextID++
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	r.rows[c.ID] = c
	return c, nil
}

func (r *InMemoryRepository) Update(_ context.Context, c Category) (Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.rows[c.ID]
	if !ok {
		return Category{}, ErrNotFound
	}
	if r.slugTaken(c.Slug, c.ID) {
		return Category{}, ErrSlugExists
	}
	c.CreatedAt = cur.CreatedAt
	c.UpdatedAt = time.Now().UTC()
	r.rows[c.ID] = c
	return c, nil
}

func (r *InMemoryRepository) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return ErrNotFound
	}
	if r.inUse[id] {
		return ErrInUse
	}
	delete(r.rows, id)
	return nil
}
