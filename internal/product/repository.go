package product

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/wichananm65/storefront-backend/internal/httpx"
)

var (
	ErrNotFound          = httpx.NotFound("product not found")
	ErrSlugExists        = httpx.Conflict("product slug already exists")
	ErrReferenced        = httpx.Conflict("product is referenced by orders and cannot be deleted")
	ErrInsufficientStock = httpx.BadRequest("insufficient stock")
)

type Repository interface {
	List(ctx context.Context, f Filter) ([]Product, int64, error)
	GetByID(ctx context.Context, id uint) (Product, error)
	GetBySlug(ctx context.Context, slug string) (Product, error)
	// GetMany returns the products that exist among ids, keyed by id.
	GetMany(ctx context.Context, ids []uint) (map[uint]Product, error)
	Create(ctx context.Context, p Product) (Product, error)
	// Update writes scalar fields; images are replaced when replaceImages is set.
	Update(ctx context.Context, p Product, replaceImages bool) (Product, error)
	// Delete refuses with ErrReferenced while order items point at the product,
	// otherwise removes it with its images, cart, favorite and recently viewed rows.
	Delete(ctx context.Context, id uint) error
	// AdjustStock applies per-product deltas atomically; no stock may go negative.
	AdjustStock(ctx context.Context, deltas map[uint]int) error
}

// InMemoryRepository is a simple in-memory implementation useful for tests.
type InMemoryRepository struct {
	mu         sync.RWMutex
	storage    map[uint]Product
	referenced map[uint]bool
	nextID     uint
	nextImgID  uint
}

func NewInMemoryRepository(seed []Product) *InMemoryRepository {
	r := &InMemoryRepository{
		storage:    make(map[uint]Product, len(seed)),
		referenced: map[uint]bool{},
		nextID:     1,
		nextImgID:  1,
	}
	for _, p := range seed {
		r.storage[p.ID] = p
		if p.ID >= r.nextID {
			r.nextID = p.ID + 1
		}
	}
	return r
}

// MarkReferenced records that an order item points at the product.
func (r *InMemoryRepository) MarkReferenced(id uint) {
	r.mu.Lock()
	r.referenced[id] = true
	r.mu.Unlock()
}

func clone(p Product) Product {
	p.Images = slices.Clone(p.Images)
	return p
}

func (r *InMemoryRepository) List(_ context.Context, f Filter) ([]Product, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]Product, 0)
	q := strings.ToLower(strings.TrimSpace(f.Query))
	for _, p := range r.storage {
		if f.CategorySlug != "" && (p.Category == nil || p.Category.Slug != f.CategorySlug) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(p.Name), q) {
			continue
		}
		if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
			continue
		}
		if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
			continue
		}
		if f.Featured != nil && p.Featured != *f.Featured {
			continue
		}
		matched = append(matched, clone(p))
	}

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		switch f.Sort {
		case SortPriceAsc:
			if !a.Price.Equal(b.Price) {
				return a.Price.LessThan(b.Price)
			}
		case SortPriceDesc:
			if !a.Price.Equal(b.Price) {
				return a.Price.GreaterThan(b.Price)
			}
		case SortName:
			if a.Name != b.Name {
				return strings.ToLower(a.Name) < strings.ToLower(b.Name)
			}
		default:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
		}
		return a.ID > b.ID
	})

	total := int64(len(matched))
	start := min(f.offset(), len(matched))
	end := len(matched)
	if f.Limit > 0 {
		end = min(start+f.Limit, len(matched))
	}
	return matched[start:end], total, nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id uint) (Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.storage[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return clone(p), nil
}

func (r *InMemoryRepository) GetBySlug(_ context.Context, slug string) (Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.storage {
		if p.Slug == slug {
			return clone(p), nil
		}
	}
	return Product{}, ErrNotFound
}

func (r *InMemoryRepository) GetMany(_ context.Context, ids []uint) (map[uint]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[uint]Product, len(ids))
	for _, id := range ids {
		if p, ok := r.storage[id]; ok {
			out[id] = clone(p)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) slugTaken(slug string, except uint) bool {
	for _, p := range r.storage {
		if p.Slug == slug && p.ID != except {
			return true
		}
	}
	return false
}

func (r *InMemoryRepository) assignImages(p *Product) {
	for i := range p.Images {
		p.Images[i].ID = r.nextImgID
		p.Images[i].ProductID = p.ID
		r.nextImgID++
	}
}

func (r *InMemoryRepository) Create(_ context.Context, p Product) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.slugTaken(p.Slug, 0) {
		return Product{}, ErrSlugExists
	}
	p.ID = r.nextID
	r.nextID++
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	r.assignImages(&p)
	r.storage[p.ID] = clone(p)
	return p, nil
}

func (r *InMemoryRepository) Update(_ context.Context, p Product, replaceImages bool) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.storage[p.ID]
	if !ok {
		return Product{}, ErrNotFound
	}
	if r.slugTaken(p.Slug, p.ID) {
		return Product{}, ErrSlugExists
	}
	p.CreatedAt = cur.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	if replaceImages {
		r.assignImages(&p)
	} else {
		p.Images = cur.Images
	}
	r.storage[p.ID] = clone(p)
	return clone(p), nil
}

func (r *InMemoryRepository) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.storage[id]; !ok {
		return ErrNotFound
	}
	if r.referenced[id] {
		return ErrReferenced
	}
	delete(r.storage, id)
	return nil
}

func (r *InMemoryRepository) AdjustStock(_ context.Context, deltas map[uint]int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, d := range deltas {
		p, ok := r.storage[id]
		if !ok {
			return ErrNotFound
		}
		if p.Stock+d < 0 {
			return ErrInsufficientStock
		}
	}
	for id, d := range deltas {
		p := r.storage[id]
		p.Stock += d
		r.storage[id] = p
	}
	return nil
}
