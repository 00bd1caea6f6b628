package sale

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/wichananm65/storefront-backend/internal/httpx"
)

var (
	ErrNotFound        = httpx.NotFound("sale not found")
	ErrUnknownCategory = httpx.BadRequest("unknown category")
)

type Repository interface {
	List(ctx context.Context) ([]Sale, error)
	// ListRunning returns active sales whose window contains now.
	ListRunning(ctx context.Context, now time.Time) ([]Sale, error)
	Get(ctx context.Context, id uint) (Sale, error)
	Create(ctx context.Context, s Sale) (Sale, error)
	Update(ctx context.Context, s Sale) (Sale, error)
	Delete(ctx context.Context, id uint) error
}

type InMemoryRepository struct {
	mu     sync.RWMutex
	rows   map[uint]Sale
	nextID uint
}

func NewInMemoryRepository(seed []Sale) *InMemoryRepository {
	r := &InMemoryRepository{rows: map[uint]Sale{}, nextID: 1}
	for _, s := range seed {
		r.rows[s.ID] = s
		if s.ID >= r.nextID {
			r.nextID = s.ID + 1
		}
	}
	return r
}

func (r *InMemoryRepository) sorted(keep func(Sale) bool) []Sale {
	out := make([]Sale, 0, len(r.rows))
	for _, s := range r.rows {
		if keep(s) {
			s.CategoryIDs = slices.Clone(s.CategoryIDs)
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.After(out[j].StartsAt) })
	return out
}

func (r *InMemoryRepository) List(_ context.Context) ([]Sale, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sorted(func(Sale) bool { return true }), nil
}

func (r *InMemoryRepository) ListRunning(_ context.Context, now time.Time) ([]Sale, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sorted(func(s Sale) bool { return s.Running(now) }), nil
}

func (r *InMemoryRepository) Get(_ context.Context, id uint) (Sale, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.rows[id]
	if !ok {
		return Sale{}, ErrNotFound
	}
	return s, nil
}

func (r *InMemoryRepository) Create(_ context.Context, s Sale) (Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.ID = r.nextID
	r.nextID++
	now := time.Now().UTC()
	s.CreatedAt, s.UpdatedAt = now, now
	r.rows[s.ID] = s
	return s, nil
}

func (r *InMemoryRepository) Update(_ context.Context, s Sale) (Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.rows[s.ID]
	if !ok {
		return Sale{}, ErrNotFound
	}
	s.CreatedAt = cur.CreatedAt
	s.UpdatedAt = time.Now().UTC()
	r.rows[s.ID] = s
	return s, nil
}

func (r *InMemoryRepository) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return ErrNotFound
	}
	delete(r.rows, id)
	return nil
}
