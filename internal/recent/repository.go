package recent

import (
	"context"
	"sort"
	"sync"
	"time"
)

type Repository interface {
	// Record upserts the view and trims the user's history to keep rows.
	Record(ctx context.Context, userID, productID uint, at time.Time, keep int) error
	// List returns views newest first.
	List(ctx context.Context, userID uint) ([]View, error)
	Clear(ctx context.Context, userID uint) error
}

type InMemoryRepository struct {
	mu     sync.Mutex
	rows   []View
	nextID uint
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{nextID: 1}
}

func newestFirst(vs []View) {
	sort.Slice(vs, func(i, j int) bool {
		if !vs[i].ViewedAt.Equal(vs[j].ViewedAt) {
			return vs[i].ViewedAt.After(vs[j].ViewedAt)
		}
		return vs[i].ID > vs[j].ID
	})
}

func (r *InMemoryRepository) Record(_ context.Context, userID, productID uint, at time.Time, keep int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	found := false
	for i := range r.rows {
		if r.rows[i].UserID == userID && r.rows[i].ProductID == productID {
			r.rows[i].ViewedAt = at
			found = true
			break
		}
	}
	if !found {
		r.rows = append(r.rows, View{ID: r.nextID, UserID: userID, ProductID: productID, ViewedAt: at})
		r.nextID++
	}

	newestFirst(r.rows)
	kept := r.rows[:0]
	seen := 0
	for _, v := range r.rows {
		if v.UserID == userID {
			seen++
			if seen > keep {
				continue
			}
		}
		kept = append(kept, v)
	}
	r.rows = kept
	return nil
}

func (r *InMemoryRepository) List(_ context.Context, userID uint) ([]View, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]View, 0)
	for _, v := range r.rows {
		if v.UserID == userID {
			out = append(out, v)
		}
	}
	newestFirst(out)
	return out, nil
}

func (r *InMemoryRepository) Clear(_ context.Context, userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.rows[:0]
	for _, v := range r.rows {
		if v.UserID != userID {
			kept = append(kept, v)
		}
	}
	r.rows = kept
	return nil
}
