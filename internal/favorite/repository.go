package favorite

import (
	"context"
	"sort"
	"sync"
	"time"
)

type Repository interface {
	// List returns the user's favorites, newest first.
	List(ctx context.Context, userID uint) ([]Favorite, error)
	// Add is a no-op when the pair already exists.
	Add(ctx context.Context, userID, productID uint) error
	Remove(ctx context.Context, userID, productID uint) error
	Exists(ctx context.Context, userID, productID uint) (bool, error)
}

type pair struct{ user, product uint }

// InMemoryRepository is used in tests.
type InMemoryRepository struct {
	mu     sync.RWMutex
	rows   map[pair]Favorite
	nextID uint
}

func NewInMemoryRepository(seed []Favorite) *InMemoryRepository {
	r := &InMemoryRepository{rows: map[pair]Favorite{}, nextID: 1}
	for _, f := range seed {
		if f.ID == 0 {
			f.ID = r.nextID
		}
		r.rows[pair{f.UserID, f.ProductID}] = f
		if f.ID >= r.nextID {
			r.nextID = f.ID + 1
		}
	}
	return r
}

func (r *InMemoryRepository) List(_ context.Context, userID uint) ([]Favorite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Favorite, 0)
	for k, f := range r.rows {
		if k.user == userID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *InMemoryRepository) Add(_ context.Context, userID, productID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := pair{userID, productID}
	if _, ok := r.rows[k]; ok {
		return nil
	}
	r.rows[k] = Favorite{ID: r.nextID, UserID: userID, ProductID: productID, CreatedAt: time.Now().UTC()}
	r.nextID++
	return nil
}

func (r *InMemoryRepository) Remove(_ context.Context, userID, productID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, pair{userID, productID})
	return nil
}

func (r *InMemoryRepository) Exists(_ context.Context, userID, productID uint) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rows[pair{userID, productID}]
	return ok, nil
}
