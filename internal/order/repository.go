package order

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

type Repository interface {
	// Create stores a new order with its items.
	Create(ctx context.Context, o Order) (Order, error)
	SetPaymentSession(ctx context.Context, id uint, sessionID string) error
	Get(ctx context.Context, id uint) (Order, error)
	GetByGuestToken(ctx context.Context, token string) (Order, error)
	GetByPaymentIntent(ctx context.Context, intentID string) (Order, error)
	// ListByUser returns the user's orders newest first.
	ListByUser(ctx context.Context, userID uint) ([]Order, error)
	List(ctx context.Context, f Filter) ([]Order, int64, error)
	// LinkGuestOrders assigns userID to orders without an owner whose email
	// matches case-insensitively, returning how many were linked.
	LinkGuestOrders(ctx context.Context, userID uint, email string) (int64, error)
	// Apply performs ch atomically. It fails with ErrStatusChanged when the
	// order is no longer in ch.From.
	Apply(ctx context.Context, id uint, ch Change) (Order, error)
	EventSeen(ctx context.Context, eventID string) (bool, error)
	// RecordEvent marks an event processed, reporting false when it already was.
	RecordEvent(ctx context.Context, eventID, eventType string) (bool, error)
}

// StockAdjuster is the product repository's stock update.
type StockAdjuster interface {
	AdjustStock(ctx context.Context, deltas map[uint]int) error
}

// InMemoryRepository is a simple in-memory implementation useful for tests.
type InMemoryRepository struct {
	mu     sync.Mutex
	orders map[uint]Order
	events map[string]string
	nextID uint
	stock  StockAdjuster
	now    func() time.Time
}

func NewInMemoryRepository(stock StockAdjuster) *InMemoryRepository {
	return &InMemoryRepository{
		orders: make(map[uint]Order),
		events: make(map[string]string),
		nextID: 1,
		stock:  stock,
		now:    time.Now,
	}
}

func clone(o Order) Order {
	o.Items = append([]Item(nil), o.Items...)
	return o
}

func (r *InMemoryRepository) Create(_ context.Context, o Order) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o.ID = r.nextID
	r.nextID++
	now := r.now()
	o.CreatedAt, o.UpdatedAt = now, now
	for i := range o.Items {
		o.Items[i].ID = uint(i + 1)
		o.Items[i].OrderID = o.ID
	}
	r.orders[o.ID] = clone(o)
	return o, nil
}

func (r *InMemoryRepository) SetPaymentSession(_ context.Context, id uint, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return ErrNotFound
	}
	o.PaymentSessionID = sessionID
	r.orders[id] = o
	return nil
}

func (r *InMemoryRepository) Get(_ context.Context, id uint) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	return clone(o), nil
}

func (r *InMemoryRepository) find(match func(Order) bool) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if match(o) {
			return clone(o), nil
		}
	}
	return Order{}, ErrNotFound
}

func (r *InMemoryRepository) GetByGuestToken(_ context.Context, token string) (Order, error) {
	return r.find(func(o Order) bool { return o.GuestToken != nil && *o.GuestToken == token })
}

func (r *InMemoryRepository) GetByPaymentIntent(_ context.Context, intentID string) (Order, error) {
	if intentID == "" {
		return Order{}, ErrNotFound
	}
	return r.find(func(o Order) bool { return o.PaymentIntentID == intentID })
}

func (r *InMemoryRepository) sorted(match func(Order) bool) []Order {
	out := make([]Order, 0)
	for _, o := range r.orders {
		if match(o) {
			out = append(out, clone(o))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (r *InMemoryRepository) ListByUser(_ context.Context, userID uint) ([]Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(func(o Order) bool { return o.UserID != nil && *o.UserID == userID }), nil
}

func (r *InMemoryRepository) List(_ context.Context, f Filter) ([]Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.sorted(func(o Order) bool { return f.Status == "" || o.Status == f.Status })
	total := int64(len(all))
	start := min(f.offset(), len(all))
	end := len(all)
	if f.Limit > 0 {
		end = min(start+f.Limit, len(all))
	}
	return all[start:end], total, nil
}

func (r *InMemoryRepository) LinkGuestOrders(_ context.Context, userID uint, email string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, o := range r.orders {
		if o.UserID == nil && strings.EqualFold(o.Email, email) {
			uid := userID
			o.UserID = &uid
			r.orders[id] = o
			n++
		}
	}
	return n, nil
}

func (r *InMemoryRepository) Apply(ctx context.Context, id uint, ch Change) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	if ch.EventID != "" {
		if _, seen := r.events[ch.EventID]; seen {
			return Order{}, ErrDuplicateEvent
		}
	}
	if o.Status != ch.From || (ch.To == StatusShipped && o.TrackingNumber != "") {
		return Order{}, ErrStatusChanged
	}
	if len(ch.Stock) > 0 && r.stock != nil {
		if err := r.stock.AdjustStock(ctx, ch.Stock); err != nil {
			return Order{}, err
		}
	}
	if ch.EventID != "" {
		r.events[ch.EventID] = ch.EventType
	}
	ch.apply(&o, r.now())
	r.orders[id] = o
	return clone(o), nil
}

func (r *InMemoryRepository) EventSeen(_ context.Context, eventID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.events[eventID]
	return ok, nil
}

func (r *InMemoryRepository) RecordEvent(_ context.Context, eventID, eventType string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[eventID]; ok {
		return false, nil
	}
	r.events[eventID] = eventType
	return true, nil
}
