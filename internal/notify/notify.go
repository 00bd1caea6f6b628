// Package notify tells customers and downstream systems about order changes.
package notify

import (
	"context"
	"errors"
	"time"
)

const (
	OrderPlaced    = "order.placed"
	OrderPaid      = "order.paid"
	OrderShipped   = "order.shipped"
	OrderDelivered = "order.delivered"
	OrderCancelled = "order.cancelled"
	OrderRefunded  = "order.refunded"
)

type Event struct {
	Type           string
	OrderID        uint
	Email          string
	Status         string
	Total          string
	Currency       string
	TrackingNumber string
	Carrier        string
	OccurredAt     time.Time
}

type Notifier interface {
	OrderEvent(ctx context.Context, e Event) error
}

// Nop drops every event.
type Nop struct{}

func (Nop) OrderEvent(context.Context, Event) error { return nil }

// Multi delivers to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) OrderEvent(ctx context.Context, e Event) error {
	var errs []error
	for _, n := range m {
		if err := n.OrderEvent(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
