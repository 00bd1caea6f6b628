// Package payment creates hosted checkout sessions and verifies payment webhooks.
package payment

import (
	"context"

	"github.com/wichananm65/storefront-backend/internal/httpx"
)

const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventCheckoutExpired   = "checkout.session.expired"
	EventChargeRefunded    = "charge.refunded"
)

var (
	ErrNotConfigured    = httpx.NewError(503, "payments are not configured")
	ErrInvalidSignature = httpx.BadRequest("invalid webhook signature")
)

// LineItem amounts are in the currency's minor unit.
type LineItem struct {
	Name       string
	UnitAmount int64
	Quantity   int64
}

type SessionRequest struct {
	OrderID    uint
	Email      string
	Currency   string
	Items      []LineItem
	SuccessURL string
	CancelURL  string
}

type Session struct {
	ID  string
	URL string
}

// Event is the part of a provider event the order flow acts on.
type Event struct {
	ID              string
	Type            string
	OrderID         uint
	SessionID       string
	PaymentIntentID string
}

type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req SessionRequest) (Session, error)
	ParseWebhook(payload []byte, signature string) (Event, error)
}

// Disabled is used when no payment provider is configured.
type Disabled struct{}

func (Disabled) CreateCheckoutSession(context.Context, SessionRequest) (Session, error) {
	return Session{}, ErrNotConfigured
}

func (Disabled) ParseWebhook([]byte, string) (Event, error) {
	return Event{}, ErrNotConfigured
}
