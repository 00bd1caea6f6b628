package order

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/storefront-backend/internal/httpx"
)

const (
	StatusPending    = "PENDING"
	StatusProcessing = "PROCESSING"
	StatusShipped    = "SHIPPED"
	StatusDelivered  = "DELIVERED"
	StatusCancelled  = "CANCELLED"
	StatusRefunded   = "REFUNDED"
)

// transitions lists every allowed status change. CANCELLED and REFUNDED are terminal.
var transitions = map[string][]string{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled, StatusRefunded},
	StatusShipped:    {StatusDelivered, StatusRefunded},
	StatusDelivered:  {StatusRefunded},
}

func CanTransition(from, to string) bool {
	return slices.Contains(transitions[from], to)
}

func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

var (
	ErrNotFound          = httpx.NotFound("order not found")
	ErrInvalidTransition = httpx.BadRequest("order status does not allow this action")
	ErrAlreadyShipped    = httpx.Conflict("order already has a tracking number")
	ErrStatusChanged     = httpx.Conflict("order status changed, retry")
	ErrDuplicateEvent    = httpx.Conflict("event already processed")
	ErrEmptyCart         = httpx.BadRequest("cart is empty")
	ErrInvalidEmail      = httpx.BadRequest("a valid email is required")
	ErrAddressRequired   = httpx.BadRequest("shipping address is required")
	ErrInvalidQuantity   = httpx.BadRequest("quantity must be at least 1")
	ErrInvalidStatus     = httpx.BadRequest("unknown order status")
	ErrLookupFields      = httpx.BadRequest("email and orderId are required")
)

// ShippingAddress is copied onto the order at checkout.
type ShippingAddress struct {
	Name       string `json:"name"`
	Line1      string `gorm:"column:line1" json:"line1"`
	Line2      string `gorm:"column:line2" json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

// Order is owned by a user, a guest token, or both once linked.
type Order struct {
	ID               uint            `gorm:"primaryKey" json:"orderId"`
	UserID           *uint           `json:"userId,omitempty"`
	GuestToken       *string         `gorm:"uniqueIndex" json:"guestToken,omitempty"`
	Email            string          `gorm:"not null" json:"email"`
	Status           string          `gorm:"not null" json:"status"`
	Currency         string          `gorm:"not null" json:"currency"`
	Subtotal         decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"subtotal"`
	Tax              decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"tax"`
	Shipping         decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"shipping"`
	Total            decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"total"`
	ShippingAddress  ShippingAddress `gorm:"embedded;embeddedPrefix:ship_" json:"shippingAddress"`
	PaymentSessionID string          `json:"-"`
	PaymentIntentID  string          `json:"-"`
	TrackingNumber   string          `json:"trackingNumber,omitempty"`
	Carrier          string          `json:"carrier,omitempty"`
	LabelURL         string          `json:"labelUrl,omitempty"`
	PaidAt           *time.Time      `json:"paidAt,omitempty"`
	ShippedAt        *time.Time      `json:"shippedAt,omitempty"`
	DeliveredAt      *time.Time      `json:"deliveredAt,omitempty"`
	CancelledAt      *time.Time      `json:"cancelledAt,omitempty"`
	Items            []Item          `gorm:"foreignKey:OrderID" json:"items"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

func (Order) TableName() string {
	return "orders"
}

// Item snapshots the product name and price paid; it is never updated.
type Item struct {
	ID        uint            `gorm:"primaryKey" json:"-"`
	OrderID   uint            `gorm:"not null;index" json:"-"`
	ProductID uint            `gorm:"not null" json:"productId"`
	Name      string          `gorm:"not null" json:"name"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"unitPrice"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	LineTotal decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"lineTotal"`
}

func (Item) TableName() string {
	return "order_items"
}

// WebhookEvent records a processed payment provider event id.
type WebhookEvent struct {
	ID          string    `gorm:"primaryKey"`
	Type        string    `gorm:"not null"`
	ProcessedAt time.Time `gorm:"not null"`
}

func (WebhookEvent) TableName() string {
	return "webhook_events"
}

// Change is one status transition plus the columns it sets.
type Change struct {
	From, To string

	PaymentIntentID string
	TrackingNumber  string
	Carrier         string
	LabelURL        string

	// Stock deltas are applied in the same transaction as the status update.
	Stock map[uint]int

	// EventID, when set, is recorded with the change; a replay fails with ErrDuplicateEvent.
	EventID   string
	EventType string
}

// columns returns the order columns a change writes at time now.
func (ch Change) columns(now time.Time) map[string]any {
	cols := map[string]any{"status": ch.To}
	switch ch.To {
	case StatusProcessing:
		cols["paid_at"] = now
	case StatusShipped:
		cols["shipped_at"] = now
	case StatusDelivered:
		cols["delivered_at"] = now
	case StatusCancelled:
		cols["cancelled_at"] = now
	}
	if ch.PaymentIntentID != "" {
		cols["payment_intent_id"] = ch.PaymentIntentID
	}
	if ch.TrackingNumber != "" {
		cols["tracking_number"] = ch.TrackingNumber
		cols["carrier"] = ch.Carrier
		cols["label_url"] = ch.LabelURL
	}
	return cols
}

// apply mirrors columns on an in-memory order.
func (ch Change) apply(o *Order, now time.Time) {
	o.Status = ch.To
	switch ch.To {
	case StatusProcessing:
		o.PaidAt = &now
	case StatusShipped:
		o.ShippedAt = &now
	case StatusDelivered:
		o.DeliveredAt = &now
	case StatusCancelled:
		o.CancelledAt = &now
	}
	if ch.PaymentIntentID != "" {
		o.PaymentIntentID = ch.PaymentIntentID
	}
	if ch.TrackingNumber != "" {
		o.TrackingNumber = ch.TrackingNumber
		o.Carrier = ch.Carrier
		o.LabelURL = ch.LabelURL
	}
	o.UpdatedAt = now
}

// Filter narrows the admin order list.
type Filter struct {
	Status string
	Page   int
	Limit  int
}

func (f Filter) offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}
