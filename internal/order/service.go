package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wichananm65/storefront-backend/internal/address"
	"github.com/wichananm65/storefront-backend/internal/cart"
	"github.com/wichananm65/storefront-backend/internal/httpx"
	"github.com/wichananm65/storefront-backend/internal/notify"
	"github.com/wichananm65/storefront-backend/internal/payment"
	"github.com/wichananm65/storefront-backend/internal/product"
	"github.com/wichananm65/storefront-backend/internal/shipping"
)

type Catalog interface {
	Lookup(ctx context.Context, ids []uint) (map[uint]product.View, error)
}

type Carts interface {
	Items(ctx context.Context, userID uint) ([]cart.CartItem, error)
	Clear(ctx context.Context, userID uint) error
}

type Addresses interface {
	Get(ctx context.Context, userID, id uint) (address.Address, error)
}

// Pricing holds the checkout money settings.
type Pricing struct {
	TaxRate          decimal.Decimal
	ShippingFlat     decimal.Decimal
	FreeShippingOver decimal.Decimal
	Currency         string
	SuccessURL       string
	CancelURL        string
}

// Totals computes tax and shipping for subtotal. Shipping is free once the
// subtotal reaches FreeShippingOver, when that threshold is positive.
func (p Pricing) Totals(subtotal decimal.Decimal) (tax, ship, total decimal.Decimal) {
	tax = subtotal.Mul(p.TaxRate).Round(2)
	ship = p.ShippingFlat
	if p.FreeShippingOver.IsPositive() && subtotal.GreaterThanOrEqual(p.FreeShippingOver) {
		ship = decimal.Zero
	}
	return tax, ship, subtotal.Add(tax).Add(ship)
}

type Deps struct {
	Repo      Repository
	Catalog   Catalog
	Carts     Carts
	Addresses Addresses
	Payments  payment.Gateway
	Labels    shipping.LabelProvider
	Notifier  notify.Notifier
	Pricing   Pricing
}

type Service struct {
	repo      Repository
	catalog   Catalog
	carts     Carts
	addresses Addresses
	payments  payment.Gateway
	labels    shipping.LabelProvider
	notifier  notify.Notifier
	pricing   Pricing
}

func NewService(d Deps) *Service {
	if d.Payments == nil {
		d.Payments = payment.Disabled{}
	}
	if d.Notifier == nil {
		d.Notifier = notify.Nop{}
	}
	if d.Pricing.Currency == "" {
		d.Pricing.Currency = "usd"
	}
	return &Service{
		repo:      d.Repo,
		catalog:   d.Catalog,
		carts:     d.Carts,
		addresses: d.Addresses,
		payments:  d.Payments,
		labels:    d.Labels,
		notifier:  d.Notifier,
		pricing:   d.Pricing,
	}
}

type LineInput struct {
	ProductID uint `json:"productId"`
	Quantity  int  `json:"quantity"`
}

// CheckoutInput comes from a signed-in user (UserID set, items read from the
// cart) or a guest (Items and Email required).
type CheckoutInput struct {
	UserID    uint
	Email     string
	Items     []LineInput
	AddressID uint
	Address   *ShippingAddress
}

type CheckoutResult struct {
	OrderID     uint   `json:"orderId"`
	GuestToken  string `json:"guestToken,omitempty"`
	CheckoutURL string `json:"checkoutUrl"`
}

func (s *Service) Checkout(ctx context.Context, in CheckoutInput) (CheckoutResult, error) {
	const op = "order.Service.Checkout"
	log := slog.With("op", op)

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return CheckoutResult{}, ErrInvalidEmail
	}

	lines, err := s.checkoutLines(ctx, in)
	if err != nil {
		return CheckoutResult{}, err
	}
	ship, err := s.shippingAddress(ctx, in)
	if err != nil {
		return CheckoutResult{}, err
	}
	items, subtotal, err := s.price(ctx, lines)
	if err != nil {
		return CheckoutResult{}, err
	}
	tax, shipCost, total := s.pricing.Totals(subtotal)

	o := Order{
		Email:           email,
		Status:          StatusPending,
		Currency:        s.pricing.Currency,
		Subtotal:        subtotal,
		Tax:             tax,
		Shipping:        shipCost,
		Total:           total,
		ShippingAddress: ship,
		Items:           items,
	}
	if in.UserID != 0 {
		uid := in.UserID
		o.UserID = &uid
	} else {
		token := uuid.NewString()
		o.GuestToken = &token
	}

	o, err = s.repo.Create(ctx, o)
	if err != nil {
		return CheckoutResult{}, err
	}

	sess, err := s.payments.CreateCheckoutSession(ctx, s.sessionRequest(o))
	if err != nil {
		if _, cerr := s.repo.Apply(ctx, o.ID, Change{From: StatusPending, To: StatusCancelled}); cerr != nil {
			log.Error("failed to cancel order after payment error", "orderId", o.ID, "err", cerr)
		}
		return CheckoutResult{}, err
	}
	if err := s.repo.SetPaymentSession(ctx, o.ID, sess.ID); err != nil {
		return CheckoutResult{}, err
	}

	s.notify(ctx, notify.OrderPlaced, o)
	log.Info("order placed", "orderId", o.ID, "guest", o.GuestToken != nil, "total", o.Total.String())

	res := CheckoutResult{OrderID: o.ID, CheckoutURL: sess.URL}
	if o.GuestToken != nil {
		res.GuestToken = *o.GuestToken
	}
	return res, nil
}

// maxLineQuantity matches the int4 quantity column.
const maxLineQuantity = math.MaxInt32

func (s *Service) checkoutLines(ctx context.Context, in CheckoutInput) ([]LineInput, error) {
	if in.UserID == 0 {
		if len(in.Items) == 0 {
			return nil, ErrEmptyCart
		}
		merged := make(map[uint]int, len(in.Items))
		order := make([]uint, 0, len(in.Items))
		for _, it := range in.Items {
			if it.Quantity < 1 || it.Quantity > maxLineQuantity-merged[it.ProductID] {
				return nil, ErrInvalidQuantity
			}
			if _, ok := merged[it.ProductID]; !ok {
				order = append(order, it.ProductID)
			}
			merged[it.ProductID] += it.Quantity
		}
		lines := make([]LineInput, 0, len(order))
		for _, id := range order {
			lines = append(lines, LineInput{ProductID: id, Quantity: merged[id]})
		}
		return lines, nil
	}

	rows, err := s.carts.Items(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrEmptyCart
	}
	lines := make([]LineInput, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, LineInput{ProductID: r.ProductID, Quantity: r.Quantity})
	}
	return lines, nil
}

func (s *Service) shippingAddress(ctx context.Context, in CheckoutInput) (ShippingAddress, error) {
	if in.AddressID != 0 && in.UserID != 0 {
		a, err := s.addresses.Get(ctx, in.UserID, in.AddressID)
		if err != nil {
			return ShippingAddress{}, err
		}
		return fromAddress(a), nil
	}
	if in.Address == nil {
		return ShippingAddress{}, ErrAddressRequired
	}
	a := *in.Address
	check := address.Address{
		Recipient: a.Name, Line1: a.Line1, City: a.City, PostalCode: a.PostalCode, Country: a.Country,
	}
	if err := check.Validate(); err != nil {
		return ShippingAddress{}, err
	}
	return a, nil
}

func fromAddress(a address.Address) ShippingAddress {
	return ShippingAddress{
		Name:       a.Recipient,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		Phone:      a.Phone,
	}
}

// price snapshots name and current unit price per line and checks stock.
func (s *Service) price(ctx context.Context, lines []LineInput) ([]Item, decimal.Decimal, error) {
	ids := make([]uint, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	products, err := s.catalog.Lookup(ctx, ids)
	if err != nil {
		return nil, decimal.Zero, err
	}

	items := make([]Item, 0, len(lines))
	subtotal := decimal.Zero
	for _, l := range lines {
		p, ok := products[l.ProductID]
		if !ok {
			return nil, decimal.Zero, product.ErrNotFound
		}
		if l.Quantity > p.Stock {
			return nil, decimal.Zero, httpx.BadRequest(fmt.Sprintf("not enough stock for %s", p.Name))
		}
		unit := p.UnitPrice()
		line := unit.Mul(decimal.NewFromInt(int64(l.Quantity)))
		items = append(items, Item{
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: unit,
			Quantity:  l.Quantity,
			LineTotal: line,
		})
		subtotal = subtotal.Add(line)
	}
	return items, subtotal, nil
}

func cents(d decimal.Decimal) int64 {
	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func (s *Service) sessionRequest(o Order) payment.SessionRequest {
	req := payment.SessionRequest{
		OrderID:    o.ID,
		Email:      o.Email,
		Currency:   o.Currency,
		SuccessURL: s.pricing.SuccessURL,
		CancelURL:  s.pricing.CancelURL,
	}
	for _, it := range o.Items {
		req.Items = append(req.Items, payment.LineItem{
			Name: it.Name, UnitAmount: cents(it.UnitPrice), Quantity: int64(it.Quantity),
		})
	}
	if o.Tax.IsPositive() {
		req.Items = append(req.Items, payment.LineItem{Name: "Tax", UnitAmount: cents(o.Tax), Quantity: 1})
	}
	if o.Shipping.IsPositive() {
		req.Items = append(req.Items, payment.LineItem{Name: "Shipping", UnitAmount: cents(o.Shipping), Quantity: 1})
	}
	return req
}

func stockDeltas(items []Item, sign int) map[uint]int {
	d := make(map[uint]int, len(items))
	for _, it := range items {
		d[it.ProductID] += sign * it.Quantity
	}
	return d
}

// HandleWebhook verifies and applies one payment provider event. Every event
// id is acted on at most once; events that need no change are acknowledged.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	const op = "order.Service.HandleWebhook"

	ev, err := s.payments.ParseWebhook(payload, signature)
	if err != nil {
		return err
	}
	log := slog.With("op", op, "eventId", ev.ID, "type", ev.Type)

	seen, err := s.repo.EventSeen(ctx, ev.ID)
	if err != nil {
		return err
	}
	if seen {
		log.Info("event already processed")
		return nil
	}

	var (
		o       Order
		ch      Change
		evtType string
	)
	switch ev.Type {
	case payment.EventCheckoutCompleted:
		o, err = s.repo.Get(ctx, ev.OrderID)
		ch = Change{From: StatusPending, To: StatusProcessing, PaymentIntentID: ev.PaymentIntentID}
		evtType = notify.OrderPaid
	case payment.EventCheckoutExpired:
		o, err = s.repo.Get(ctx, ev.OrderID)
		ch = Change{From: StatusPending, To: StatusCancelled}
		evtType = notify.OrderCancelled
	case payment.EventChargeRefunded:
		if ev.OrderID != 0 {
			o, err = s.repo.Get(ctx, ev.OrderID)
		} else {
			o, err = s.repo.GetByPaymentIntent(ctx, ev.PaymentIntentID)
		}
		ch = Change{From: o.Status, To: StatusRefunded}
		evtType = notify.OrderRefunded
	default:
		return s.ack(ctx, log, ev, "ignored event")
	}
	if errors.Is(err, ErrNotFound) {
		return s.ack(ctx, log, ev, "event for unknown order")
	}
	if err != nil {
		return err
	}
	if o.Status != ch.From || !CanTransition(o.Status, ch.To) {
		return s.ack(ctx, log.With("orderId", o.ID, "status", o.Status), ev, "event does not apply to order status")
	}

	ch.EventID, ch.EventType = ev.ID, ev.Type
	if ch.To == StatusProcessing {
		ch.Stock = stockDeltas(o.Items, -1)
	}

	updated, err := s.repo.Apply(ctx, o.ID, ch)
	if errors.Is(err, product.ErrInsufficientStock) {
		// Payment is already captured; keep the order and let staff resolve stock.
		log.Error("stock oversold, order kept without stock update", "orderId", o.ID)
		ch.Stock = nil
		updated, err = s.repo.Apply(ctx, o.ID, ch)
	}
	if errors.Is(err, ErrDuplicateEvent) {
		return nil
	}
	if err != nil {
		return err
	}

	if ch.To == StatusProcessing && updated.UserID != nil && s.carts != nil {
		if err := s.carts.Clear(ctx, *updated.UserID); err != nil {
			log.Error("failed to clear cart", "userId", *updated.UserID, "err", err)
		}
	}
	s.notify(ctx, evtType, updated)
	log.Info("order updated", "orderId", updated.ID, "status", updated.Status)
	return nil
}

func (s *Service) ack(ctx context.Context, log *slog.Logger, ev payment.Event, msg string) error {
	if _, err := s.repo.RecordEvent(ctx, ev.ID, ev.Type); err != nil {
		return err
	}
	log.Info(msg)
	return nil
}

func (s *Service) ListForUser(ctx context.Context, userID uint) ([]Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

// GetForUser hides orders the user does not own behind ErrNotFound.
func (s *Service) GetForUser(ctx context.Context, userID, id uint) (Order, error) {
	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if o.UserID == nil || *o.UserID != userID {
		return Order{}, ErrNotFound
	}
	return o, nil
}

// GuestLookup requires both the order id and its email to match.
func (s *Service) GuestLookup(ctx context.Context, email string, id uint) (Order, error) {
	email = strings.TrimSpace(email)
	if email == "" || id == 0 {
		return Order{}, ErrLookupFields
	}
	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if !strings.EqualFold(o.Email, email) {
		return Order{}, ErrNotFound
	}
	return o, nil
}

func (s *Service) GetByGuestToken(ctx context.Context, token string) (Order, error) {
	if strings.TrimSpace(token) == "" {
		return Order{}, ErrNotFound
	}
	return s.repo.GetByGuestToken(ctx, token)
}

// Link attaches guest orders placed with email to the user.
func (s *Service) Link(ctx context.Context, userID uint, email string) (int64, error) {
	if email == "" {
		return 0, ErrInvalidEmail
	}
	n, err := s.repo.LinkGuestOrders(ctx, userID, email)
	if err != nil {
		return 0, err
	}
	slog.Info("linked guest orders", "op", "order.Service.Link", "userId", userID, "count", n)
	return n, nil
}

func (s *Service) Get(ctx context.Context, id uint) (Order, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter) (httpx.Page[Order], error) {
	f.Status = strings.ToUpper(strings.TrimSpace(f.Status))
	if f.Status != "" && !ValidStatus(f.Status) {
		return httpx.Page[Order]{}, ErrInvalidStatus
	}
	orders, total, err := s.repo.List(ctx, f)
	if err != nil {
		return httpx.Page[Order]{}, err
	}
	return httpx.Page[Order]{Items: orders, Total: total, Page: f.Page, Limit: f.Limit}, nil
}

// Ship buys a label for a PROCESSING order and marks it SHIPPED. The label is
// not voided when the following update fails.
func (s *Service) Ship(ctx context.Context, id uint) (Order, error) {
	const op = "order.Service.Ship"
	log := slog.With("op", op, "orderId", id)

	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if o.Status != StatusProcessing {
		return Order{}, ErrInvalidTransition
	}
	if o.TrackingNumber != "" {
		return Order{}, ErrAlreadyShipped
	}
	if s.labels == nil {
		return Order{}, shipping.ErrNotConfigured
	}

	units := 0
	for _, it := range o.Items {
		units += it.Quantity
	}
	a := o.ShippingAddress
	label, err := s.labels.CreateLabel(ctx, shipping.LabelRequest{
		OrderID: o.ID,
		Carrier: s.labels.Carrier(),
		From:    s.labels.FromAddress(),
		To: shipping.Address{
			Name: a.Name, Line1: a.Line1, Line2: a.Line2, City: a.City, State: a.State,
			PostalCode: a.PostalCode, Country: a.Country, Phone: a.Phone,
		},
		Items: units,
	})
	if err != nil {
		return Order{}, err
	}

	updated, err := s.repo.Apply(ctx, id, Change{
		From:           StatusProcessing,
		To:             StatusShipped,
		TrackingNumber: label.TrackingNumber,
		Carrier:        label.Carrier,
		LabelURL:       label.LabelURL,
	})
	if err != nil {
		log.Error("label bought but order not updated",
			"trackingNumber", label.TrackingNumber, "carrier", label.Carrier, "err", err)
		return Order{}, err
	}
	s.notify(ctx, notify.OrderShipped, updated)
	log.Info("order shipped", "trackingNumber", updated.TrackingNumber)
	return updated, nil
}

// Deliver requires the order to be SHIPPED.
func (s *Service) Deliver(ctx context.Context, id uint) (Order, error) {
	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if o.Status != StatusShipped {
		return Order{}, ErrInvalidTransition
	}
	updated, err := s.repo.Apply(ctx, id, Change{From: StatusShipped, To: StatusDelivered})
	if err != nil {
		return Order{}, err
	}
	s.notify(ctx, notify.OrderDelivered, updated)
	return updated, nil
}

// Cancel accepts PENDING and PROCESSING orders. Paid orders get their stock back.
func (s *Service) Cancel(ctx context.Context, id uint) (Order, error) {
	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if !CanTransition(o.Status, StatusCancelled) {
		return Order{}, ErrInvalidTransition
	}
	ch := Change{From: o.Status, To: StatusCancelled}
	if o.Status == StatusProcessing {
		ch.Stock = stockDeltas(o.Items, 1)
	}
	updated, err := s.repo.Apply(ctx, id, ch)
	if err != nil {
		return Order{}, err
	}
	s.notify(ctx, notify.OrderCancelled, updated)
	return updated, nil
}

// notify never fails the caller.
func (s *Service) notify(ctx context.Context, typ string, o Order) {
	err := s.notifier.OrderEvent(ctx, notify.Event{
		Type:           typ,
		OrderID:        o.ID,
		Email:          o.Email,
		Status:         o.Status,
		Total:          o.Total.StringFixed(2),
		Currency:       o.Currency,
		TrackingNumber: o.TrackingNumber,
		Carrier:        o.Carrier,
		OccurredAt:     time.Now(),
	})
	if err != nil {
		slog.Error("order notification failed", "op", "order.Service.notify", "orderId", o.ID, "type", typ, "err", err)
	}
}
