package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

type EmailConfig struct {
	APIURL  string
	APIKey  string
	From    string
	Timeout time.Duration
}

type emailMessage struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

// Email sends order mails through an HTTP email API.
type Email struct {
	cfg EmailConfig
}

func NewEmail(cfg EmailConfig) *Email {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Email{cfg: cfg}
}

func (n *Email) OrderEvent(ctx context.Context, e Event) error {
	const op = "notify.Email.OrderEvent"

	msg, ok := compose(e)
	if !ok || e.Email == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	msg.From = n.cfg.From
	msg.To = e.Email

	a := fiber.Post(n.cfg.APIURL)
	a.Set(fiber.HeaderAuthorization, "Bearer "+n.cfg.APIKey)
	a.JSON(msg)
	a.Timeout(n.cfg.Timeout)
	if err := a.Parse(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	code, _, errs := a.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("%s: %w", op, errs[0])
	}
	if code < 200 || code >= 300 {
		return fmt.Errorf("%s: email provider responded %d", op, code)
	}
	return nil
}

func compose(e Event) (emailMessage, bool) {
	ref := fmt.Sprintf("#%d", e.OrderID)
	switch e.Type {
	case OrderPaid:
		return emailMessage{
			Subject: "Order " + ref + " confirmed",
			Text:    fmt.Sprintf("Thanks for your order %s. We received your payment of %s %s.", ref, e.Total, e.Currency),
		}, true
	case OrderShipped:
		return emailMessage{
			Subject: "Order " + ref + " shipped",
			Text:    fmt.Sprintf("Your order %s is on its way via %s. Tracking number: %s.", ref, e.Carrier, e.TrackingNumber),
		}, true
	case OrderDelivered:
		return emailMessage{
			Subject: "Order " + ref + " delivered",
			Text:    fmt.Sprintf("Your order %s was delivered.", ref),
		}, true
	case OrderCancelled:
		return emailMessage{
			Subject: "Order " + ref + " cancelled",
			Text:    fmt.Sprintf("Your order %s was cancelled.", ref),
		}, true
	case OrderRefunded:
		return emailMessage{
			Subject: "Order " + ref + " refunded",
			Text:    fmt.Sprintf("Your payment for order %s was refunded.", ref),
		}, true
	}
	return emailMessage{}, false
}
