package payment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v80/webhook"
)

const secret = "whsec_test"

func sign(t *testing.T, payload string) (string, []byte) {
	t.Helper()
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    secret,
		Timestamp: time.Now(),
	})
	return signed.Header, signed.Payload
}

func TestParseWebhook_CheckoutCompleted(t *testing.T) {
	s := NewStripe("sk_test", secret)
	header, body := sign(t, `{
		"id": "evt_1",
		"object": "event",
		"type": "checkout.session.completed",
		"data": {"object": {
			"id": "cs_1",
			"object": "checkout.session",
			"client_reference_id": "17",
			"payment_intent": "pi_9",
			"metadata": {"order_id": "17"}
		}}
	}`)

	evt, err := s.ParseWebhook(body, header)
	require.NoError(t, err)
	assert.Equal(t, "evt_1", evt.ID)
	assert.Equal(t, EventCheckoutCompleted, evt.Type)
	assert.Equal(t, uint(17), evt.OrderID)
	assert.Equal(t, "cs_1", evt.SessionID)
	assert.Equal(t, "pi_9", evt.PaymentIntentID)
}

func TestParseWebhook_ChargeRefunded(t *testing.T) {
	s := NewStripe("sk_test", secret)
	header, body := sign(t, `{
		"id": "evt_2",
		"object": "event",
		"type": "charge.refunded",
		"data": {"object": {"id": "ch_1", "object": "charge", "payment_intent": "pi_9"}}
	}`)

	evt, err := s.ParseWebhook(body, header)
	require.NoError(t, err)
	assert.Equal(t, EventChargeRefunded, evt.Type)
	assert.Equal(t, "pi_9", evt.PaymentIntentID)
	assert.Zero(t, evt.OrderID)
}

func TestParseWebhook_BadSignature(t *testing.T) {
	s := NewStripe("sk_test", secret)
	_, body := sign(t, `{"id":"evt_3","object":"event","type":"checkout.session.expired"}`)

	_, err := s.ParseWebhook(body, "t=1,v1=deadbeef")
	assert.ErrorIs(t, err, ErrInvalidSignature)

	_, err = NewStripe("sk_test", "").ParseWebhook(body, "")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
