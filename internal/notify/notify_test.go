package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hamba/avro/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"
)

type producerClientMock struct {
	mock.Mock
}

func (m *producerClientMock) ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	args := m.Called(ctx, rs)
	return args.Get(0).(kgo.ProduceResults)
}

func (m *producerClientMock) Close() {
	m.Called()
}

func TestKafka_OrderEvent(t *testing.T) {
	cl := new(producerClientMock)
	var sent []*kgo.Record
	cl.On("ProduceSync", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).([]*kgo.Record) }).
		Return(kgo.ProduceResults{{}})

	at := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	k := NewKafka(cl)
	err := k.OrderEvent(t.Context(), Event{
		Type: OrderShipped, OrderID: 42, Email: "a@b.c", Status: "SHIPPED",
		Total: "12.34", Currency: "usd", TrackingNumber: "1Z", Carrier: "ups", OccurredAt: at,
	})
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, "42", string(sent[0].Key))

	var got OrderEventV1
	require.NoError(t, avro.Unmarshal(OrderEventV1Avro(), sent[0].Value, &got))
	assert.Equal(t, OrderShipped, got.EventType)
	assert.Equal(t, int64(42), got.OrderID)
	assert.Equal(t, "1Z", got.TrackingNumber)
	assert.True(t, at.Equal(got.OccurredAt))
	cl.AssertExpectations(t)
}

func TestKafka_ProduceError(t *testing.T) {
	cl := new(producerClientMock)
	cl.On("ProduceSync", mock.Anything, mock.Anything).
		Return(kgo.ProduceResults{{Err: errors.New("broker down")}})

	err := NewKafka(cl).OrderEvent(t.Context(), Event{Type: OrderPaid, OrderID: 1})
	assert.ErrorContains(t, err, "broker down")
}

func TestKafka_CloseClosesClient(t *testing.T) {
	cl := new(producerClientMock)
	cl.On("Close").Once()

	NewKafka(cl).Close()
	cl.AssertExpectations(t)
}

func TestEmail_SendsOnlyCustomerFacingEvents(t *testing.T) {
	var got []emailMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		var m emailMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&m))
		got = append(got, m)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	n := NewEmail(EmailConfig{APIURL: srv.URL, APIKey: "key", From: "shop@example.com"})
	require.NoError(t, n.OrderEvent(t.Context(), Event{Type: OrderPlaced, OrderID: 1, Email: "c@example.com"}))
	require.NoError(t, n.OrderEvent(t.Context(), Event{Type: OrderShipped, OrderID: 1, Email: "c@example.com", TrackingNumber: "1Z", Carrier: "ups"}))

	require.Len(t, got, 1)
	assert.Equal(t, "c@example.com", got[0].To)
	assert.Equal(t, "shop@example.com", got[0].From)
	assert.Equal(t, "Order #1 shipped", got[0].Subject)
	assert.Contains(t, got[0].Text, "1Z")
}

type failing struct{}

func (failing) OrderEvent(context.Context, Event) error { return errors.New("nope") }

func TestMulti_JoinsErrors(t *testing.T) {
	calls := 0
	counting := notifierFunc(func(context.Context, Event) error { calls++; return nil })

	err := Multi{failing{}, counting, Nop{}}.OrderEvent(t.Context(), Event{})
	assert.ErrorContains(t, err, "nope")
	assert.Equal(t, 1, calls, "later notifiers still run")
}

type notifierFunc func(context.Context, Event) error

func (f notifierFunc) OrderEvent(ctx context.Context, e Event) error { return f(ctx, e) }
