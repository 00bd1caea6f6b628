package notify

import (
	"time"

	"github.com/hamba/avro/v2"
)

const OrderEventSchemaTextV1 = `{
	"type": "record",
	"namespace": "orders",
	"name": "OrderEventV1",
	"fields": [
		{"name": "event_type", "type": "string"},
		{"name": "order_id", "type": "long"},
		{"name": "email", "type": "string"},
		{"name": "status", "type": "string"},
		{"name": "total", "type": "string"},
		{"name": "currency", "type": "string"},
		{"name": "tracking_number", "type": "string"},
		{"name": "carrier", "type": "string"},
		{"name": "occurred_at", "type": {"type": "long", "logicalType": "timestamp-millis"}}
	]
}`

type OrderEventV1 struct {
	EventType      string    `avro:"event_type"`
	OrderID        int64     `avro:"order_id"`
	Email          string    `avro:"email"`
	Status         string    `avro:"status"`
	Total          string    `avro:"total"`
	Currency       string    `avro:"currency"`
	TrackingNumber string    `avro:"tracking_number"`
	Carrier        string    `avro:"carrier"`
	OccurredAt     time.Time `avro:"occurred_at"`
}

func OrderEventV1Avro() avro.Schema {
	return avro.MustParse(OrderEventSchemaTextV1)
}

func toSchemaV1(e Event) OrderEventV1 {
	return OrderEventV1{
		EventType:      e.Type,
		OrderID:        int64(e.OrderID),
		Email:          e.Email,
		Status:         e.Status,
		Total:          e.Total,
		Currency:       e.Currency,
		TrackingNumber: e.TrackingNumber,
		Carrier:        e.Carrier,
		OccurredAt:     e.OccurredAt.UTC(),
	}
}
