package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/hamba/avro/v2"
	"github.com/twmb/franz-go/pkg/kgo"
)

type ProducerClient interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

// NewProducerClient connects to the brokers and produces to topic by default.
func NewProducerClient(ctx context.Context, seedBrokers []string, topic string) (*kgo.Client, error) {
	const op = "notify.NewProducerClient"
	cl, err := kgo.NewClient(
		kgo.SeedBrokers(seedBrokers...),
		kgo.DefaultProduceTopicAlways(),
		kgo.DefaultProduceTopic(topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.AllowAutoTopicCreation(),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := cl.Ping(ctx); err != nil {
		cl.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return cl, nil
}

// Kafka publishes avro-encoded OrderEventV1 records keyed by order id.
type Kafka struct {
	cl     ProducerClient
	schema avro.Schema
}

func NewKafka(cl ProducerClient) *Kafka {
	return &Kafka{cl: cl, schema: OrderEventV1Avro()}
}

func (k *Kafka) OrderEvent(ctx context.Context, e Event) error {
	const op = "notify.Kafka.OrderEvent"

	b, err := avro.Marshal(k.schema, toSchemaV1(e))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	r := &kgo.Record{
		Key:   []byte(strconv.FormatUint(uint64(e.OrderID), 10)),
		Value: b,
	}
	if err := k.cl.ProduceSync(ctx, r).FirstErr(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (k *Kafka) Close() {
	const op = "notify.Kafka.Close"
	log := slog.With("op", op)
	log.Info("closing producer...")
	k.cl.Close()
	log.Info("producer is closed")
}
