package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/bebsa/ledger/internal/events"
)

// DefaultTopic carries reconciliation events.
const DefaultTopic = "ledger.reconciled"

// Publisher writes reconciliation events to a Kafka topic.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher builds a publisher for the given brokers. Topic defaults to
// DefaultTopic when empty.
func NewPublisher(brokers []string, topic string) *Publisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

// Publish serializes ev as JSON keyed by the account so per-account ordering
// is preserved within a partition.
func (p *Publisher) Publish(ctx context.Context, ev events.Reconciled) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.Account),
		Value: data,
	})
}

// Close flushes and releases the underlying writer.
func (p *Publisher) Close() error { return p.writer.Close() }
