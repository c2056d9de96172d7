// Package events delivers order lifecycle events to Kafka. Publishing is
// best-effort by contract: the orchestrator logs and swallows failures.
package events

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/segmentio/kafka-go"

	"github.com/lehoangvu/techstore/internal/domain/order"
)

var _ order.Publisher = (*KafkaPublisher)(nil)

// KafkaPublisher writes order events as JSON messages keyed by order ID, so
// all events for one order land on the same partition in order.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher creates a publisher for the given brokers and topic.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
		},
	}
}

// Publish serializes the event and writes it to the topic.
func (p *KafkaPublisher) Publish(ctx context.Context, ev order.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return errors.Wrap(err, "marshal event")
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.OrderID.String()),
		Value: payload,
	})
	if err != nil {
		return errors.Wrap(err, "write message")
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

var _ order.Publisher = NopPublisher{}

func (NopPublisher) Publish(context.Context, order.Event) error { return nil }
