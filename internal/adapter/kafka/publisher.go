package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"otcledger/internal/domain"
	"otcledger/internal/port"
)

// Publisher writes notifications to a Kafka topic as JSON, keyed by
// the entity id so an indexer sees per-entity ordering.
type Publisher struct {
	writer *kafka.Writer
}

var _ port.Publisher = (*Publisher)(nil)

func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			RequiredAcks: kafka.RequireAll,
			Async:        false,
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

func (p *Publisher) Publish(ctx context.Context, e domain.Event) error {
	value, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.Key()),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(e.EventType())},
		},
	})
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
