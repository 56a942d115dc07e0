package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaPublisher writes each event to the topic <prefix><event type>,
// keyed by aggregate id.
type KafkaPublisher struct {
	writer *kafka.Writer
	prefix string
}

func NewKafkaPublisher(brokers []string, topicPrefix string) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("events: kafka publisher requires at least one broker")
	}
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			RequiredAcks:           kafka.RequireAll,
			Balancer:               &kafka.Hash{},
			BatchTimeout:           10 * time.Millisecond,
			AllowAutoTopicCreation: true,
		},
		prefix: topicPrefix,
	}, nil
}

// Topic returns the topic an event type is written to.
func (p *KafkaPublisher) Topic(eventType string) string {
	return p.prefix + eventType
}

func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	payload, err := e.Payload()
	if err != nil {
		return fmt.Errorf("events: encode %s: %w", e.Type, err)
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: p.Topic(e.Type),
		Key:   []byte(e.Key),
		Value: payload,
		Time:  e.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-id", Value: []byte(e.ID)},
			{Key: "event-type", Value: []byte(e.Type)},
		},
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
