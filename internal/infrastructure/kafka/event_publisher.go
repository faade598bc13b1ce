// Package kafka ships stored decision events from the outbox to Kafka.
package kafka

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aman3729/credit-score/pkg/events"
	pkgkafka "github.com/aman3729/credit-score/pkg/kafka"
)

// MessagePublisher is the part of pkg/kafka.Producer the publisher needs.
type MessagePublisher interface {
	Publish(ctx context.Context, topic string, messages ...pkgkafka.Message) error
}

// EventPublisher implements events.EntryPublisher by writing outbox
// entries to one topic. Entries are keyed by borrower so a borrower's
// events stay ordered within a partition.
type EventPublisher struct {
	producer MessagePublisher
	topic    string
	logger   *slog.Logger
}

// NewEventPublisher creates a publisher targeting the given producer and topic.
func NewEventPublisher(producer MessagePublisher, topic string, logger *slog.Logger) *EventPublisher {
	return &EventPublisher{
		producer: producer,
		topic:    topic,
		logger:   logger,
	}
}

// PublishEntries sends entries in a single batch.
func (p *EventPublisher) PublishEntries(ctx context.Context, entries ...events.OutboxEntry) error {
	if len(entries) == 0 {
		return nil
	}

	messages := make([]pkgkafka.Message, 0, len(entries))
	for _, e := range entries {
		p.logger.DebugContext(ctx, "publishing decision event",
			"event_type", e.EventType,
			"event_id", e.ID,
			"borrower_id", e.AggregateID,
			"topic", p.topic,
			"payload_size", len(e.Payload),
		)
		messages = append(messages, toMessage(e))
	}

	if err := p.producer.Publish(ctx, p.topic, messages...); err != nil {
		return fmt.Errorf("failed to publish events to topic %s: %w", p.topic, err)
	}
	return nil
}

func toMessage(e events.OutboxEntry) pkgkafka.Message {
	headers := map[string]string{
		"event_type":     e.EventType,
		"event_id":       e.ID,
		"aggregate_type": e.AggregateType,
	}
	if e.TenantID != "" {
		headers["tenant_id"] = e.TenantID
	}
	return pkgkafka.Message{
		Key:     []byte(e.AggregateID),
		Value:   e.Payload,
		Headers: headers,
	}
}
