package eventbus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/vietcart/logistics/internal/domain/shared"
	"github.com/vietcart/logistics/internal/infrastructure/config"
)

// KafkaPublisher publishes envelopes with one writer per queue. Every
// event published to orders or shipments is mirrored to notifications; the
// notification service consumes only that queue.
type KafkaPublisher struct {
	writers map[string]*kafka.Writer
	clock   shared.Clock
	logger  *zap.Logger
}

// NewKafkaPublisher creates writers for every queue
func NewKafkaPublisher(cfg *config.KafkaConfig, clock shared.Clock, logger *zap.Logger) *KafkaPublisher {
	writers := make(map[string]*kafka.Writer)
	for _, queue := range []string{QueueOrders, QueuePayments, QueueShipments, QueueNotifications} {
		writers[queue] = &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        queue,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		}
	}
	return &KafkaPublisher{writers: writers, clock: clock, logger: logger}
}

// Publish sends one event to its queue, keyed for per-entity ordering.
// Callers invoke this only after the corresponding DB commit.
func (p *KafkaPublisher) Publish(ctx context.Context, queue, eventType, key string, payload interface{}) error {
	w, ok := p.writers[queue]
	if !ok {
		return fmt.Errorf("unknown queue %q", queue)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	env, err := json.Marshal(Envelope{
		Schema:  schemaVersion,
		Type:    eventType,
		At:      p.clock.Now(),
		Payload: raw,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	msg := kafka.Message{Key: []byte(key), Value: env}
	if err := w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s to %s: %w", eventType, queue, err)
	}

	if queue == QueueOrders || queue == QueueShipments {
		if err := p.writers[QueueNotifications].WriteMessages(ctx, msg); err != nil {
			// The primary publish stands; losing the notification copy is
			// recoverable by the reconciliation job.
			p.logger.Warn("failed to mirror event to notifications",
				zap.String("type", eventType),
				zap.Error(err))
		}
	}
	return nil
}

// Close flushes and closes all writers
func (p *KafkaPublisher) Close() error {
	var firstErr error
	for _, w := range p.writers {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
