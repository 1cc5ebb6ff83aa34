package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/vietcart/logistics/internal/infrastructure/config"
)

// PaymentHandler reacts to payment outcomes. Handlers must be idempotent:
// the queue delivers at least once.
type PaymentHandler interface {
	HandlePaymentSucceeded(ctx context.Context, orderID string) error
	HandlePaymentFailed(ctx context.Context, orderID, reason string) error
}

// PaymentConsumer reads the payments queue in a consumer group and drives
// the order state machine.
type PaymentConsumer struct {
	reader  *kafka.Reader
	handler PaymentHandler
	logger  *zap.Logger
}

// NewPaymentConsumer creates a group consumer on the payments queue
func NewPaymentConsumer(cfg *config.KafkaConfig, handler PaymentHandler, logger *zap.Logger) *PaymentConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: cfg.Brokers,
		GroupID: cfg.ConsumerGroup,
		Topic:   QueuePayments,
	})
	return &PaymentConsumer{reader: reader, handler: handler, logger: logger}
}

// Run consumes until the context is cancelled. Messages that fail to
// decode are committed and dropped; handler failures leave the message
// uncommitted so the group redelivers it.
func (c *PaymentConsumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		if err := c.dispatch(ctx, msg.Value); err != nil {
			c.logger.Error("payment event handling failed",
				zap.String("key", string(msg.Key)),
				zap.Error(err))
			continue
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Warn("failed to commit payment message", zap.Error(err))
		}
	}
}

func (c *PaymentConsumer) dispatch(ctx context.Context, value []byte) error {
	var env Envelope
	if err := json.Unmarshal(value, &env); err != nil {
		c.logger.Warn("dropping malformed payment envelope", zap.Error(err))
		return nil
	}
	if env.Schema != schemaVersion {
		c.logger.Warn("dropping payment envelope with unknown schema",
			zap.String("schema", env.Schema))
		return nil
	}

	var payload PaymentPayload
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		c.logger.Warn("dropping malformed payment payload", zap.Error(err))
		return nil
	}

	switch env.Type {
	case EventPaymentSucceeded:
		return c.handler.HandlePaymentSucceeded(ctx, payload.OrderID)
	case EventPaymentFailed:
		return c.handler.HandlePaymentFailed(ctx, payload.OrderID, payload.Reason)
	default:
		c.logger.Debug("ignoring payment event type", zap.String("type", env.Type))
		return nil
	}
}

// Close closes the underlying reader
func (c *PaymentConsumer) Close() error {
	return c.reader.Close()
}
