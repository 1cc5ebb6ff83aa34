package orders

import (
	"context"

	"go.uber.org/zap"

	"github.com/vietcart/logistics/internal/domain/order"
	"github.com/vietcart/logistics/internal/domain/shared"
	"github.com/vietcart/logistics/internal/domain/tracking"
)

// HandlePaymentSucceeded consumes a payment.succeeded event: payment →
// paid, order → confirmed, every sub-order → pending. Redeliveries of an
// already-applied event are absorbed silently so the consumer can commit.
func (s *Service) HandlePaymentSucceeded(ctx context.Context, orderID string) error {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if o.PaymentStatus == order.PaymentPaid {
		return nil
	}

	now := s.clock.Now()
	if err := o.MarkPaid(now); err != nil {
		// The order moved somewhere payment can no longer apply (e.g.
		// cancelled while the event was in flight). Log and commit; retrying
		// cannot fix it.
		s.logger.Warn("payment success arrived for unpayable order",
			zap.String("order_id", orderID),
			zap.String("status", string(o.Status)),
			zap.Error(err))
		return nil
	}
	if err := s.orders.Save(ctx, o); err != nil {
		return err
	}

	actor := shared.SystemActor()
	for _, so := range o.SubOrders {
		s.appendEvent(ctx, so.ID, "", tracking.EventPaymentConfirmed, "payment confirmed", actor)
	}
	s.publishStatus(ctx, o, "", string(order.StatusPendingPayment), string(o.Status), actor)

	s.logger.Info("payment applied",
		zap.String("order_id", o.ID),
		zap.String("order_number", o.OrderNumber))
	return nil
}

// HandlePaymentFailed consumes a payment.failed event and hands the
// reserved stock back to inventory.
func (s *Service) HandlePaymentFailed(ctx context.Context, orderID, reason string) error {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if o.PaymentStatus == order.PaymentFailed || o.Status == order.StatusPaymentFailed {
		return nil
	}

	now := s.clock.Now()
	if err := o.MarkPaymentFailed(now); err != nil {
		s.logger.Warn("payment failure arrived for settled order",
			zap.String("order_id", orderID),
			zap.String("status", string(o.Status)),
			zap.Error(err))
		return nil
	}
	if err := s.orders.Save(ctx, o); err != nil {
		return err
	}
	s.releaseStock(ctx, o.ID)

	s.publishStatus(ctx, o, "", string(order.StatusPendingPayment), string(o.Status), shared.SystemActor())

	s.logger.Info("payment failed",
		zap.String("order_id", o.ID),
		zap.String("reason", reason))
	return nil
}
