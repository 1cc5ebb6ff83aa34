package orders

import (
	"context"

	"go.uber.org/zap"

	"github.com/vietcart/logistics/internal/adapters/eventbus"
	"github.com/vietcart/logistics/internal/domain/order"
	"github.com/vietcart/logistics/internal/domain/shared"
	"github.com/vietcart/logistics/internal/domain/tracking"
)

// GetOrder returns one order for its owner.
func (s *Service) GetOrder(ctx context.Context, actor shared.Actor, orderID string) (*order.Order, error) {
	return s.loadOwned(ctx, actor, orderID)
}

// ListOrders pages a customer's own orders, newest first.
func (s *Service) ListOrders(ctx context.Context, actor shared.Actor, offset, limit int) ([]*order.Order, int64, error) {
	return s.orders.ListByUser(ctx, actor.UserID, offset, limit)
}

// ListShopOrders pages a shop's orders for the partner surface.
func (s *Service) ListShopOrders(ctx context.Context, actor shared.Actor, shopID string, offset, limit int) ([]*order.Order, int64, error) {
	if !actor.IsAdmin() && (actor.Role != shared.RolePartner || actor.ShopID != shopID) {
		return nil, 0, shared.ErrForbidden("list orders of shop " + shopID)
	}
	return s.orders.ListByShop(ctx, shopID, offset, limit)
}

// CoinBalance returns a user's accumulated reward coins.
func (s *Service) CoinBalance(ctx context.Context, actor shared.Actor) (int64, error) {
	return s.rewards.TotalForUser(ctx, actor.UserID)
}

// CancelOrder runs the customer cancellation: allowed only while the order
// is pending_payment or confirmed and no shop has moved a slice past the
// cancellable states. Any shipments already registered are cancelled at
// their carriers, reserved stock is released, and for paid online orders
// a refund is started.
func (s *Service) CancelOrder(ctx context.Context, actor shared.Actor, orderID, reason string) error {
	o, err := s.loadOwned(ctx, actor, orderID)
	if err != nil {
		return err
	}
	if !o.CanCustomerCancel() {
		return shared.NewError(shared.KindInvalidStatusTransition,
			"order %s can no longer be cancelled", o.ID)
	}

	now := s.clock.Now()
	o.Cancel(now)
	s.refundIfPaid(ctx, o, now)
	if err := s.orders.Save(ctx, o); err != nil {
		return err
	}
	s.releaseStock(ctx, o.ID)

	for _, so := range o.SubOrders {
		s.cancelShipmentFor(ctx, so.ID, reason)
		s.appendEvent(ctx, so.ID, "", tracking.EventStatusChanged, "cancelled by customer: "+reason, actor)
	}
	s.publishCancelled(ctx, o)

	s.logger.Info("order cancelled",
		zap.String("order_id", o.ID),
		zap.String("user_id", actor.UserID),
		zap.Bool("refunded", o.Status == order.StatusRefunded))
	return nil
}

// ConfirmReceipt is the customer acknowledging a delivered sub-order. The
// sub-order completes, coins are granted once per sub-order, and when this
// was the last open slice the aggregate completes and order.completed is
// published.
func (s *Service) ConfirmReceipt(ctx context.Context, actor shared.Actor, subOrderID string) error {
	o, err := s.orders.FindBySubOrderID(ctx, subOrderID)
	if err != nil {
		return err
	}
	if !o.OwnedBy(actor) {
		return shared.ErrForbidden("confirm receipt of sub-order " + subOrderID)
	}
	so := o.SubOrder(subOrderID)
	if so == nil {
		return shared.ErrNotFound("sub-order", subOrderID)
	}

	from := so.Status
	if err := so.Transition(order.SubCompleted, s.clock.Now()); err != nil {
		return err
	}
	if err := s.orders.Save(ctx, o); err != nil {
		return err
	}

	s.appendEvent(ctx, so.ID, "", tracking.EventStatusChanged, "receipt confirmed by customer", actor)
	s.publishStatus(ctx, o, so.ID, string(from), string(order.SubCompleted), actor)
	s.grantReward(ctx, o, so)
	s.completeIfReady(ctx, o)
	return nil
}

// RequestReturn opens a return on a delivered sub-order inside the 7-day
// window.
func (s *Service) RequestReturn(ctx context.Context, actor shared.Actor, subOrderID, reason string) error {
	o, err := s.orders.FindBySubOrderID(ctx, subOrderID)
	if err != nil {
		return err
	}
	if !o.OwnedBy(actor) {
		return shared.ErrForbidden("request a return on sub-order " + subOrderID)
	}
	so := o.SubOrder(subOrderID)
	if so == nil {
		return shared.ErrNotFound("sub-order", subOrderID)
	}

	from := so.Status
	if err := so.RequestReturn(s.clock.Now()); err != nil {
		return err
	}
	if err := s.orders.Save(ctx, o); err != nil {
		return err
	}

	s.appendEvent(ctx, so.ID, "", tracking.EventReturnRequested, "return requested: "+reason, actor)
	s.publishStatus(ctx, o, so.ID, string(from), string(order.SubReturnRequested), actor)
	return nil
}

// grantReward credits the completion coins exactly once per sub-order.
func (s *Service) grantReward(ctx context.Context, o *order.Order, so *order.SubOrder) {
	coins := order.CoinReward(so.Total)
	granted, err := s.rewards.Grant(ctx, o.UserID, so.ID, coins)
	if err != nil {
		s.logger.Error("coin grant failed",
			zap.String("sub_order_id", so.ID),
			zap.String("user_id", o.UserID),
			zap.Error(err))
		return
	}
	if granted {
		s.logger.Info("coins granted",
			zap.String("sub_order_id", so.ID),
			zap.String("user_id", o.UserID),
			zap.Int64("coins", coins))
	}
}

// completeIfReady applies the aggregate completion rule and publishes
// order.completed on the transition that crossed the line.
func (s *Service) completeIfReady(ctx context.Context, o *order.Order) {
	if o.Status == order.StatusCompleted || !o.ReadyToComplete() {
		return
	}
	o.Complete(s.clock.Now())
	if err := s.orders.Save(ctx, o); err != nil {
		s.logger.Error("failed to save completed order",
			zap.String("order_id", o.ID), zap.Error(err))
		return
	}

	payload := eventbus.OrderCompletedPayload{OrderID: o.ID, UserID: o.UserID}
	if err := s.publisher.Publish(ctx, eventbus.QueueOrders, eventbus.EventOrderCompleted, o.ID, payload); err != nil {
		s.logger.Warn("failed to publish order completed",
			zap.String("order_id", o.ID), zap.Error(err))
	}
}

func (s *Service) publishCancelled(ctx context.Context, o *order.Order) {
	payload := eventbus.OrderStatusPayload{
		OrderID: o.ID,
		To:      string(order.StatusCancelled),
	}
	if err := s.publisher.Publish(ctx, eventbus.QueueOrders, eventbus.EventOrderCancelled, o.ID, payload); err != nil {
		s.logger.Warn("failed to publish order cancelled",
			zap.String("order_id", o.ID), zap.Error(err))
	}
}

// cancelShipmentFor cancels a sub-order's shipment if one exists.
func (s *Service) cancelShipmentFor(ctx context.Context, subOrderID, reason string) {
	sh, err := s.shipments.FindBySubOrderID(ctx, subOrderID)
	if err != nil {
		if !shared.IsKind(err, shared.KindNotFound) {
			s.logger.Warn("shipment lookup failed during cancel",
				zap.String("sub_order_id", subOrderID), zap.Error(err))
		}
		return
	}
	if err := s.gateway.CancelShipment(ctx, sh.ID, reason); err != nil {
		s.logger.Warn("carrier cancel failed",
			zap.String("shipment_id", sh.ID), zap.Error(err))
	}
}
