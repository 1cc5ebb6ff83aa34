package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appdispatch "github.com/vietcart/logistics/internal/application/dispatch"
	"github.com/vietcart/logistics/internal/adapters/eventbus"
	"github.com/vietcart/logistics/internal/domain/order"
	"github.com/vietcart/logistics/internal/domain/shared"
	"github.com/vietcart/logistics/internal/domain/shipping"
	"github.com/vietcart/logistics/internal/domain/tracking"
)

// ShipmentGateway is the slice of the shipping facade the order lifecycle
// needs.
type ShipmentGateway interface {
	CreateShipment(ctx context.Context, shopID, providerCode string, req shipping.CreateRequest) (*shipping.Shipment, error)
	CancelShipment(ctx context.Context, shipmentID, reason string) error
}

// Assigner dispatches in-house shipments to couriers.
type Assigner interface {
	AssignShipment(ctx context.Context, shipmentID string) (*appdispatch.Assignment, error)
}

// InventoryGateway releases stock reserved at checkout when an order dies
// before fulfillment.
type InventoryGateway interface {
	ReleaseStock(ctx context.Context, orderID string) error
}

// PaymentGateway starts refunds against the channel that captured the
// payment. Settlement is asynchronous; an error here only means the
// request never left.
type PaymentGateway interface {
	Refund(ctx context.Context, orderID string, amount decimal.Decimal) error
}

// Service owns the order and sub-order lifecycle: checkout fan-out,
// payment outcomes, partner fulfillment, the customer receipt and return
// flows, and aggregate completion with its coin reward.
type Service struct {
	orders     order.Repository
	rewards    order.RewardRepository
	shipments  shipping.ShipmentRepository
	gateway    ShipmentGateway
	dispatcher Assigner
	inventory  InventoryGateway
	payments   PaymentGateway
	events     tracking.EventRepository
	publisher  eventbus.Publisher
	clock      shared.Clock
	logger     *zap.Logger
}

// NewService wires the order usecases
func NewService(
	orders order.Repository,
	rewards order.RewardRepository,
	shipments shipping.ShipmentRepository,
	gateway ShipmentGateway,
	dispatcher Assigner,
	inventory InventoryGateway,
	payments PaymentGateway,
	events tracking.EventRepository,
	publisher eventbus.Publisher,
	clock shared.Clock,
	logger *zap.Logger,
) *Service {
	return &Service{
		orders:     orders,
		rewards:    rewards,
		shipments:  shipments,
		gateway:    gateway,
		dispatcher: dispatcher,
		inventory:  inventory,
		payments:   payments,
		events:     events,
		publisher:  publisher,
		clock:      clock,
		logger:     logger,
	}
}

// loadOwned loads an order and enforces customer ownership.
func (s *Service) loadOwned(ctx context.Context, actor shared.Actor, orderID string) (*order.Order, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.OwnedBy(actor) {
		return nil, shared.ErrForbidden("access order " + orderID)
	}
	return o, nil
}

// loadShopSubOrder loads the order owning a sub-order and enforces partner
// ownership of that sub-order.
func (s *Service) loadShopSubOrder(ctx context.Context, actor shared.Actor, subOrderID string) (*order.Order, *order.SubOrder, error) {
	o, err := s.orders.FindBySubOrderID(ctx, subOrderID)
	if err != nil {
		return nil, nil, err
	}
	so := o.SubOrder(subOrderID)
	if so == nil {
		return nil, nil, shared.ErrNotFound("sub-order", subOrderID)
	}
	if !so.OwnedByShop(actor) {
		return nil, nil, shared.ErrForbidden("operate on sub-order " + subOrderID)
	}
	return o, so, nil
}

// releaseStock hands the order's reserved stock back to inventory.
// Failure is logged only; the release request is replayed out of band.
func (s *Service) releaseStock(ctx context.Context, orderID string) {
	if err := s.inventory.ReleaseStock(ctx, orderID); err != nil {
		s.logger.Error("stock release failed",
			zap.String("order_id", orderID), zap.Error(err))
	}
}

// refundIfPaid starts the refund for a paid online order that was just
// cancelled. On success the aggregate is marked refunded; on failure it
// stays cancelled-but-paid for ops to retry, and the cancellation stands.
func (s *Service) refundIfPaid(ctx context.Context, o *order.Order, now time.Time) {
	if o.PaymentStatus != order.PaymentPaid || o.PaymentMethod == order.PayCOD {
		return
	}
	if err := s.payments.Refund(ctx, o.ID, o.GrandTotal); err != nil {
		s.logger.Error("refund initiation failed",
			zap.String("order_id", o.ID),
			zap.String("amount", o.GrandTotal.String()),
			zap.Error(err))
		return
	}
	o.MarkRefunded(now)
}

func (s *Service) publishStatus(ctx context.Context, o *order.Order, subOrderID, from, to string, actor shared.Actor) {
	payload := eventbus.OrderStatusPayload{
		OrderID:    o.ID,
		SubOrderID: subOrderID,
		From:       from,
		To:         to,
		Actor:      string(actor.Role),
	}
	if err := s.publisher.Publish(ctx, eventbus.QueueOrders, eventbus.EventOrderStatusChanged, o.ID, payload); err != nil {
		s.logger.Warn("failed to publish order status change",
			zap.String("order_id", o.ID), zap.Error(err))
	}
}

func (s *Service) appendEvent(ctx context.Context, subOrderID, shipmentID string, kind tracking.EventKind, description string, actor shared.Actor) {
	e := &tracking.Event{
		ID:          uuid.New().String(),
		SubOrderID:  subOrderID,
		ShipmentID:  shipmentID,
		Kind:        kind,
		Description: description,
		Actor:       string(actor.Role) + ":" + actor.UserID,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.events.Append(ctx, e); err != nil {
		s.logger.Warn("failed to append tracking event",
			zap.String("sub_order_id", subOrderID), zap.Error(err))
	}
}
