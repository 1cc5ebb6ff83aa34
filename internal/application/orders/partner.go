package orders

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vietcart/logistics/internal/adapters/provider"
	"github.com/vietcart/logistics/internal/domain/order"
	"github.com/vietcart/logistics/internal/domain/shared"
	"github.com/vietcart/logistics/internal/domain/shipping"
	"github.com/vietcart/logistics/internal/domain/tracking"
)

// PackRequest is what the partner supplies when handing a packed parcel
// to a carrier. Pickup details come from the shop since the order only
// knows the delivery side.
type PackRequest struct {
	ProviderCode  string
	PickupAddr    shared.Address
	PickupContact shared.Contact
	WeightGrams   int
	Note          string
}

// ConfirmSubOrder moves a paid sub-order from pending to confirmed.
func (s *Service) ConfirmSubOrder(ctx context.Context, actor shared.Actor, subOrderID string) error {
	return s.partnerTransition(ctx, actor, subOrderID, order.SubConfirmed, "sub-order confirmed by shop")
}

// StartProcessing moves a confirmed sub-order into processing.
func (s *Service) StartProcessing(ctx context.Context, actor shared.Actor, subOrderID string) error {
	return s.partnerTransition(ctx, actor, subOrderID, order.SubProcessing, "shop started preparing the parcel")
}

func (s *Service) partnerTransition(ctx context.Context, actor shared.Actor, subOrderID string, to order.SubStatus, description string) error {
	o, so, err := s.loadShopSubOrder(ctx, actor, subOrderID)
	if err != nil {
		return err
	}
	from := so.Status
	now := s.clock.Now()
	if err := so.Transition(to, now); err != nil {
		return err
	}
	if to == order.SubProcessing {
		// The first shop starting work closes the customer cancel window.
		o.StartFulfillment(now)
	}
	if err := s.orders.Save(ctx, o); err != nil {
		return err
	}
	s.appendEvent(ctx, so.ID, "", tracking.EventStatusChanged, description, actor)
	s.publishStatus(ctx, o, so.ID, string(from), string(to), actor)
	return nil
}

// PackSubOrder moves a processing sub-order to ready_to_ship and registers
// the shipment with the chosen carrier. COD orders carry the sub-order
// total as cash to collect. In-house shipments are dispatched immediately;
// a dispatch failure leaves the shipment created and journaled for retry
// rather than failing the pack.
func (s *Service) PackSubOrder(ctx context.Context, actor shared.Actor, subOrderID string, req PackRequest) (*shipping.Shipment, error) {
	o, so, err := s.loadShopSubOrder(ctx, actor, subOrderID)
	if err != nil {
		return nil, err
	}
	from := so.Status
	now := s.clock.Now()
	if err := so.Transition(order.SubReadyToShip, now); err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, o); err != nil {
		return nil, err
	}

	cod := decimal.Zero
	if o.PaymentMethod == order.PayCOD {
		cod = so.Total
	}
	createReq := shipping.CreateRequest{
		ShopID:        so.ShopID,
		SubOrderID:    so.ID,
		PickupAddr:    req.PickupAddr,
		PickupContact: req.PickupContact,
		DeliveryAddr:  o.ShippingAddr,
		DeliveryContact: shared.Contact{
			Name:  o.ShippingName,
			Phone: o.ShippingPhone,
		},
		Package: shipping.Package{
			WeightGrams: req.WeightGrams,
			Value:       so.Subtotal,
		},
		CODAmount: cod,
		Note:      req.Note,
	}

	sh, err := s.gateway.CreateShipment(ctx, so.ShopID, req.ProviderCode, createReq)
	if err != nil {
		return nil, err
	}

	s.appendEvent(ctx, so.ID, sh.ID, tracking.EventStatusChanged, "parcel packed and handed to "+sh.ProviderCode, actor)
	s.publishStatus(ctx, o, so.ID, string(from), string(order.SubReadyToShip), actor)

	if sh.ProviderCode == provider.CodeInHouse {
		if _, err := s.dispatcher.AssignShipment(ctx, sh.ID); err != nil {
			s.logger.Warn("in-house dispatch deferred",
				zap.String("shipment_id", sh.ID),
				zap.String("sub_order_id", so.ID),
				zap.Error(err))
		}
	}
	return sh, nil
}

// CancelSubOrder lets the shop cancel its own slice before it ships.
func (s *Service) CancelSubOrder(ctx context.Context, actor shared.Actor, subOrderID, reason string) error {
	o, so, err := s.loadShopSubOrder(ctx, actor, subOrderID)
	if err != nil {
		return err
	}
	from := so.Status
	now := s.clock.Now()
	if err := so.Transition(order.SubCancelled, now); err != nil {
		return err
	}

	// When every slice is cancelled the aggregate follows, with the same
	// settlement a customer cancellation gets.
	allCancelled := true
	for _, other := range o.SubOrders {
		if other.Status != order.SubCancelled {
			allCancelled = false
			break
		}
	}
	if allCancelled {
		o.Cancel(now)
		s.refundIfPaid(ctx, o, now)
	}
	if err := s.orders.Save(ctx, o); err != nil {
		return err
	}

	s.appendEvent(ctx, so.ID, "", tracking.EventStatusChanged, "cancelled by shop: "+reason, actor)
	s.publishStatus(ctx, o, so.ID, string(from), string(order.SubCancelled), actor)
	if allCancelled {
		s.releaseStock(ctx, o.ID)
		s.publishCancelled(ctx, o)
	}
	return nil
}

// ApproveReturn accepts a customer's return request.
func (s *Service) ApproveReturn(ctx context.Context, actor shared.Actor, subOrderID string) error {
	return s.partnerTransition(ctx, actor, subOrderID, order.SubReturnApproved, "return approved by shop")
}

// RejectReturn closes a return request; the sub-order completes as if the
// customer had confirmed receipt, coin reward included.
func (s *Service) RejectReturn(ctx context.Context, actor shared.Actor, subOrderID, reason string) error {
	o, so, err := s.loadShopSubOrder(ctx, actor, subOrderID)
	if err != nil {
		return err
	}
	from := so.Status
	if err := so.Transition(order.SubCompleted, s.clock.Now()); err != nil {
		return err
	}
	if err := s.orders.Save(ctx, o); err != nil {
		return err
	}
	s.appendEvent(ctx, so.ID, "", tracking.EventStatusChanged, "return rejected: "+reason, actor)
	s.publishStatus(ctx, o, so.ID, string(from), string(order.SubCompleted), actor)
	s.grantReward(ctx, o, so)
	s.completeIfReady(ctx, o)
	return nil
}

// MarkReturned records the parcel arriving back at the shop.
func (s *Service) MarkReturned(ctx context.Context, actor shared.Actor, subOrderID string) error {
	o, so, err := s.loadShopSubOrder(ctx, actor, subOrderID)
	if err != nil {
		return err
	}
	from := so.Status
	if err := so.Transition(order.SubReturned, s.clock.Now()); err != nil {
		return err
	}
	if err := s.orders.Save(ctx, o); err != nil {
		return err
	}
	s.appendEvent(ctx, so.ID, "", tracking.EventStatusChanged, "parcel returned to shop", actor)
	s.publishStatus(ctx, o, so.ID, string(from), string(order.SubReturned), actor)
	return nil
}

// RefundReturned settles a returned sub-order.
func (s *Service) RefundReturned(ctx context.Context, actor shared.Actor, subOrderID string) error {
	o, so, err := s.loadShopSubOrder(ctx, actor, subOrderID)
	if err != nil {
		return err
	}
	from := so.Status
	if err := so.Transition(order.SubRefunded, s.clock.Now()); err != nil {
		return err
	}
	if err := s.orders.Save(ctx, o); err != nil {
		return err
	}
	s.appendEvent(ctx, so.ID, "", tracking.EventRefunded, "return refunded", actor)
	s.publishStatus(ctx, o, so.ID, string(from), string(order.SubRefunded), actor)
	s.completeIfReady(ctx, o)
	return nil
}
