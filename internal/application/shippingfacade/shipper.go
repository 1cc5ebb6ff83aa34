package shippingfacade

import (
	"context"

	"go.uber.org/zap"

	"github.com/vietcart/logistics/internal/adapters/provider"
	"github.com/vietcart/logistics/internal/domain/shared"
	"github.com/vietcart/logistics/internal/domain/shipping"
)

// RecordShipperProgress is how in-house couriers report status: the fleet
// has no webhook surface, so the shipper app writes picked_up, delivered,
// and failed directly. The same priority reconciliation as webhooks
// applies, and the sub-order follows the same way.
func (f *Facade) RecordShipperProgress(ctx context.Context, shipperID, shipmentID string, status shipping.UnifiedStatus, message string) error {
	switch status {
	case shipping.StatusPickedUp, shipping.StatusDelivering, shipping.StatusDelivered, shipping.StatusFailed, shipping.StatusReturning, shipping.StatusReturned:
	default:
		return shared.ErrValidation("status", "shippers may not report "+string(status))
	}

	s, err := f.shipments.FindByID(ctx, shipmentID)
	if err != nil {
		return err
	}
	if s.ProviderCode != provider.CodeInHouse {
		return shared.NewError(shared.KindInvalidProvider,
			"shipment %s is carried by %s, not the in-house fleet", s.ID, s.ProviderCode)
	}
	if err := f.verifyAssignedShipper(ctx, s, shipperID); err != nil {
		return err
	}

	unlock := f.lockTracking(s.TrackingNumber)
	defer unlock()

	s, err = f.shipments.FindByID(ctx, shipmentID)
	if err != nil {
		return err
	}

	now := f.clock.Now()
	moved, err := s.ApplyStatus(status, string(status), message, now, nil)
	if err != nil {
		return err
	}
	if err := f.shipments.Save(ctx, s); err != nil {
		return err
	}
	if err := f.cache.InvalidateTracking(ctx, s.TrackingNumber); err != nil {
		f.logger.Warn("tracking cache invalidation failed",
			zap.String("tracking_number", s.TrackingNumber), zap.Error(err))
	}
	if !moved {
		return nil
	}

	f.publishStatus(ctx, s, message)
	f.syncSubOrder(ctx, s, &shipping.WebhookEvent{
		ProviderCode:   s.ProviderCode,
		TrackingNumber: s.TrackingNumber,
		Status:         status,
		Message:        message,
		At:             now,
	})
	return nil
}

// CollectCOD records the cash handed over on a delivered COD shipment.
func (f *Facade) CollectCOD(ctx context.Context, shipperID, shipmentID string) error {
	s, err := f.shipments.FindByID(ctx, shipmentID)
	if err != nil {
		return err
	}
	if !s.HasCOD() {
		return shared.ErrValidation("cod", "shipment carries no cash on delivery")
	}
	if s.CODCollected {
		return nil
	}
	if err := f.verifyAssignedShipper(ctx, s, shipperID); err != nil {
		return err
	}
	if err := s.CollectCOD(); err != nil {
		return err
	}
	if err := f.shipments.Save(ctx, s); err != nil {
		return err
	}

	f.logger.Info("cod collected",
		zap.String("shipment_id", s.ID),
		zap.String("shipper_id", shipperID),
		zap.String("amount", s.CODAmount.String()))
	return nil
}

// ListCODDue lists a shipper's delivered shipments with cash still
// outstanding.
func (f *Facade) ListCODDue(ctx context.Context, shipperID string) ([]*shipping.Shipment, error) {
	return f.shipments.ListUncollectedCOD(ctx, shipperID)
}

// verifyAssignedShipper checks the acting courier is the one bound to the
// shipment's sub-order.
func (f *Facade) verifyAssignedShipper(ctx context.Context, s *shipping.Shipment, shipperID string) error {
	o, err := f.orders.FindBySubOrderID(ctx, s.SubOrderID)
	if err != nil {
		return err
	}
	so := o.SubOrder(s.SubOrderID)
	if so == nil {
		return shared.ErrNotFound("sub-order", s.SubOrderID)
	}
	if so.ShipperID != shipperID {
		return shared.ErrForbidden("operate on shipment " + s.ID)
	}
	return nil
}
