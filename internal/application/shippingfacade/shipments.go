package shippingfacade

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vietcart/logistics/internal/adapters/eventbus"
	"github.com/vietcart/logistics/internal/adapters/provider"
	"github.com/vietcart/logistics/internal/domain/shared"
	"github.com/vietcart/logistics/internal/domain/shipping"
)

// CreateShipment registers a shipment with the chosen provider and
// persists it in created state. An empty providerCode picks the shop's
// default (the in-house fleet when nothing external is configured). A
// provider acknowledging without a tracking number is rejected outright;
// no shipment row is written for it.
func (f *Facade) CreateShipment(ctx context.Context, shopID, providerCode string, req shipping.CreateRequest) (*shipping.Shipment, error) {
	if providerCode == "" {
		var err error
		providerCode, err = f.defaultProvider(ctx, shopID)
		if err != nil {
			return nil, err
		}
	}
	if !f.registry.Known(providerCode) {
		return nil, shared.NewError(shared.KindInvalidProvider, "unknown provider code %q", providerCode)
	}

	if existing, err := f.shipments.FindBySubOrderID(ctx, req.SubOrderID); err == nil {
		return nil, shared.NewError(shared.KindConflict,
			"sub-order %s already has shipment %s", req.SubOrderID, existing.ID)
	} else if !shared.IsKind(err, shared.KindNotFound) {
		return nil, err
	}

	p, err := f.buildProvider(ctx, shopID, providerCode)
	if err != nil {
		return nil, err
	}

	start := f.clock.Now()
	result, err := p.CreateOrder(ctx, req)
	f.observe(providerCode, "create_order", start, err)
	if err != nil {
		return nil, err
	}
	if result.TrackingNumber == "" {
		return nil, shared.NewError(shared.KindMissingTracking,
			"provider %s returned no tracking number for sub-order %s", providerCode, req.SubOrderID)
	}

	now := f.clock.Now()
	s := &shipping.Shipment{
		ID:              uuid.New().String(),
		SubOrderID:      req.SubOrderID,
		TrackingNumber:  result.TrackingNumber,
		ProviderCode:    providerCode,
		ProviderOrderID: result.ProviderOrderID,
		Status:          shipping.StatusCreated,
		PickupAddr:      req.PickupAddr,
		PickupContact:   req.PickupContact,
		DeliveryAddr:    req.DeliveryAddr,
		DeliveryContact: req.DeliveryContact,
		Package:         req.Package,
		CODAmount:       req.CODAmount,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.AppendHistory(shipping.HistoryEntry{
		Status:  shipping.StatusCreated,
		At:      now,
		Message: "shipment registered with " + providerCode,
	})

	if err := f.shipments.Create(ctx, s); err != nil {
		return nil, err
	}

	f.logger.Info("shipment created",
		zap.String("shipment_id", s.ID),
		zap.String("sub_order_id", s.SubOrderID),
		zap.String("provider", providerCode),
		zap.String("tracking_number", s.TrackingNumber))
	return s, nil
}

// CancelShipment cancels a not-yet-delivered shipment at the provider and
// locally.
func (f *Facade) CancelShipment(ctx context.Context, shipmentID, reason string) error {
	s, err := f.shipments.FindByID(ctx, shipmentID)
	if err != nil {
		return err
	}
	if s.Status.IsTerminal() {
		return shared.NewError(shared.KindInvalidStatusTransition,
			"shipment %s is already %s", s.ID, s.Status)
	}

	shopID, err := f.shopFor(ctx, s.SubOrderID)
	if err != nil {
		return err
	}
	p, err := f.buildProvider(ctx, shopID, s.ProviderCode)
	if err != nil {
		return err
	}

	start := f.clock.Now()
	err = p.CancelOrder(ctx, s.ProviderOrderID)
	f.observe(s.ProviderCode, "cancel_order", start, err)
	if err != nil {
		return err
	}

	now := f.clock.Now()
	if _, err := s.ApplyStatus(shipping.StatusCancelled, "", reason, now, nil); err != nil {
		return err
	}
	if err := f.shipments.Save(ctx, s); err != nil {
		return err
	}
	if err := f.cache.InvalidateTracking(ctx, s.TrackingNumber); err != nil {
		f.logger.Warn("tracking cache invalidation failed",
			zap.String("tracking_number", s.TrackingNumber), zap.Error(err))
	}

	f.publishStatus(ctx, s, reason)
	return nil
}

// defaultProvider picks the shop's default enabled provider, falling back
// to the in-house fleet when the shop configured nothing.
func (f *Facade) defaultProvider(ctx context.Context, shopID string) (string, error) {
	configs, err := f.configs.ListEnabled(ctx, shopID)
	if err != nil {
		return "", err
	}
	// ListEnabled orders default-first.
	if len(configs) > 0 {
		return configs[0].ProviderCode, nil
	}
	return provider.CodeInHouse, nil
}

func (f *Facade) publishStatus(ctx context.Context, s *shipping.Shipment, message string) {
	payload := eventbus.ShipmentPayload{
		ShipmentID:     s.ID,
		SubOrderID:     s.SubOrderID,
		TrackingNumber: s.TrackingNumber,
		ProviderCode:   s.ProviderCode,
		Status:         string(s.Status),
		Message:        message,
	}
	if err := f.publisher.Publish(ctx, eventbus.QueueShipments, eventbus.EventShipmentStatusChanged, s.ID, payload); err != nil {
		f.logger.Warn("failed to publish shipment status change",
			zap.String("shipment_id", s.ID), zap.Error(err))
	}
}
