package shippingfacade

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vietcart/logistics/internal/domain/order"
	"github.com/vietcart/logistics/internal/domain/shared"
	"github.com/vietcart/logistics/internal/domain/shipping"
	"github.com/vietcart/logistics/internal/domain/tracking"
)

// HandleWebhook ingests one carrier status callback.
//
// Processing is serialized per tracking number so two webhooks for the
// same shipment can never interleave reads and writes; racing updates for
// the same shipment then resolve through status priority inside
// ApplyStatus. Redeliveries are absorbed by the dedupe key after the
// signature has been verified; an invalid signature never consumes a
// dedupe slot.
func (f *Facade) HandleWebhook(ctx context.Context, providerCode string, payload []byte, signature string) error {
	// Parsing needs no credentials; validation does, and the secret is only
	// known once the shipment identifies the shop.
	bare, err := f.registry.Build(&shipping.ProviderConfig{ProviderCode: providerCode})
	if err != nil {
		return err
	}
	ev, err := bare.ParseWebhookPayload(payload)
	if err != nil {
		return err
	}

	s, err := f.locateShipment(ctx, providerCode, ev)
	if err != nil {
		return err
	}
	shopID, err := f.shopFor(ctx, s.SubOrderID)
	if err != nil {
		return err
	}
	p, err := f.buildProvider(ctx, shopID, providerCode)
	if err != nil {
		return err
	}
	if err := p.ValidateWebhook(payload, signature); err != nil {
		f.logger.Warn("webhook signature rejected",
			zap.String("provider", providerCode),
			zap.String("tracking_number", s.TrackingNumber))
		return err
	}

	unlock := f.lockTracking(s.TrackingNumber)
	defer unlock()

	seen, err := f.cache.SeenWebhook(ctx, ev.Dedupe(), webhookRetention)
	if err != nil {
		return err
	}
	if seen {
		f.logger.Debug("duplicate webhook dropped",
			zap.String("provider", providerCode),
			zap.String("dedupe", ev.Dedupe()))
		return nil
	}

	// Reload under the lock; the pre-lock copy may be behind a webhook that
	// just finished. Any failure before the save commits must hand the
	// dedupe slot back, or the carrier's redelivery would be dropped and
	// the update lost.
	s, err = f.shipments.FindByTrackingNumber(ctx, s.TrackingNumber)
	if err != nil {
		f.forgetWebhook(ctx, ev.Dedupe())
		return err
	}

	moved, err := s.ApplyStatus(ev.Status, ev.ProviderStatus, ev.Message, ev.At, ev.Extra)
	if err != nil {
		f.forgetWebhook(ctx, ev.Dedupe())
		return err
	}
	now := f.clock.Now()
	s.LastWebhookAt = &now
	if err := f.shipments.Save(ctx, s); err != nil {
		f.forgetWebhook(ctx, ev.Dedupe())
		return err
	}
	if err := f.cache.InvalidateTracking(ctx, s.TrackingNumber); err != nil {
		f.logger.Warn("tracking cache invalidation failed",
			zap.String("tracking_number", s.TrackingNumber), zap.Error(err))
	}

	if !moved {
		// Lower-priority or post-terminal update: history recorded, nothing
		// else to propagate.
		return nil
	}

	f.publishStatus(ctx, s, ev.Message)
	f.syncSubOrder(ctx, s, ev)
	return nil
}

// forgetWebhook releases a dedupe slot after a failed apply. Best effort:
// if the release itself fails, the redelivery is lost to the retention
// window and the reconciler restores the row from DB truth.
func (f *Facade) forgetWebhook(ctx context.Context, key string) {
	if err := f.cache.ForgetWebhook(ctx, key); err != nil {
		f.logger.Warn("failed to release webhook dedupe slot",
			zap.String("dedupe", key), zap.Error(err))
	}
}

// locateShipment resolves the callback to a shipment, by tracking number
// first and provider order id second.
func (f *Facade) locateShipment(ctx context.Context, providerCode string, ev *shipping.WebhookEvent) (*shipping.Shipment, error) {
	if ev.TrackingNumber != "" {
		s, err := f.shipments.FindByTrackingNumber(ctx, ev.TrackingNumber)
		if err == nil {
			return s, nil
		}
		if !shared.IsKind(err, shared.KindNotFound) {
			return nil, err
		}
	}
	if ev.ProviderOrderID != "" {
		return f.shipments.FindByProviderOrderID(ctx, providerCode, ev.ProviderOrderID)
	}
	return nil, shared.NewError(shared.KindValidation, "webhook carries neither tracking number nor provider order id")
}

// syncSubOrder mirrors shipment progress onto the sub-order FSM: pickup
// opens the shipping state, delivery opens the return window. Failures
// here are logged, not returned; the shipment row already holds the truth
// and the reconciler replays it.
func (f *Facade) syncSubOrder(ctx context.Context, s *shipping.Shipment, ev *shipping.WebhookEvent) {
	var target order.SubStatus
	switch s.Status {
	case shipping.StatusPickedUp:
		target = order.SubShipping
	case shipping.StatusDelivered:
		target = order.SubDelivered
	case shipping.StatusFailed:
		// A failed attempt does not move the sub-order; the carrier retries
		// or starts a return. Journal it for the customer timeline only.
		f.appendEvent(ctx, s.SubOrderID, s.ID, tracking.EventDeliveryFailed,
			"delivery attempt failed: "+ev.Message, "carrier:"+s.ProviderCode)
		return
	default:
		return
	}

	o, err := f.orders.FindBySubOrderID(ctx, s.SubOrderID)
	if err != nil {
		f.logger.Error("failed to load order for shipment sync",
			zap.String("sub_order_id", s.SubOrderID), zap.Error(err))
		return
	}
	so := o.SubOrder(s.SubOrderID)
	if so == nil || so.Status == target {
		return
	}

	now := f.clock.Now()
	if target == order.SubDelivered {
		err = so.MarkDelivered(now)
	} else {
		err = so.Transition(target, now)
	}
	if err != nil {
		f.logger.Warn("sub-order did not follow shipment status",
			zap.String("sub_order_id", so.ID),
			zap.String("from", string(so.Status)),
			zap.String("to", string(target)),
			zap.Error(err))
		return
	}
	if err := f.orders.Save(ctx, o); err != nil {
		f.logger.Error("failed to save synced sub-order",
			zap.String("sub_order_id", so.ID), zap.Error(err))
		return
	}

	kind := tracking.EventStatusChanged
	desc := "shipment " + string(s.Status)
	switch s.Status {
	case shipping.StatusPickedUp:
		kind = tracking.EventPickedUp
		desc = "parcel picked up by carrier"
	case shipping.StatusDelivered:
		kind = tracking.EventDelivered
		desc = "parcel delivered"
	}
	f.appendEvent(ctx, so.ID, s.ID, kind, desc, "carrier:"+s.ProviderCode)
}

func (f *Facade) appendEvent(ctx context.Context, subOrderID, shipmentID string, kind tracking.EventKind, description, actor string) {
	e := &tracking.Event{
		ID:          uuid.New().String(),
		SubOrderID:  subOrderID,
		ShipmentID:  shipmentID,
		Kind:        kind,
		Description: description,
		Actor:       actor,
		CreatedAt:   f.clock.Now(),
	}
	if err := f.events.Append(ctx, e); err != nil {
		f.logger.Warn("failed to append tracking event",
			zap.String("sub_order_id", subOrderID), zap.Error(err))
	}
}
