package eventbus

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/vietcart/logistics/internal/domain/shared"
	"github.com/vietcart/logistics/internal/domain/shipping"
)

// Publisher is the event bus port the reconciler (and the usecases) write
// through.
type Publisher interface {
	Publish(ctx context.Context, queue, eventType, key string, payload interface{}) error
}

// Reconciler periodically re-emits shipment status events from DB truth.
// Publishes happen after commit, so a crash between commit and publish can
// lose an event; re-emitting recently updated rows restores the
// at-least-once contract. Consumers dedupe.
type Reconciler struct {
	shipments shipping.ShipmentRepository
	publisher Publisher
	clock     shared.Clock
	interval  time.Duration
	lookback  time.Duration
	logger    *zap.Logger
}

// NewReconciler builds the job; interval is how often it runs, lookback is
// how far back each run scans.
func NewReconciler(shipments shipping.ShipmentRepository, publisher Publisher, clock shared.Clock, interval, lookback time.Duration, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		shipments: shipments,
		publisher: publisher,
		clock:     clock,
		interval:  interval,
		lookback:  lookback,
		logger:    logger,
	}
}

// Run re-emits on a ticker until the context is cancelled
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.ReconcileOnce(ctx); err != nil {
				r.logger.Error("shipment event reconciliation failed", zap.Error(err))
			}
		}
	}
}

// ReconcileOnce re-publishes status events for every shipment updated
// inside the lookback window.
func (r *Reconciler) ReconcileOnce(ctx context.Context) error {
	since := r.clock.Now().Add(-r.lookback)
	shipments, err := r.shipments.ListUpdatedSince(ctx, since)
	if err != nil {
		return err
	}

	for _, s := range shipments {
		payload := ShipmentPayload{
			ShipmentID:     s.ID,
			SubOrderID:     s.SubOrderID,
			TrackingNumber: s.TrackingNumber,
			ProviderCode:   s.ProviderCode,
			Status:         string(s.Status),
		}
		if err := r.publisher.Publish(ctx, QueueShipments, EventShipmentStatusChanged, s.ID, payload); err != nil {
			r.logger.Warn("failed to re-emit shipment status",
				zap.String("shipment_id", s.ID),
				zap.Error(err))
		}
	}

	r.logger.Debug("shipment reconciliation pass complete",
		zap.Int("shipments", len(shipments)))
	return nil
}
