package tracking

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/vietcart/logistics/internal/adapters/push"
	"github.com/vietcart/logistics/internal/domain/dispatch"
	"github.com/vietcart/logistics/internal/domain/order"
	"github.com/vietcart/logistics/internal/domain/shared"
	"github.com/vietcart/logistics/internal/domain/shipping"
	"github.com/vietcart/logistics/internal/domain/tracking"
	"github.com/vietcart/logistics/internal/infrastructure/config"
)

// LocationCache stores TTL'd last-known shipper positions.
type LocationCache interface {
	SetLocation(ctx context.Context, shipperID string, sample *tracking.LocationSample, ttl time.Duration) error
	GetLocation(ctx context.Context, shipperID string) (*tracking.LocationSample, bool, error)
}

// Service owns the live side of tracking: the GPS ingest pipeline, shipper
// presence, and the merged per-sub-order timeline.
type Service struct {
	shippers  dispatch.ShipperRepository
	shipments shipping.ShipmentRepository
	orders    order.Repository
	events    tracking.EventRepository
	cache     LocationCache
	hub       *push.Hub
	ring      *tracking.LocationRing
	locTTL    time.Duration
	clock     shared.Clock
	logger    *zap.Logger
}

// NewService wires the tracking usecases
func NewService(
	shippers dispatch.ShipperRepository,
	shipments shipping.ShipmentRepository,
	orders order.Repository,
	events tracking.EventRepository,
	cache LocationCache,
	hub *push.Hub,
	cfg *config.DispatchConfig,
	clock shared.Clock,
	logger *zap.Logger,
) *Service {
	return &Service{
		shippers:  shippers,
		shipments: shipments,
		orders:    orders,
		events:    events,
		cache:     cache,
		hub:       hub,
		ring:      tracking.NewLocationRing(),
		locTTL:    cfg.LocationTTL,
		clock:     clock,
		logger:    logger,
	}
}

// IngestLocation processes one GPS sample from a shipper client: persist
// the fix on the shipper row, refresh the TTL'd last-known cache, retain
// it in the debug ring, and push it to live watchers. Cache and push
// failures degrade silently; the DB write is the one that matters.
func (s *Service) IngestLocation(ctx context.Context, sample tracking.LocationSample) error {
	if sample.Lat < -90 || sample.Lat > 90 || sample.Lng < -180 || sample.Lng > 180 {
		return shared.ErrValidation("location", "coordinates out of range")
	}
	if sample.At.IsZero() {
		sample.At = s.clock.Now()
	}

	if err := s.shippers.UpdateLocation(ctx, sample.ShipperID, sample.Lat, sample.Lng); err != nil {
		return err
	}
	if err := s.cache.SetLocation(ctx, sample.ShipperID, &sample, s.locTTL); err != nil {
		s.logger.Warn("location cache write failed",
			zap.String("shipper_id", sample.ShipperID), zap.Error(err))
	}
	s.ring.Push(sample)

	msg := push.Message{Event: push.EventShipperLocation, Payload: sample}
	s.hub.Publish(push.ShipperTopic(sample.ShipperID), msg)
	if sample.ShipmentID != "" {
		s.hub.Publish(push.ShipmentTopic(sample.ShipmentID), msg)
	}
	return nil
}

// LastLocation returns the shipper's last-known position. Past the TTL the
// position is gone on purpose: stale courier dots mislead customers.
func (s *Service) LastLocation(ctx context.Context, shipperID string) (*tracking.LocationSample, error) {
	sample, ok, err := s.cache.GetLocation(ctx, shipperID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, shared.ErrNotFound("location of shipper", shipperID)
	}
	return sample, nil
}

// Trace returns the retained in-memory sample trail for a shipper.
func (s *Service) Trace(shipperID string) []tracking.LocationSample {
	return s.ring.Trace(shipperID)
}

// SetPresence flips a shipper's online/available flags.
func (s *Service) SetPresence(ctx context.Context, shipperID string, online, available bool) error {
	return s.shippers.SetPresence(ctx, shipperID, online, available)
}

// TimelineEntry is one row of the merged customer-facing history.
type TimelineEntry struct {
	At          time.Time `json:"at"`
	Source      string    `json:"source"`
	Kind        string    `json:"kind"`
	Status      string    `json:"status,omitempty"`
	Description string    `json:"description"`
	Actor       string    `json:"actor,omitempty"`
}

// Timeline merges a sub-order's durable tracking events with its
// shipment's status history into one chronological view.
func (s *Service) Timeline(ctx context.Context, actor shared.Actor, subOrderID string) ([]TimelineEntry, error) {
	o, err := s.orders.FindBySubOrderID(ctx, subOrderID)
	if err != nil {
		return nil, err
	}
	so := o.SubOrder(subOrderID)
	if so == nil {
		return nil, shared.ErrNotFound("sub-order", subOrderID)
	}
	if !o.OwnedBy(actor) && !so.OwnedByShop(actor) {
		return nil, shared.ErrForbidden("view timeline of sub-order " + subOrderID)
	}

	events, err := s.events.ListBySubOrder(ctx, subOrderID)
	if err != nil {
		return nil, err
	}

	entries := make([]TimelineEntry, 0, len(events)+8)
	for _, e := range events {
		entries = append(entries, TimelineEntry{
			At:          e.CreatedAt,
			Source:      "order",
			Kind:        string(e.Kind),
			Description: e.Description,
			Actor:       e.Actor,
		})
	}

	sh, err := s.shipments.FindBySubOrderID(ctx, subOrderID)
	if err == nil {
		for _, h := range sh.History {
			desc := h.Message
			if desc == "" {
				desc = h.Status.Display()
			}
			entries = append(entries, TimelineEntry{
				At:          h.At,
				Source:      "shipment",
				Kind:        "status",
				Status:      string(h.Status),
				Description: desc,
			})
		}
	} else if !shared.IsKind(err, shared.KindNotFound) {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].At.Before(entries[j].At)
	})
	return entries, nil
}
