package dispatch

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vietcart/logistics/internal/adapters/eventbus"
	"github.com/vietcart/logistics/internal/adapters/metrics"
	"github.com/vietcart/logistics/internal/domain/dispatch"
	"github.com/vietcart/logistics/internal/domain/order"
	"github.com/vietcart/logistics/internal/domain/shared"
	"github.com/vietcart/logistics/internal/domain/shipping"
	"github.com/vietcart/logistics/internal/domain/tracking"
	"github.com/vietcart/logistics/internal/infrastructure/config"
	"github.com/vietcart/logistics/pkg/utils"
)

// Assignment is the outcome of dispatching one shipment: the shipper
// chosen per courier leg.
type Assignment struct {
	ShipmentID string
	Legs       []LegAssignment
}

// LegAssignment binds one courier leg to a shipper.
type LegAssignment struct {
	Kind      dispatch.LegKind
	OfficeID  string
	ShipperID string
}

// DeliveryShipper returns the courier on the final delivery leg, falling
// back to the first assigned leg for single-leg edge cases.
func (a *Assignment) DeliveryShipper() string {
	for _, la := range a.Legs {
		if la.Kind == dispatch.LegDelivery {
			return la.ShipperID
		}
	}
	if len(a.Legs) > 0 {
		return a.Legs[0].ShipperID
	}
	return ""
}

// Dispatcher assigns in-house shippers to shipment legs. Dispatch is
// serialized per shipment by an in-process lock; the conditional counter
// increment in the shipper repository is the actual correctness boundary,
// so a second process racing this one still cannot over-assign.
type Dispatcher struct {
	shippers  dispatch.ShipperRepository
	offices   dispatch.PostOfficeRepository
	shipments shipping.ShipmentRepository
	orders    order.Repository
	events    tracking.EventRepository
	publisher eventbus.Publisher
	collector *metrics.DispatchMetricsCollector
	clock     shared.Clock
	depth     int
	logger    *zap.Logger

	locks utils.KeyedMutex
}

// NewDispatcher wires the dispatch usecase
func NewDispatcher(
	shippers dispatch.ShipperRepository,
	offices dispatch.PostOfficeRepository,
	shipments shipping.ShipmentRepository,
	orders order.Repository,
	events tracking.EventRepository,
	publisher eventbus.Publisher,
	collector *metrics.DispatchMetricsCollector,
	cfg *config.DispatchConfig,
	clock shared.Clock,
	logger *zap.Logger,
) *Dispatcher {
	depth := cfg.CandidateDepth
	if depth <= 0 {
		depth = 3
	}
	return &Dispatcher{
		shippers:  shippers,
		offices:   offices,
		shipments: shipments,
		orders:    orders,
		events:    events,
		publisher: publisher,
		collector: collector,
		clock:     clock,
		depth:     depth,
		logger:    logger,
	}
}

// AssignShipment plans the leg chain for a shipment and acquires a shipper
// for every leg that needs one. On any leg failing, already-acquired legs
// are released, the failure is journaled on the shipment, and
// ShipmentUnassigned is published.
func (d *Dispatcher) AssignShipment(ctx context.Context, shipmentID string) (*Assignment, error) {
	unlock := d.lock(shipmentID)
	defer unlock()

	s, err := d.shipments.FindByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	if s.Status != shipping.StatusCreated {
		return nil, shared.NewError(shared.KindAlreadyAssigned, "shipment %s is already %s", s.ID, s.Status)
	}

	pickup, delivery, err := d.resolveOffices(ctx, s)
	if err != nil {
		return nil, err
	}

	legs := dispatch.PlanLegs(pickup, delivery)
	assignment := &Assignment{ShipmentID: s.ID}
	acquired := make([]LegAssignment, 0, 2)

	for _, leg := range legs {
		if !leg.NeedsShipper {
			continue
		}
		la, tried, err := d.acquireLeg(ctx, leg)
		if err != nil {
			d.releaseAll(ctx, acquired)
			d.markUnassigned(ctx, s, err)
			d.collector.RecordDispatch(string(leg.Kind), "unassigned", tried)
			return nil, err
		}
		d.collector.RecordDispatch(string(leg.Kind), "assigned", tried)
		acquired = append(acquired, *la)
		assignment.Legs = append(assignment.Legs, *la)
	}

	now := d.clock.Now()
	if _, err := s.ApplyStatus(shipping.StatusAssigned, "", "shipper assigned", now, nil); err != nil {
		d.releaseAll(ctx, acquired)
		return nil, err
	}
	if err := d.shipments.Save(ctx, s); err != nil {
		d.releaseAll(ctx, acquired)
		return nil, err
	}

	d.bindSubOrder(ctx, s, assignment)
	d.appendEvent(ctx, s, assignment)
	d.publish(ctx, eventbus.EventShipmentAssigned, s, assignment)
	return assignment, nil
}

// bindSubOrder records the delivery courier on the sub-order so shipper
// surfaces can authorize against it. Failure is logged only; the shipment
// row already carries the assignment.
func (d *Dispatcher) bindSubOrder(ctx context.Context, s *shipping.Shipment, a *Assignment) {
	shipperID := a.DeliveryShipper()
	if shipperID == "" {
		return
	}
	o, err := d.orders.FindBySubOrderID(ctx, s.SubOrderID)
	if err != nil {
		d.logger.Error("failed to load order for shipper binding",
			zap.String("sub_order_id", s.SubOrderID), zap.Error(err))
		return
	}
	so := o.SubOrder(s.SubOrderID)
	if so == nil {
		return
	}
	so.ShipperID = shipperID
	so.UpdatedAt = d.clock.Now()
	if err := d.orders.Save(ctx, o); err != nil {
		d.logger.Error("failed to bind shipper to sub-order",
			zap.String("sub_order_id", so.ID), zap.Error(err))
	}
}

// acquireLeg walks the ranked roster, trying the conditional increment on
// up to depth candidates. A failed increment means the candidate was raced
// away or went offline between ranking and acquisition.
func (d *Dispatcher) acquireLeg(ctx context.Context, leg dispatch.Leg) (*LegAssignment, int, error) {
	roster, err := d.shippers.ListByOffice(ctx, leg.OfficeID)
	if err != nil {
		return nil, 0, err
	}

	ranked := dispatch.RankCandidates(roster, leg.Kind)
	if len(ranked) > d.depth {
		ranked = ranked[:d.depth]
	}

	for i, candidate := range ranked {
		ok, err := d.shippers.TryAcquireLeg(ctx, candidate.ID, leg.Kind)
		if err != nil {
			return nil, i + 1, err
		}
		if ok {
			return &LegAssignment{
				Kind:      leg.Kind,
				OfficeID:  leg.OfficeID,
				ShipperID: candidate.ID,
			}, i + 1, nil
		}
	}

	return nil, len(ranked), shared.NewError(shared.KindNoShipperAvailable,
		"no eligible shipper at office %s for %s leg", leg.OfficeID, leg.Kind)
}

// ReleaseAssignment returns the counters of a failed or cancelled
// assignment.
func (d *Dispatcher) ReleaseAssignment(ctx context.Context, a *Assignment) {
	d.releaseAll(ctx, a.Legs)
}

func (d *Dispatcher) resolveOffices(ctx context.Context, s *shipping.Shipment) (*dispatch.PostOffice, *dispatch.PostOffice, error) {
	locals, err := d.offices.ListLocal(ctx)
	if err != nil {
		return nil, nil, err
	}

	pickup := dispatch.NearestLocal(locals, s.PickupAddr.Region, s.PickupAddr.Lat, s.PickupAddr.Lng)
	if pickup == nil {
		return nil, nil, shared.NewError(shared.KindNoShipperAvailable, "no post office covers pickup region %s", s.PickupAddr.Region)
	}
	delivery := dispatch.NearestLocal(locals, s.DeliveryAddr.Region, s.DeliveryAddr.Lat, s.DeliveryAddr.Lng)
	if delivery == nil {
		return nil, nil, shared.NewError(shared.KindNoShipperAvailable, "no post office covers delivery region %s", s.DeliveryAddr.Region)
	}

	if dispatch.CrossRegion(pickup.Region, delivery.Region) {
		if err := d.fillHub(ctx, pickup); err != nil {
			return nil, nil, err
		}
		if err := d.fillHub(ctx, delivery); err != nil {
			return nil, nil, err
		}
	}
	return pickup, delivery, nil
}

// fillHub resolves a local office's regional hub when its parent link is
// not populated.
func (d *Dispatcher) fillHub(ctx context.Context, office *dispatch.PostOffice) error {
	if office.ParentID != "" {
		return nil
	}
	hub, err := d.offices.FindRegionalHub(ctx, string(office.Region))
	if err != nil {
		return err
	}
	office.ParentID = hub.ID
	return nil
}

func (d *Dispatcher) releaseAll(ctx context.Context, acquired []LegAssignment) {
	for _, la := range acquired {
		if err := d.shippers.ReleaseLeg(ctx, la.ShipperID, la.Kind); err != nil {
			d.logger.Error("failed to release acquired leg",
				zap.String("shipper_id", la.ShipperID),
				zap.String("kind", string(la.Kind)),
				zap.Error(err))
		}
	}
}

// markUnassigned journals the failure on the shipment and publishes
// ShipmentUnassigned so an admin retry can pick it up.
func (d *Dispatcher) markUnassigned(ctx context.Context, s *shipping.Shipment, cause error) {
	s.AppendHistory(shipping.HistoryEntry{
		Status:         s.Status,
		ProviderStatus: "no_shipper_available",
		At:             d.clock.Now(),
		Message:        cause.Error(),
	})
	if err := d.shipments.Save(ctx, s); err != nil {
		d.logger.Error("failed to journal unassigned shipment",
			zap.String("shipment_id", s.ID),
			zap.Error(err))
	}

	payload := eventbus.ShipmentPayload{
		ShipmentID:     s.ID,
		SubOrderID:     s.SubOrderID,
		TrackingNumber: s.TrackingNumber,
		Status:         string(s.Status),
		Message:        "no_shipper_available",
	}
	if err := d.publisher.Publish(ctx, eventbus.QueueShipments, eventbus.EventShipmentUnassigned, s.ID, payload); err != nil {
		d.logger.Warn("failed to publish shipment unassigned",
			zap.String("shipment_id", s.ID),
			zap.Error(err))
	}
}

func (d *Dispatcher) appendEvent(ctx context.Context, s *shipping.Shipment, a *Assignment) {
	shipperID := ""
	if len(a.Legs) > 0 {
		shipperID = a.Legs[0].ShipperID
	}
	e := &tracking.Event{
		ID:          uuid.New().String(),
		SubOrderID:  s.SubOrderID,
		ShipmentID:  s.ID,
		Kind:        tracking.EventShipperAssigned,
		Description: "shipper " + shipperID + " assigned to shipment",
		Actor:       "system",
		CreatedAt:   d.clock.Now(),
	}
	if err := d.events.Append(ctx, e); err != nil {
		d.logger.Warn("failed to append dispatch tracking event",
			zap.String("shipment_id", s.ID),
			zap.Error(err))
	}
}

func (d *Dispatcher) publish(ctx context.Context, eventType string, s *shipping.Shipment, a *Assignment) {
	shipperID := ""
	if len(a.Legs) > 0 {
		shipperID = a.Legs[0].ShipperID
	}
	payload := eventbus.ShipmentPayload{
		ShipmentID:     s.ID,
		SubOrderID:     s.SubOrderID,
		TrackingNumber: s.TrackingNumber,
		ProviderCode:   s.ProviderCode,
		ShipperID:      shipperID,
		Status:         string(s.Status),
	}
	if err := d.publisher.Publish(ctx, eventbus.QueueShipments, eventType, s.ID, payload); err != nil {
		d.logger.Warn("failed to publish shipment event",
			zap.String("type", eventType),
			zap.String("shipment_id", s.ID),
			zap.Error(err))
	}
}

func (d *Dispatcher) lock(shipmentID string) func() {
	return d.locks.Lock(shipmentID)
}
