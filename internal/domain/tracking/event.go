package tracking

import "time"

// EventKind classifies a durable tracking event.
type EventKind string

const (
	EventOrderCreated     EventKind = "order_created"
	EventPaymentConfirmed EventKind = "payment_confirmed"
	EventStatusChanged    EventKind = "status_changed"
	EventShipperAssigned  EventKind = "shipper_assigned"
	EventPickedUp         EventKind = "picked_up"
	EventDelivered        EventKind = "delivered"
	EventDeliveryFailed   EventKind = "delivery_failed"
	EventReturnRequested  EventKind = "return_requested"
	EventRefunded         EventKind = "refunded"
)

// Event is one append-only row in a sub-order's (or shipment's) tracking
// history. Within one process events are totally ordered; across processes
// order follows DB commit order.
type Event struct {
	ID          string
	SubOrderID  string
	ShipmentID  string
	Kind        EventKind
	Description string
	Actor       string
	CreatedAt   time.Time
}
