package tracking

import "context"

// EventRepository is the append-only persistence port for tracking events.
type EventRepository interface {
	Append(ctx context.Context, e *Event) error
	ListBySubOrder(ctx context.Context, subOrderID string) ([]*Event, error)
	ListByShipment(ctx context.Context, shipmentID string) ([]*Event, error)
}
