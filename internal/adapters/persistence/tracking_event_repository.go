package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/vietcart/logistics/internal/domain/tracking"
)

// TrackingEventRepositoryGORM implements tracking.EventRepository using GORM
type TrackingEventRepositoryGORM struct {
	db *gorm.DB
}

// NewTrackingEventRepository creates a new GORM-based tracking event repository
func NewTrackingEventRepository(db *gorm.DB) *TrackingEventRepositoryGORM {
	return &TrackingEventRepositoryGORM{db: db}
}

// Append stores one tracking event. Rows are never updated or deleted.
func (r *TrackingEventRepositoryGORM) Append(ctx context.Context, e *tracking.Event) error {
	model := TrackingEventModel{
		ID:          e.ID,
		SubOrderID:  e.SubOrderID,
		ShipmentID:  e.ShipmentID,
		Kind:        string(e.Kind),
		Description: e.Description,
		Actor:       e.Actor,
		CreatedAt:   e.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to append tracking event: %w", err)
	}
	return nil
}

// ListBySubOrder returns a sub-order's events oldest first
func (r *TrackingEventRepositoryGORM) ListBySubOrder(ctx context.Context, subOrderID string) ([]*tracking.Event, error) {
	return r.list(ctx, "sub_order_id = ?", subOrderID)
}

// ListByShipment returns a shipment's events oldest first
func (r *TrackingEventRepositoryGORM) ListByShipment(ctx context.Context, shipmentID string) ([]*tracking.Event, error) {
	return r.list(ctx, "shipment_id = ?", shipmentID)
}

func (r *TrackingEventRepositoryGORM) list(ctx context.Context, query string, arg interface{}) ([]*tracking.Event, error) {
	var models []TrackingEventModel
	err := r.db.WithContext(ctx).
		Where(query, arg).
		Order("created_at ASC, id ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tracking events: %w", err)
	}

	events := make([]*tracking.Event, 0, len(models))
	for i := range models {
		m := models[i]
		events = append(events, &tracking.Event{
			ID:          m.ID,
			SubOrderID:  m.SubOrderID,
			ShipmentID:  m.ShipmentID,
			Kind:        tracking.EventKind(m.Kind),
			Description: m.Description,
			Actor:       m.Actor,
			CreatedAt:   m.CreatedAt,
		})
	}
	return events, nil
}
