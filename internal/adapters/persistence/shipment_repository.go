package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/vietcart/logistics/internal/domain/shared"
	"github.com/vietcart/logistics/internal/domain/shipping"
)

// ShipmentRepositoryGORM implements shipping.ShipmentRepository using GORM
type ShipmentRepositoryGORM struct {
	db *gorm.DB
}

// NewShipmentRepository creates a new GORM-based shipment repository
func NewShipmentRepository(db *gorm.DB) *ShipmentRepositoryGORM {
	return &ShipmentRepositoryGORM{db: db}
}

// Create persists a new shipment
func (r *ShipmentRepositoryGORM) Create(ctx context.Context, s *shipping.Shipment) error {
	model, err := shipmentToModel(s)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create shipment: %w", err)
	}
	return nil
}

// Save persists the current state of a shipment, history included
func (r *ShipmentRepositoryGORM) Save(ctx context.Context, s *shipping.Shipment) error {
	model, err := shipmentToModel(s)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return fmt.Errorf("failed to save shipment: %w", err)
	}
	return nil
}

// FindByID retrieves a shipment by id
func (r *ShipmentRepositoryGORM) FindByID(ctx context.Context, id string) (*shipping.Shipment, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByTrackingNumber retrieves a shipment by its unique tracking number
func (r *ShipmentRepositoryGORM) FindByTrackingNumber(ctx context.Context, trackingNumber string) (*shipping.Shipment, error) {
	return r.findOne(ctx, "tracking_number = ?", trackingNumber)
}

// FindBySubOrderID retrieves the shipment of a sub-order
func (r *ShipmentRepositoryGORM) FindBySubOrderID(ctx context.Context, subOrderID string) (*shipping.Shipment, error) {
	return r.findOne(ctx, "sub_order_id = ?", subOrderID)
}

// FindByProviderOrderID retrieves a shipment by the external carrier's id
func (r *ShipmentRepositoryGORM) FindByProviderOrderID(ctx context.Context, providerCode, providerOrderID string) (*shipping.Shipment, error) {
	return r.findOne(ctx, "provider_code = ? AND provider_order_id = ?", providerCode, providerOrderID)
}

// ListUncollectedCOD returns delivered shipments whose COD is still due,
// scoped to the sub-orders a shipper handled.
func (r *ShipmentRepositoryGORM) ListUncollectedCOD(ctx context.Context, shipperID string) ([]*shipping.Shipment, error) {
	var models []ShipmentModel
	err := r.db.WithContext(ctx).
		Where("status = ? AND cod_amount > 0 AND cod_collected = ?", string(shipping.StatusDelivered), false).
		Where("sub_order_id IN (?)", r.db.Model(&SubOrderModel{}).Select("id").Where("shipper_id = ?", shipperID)).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list uncollected COD shipments: %w", err)
	}

	shipments := make([]*shipping.Shipment, 0, len(models))
	for i := range models {
		s, err := shipmentToDomain(&models[i])
		if err != nil {
			return nil, err
		}
		shipments = append(shipments, s)
	}
	return shipments, nil
}

// ListUpdatedSince returns shipments touched after a point in time, used
// by the event reconciliation job to re-emit from DB truth.
func (r *ShipmentRepositoryGORM) ListUpdatedSince(ctx context.Context, since time.Time) ([]*shipping.Shipment, error) {
	var models []ShipmentModel
	err := r.db.WithContext(ctx).
		Where("updated_at > ?", since).
		Order("updated_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recently updated shipments: %w", err)
	}

	shipments := make([]*shipping.Shipment, 0, len(models))
	for i := range models {
		s, err := shipmentToDomain(&models[i])
		if err != nil {
			return nil, err
		}
		shipments = append(shipments, s)
	}
	return shipments, nil
}

func (r *ShipmentRepositoryGORM) findOne(ctx context.Context, query string, args ...interface{}) (*shipping.Shipment, error) {
	var model ShipmentModel
	err := r.db.WithContext(ctx).Where(query, args...).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		key := ""
		if len(args) > 0 {
			key = fmt.Sprint(args[0])
		}
		return nil, shared.ErrNotFound("shipment", key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find shipment: %w", err)
	}
	return shipmentToDomain(&model)
}

// Model conversion

func shipmentToModel(s *shipping.Shipment) (*ShipmentModel, error) {
	pickupAddr, err := json.Marshal(s.PickupAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal pickup address: %w", err)
	}
	deliveryAddr, err := json.Marshal(s.DeliveryAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal delivery address: %w", err)
	}
	pickupContact, _ := json.Marshal(s.PickupContact)
	deliveryContact, _ := json.Marshal(s.DeliveryContact)
	history, err := json.Marshal(s.History)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal status history: %w", err)
	}

	return &ShipmentModel{
		ID:              s.ID,
		SubOrderID:      s.SubOrderID,
		TrackingNumber:  s.TrackingNumber,
		ProviderCode:    s.ProviderCode,
		ProviderOrderID: s.ProviderOrderID,
		Status:          string(s.Status),
		PickupAddr:      string(pickupAddr),
		PickupContact:   string(pickupContact),
		DeliveryAddr:    string(deliveryAddr),
		DeliveryContact: string(deliveryContact),
		WeightGrams:     s.Package.WeightGrams,
		ItemsValue:      s.Package.Value,
		CODAmount:       s.CODAmount,
		CODCollected:    s.CODCollected,
		RetryCount:      s.RetryCount,
		History:         string(history),
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
		PickedUpAt:      s.PickedUpAt,
		DeliveredAt:     s.DeliveredAt,
		CancelledAt:     s.CancelledAt,
		LastWebhookAt:   s.LastWebhookAt,
	}, nil
}

func shipmentToDomain(m *ShipmentModel) (*shipping.Shipment, error) {
	s := &shipping.Shipment{
		ID:              m.ID,
		SubOrderID:      m.SubOrderID,
		TrackingNumber:  m.TrackingNumber,
		ProviderCode:    m.ProviderCode,
		ProviderOrderID: m.ProviderOrderID,
		Status:          shipping.UnifiedStatus(m.Status),
		Package: shipping.Package{
			WeightGrams: m.WeightGrams,
			Value:       m.ItemsValue,
		},
		CODAmount:     m.CODAmount,
		CODCollected:  m.CODCollected,
		RetryCount:    m.RetryCount,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
		PickedUpAt:    m.PickedUpAt,
		DeliveredAt:   m.DeliveredAt,
		CancelledAt:   m.CancelledAt,
		LastWebhookAt: m.LastWebhookAt,
	}

	unmarshal := func(raw string, dst interface{}) error {
		if raw == "" {
			return nil
		}
		if err := json.Unmarshal([]byte(raw), dst); err != nil {
			return fmt.Errorf("failed to unmarshal shipment address data: %w", err)
		}
		return nil
	}
	if err := unmarshal(m.PickupAddr, &s.PickupAddr); err != nil {
		return nil, err
	}
	if err := unmarshal(m.DeliveryAddr, &s.DeliveryAddr); err != nil {
		return nil, err
	}
	if err := unmarshal(m.PickupContact, &s.PickupContact); err != nil {
		return nil, err
	}
	if err := unmarshal(m.DeliveryContact, &s.DeliveryContact); err != nil {
		return nil, err
	}

	if m.History != "" {
		if err := json.Unmarshal([]byte(m.History), &s.History); err != nil {
			return nil, fmt.Errorf("failed to unmarshal status history: %w", err)
		}
	}
	return s, nil
}
