package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/vietcart/logistics/internal/domain/dispatch"
	"github.com/vietcart/logistics/internal/domain/shared"
)

// ShipperRepositoryGORM implements dispatch.ShipperRepository using GORM
type ShipperRepositoryGORM struct {
	db    *gorm.DB
	clock shared.Clock
}

// NewShipperRepository creates a new GORM-based shipper repository
func NewShipperRepository(db *gorm.DB, clock shared.Clock) *ShipperRepositoryGORM {
	return &ShipperRepositoryGORM{db: db, clock: clock}
}

// FindByID retrieves a shipper by id
func (r *ShipperRepositoryGORM) FindByID(ctx context.Context, id string) (*dispatch.Shipper, error) {
	var model ShipperModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound("shipper", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find shipper: %w", err)
	}
	return shipperToDomain(&model), nil
}

// FindByUserID retrieves the shipper profile behind a user account
func (r *ShipperRepositoryGORM) FindByUserID(ctx context.Context, userID string) (*dispatch.Shipper, error) {
	var model ShipperModel
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound("shipper", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find shipper by user: %w", err)
	}
	return shipperToDomain(&model), nil
}

// ListByOffice returns every shipper attached to a post office
func (r *ShipperRepositoryGORM) ListByOffice(ctx context.Context, officeID string) ([]*dispatch.Shipper, error) {
	var models []ShipperModel
	err := r.db.WithContext(ctx).Where("post_office_id = ?", officeID).Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list shippers for office %s: %w", officeID, err)
	}

	shippers := make([]*dispatch.Shipper, 0, len(models))
	for i := range models {
		shippers = append(shippers, shipperToDomain(&models[i]))
	}
	return shippers, nil
}

// TryAcquireLeg increments one of the daily leg counters iff the shipper
// still satisfies the eligibility predicate. The check and the increment
// happen in a single conditional UPDATE so two concurrent dispatchers can
// never over-assign a shipper; RowsAffected == 0 means the candidate was
// lost to a race or went offline and the caller should move on.
func (r *ShipperRepositoryGORM) TryAcquireLeg(ctx context.Context, shipperID string, kind dispatch.LegKind) (bool, error) {
	column := counterColumn(kind)
	res := r.db.WithContext(ctx).
		Model(&ShipperModel{}).
		Where("id = ? AND status = ? AND is_online = ? AND is_available = ?",
			shipperID, string(dispatch.ShipperActive), true, true).
		Where("current_pickup_count + current_delivery_count + 1 <= max_daily_orders").
		Updates(map[string]interface{}{
			column: gorm.Expr(column + " + 1"),
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to acquire %s leg for shipper %s: %w", kind, shipperID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// ReleaseLeg decrements a leg counter after a failed assignment or a
// cancelled leg. Clamped at zero so a double release cannot underflow.
func (r *ShipperRepositoryGORM) ReleaseLeg(ctx context.Context, shipperID string, kind dispatch.LegKind) error {
	column := counterColumn(kind)
	err := r.db.WithContext(ctx).
		Model(&ShipperModel{}).
		Where("id = ?", shipperID).
		Where(column+" > 0").
		Updates(map[string]interface{}{
			column: gorm.Expr(column + " - 1"),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to release %s leg for shipper %s: %w", kind, shipperID, err)
	}
	return nil
}

// SetPresence updates the online/available flags and refreshes last_seen_at
func (r *ShipperRepositoryGORM) SetPresence(ctx context.Context, shipperID string, online, available bool) error {
	res := r.db.WithContext(ctx).
		Model(&ShipperModel{}).
		Where("id = ?", shipperID).
		Updates(map[string]interface{}{
			"is_online":    online,
			"is_available": available,
			"last_seen_at": r.clock.Now(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update presence for shipper %s: %w", shipperID, res.Error)
	}
	if res.RowsAffected == 0 {
		return shared.ErrNotFound("shipper", shipperID)
	}
	return nil
}

// UpdateLocation stores the latest GPS fix and refreshes last_seen_at
func (r *ShipperRepositoryGORM) UpdateLocation(ctx context.Context, shipperID string, lat, lng float64) error {
	res := r.db.WithContext(ctx).
		Model(&ShipperModel{}).
		Where("id = ?", shipperID).
		Updates(map[string]interface{}{
			"lat":          lat,
			"lng":          lng,
			"last_seen_at": r.clock.Now(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update location for shipper %s: %w", shipperID, res.Error)
	}
	if res.RowsAffected == 0 {
		return shared.ErrNotFound("shipper", shipperID)
	}
	return nil
}

// ResetDailyCounters zeroes both leg counters for every shipper whose post
// office sits in the given region. The reset is journaled per (region, day)
// so re-running the job after a crash is a no-op.
func (r *ShipperRepositoryGORM) ResetDailyCounters(ctx context.Context, region, day string) (int64, error) {
	var reset int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing CounterResetJournalModel
		err := tx.Where("region = ? AND day = ?", region, day).First(&existing).Error
		if err == nil {
			// Already reset today; leave the counters alone.
			reset = 0
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to read reset journal: %w", err)
		}

		res := tx.Model(&ShipperModel{}).
			Where("post_office_id IN (?)",
				tx.Model(&PostOfficeModel{}).Select("id").Where("region = ?", region)).
			Updates(map[string]interface{}{
				"current_pickup_count":   0,
				"current_delivery_count": 0,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to reset counters for region %s: %w", region, res.Error)
		}
		reset = res.RowsAffected

		journal := CounterResetJournalModel{
			Region:    region,
			Day:       day,
			ResetRows: reset,
			CreatedAt: r.clock.Now(),
		}
		if err := tx.Create(&journal).Error; err != nil {
			return fmt.Errorf("failed to journal counter reset: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return reset, nil
}

func counterColumn(kind dispatch.LegKind) string {
	if kind == dispatch.LegPickup {
		return "current_pickup_count"
	}
	return "current_delivery_count"
}

func shipperToDomain(m *ShipperModel) *dispatch.Shipper {
	return &dispatch.Shipper{
		ID:                   m.ID,
		UserID:               m.UserID,
		PostOfficeID:         m.PostOfficeID,
		Vehicle:              m.Vehicle,
		Status:               dispatch.ShipperStatus(m.Status),
		IsOnline:             m.IsOnline,
		IsAvailable:          m.IsAvailable,
		Lat:                  m.Lat,
		Lng:                  m.Lng,
		CurrentPickupCount:   m.CurrentPickupCount,
		CurrentDeliveryCount: m.CurrentDeliveryCount,
		MaxDailyOrders:       m.MaxDailyOrders,
		AvgRating:            m.AvgRating,
		CompletedCount:       m.CompletedCount,
		FailedCount:          m.FailedCount,
		LastSeenAt:           m.LastSeenAt,
	}
}
