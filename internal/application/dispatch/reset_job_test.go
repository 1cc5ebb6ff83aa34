package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vietcart/logistics/internal/adapters/metrics"
	"github.com/vietcart/logistics/internal/adapters/persistence"
	"github.com/vietcart/logistics/internal/domain/shared"
	"github.com/vietcart/logistics/internal/infrastructure/config"
	"github.com/vietcart/logistics/test/helpers"
)

func TestResetJob(t *testing.T) {
	ctx := context.Background()
	db := helpers.NewTestDB(t)
	// 18:00 UTC is already 01:00 of the next day in Vietnam.
	clock := shared.NewMockClock(time.Date(2026, 8, 12, 18, 0, 0, 0, time.UTC))
	repo := persistence.NewShipperRepository(db, clock)

	require.NoError(t, db.Create(&persistence.PostOfficeModel{
		ID: "po-n", Code: "po-n", Type: "local", City: "x", Region: "north",
	}).Error)
	require.NoError(t, db.Create(&persistence.ShipperModel{
		ID: "sh-1", UserID: "u-1", PostOfficeID: "po-n",
		Status: "active", IsOnline: true, IsAvailable: true,
		MaxDailyOrders: 20, CurrentPickupCount: 4, CurrentDeliveryCount: 2,
		LastSeenAt: clock.Now(),
	}).Error)

	job, err := NewResetJob(repo, metrics.NewDispatchMetricsCollector(),
		&config.DispatchConfig{ResetTimezones: map[string]string{"north": "Asia/Ho_Chi_Minh"}},
		clock, zap.NewNop())
	require.NoError(t, err)

	job.RunOnce(ctx)
	s, err := repo.FindByID(ctx, "sh-1")
	require.NoError(t, err)
	assert.Zero(t, s.CurrentPickupCount)
	assert.Zero(t, s.CurrentDeliveryCount)

	t.Run("a second tick the same day is a no-op", func(t *testing.T) {
		require.NoError(t, db.Model(&persistence.ShipperModel{}).
			Where("id = ?", "sh-1").Update("current_pickup_count", 3).Error)

		job.RunOnce(ctx)
		s, err := repo.FindByID(ctx, "sh-1")
		require.NoError(t, err)
		assert.Equal(t, 3, s.CurrentPickupCount, "journaled day must not reset twice")
	})

	t.Run("the next local day resets again", func(t *testing.T) {
		clock.Advance(24 * time.Hour)
		job.RunOnce(ctx)
		s, err := repo.FindByID(ctx, "sh-1")
		require.NoError(t, err)
		assert.Zero(t, s.CurrentPickupCount)
	})
}

func TestNewResetJobRejectsBadTimezone(t *testing.T) {
	db := helpers.NewTestDB(t)
	clock := shared.NewMockClock(time.Time{})
	_, err := NewResetJob(persistence.NewShipperRepository(db, clock),
		metrics.NewDispatchMetricsCollector(),
		&config.DispatchConfig{ResetTimezones: map[string]string{"north": "Mars/Olympus"}},
		clock, zap.NewNop())
	require.Error(t, err)
	assert.True(t, shared.IsKind(err, shared.KindValidation))
}
