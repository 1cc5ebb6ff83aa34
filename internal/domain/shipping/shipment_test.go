package shipping

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietcart/logistics/internal/domain/shared"
)

func at(hour int) time.Time {
	return time.Date(2026, 8, 12, hour, 0, 0, 0, time.UTC)
}

func TestUnifiedStatusPriority(t *testing.T) {
	ordered := []UnifiedStatus{
		StatusCreated, StatusAssigned, StatusPickedUp, StatusDelivering,
		StatusDelivered, StatusFailed, StatusReturning, StatusReturned, StatusCancelled,
	}
	for i := 1; i < len(ordered); i++ {
		assert.Greater(t, ordered[i].Priority(), ordered[i-1].Priority(),
			"%s must outrank %s", ordered[i], ordered[i-1])
	}

	// unknown tokens rank lowest so they never displace a real status
	assert.Equal(t, StatusCreated.Priority(), UnifiedStatus("bogus").Priority())
}

func TestUnifiedStatusClassification(t *testing.T) {
	assert.True(t, StatusDelivered.IsTerminal())
	assert.True(t, StatusReturned.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusFailed.IsTerminal())
	assert.False(t, StatusReturning.IsTerminal())

	assert.True(t, StatusDelivered.IsSuccess())
	assert.False(t, StatusDelivered.IsFailure())
	assert.True(t, StatusFailed.IsFailure())
	assert.True(t, StatusReturned.IsFailure())
	assert.False(t, StatusDelivering.IsFailure())

	assert.True(t, StatusDelivering.Valid())
	assert.False(t, UnifiedStatus("shipped").Valid())
}

func TestApplyStatusUpgrades(t *testing.T) {
	s := &Shipment{ID: "shp-1", Status: StatusCreated}

	moved, err := s.ApplyStatus(StatusPickedUp, "2", "picked up at warehouse", at(9), nil)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, StatusPickedUp, s.Status)
	require.NotNil(t, s.PickedUpAt)
	assert.Equal(t, at(9), *s.PickedUpAt)

	moved, err = s.ApplyStatus(StatusDelivered, "4", "", at(15), nil)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, StatusDelivered, s.Status)
	require.NotNil(t, s.DeliveredAt)
	assert.Equal(t, at(15), *s.DeliveredAt)
	assert.Len(t, s.History, 2)
}

func TestApplyStatusOutOfOrder(t *testing.T) {
	// the delivered webhook lands before a delayed delivering one
	s := &Shipment{ID: "shp-1", Status: StatusCreated}

	moved, err := s.ApplyStatus(StatusDelivered, "4", "delivered", at(15), nil)
	require.NoError(t, err)
	require.True(t, moved)

	moved, err = s.ApplyStatus(StatusDelivering, "3", "out for delivery", at(11), nil)
	require.NoError(t, err)
	assert.False(t, moved, "stale update must not downgrade")
	assert.Equal(t, StatusDelivered, s.Status)

	// but the stale update is still journaled
	require.Len(t, s.History, 2)
	assert.Equal(t, StatusDelivering, s.History[1].Status)
}

func TestApplyStatusTerminalOnce(t *testing.T) {
	s := &Shipment{ID: "shp-1", Status: StatusDelivered}

	moved, err := s.ApplyStatus(StatusCancelled, "", "late cancel", at(16), nil)
	require.NoError(t, err)
	assert.False(t, moved, "terminal state is reached at most once")
	assert.Equal(t, StatusDelivered, s.Status)
	assert.Len(t, s.History, 1)
}

func TestApplyStatusEqualPriorityWins(t *testing.T) {
	// equal priority re-applies, so a corrected message lands
	s := &Shipment{ID: "shp-1", Status: StatusDelivering}

	moved, err := s.ApplyStatus(StatusDelivering, "3b", "second attempt", at(12), nil)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, at(12), s.UpdatedAt)
}

func TestCollectCOD(t *testing.T) {
	s := &Shipment{ID: "shp-1", Status: StatusDelivering, CODAmount: decimal.RequireFromString("150000")}
	assert.True(t, s.HasCOD())

	err := s.CollectCOD()
	require.Error(t, err)
	assert.True(t, shared.IsKind(err, shared.KindValidation))
	assert.False(t, s.CODCollected)

	s.Status = StatusDelivered
	require.NoError(t, s.CollectCOD())
	assert.True(t, s.CODCollected)
}

func TestHasCOD(t *testing.T) {
	assert.False(t, (&Shipment{CODAmount: decimal.Zero}).HasCOD())
	assert.True(t, (&Shipment{CODAmount: decimal.NewFromInt(1)}).HasCOD())
}

func TestCacheKeys(t *testing.T) {
	req := FeeRequest{
		PickupAddr:   shared.Address{City: "Hà Nội", District: "Cầu Giấy", Region: shared.RegionNorth},
		DeliveryAddr: shared.Address{City: "Đà Nẵng", District: "Hải Châu", Region: shared.RegionCentral},
		Package:      Package{WeightGrams: 1200},
	}

	key := FeeCacheKey("shop-1", "ghtk", req)
	assert.Contains(t, key, "shipfee:shop-1:ghtk:")
	assert.Equal(t, key, FeeCacheKey("shop-1", "ghtk", req), "identical inputs produce identical keys")
	assert.NotEqual(t, key, FeeCacheKey("shop-2", "ghtk", req))

	heavier := req
	heavier.Package.WeightGrams = 1500
	assert.NotEqual(t, key, FeeCacheKey("shop-1", "ghtk", heavier))

	assert.Equal(t, "shiptrack:GHTK123", TrackingCacheKey("GHTK123"))
	assert.Equal(t, "shiploc:shipper-9", LocationCacheKey("shipper-9"))
}
