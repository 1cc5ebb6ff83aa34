package eventbus_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vietcart/logistics/internal/adapters/eventbus"
	"github.com/vietcart/logistics/internal/adapters/persistence"
	"github.com/vietcart/logistics/internal/domain/shared"
	"github.com/vietcart/logistics/internal/domain/shipping"
	"github.com/vietcart/logistics/test/helpers"
)

func TestReconcileOnce(t *testing.T) {
	ctx := context.Background()
	db := helpers.NewTestDB(t)
	repo := persistence.NewShipmentRepository(db)
	clock := shared.NewMockClock(time.Date(2026, 8, 12, 12, 0, 0, 0, time.UTC))
	pub := helpers.NewMockPublisher()

	seed := func(id string, updatedAt time.Time) {
		require.NoError(t, repo.Create(ctx, &shipping.Shipment{
			ID:             id,
			SubOrderID:     "sub-" + id,
			TrackingNumber: "TN-" + id,
			ProviderCode:   "ghtk",
			Status:         shipping.StatusDelivering,
			CODAmount:      decimal.Zero,
			CreatedAt:      updatedAt,
			UpdatedAt:      updatedAt,
		}))
	}
	seed("fresh", clock.Now().Add(-10*time.Minute))
	seed("old", clock.Now().Add(-3*time.Hour))

	r := eventbus.NewReconciler(repo, pub, clock, time.Minute, time.Hour, zap.NewNop())
	require.NoError(t, r.ReconcileOnce(ctx))

	events := pub.ByType(eventbus.EventShipmentStatusChanged)
	require.Len(t, events, 1, "only rows inside the lookback window are re-emitted")
	assert.Equal(t, "fresh", events[0].Key)
	payload, ok := events[0].Payload.(eventbus.ShipmentPayload)
	require.True(t, ok)
	assert.Equal(t, "sub-fresh", payload.SubOrderID)
	assert.Equal(t, string(shipping.StatusDelivering), payload.Status)
}
