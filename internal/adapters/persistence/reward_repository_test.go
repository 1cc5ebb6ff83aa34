package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietcart/logistics/internal/domain/shared"
)

func TestRewardGrant(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewRewardRepository(db, shared.NewMockClock(time.Date(2026, 8, 12, 10, 0, 0, 0, time.UTC)))

	granted, err := repo.Grant(ctx, "user-1", "sub-1", 120)
	require.NoError(t, err)
	assert.True(t, granted)

	t.Run("replay for the same sub-order is absorbed", func(t *testing.T) {
		granted, err := repo.Grant(ctx, "user-1", "sub-1", 120)
		require.NoError(t, err)
		assert.False(t, granted)

		total, err := repo.TotalForUser(ctx, "user-1")
		require.NoError(t, err)
		assert.EqualValues(t, 120, total)
	})

	t.Run("totals sum across sub-orders", func(t *testing.T) {
		granted, err := repo.Grant(ctx, "user-1", "sub-2", 35)
		require.NoError(t, err)
		assert.True(t, granted)

		total, err := repo.TotalForUser(ctx, "user-1")
		require.NoError(t, err)
		assert.EqualValues(t, 155, total)
	})

	t.Run("other users start at zero", func(t *testing.T) {
		total, err := repo.TotalForUser(ctx, "user-2")
		require.NoError(t, err)
		assert.Zero(t, total)
	})
}
