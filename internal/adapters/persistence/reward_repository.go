package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vietcart/logistics/internal/domain/shared"
)

// RewardRepositoryGORM implements order.RewardRepository using GORM
type RewardRepositoryGORM struct {
	db    *gorm.DB
	clock shared.Clock
}

// NewRewardRepository creates a new GORM-based coin reward repository
func NewRewardRepository(db *gorm.DB, clock shared.Clock) *RewardRepositoryGORM {
	return &RewardRepositoryGORM{db: db, clock: clock}
}

// Grant records a coin grant for a completed sub-order. The unique index
// on sub_order_id absorbs replays; a conflicting insert reports false.
func (r *RewardRepositoryGORM) Grant(ctx context.Context, userID, subOrderID string, coins int64) (bool, error) {
	model := CoinRewardModel{
		ID:         uuid.NewString(),
		UserID:     userID,
		SubOrderID: subOrderID,
		Coins:      coins,
		CreatedAt:  r.clock.Now(),
	}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "sub_order_id"}},
		DoNothing: true,
	}).Create(&model)
	if res.Error != nil {
		return false, fmt.Errorf("failed to grant coins for sub-order %s: %w", subOrderID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// TotalForUser sums a user's granted coins
func (r *RewardRepositoryGORM) TotalForUser(ctx context.Context, userID string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&CoinRewardModel{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(coins), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum coins for user %s: %w", userID, err)
	}
	return total, nil
}
