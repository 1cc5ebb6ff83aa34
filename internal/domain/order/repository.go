package order

import "context"

// Repository is the persistence port for orders and their sub-orders.
// Save persists the aggregate including sub-orders; loads always return
// the aggregate fully hydrated.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	Save(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id string) (*Order, error)
	FindByNumber(ctx context.Context, orderNumber string) (*Order, error)
	FindBySubOrderID(ctx context.Context, subOrderID string) (*Order, error)
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]*Order, int64, error)
	ListByShop(ctx context.Context, shopID string, offset, limit int) ([]*Order, int64, error)
}

// RewardRepository records coin grants. Grant must be idempotent per
// sub-order: re-granting an already rewarded sub-order returns false with
// no error and changes nothing.
type RewardRepository interface {
	Grant(ctx context.Context, userID, subOrderID string, coins int64) (bool, error)
	TotalForUser(ctx context.Context, userID string) (int64, error)
}
