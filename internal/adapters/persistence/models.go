package persistence

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderModel represents the orders table
type OrderModel struct {
	ID            string          `gorm:"column:id;primaryKey"`
	UserID        string          `gorm:"column:user_id;index;not null"`
	OrderNumber   string          `gorm:"column:order_number;unique;not null"`
	Subtotal      decimal.Decimal `gorm:"column:subtotal;type:decimal(18,2);not null"`
	ShippingTotal decimal.Decimal `gorm:"column:shipping_total;type:decimal(18,2);not null"`
	DiscountTotal decimal.Decimal `gorm:"column:discount_total;type:decimal(18,2);not null"`
	GrandTotal    decimal.Decimal `gorm:"column:grand_total;type:decimal(18,2);not null"`
	PaymentMethod string          `gorm:"column:payment_method;not null"`
	PaymentStatus string          `gorm:"column:payment_status;not null"`
	Status        string          `gorm:"column:status;index;not null"`
	ShippingName  string          `gorm:"column:shipping_name"`
	ShippingPhone string          `gorm:"column:shipping_phone"`
	ShippingAddr  string          `gorm:"column:shipping_addr;type:text"` // Address JSON snapshot
	CreatedAt     time.Time       `gorm:"column:created_at;not null"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;not null"`
	PaidAt        *time.Time      `gorm:"column:paid_at"`
	CompletedAt   *time.Time      `gorm:"column:completed_at"`
	CancelledAt   *time.Time      `gorm:"column:cancelled_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"column:deleted_at;index"`

	SubOrders []SubOrderModel `gorm:"foreignKey:OrderID;references:ID"`
}

func (OrderModel) TableName() string {
	return "orders"
}

// SubOrderModel represents the sub_orders table
type SubOrderModel struct {
	ID             string          `gorm:"column:id;primaryKey"`
	OrderID        string          `gorm:"column:order_id;index;not null"`
	ShopID         string          `gorm:"column:shop_id;index;not null"`
	Subtotal       decimal.Decimal `gorm:"column:subtotal;type:decimal(18,2);not null"`
	ShippingFee    decimal.Decimal `gorm:"column:shipping_fee;type:decimal(18,2);not null"`
	Total          decimal.Decimal `gorm:"column:total;type:decimal(18,2);not null"`
	Status         string          `gorm:"column:status;index;not null"`
	ShipperID      string          `gorm:"column:shipper_id;index"`
	ReturnDeadline *time.Time      `gorm:"column:return_deadline"`
	CreatedAt      time.Time       `gorm:"column:created_at;not null"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;not null"`
	DeliveredAt    *time.Time      `gorm:"column:delivered_at"`

	Items []OrderItemModel `gorm:"foreignKey:SubOrderID;references:ID"`
}

func (SubOrderModel) TableName() string {
	return "sub_orders"
}

// OrderItemModel represents the order_items table.
// Product fields are snapshots taken at checkout; catalog edits never
// rewrite them.
type OrderItemModel struct {
	ID         string          `gorm:"column:id;primaryKey"`
	SubOrderID string          `gorm:"column:sub_order_id;index;not null"`
	ProductID  string          `gorm:"column:product_id;not null"`
	VariantID  string          `gorm:"column:variant_id"`
	Name       string          `gorm:"column:name;not null"`
	SKU        string          `gorm:"column:sku"`
	UnitPrice  decimal.Decimal `gorm:"column:unit_price;type:decimal(18,2);not null"`
	Quantity   int             `gorm:"column:quantity;not null"`
	TotalPrice decimal.Decimal `gorm:"column:total_price;type:decimal(18,2);not null"`
	Image      string          `gorm:"column:image"`
}

func (OrderItemModel) TableName() string {
	return "order_items"
}

// ShipmentModel represents the shipments table
type ShipmentModel struct {
	ID              string          `gorm:"column:id;primaryKey"`
	SubOrderID      string          `gorm:"column:sub_order_id;index;not null"`
	TrackingNumber  string          `gorm:"column:tracking_number;unique;not null"`
	ProviderCode    string          `gorm:"column:provider_code;index;not null"`
	ProviderOrderID string          `gorm:"column:provider_order_id;index"`
	Status          string          `gorm:"column:status;index;not null"`
	PickupAddr      string          `gorm:"column:pickup_addr;type:text"`   // Address JSON
	PickupContact   string          `gorm:"column:pickup_contact"`          // Contact JSON
	DeliveryAddr    string          `gorm:"column:delivery_addr;type:text"` // Address JSON
	DeliveryContact string          `gorm:"column:delivery_contact"`        // Contact JSON
	WeightGrams     int             `gorm:"column:weight_grams;not null"`
	ItemsValue      decimal.Decimal `gorm:"column:items_value;type:decimal(18,2)"`
	CODAmount       decimal.Decimal `gorm:"column:cod_amount;type:decimal(18,2)"`
	CODCollected    bool            `gorm:"column:cod_collected;not null;default:false"`
	RetryCount      int             `gorm:"column:retry_count;not null;default:0"`
	History         string          `gorm:"column:history;type:text"` // append-only HistoryEntry JSON list
	CreatedAt       time.Time       `gorm:"column:created_at;not null"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;not null"`
	PickedUpAt      *time.Time      `gorm:"column:picked_up_at"`
	DeliveredAt     *time.Time      `gorm:"column:delivered_at"`
	CancelledAt     *time.Time      `gorm:"column:cancelled_at"`
	LastWebhookAt   *time.Time      `gorm:"column:last_webhook_at"`
}

func (ShipmentModel) TableName() string {
	return "shipments"
}

// PostOfficeModel represents the post_offices table
type PostOfficeModel struct {
	ID       string  `gorm:"column:id;primaryKey"`
	Code     string  `gorm:"column:code;unique;not null"`
	Type     string  `gorm:"column:type;not null"` // local, regional
	City     string  `gorm:"column:city;not null"`
	District string  `gorm:"column:district"`
	Region   string  `gorm:"column:region;index;not null"`
	Lat      float64 `gorm:"column:lat;not null"`
	Lng      float64 `gorm:"column:lng;not null"`
	ParentID string  `gorm:"column:parent_id;index"`
}

func (PostOfficeModel) TableName() string {
	return "post_offices"
}

// ShipperModel represents the shippers table
type ShipperModel struct {
	ID                   string    `gorm:"column:id;primaryKey"`
	UserID               string    `gorm:"column:user_id;unique;not null"`
	PostOfficeID         string    `gorm:"column:post_office_id;index;not null"`
	Vehicle              string    `gorm:"column:vehicle"`
	Status               string    `gorm:"column:status;index;not null"`
	IsOnline             bool      `gorm:"column:is_online;not null;default:false"`
	IsAvailable          bool      `gorm:"column:is_available;not null;default:false"`
	Lat                  float64   `gorm:"column:lat"`
	Lng                  float64   `gorm:"column:lng"`
	CurrentPickupCount   int       `gorm:"column:current_pickup_count;not null;default:0"`
	CurrentDeliveryCount int       `gorm:"column:current_delivery_count;not null;default:0"`
	MaxDailyOrders       int       `gorm:"column:max_daily_orders;not null;default:20"`
	AvgRating            float64   `gorm:"column:avg_rating;not null;default:0"`
	CompletedCount       int       `gorm:"column:completed_count;not null;default:0"`
	FailedCount          int       `gorm:"column:failed_count;not null;default:0"`
	LastSeenAt           time.Time `gorm:"column:last_seen_at"`
}

func (ShipperModel) TableName() string {
	return "shippers"
}

// TrackingEventModel represents the tracking_events table. Rows are
// append-only.
type TrackingEventModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	SubOrderID  string    `gorm:"column:sub_order_id;index"`
	ShipmentID  string    `gorm:"column:shipment_id;index"`
	Kind        string    `gorm:"column:kind;not null"`
	Description string    `gorm:"column:description;type:text"`
	Actor       string    `gorm:"column:actor"`
	CreatedAt   time.Time `gorm:"column:created_at;not null"`
}

func (TrackingEventModel) TableName() string {
	return "tracking_events"
}

// ProviderConfigModel represents the provider_configs table. The
// credentials blob is AES-256-CBC encrypted; plaintext never reaches this
// table.
type ProviderConfigModel struct {
	ShopID       string    `gorm:"column:shop_id;primaryKey"`
	ProviderCode string    `gorm:"column:provider_code;primaryKey"`
	Credentials  []byte    `gorm:"column:credentials;type:bytea"`
	IsEnabled    bool      `gorm:"column:is_enabled;not null;default:false"`
	IsDefault    bool      `gorm:"column:is_default;not null;default:false"`
	UpdatedAt    time.Time `gorm:"column:updated_at;not null"`
}

func (ProviderConfigModel) TableName() string {
	return "provider_configs"
}

// CoinRewardModel represents the coin_rewards table. One row per completed
// sub-order; the (sub_order_id) uniqueness makes reward grants idempotent.
type CoinRewardModel struct {
	ID         string    `gorm:"column:id;primaryKey"`
	UserID     string    `gorm:"column:user_id;index;not null"`
	SubOrderID string    `gorm:"column:sub_order_id;unique;not null"`
	Coins      int64     `gorm:"column:coins;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;not null"`
}

func (CoinRewardModel) TableName() string {
	return "coin_rewards"
}

// CounterResetJournalModel journals daily counter resets so the cut-over
// routine is idempotent per (region, day) and survives partial failure.
type CounterResetJournalModel struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Region    string    `gorm:"column:region;uniqueIndex:idx_reset_region_day;not null"`
	Day       string    `gorm:"column:day;uniqueIndex:idx_reset_region_day;not null"` // YYYY-MM-DD in region tz
	ResetRows int64     `gorm:"column:reset_rows;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

func (CounterResetJournalModel) TableName() string {
	return "counter_reset_journal"
}
