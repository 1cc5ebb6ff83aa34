package persistence

import "gorm.io/gorm"

// AutoMigrate creates or updates the schema for every model this adapter
// owns. The database package stays model-agnostic; callers run this after
// opening a connection.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&OrderModel{},
		&SubOrderModel{},
		&OrderItemModel{},
		&ShipmentModel{},
		&PostOfficeModel{},
		&ShipperModel{},
		&TrackingEventModel{},
		&ProviderConfigModel{},
		&CoinRewardModel{},
		&CounterResetJournalModel{},
	)
}
