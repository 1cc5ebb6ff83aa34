package helpers

import (
	"testing"

	"gorm.io/gorm"

	"github.com/vietcart/logistics/internal/adapters/persistence"
	"github.com/vietcart/logistics/internal/infrastructure/database"
)

// NewTestDB creates a migrated in-memory SQLite database for a test.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewTestConnection()
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	if err := persistence.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close(db)
	})
	return db
}
