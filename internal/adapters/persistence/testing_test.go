package persistence

import (
	"testing"

	"gorm.io/gorm"

	"github.com/vietcart/logistics/internal/infrastructure/database"
)

// newTestDB opens a migrated in-memory SQLite database. Repository tests
// build their own fixture here instead of test/helpers, which imports
// this package.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewTestConnection()
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close(db)
	})
	return db
}
