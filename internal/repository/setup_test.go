package repository

import (
	"testing"

	"quill/internal/database"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB opens an isolated in-memory sqlite database with the full
// schema migrated.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db
}
