package handlers

import (
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/forte-savings/backend/internal/models"
)

// OpenTestDB creates a SQLite in-memory DB unique per test with all
// application models migrated.
func OpenTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsnName := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", dsnName)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectPermission{},
		&models.SavingsRecord{},
		&models.AuditLog{},
	); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return db
}
