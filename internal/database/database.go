package database

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/forte-savings/backend/internal/config"
)

// Open bootstraps the database from config. MySQL is used in production;
// SQLite keeps local development and tests dependency-free.
func Open(cfg config.Config) (*gorm.DB, error) {
	switch cfg.DBDriver {
	case "mysql":
		db, err := gorm.Open(mysql.Open(cfg.DatabaseDSN), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("open mysql database: %w", err)
		}
		return db, nil
	case "sqlite", "":
		db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("open sqlite database: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}
}
