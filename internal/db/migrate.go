package db

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"shopapi/internal/model"
)

// Models lists every table managed by the service.
func Models() []any {
	return []any{
		&model.User{},
		&model.Product{},
		&model.Todo{},
	}
}

// Reset drops every managed table. Missing tables are skipped.
func Reset(db *gorm.DB, log *slog.Logger) {
	for _, table := range Models() {
		if err := db.Migrator().DropTable(table); err != nil {
			log.Warn("drop table failed", "table", fmt.Sprintf("%T", table), "error", err)
		}
	}
	log.Info("tables dropped")
}

// Migrate creates or updates every managed table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}
