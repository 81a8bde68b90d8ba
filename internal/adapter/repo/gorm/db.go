package gormrepo

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"fleetwarden/internal/adapter/repo/gorm/model"
)

func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return db, nil
}

// Migrate creates the agent's tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.ExpeditionDefinition{},
		&model.ExpeditionRunState{},
		&model.Notification{},
	); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
