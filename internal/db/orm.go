package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"levant-va/operations/internal/db/repositories"
	gormModels "levant-va/operations/internal/models/gorm"
)

var PgDB *gorm.DB

// InitPostgresORM opens the GORM connection used by the transactional core.
func InitPostgresORM(dsn string) (*gorm.DB, error) {
	database, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	PgDB = database
	return database, nil
}

// Migrate applies the schema for all pipeline models and seeds the vault row.
func Migrate(database *gorm.DB) error {
	if err := database.AutoMigrate(
		&gormModels.Pilot{},
		&gormModels.Aircraft{},
		&gormModels.Bid{},
		&gormModels.FlightSession{},
		&gormModels.Pirep{},
		&gormModels.Vault{},
		&gormModels.Setting{},
		&gormModels.ApiKey{},
	); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	// Partial unique index backing the single-active-bid invariant.
	if err := repositories.EnsureActiveIndex(database); err != nil {
		return fmt.Errorf("bid index failed: %w", err)
	}

	// The vault is a single row mutated only via atomic increments.
	var count int64
	database.Model(&gormModels.Vault{}).Count(&count)
	if count == 0 {
		if err := database.Create(&gormModels.Vault{ID: 1, Balance: 0}).Error; err != nil {
			return fmt.Errorf("vault seed failed: %w", err)
		}
	}
	return nil
}
