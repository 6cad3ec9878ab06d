package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-go-api/internal/models"
)

// ConnectPostgres opens the campus database and runs schema migration for
// the catalog and analytics tables.
func ConnectPostgres(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn must not be empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate applies the schema for every persisted model. Split out so tests
// can migrate an sqlite database without a postgres DSN.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Building{},
		&models.Category{},
		&models.Event{},
		&models.ActivityLog{},
		&models.BuildingDailyAnalytics{},
		&models.BuildingPeakHour{},
		&models.EventDailyAnalytics{},
		&models.SystemMetric{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
