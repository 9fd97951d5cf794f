package database

import (
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"stockpos-system/internal/database/models"
)

// NewConnection opens the local sqlite file, creating it if missing. Writes
// are serialized through a single connection; the store is a one-process tool.
func NewConnection(path string) (*gorm.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}

	return db, nil
}

// Migrate creates base tables and applies additive column migrations. Safe to
// run repeatedly at startup.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Product{},
		&models.StockEntry{},
		&models.Order{},
		&models.SaleRecord{},
		&models.SystemStatus{},
	); err != nil {
		return err
	}

	if err := addColumnIfMissing(db, &models.Order{}, "StatusUpdatedAt"); err != nil {
		return err
	}
	if err := addColumnIfMissing(db, &models.Order{}, "Hidden"); err != nil {
		return err
	}
	if err := addColumnIfMissing(db, &models.StockEntry{}, "UnitRatio"); err != nil {
		return err
	}
	if err := addColumnIfMissing(db, &models.Product{}, "UnitRatio"); err != nil {
		return err
	}

	return ensureSystemStatus(db)
}

func addColumnIfMissing(db *gorm.DB, model interface{}, field string) error {
	if db.Migrator().HasColumn(model, field) {
		return nil
	}
	return db.Migrator().AddColumn(model, field)
}

func ensureSystemStatus(db *gorm.DB) error {
	var status models.SystemStatus
	err := db.First(&status, models.SystemStatusID).Error
	if err == gorm.ErrRecordNotFound {
		return db.Create(&models.SystemStatus{
			ID:         models.SystemStatusID,
			DailySales: "0",
		}).Error
	}
	return err
}
