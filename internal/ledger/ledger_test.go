package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"stockpos-system/internal/database/models"
)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Product{},
		&models.StockEntry{},
		&models.Order{},
		&models.SaleRecord{},
		&models.SystemStatus{},
	))

	return New(db, nil)
}

func seedStock(t *testing.T, l *Ledger, entry models.StockEntry) {
	t.Helper()
	require.NoError(t, l.db.Create(&entry).Error)
}

func seedProduct(t *testing.T, l *Ledger, product models.Product) {
	t.Helper()
	require.NoError(t, l.db.Create(&product).Error)
}

func stockFor(t *testing.T, l *Ledger, product string) models.StockEntry {
	t.Helper()
	var entry models.StockEntry
	require.NoError(t, l.db.Where("product_name = ?", product).First(&entry).Error)
	return entry
}

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02 15:04:05", value)
	require.NoError(t, err)
	return ts
}
