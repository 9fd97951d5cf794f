package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpos-system/internal/database/models"
)

func TestReconcileCreditsExistingEntry(t *testing.T) {
	l := newTestLedger(t)
	seedProduct(t, l, models.Product{
		ProductName: "Widget",
		RetailPrice: "10",
		UnitRatio:   "1:3:12",
	})
	seedStock(t, l, models.StockEntry{
		ProductName: "Widget",
		Quantity:    10,
		UnitRatio:   "1:3:12",
	})
	require.NoError(t, l.db.Create(&models.Order{
		ProductName: "Widget",
		Units:       2,
		Tracking:    "TH123456",
		Status:      models.OrderStatusDelivered,
	}).Error)

	result, err := l.ReconcileDeliveredOrders(time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, result.OrdersProcessed)
	assert.Equal(t, int64(24), result.Credited["Widget"])

	// 10 on hand + 2 cartons of 12
	entry := stockFor(t, l, "Widget")
	assert.Equal(t, int64(34), entry.Quantity)
	assert.Equal(t, "10", entry.RetailPrice)
	require.NotNil(t, entry.ReceivedAt)

	var order models.Order
	require.NoError(t, l.db.First(&order).Error)
	assert.True(t, order.Processed)
}

func TestReconcileRunsExactlyOnce(t *testing.T) {
	l := newTestLedger(t)
	seedProduct(t, l, models.Product{
		ProductName: "Widget",
		UnitRatio:   "1:3:12",
	})
	seedStock(t, l, models.StockEntry{
		ProductName: "Widget",
		Quantity:    10,
		UnitRatio:   "1:3:12",
	})
	require.NoError(t, l.db.Create(&models.Order{
		ProductName: "Widget",
		Units:       2,
		Tracking:    "TH123456",
		Status:      models.OrderStatusDelivered,
	}).Error)

	_, err := l.ReconcileDeliveredOrders(time.Now())
	require.NoError(t, err)

	second, err := l.ReconcileDeliveredOrders(time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, second.OrdersProcessed)
	assert.Equal(t, int64(34), stockFor(t, l, "Widget").Quantity)
}

func TestReconcileCreatesMissingEntry(t *testing.T) {
	l := newTestLedger(t)
	seedProduct(t, l, models.Product{
		ProductName:    "Fresh",
		RetailPrice:    "4",
		WholesalePrice: "3",
		UnitRatio:      "1:6:24",
	})
	require.NoError(t, l.db.Create(&models.Order{
		ProductName: "Fresh",
		Units:       1,
		Tracking:    "KEX0001",
		Status:      models.OrderStatusDelivered,
	}).Error)

	_, err := l.ReconcileDeliveredOrders(time.Now())
	require.NoError(t, err)

	entry := stockFor(t, l, "Fresh")
	assert.Equal(t, int64(24), entry.Quantity)
	assert.Equal(t, "4", entry.RetailPrice)
	assert.Equal(t, "1:6:24", entry.UnitRatio)
}

func TestReconcileFallsBackToStockPricesWithoutCatalog(t *testing.T) {
	l := newTestLedger(t)
	seedStock(t, l, models.StockEntry{
		ProductName: "Legacy",
		Quantity:    5,
		RetailPrice: "9",
		UnitRatio:   "1:2:8",
	})
	require.NoError(t, l.db.Create(&models.Order{
		ProductName: "Legacy",
		Units:       1,
		Tracking:    "EMS777",
		Status:      models.OrderStatusDelivered,
	}).Error)

	result, err := l.ReconcileDeliveredOrders(time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(8), result.Credited["Legacy"])

	entry := stockFor(t, l, "Legacy")
	assert.Equal(t, int64(13), entry.Quantity)
	assert.Equal(t, "9", entry.RetailPrice)
}

func TestReconcileIgnoresUntrackedAndUndelivered(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.db.Create(&models.Order{
		ProductName: "A",
		Units:       1,
		Tracking:    "",
		Status:      models.OrderStatusDelivered,
	}).Error)
	require.NoError(t, l.db.Create(&models.Order{
		ProductName: "B",
		Units:       1,
		Tracking:    "TH1",
		Status:      models.OrderStatusInTransit,
	}).Error)

	result, err := l.ReconcileDeliveredOrders(time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, result.OrdersProcessed)

	var count int64
	require.NoError(t, l.db.Model(&models.StockEntry{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}
