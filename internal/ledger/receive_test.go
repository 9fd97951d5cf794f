package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpos-system/internal/database/models"
)

func TestReceiveStockCreatesEntryFromCatalog(t *testing.T) {
	l := newTestLedger(t)
	seedProduct(t, l, models.Product{
		ProductName:    "Widget",
		RetailPrice:    "10",
		WholesalePrice: "8",
		UnitRatio:      "1:6:24",
	})

	entry, err := l.ReceiveStock(Receipt{
		ProductName: "Widget",
		Quantity:    2,
		UnitType:    "carton",
		CostPrice:   "5.50",
	}, time.Now())
	require.NoError(t, err)

	assert.Equal(t, int64(48), entry.Quantity)
	assert.Equal(t, "10", entry.RetailPrice)
	assert.Equal(t, "8", entry.WholesalePrice)
	assert.Equal(t, "1:6:24", entry.UnitRatio)
	assert.Equal(t, "5.50", entry.CostPrice)
	require.NotNil(t, entry.ReceivedAt)
}

func TestReceiveStockAddsToExistingEntry(t *testing.T) {
	l := newTestLedger(t)
	seedStock(t, l, models.StockEntry{
		ProductName: "Widget",
		Quantity:    10,
		SoldRevenue: "0",
		CostPrice:   "4",
		RetailPrice: "9",
		UnitRatio:   "1:6:12",
	})

	entry, err := l.ReceiveStock(Receipt{
		ProductName: "Widget",
		Quantity:    3,
		UnitType:    "pack",
	}, time.Now())
	require.NoError(t, err)

	assert.Equal(t, int64(28), entry.Quantity)
	// Cost price untouched when the receipt does not restate it.
	assert.Equal(t, "4", entry.CostPrice)
}

func TestReceiveStockRejectsBadQuantity(t *testing.T) {
	l := newTestLedger(t)

	_, err := l.ReceiveStock(Receipt{ProductName: "Widget", Quantity: 0}, time.Now())
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = l.ReceiveStock(Receipt{ProductName: "  ", Quantity: 5}, time.Now())
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestReceiveStockUnknownUnitCountsPieces(t *testing.T) {
	l := newTestLedger(t)

	entry, err := l.ReceiveStock(Receipt{
		ProductName: "Widget",
		Quantity:    7,
		UnitType:    "crate",
	}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(7), entry.Quantity)
	assert.Equal(t, "1:1:1", entry.UnitRatio)
}
