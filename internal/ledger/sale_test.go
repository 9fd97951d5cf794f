package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpos-system/internal/database/models"
)

func TestCommitSaleWidgetScenario(t *testing.T) {
	l := newTestLedger(t)
	seedProduct(t, l, models.Product{
		ProductName: "Widget",
		RetailPrice: "10",
		UnitRatio:   "1:6:24",
	})
	seedStock(t, l, models.StockEntry{
		ProductName: "Widget",
		Quantity:    100,
		UnitRatio:   "1:6:24",
	})

	now := time.Now()
	result, err := l.CommitSale([]SaleLine{
		{ProductName: "Widget", Quantity: 2, UnitType: "carton"},
	}, now)
	require.NoError(t, err)

	require.Len(t, result.Lines, 1)
	line := result.Lines[0]
	assert.True(t, line.Applied)
	assert.Equal(t, int64(48), line.BaseUnits)
	assert.True(t, line.UnitPrice.Equal(decimal.NewFromInt(240)), "price per carton")
	assert.True(t, line.LineTotal.Equal(decimal.NewFromInt(480)))
	assert.True(t, result.Total.Equal(decimal.NewFromInt(480)))
	assert.Empty(t, result.Skipped)

	entry := stockFor(t, l, "Widget")
	assert.Equal(t, int64(52), entry.Quantity)
	assert.Equal(t, int64(48), entry.SoldQuantity)
	assert.Equal(t, "480", entry.SoldRevenue)

	daily, err := l.DailySales(now)
	require.NoError(t, err)
	assert.True(t, daily.Equal(decimal.NewFromInt(480)))

	var records []models.SaleRecord
	require.NoError(t, l.db.Find(&records).Error)
	require.Len(t, records, 1)
	assert.Equal(t, "Widget", records[0].ProductName)
	assert.Equal(t, "480", records[0].TotalPrice)
}

func TestCommitSaleExactStock(t *testing.T) {
	l := newTestLedger(t)
	seedStock(t, l, models.StockEntry{
		ProductName: "Soap",
		Quantity:    24,
		RetailPrice: "5",
		UnitRatio:   "1:6:24",
	})

	result, err := l.CommitSale([]SaleLine{
		{ProductName: "Soap", Quantity: 1, UnitType: "carton"},
	}, time.Now())
	require.NoError(t, err)
	assert.Empty(t, result.Skipped)

	entry := stockFor(t, l, "Soap")
	assert.Equal(t, int64(0), entry.Quantity)
}

func TestCommitSaleInsufficientStock(t *testing.T) {
	l := newTestLedger(t)
	seedStock(t, l, models.StockEntry{
		ProductName: "Soap",
		Quantity:    23,
		RetailPrice: "5",
		UnitRatio:   "1:6:24",
	})

	_, err := l.CommitSale([]SaleLine{
		{ProductName: "Soap", Quantity: 1, UnitType: "carton"},
	}, time.Now())
	require.ErrorIs(t, err, ErrInsufficientStock)

	// rejection leaves everything untouched
	entry := stockFor(t, l, "Soap")
	assert.Equal(t, int64(23), entry.Quantity)
	assert.Equal(t, int64(0), entry.SoldQuantity)

	daily, err := l.DailySales(time.Now())
	require.NoError(t, err)
	assert.True(t, daily.IsZero())
}

func TestCommitSaleRejectsWholeCartOnOneBadLine(t *testing.T) {
	l := newTestLedger(t)
	seedStock(t, l, models.StockEntry{
		ProductName: "Soap",
		Quantity:    100,
		RetailPrice: "5",
		UnitRatio:   "1:1:1",
	})
	seedStock(t, l, models.StockEntry{
		ProductName: "Shampoo",
		Quantity:    1,
		RetailPrice: "9",
		UnitRatio:   "1:1:1",
	})

	_, err := l.CommitSale([]SaleLine{
		{ProductName: "Soap", Quantity: 10, UnitType: "piece"},
		{ProductName: "Shampoo", Quantity: 2, UnitType: "piece"},
	}, time.Now())
	require.ErrorIs(t, err, ErrInsufficientStock)

	// the valid first line must not have been applied either
	assert.Equal(t, int64(100), stockFor(t, l, "Soap").Quantity)
	assert.Equal(t, int64(1), stockFor(t, l, "Shampoo").Quantity)
}

func TestCommitSaleMalformedRatioSellsPieces(t *testing.T) {
	l := newTestLedger(t)
	seedStock(t, l, models.StockEntry{
		ProductName: "Candy",
		Quantity:    10,
		RetailPrice: "2",
		UnitRatio:   "bad",
	})

	result, err := l.CommitSale([]SaleLine{
		{ProductName: "Candy", Quantity: 5, UnitType: "carton"},
	}, time.Now())
	require.NoError(t, err)

	// fallback ratio means a "carton" is one piece
	assert.Equal(t, int64(5), result.Lines[0].BaseUnits)
	assert.Equal(t, int64(5), stockFor(t, l, "Candy").Quantity)
	assert.True(t, result.Total.Equal(decimal.NewFromInt(10)))
}

func TestCommitSaleWholesaleTier(t *testing.T) {
	l := newTestLedger(t)
	seedProduct(t, l, models.Product{
		ProductName:    "Widget",
		RetailPrice:    "10",
		WholesalePrice: "8",
		UnitRatio:      "1:6:24",
	})
	seedStock(t, l, models.StockEntry{
		ProductName: "Widget",
		Quantity:    50,
		UnitRatio:   "1:6:24",
	})

	result, err := l.CommitSale([]SaleLine{
		{ProductName: "Widget", Quantity: 2, UnitType: "pack", Wholesale: true},
	}, time.Now())
	require.NoError(t, err)

	// 8/piece * 6 pieces per pack * 2 packs
	assert.True(t, result.Total.Equal(decimal.NewFromInt(96)))
	assert.Equal(t, int64(38), stockFor(t, l, "Widget").Quantity)
}

func TestCommitSalePriceFallsBackToStockEntry(t *testing.T) {
	l := newTestLedger(t)
	seedStock(t, l, models.StockEntry{
		ProductName: "Orphan",
		Quantity:    10,
		RetailPrice: "7",
		UnitRatio:   "1:1:1",
	})

	result, err := l.CommitSale([]SaleLine{
		{ProductName: "Orphan", Quantity: 3, UnitType: "piece"},
	}, time.Now())
	require.NoError(t, err)
	assert.True(t, result.Total.Equal(decimal.NewFromInt(21)))
}

func TestQuoteLineErrors(t *testing.T) {
	l := newTestLedger(t)

	_, err := l.QuoteLine(SaleLine{ProductName: "Ghost", Quantity: 1, UnitType: "piece"})
	assert.ErrorIs(t, err, ErrProductNotStocked)

	_, err = l.QuoteLine(SaleLine{ProductName: "Ghost", Quantity: 0, UnitType: "piece"})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = l.CommitSale(nil, time.Now())
	assert.ErrorIs(t, err, ErrEmptySale)
}
