package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpos-system/internal/database/models"
)

func TestDailySalesResetsOncePerDay(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.db.Create(&models.SystemStatus{
		ID:         models.SystemStatusID,
		DailySales: "125.50",
		LastReset:  "2026-08-28",
	}).Error)

	nextDay := mustTime(t, "2026-08-29 08:00:00")

	total, err := l.DailySales(nextDay)
	require.NoError(t, err)
	assert.True(t, total.IsZero(), "new day resets the total")

	// repeat reads on the same day do not reset again
	require.NoError(t, l.db.Model(&models.SystemStatus{}).
		Where("id = ?", models.SystemStatusID).
		Update("daily_sales", "42").Error)

	for i := 0; i < 3; i++ {
		total, err = l.DailySales(mustTime(t, "2026-08-29 18:30:00"))
		require.NoError(t, err)
		assert.True(t, total.Equal(decimal.NewFromInt(42)))
	}
}

func TestDailySalesSameDayKeepsTotal(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.db.Create(&models.SystemStatus{
		ID:         models.SystemStatusID,
		DailySales: "99.99",
		LastReset:  "2026-08-29",
	}).Error)

	total, err := l.DailySales(mustTime(t, "2026-08-29 23:59:59"))
	require.NoError(t, err)
	assert.Equal(t, "99.99", total.String())
}

func TestDailySalesCreatesMissingRow(t *testing.T) {
	l := newTestLedger(t)

	total, err := l.DailySales(mustTime(t, "2026-08-29 09:00:00"))
	require.NoError(t, err)
	assert.True(t, total.IsZero())

	var status models.SystemStatus
	require.NoError(t, l.db.First(&status, models.SystemStatusID).Error)
	assert.Equal(t, "2026-08-29", status.LastReset)
}
