package ledger

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"stockpos-system/internal/database/models"
)

func dateOf(now time.Time) string {
	return now.Format("2006-01-02")
}

// ensureDailyReset loads the singleton status row, zeroing the running total
// when the stored date is not today. Reads on the same day never reset.
func (l *Ledger) ensureDailyReset(tx *gorm.DB, now time.Time) (*models.SystemStatus, error) {
	var status models.SystemStatus
	err := tx.First(&status, models.SystemStatusID).Error
	if err == gorm.ErrRecordNotFound {
		status = models.SystemStatus{
			ID:         models.SystemStatusID,
			DailySales: "0",
			LastReset:  dateOf(now),
		}
		if err := tx.Create(&status).Error; err != nil {
			return nil, err
		}
		return &status, nil
	}
	if err != nil {
		return nil, err
	}

	if status.LastReset != dateOf(now) {
		status.DailySales = "0"
		status.LastReset = dateOf(now)
		if err := tx.Model(&models.SystemStatus{}).
			Where("id = ?", models.SystemStatusID).
			Updates(map[string]interface{}{
				"daily_sales": status.DailySales,
				"last_reset":  status.LastReset,
			}).Error; err != nil {
			return nil, err
		}
	}

	return &status, nil
}

// DailySales returns today's running total, applying the lazy reset first.
func (l *Ledger) DailySales(now time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := l.db.Transaction(func(tx *gorm.DB) error {
		status, err := l.ensureDailyReset(tx, now)
		if err != nil {
			return err
		}
		total = parseDecimal(status.DailySales)
		return nil
	})
	return total, err
}

func (l *Ledger) addDailySales(tx *gorm.DB, now time.Time, amount decimal.Decimal) error {
	status, err := l.ensureDailyReset(tx, now)
	if err != nil {
		return err
	}

	newTotal := parseDecimal(status.DailySales).Add(amount)
	return tx.Model(&models.SystemStatus{}).
		Where("id = ?", models.SystemStatusID).
		Update("daily_sales", newTotal.String()).Error
}
