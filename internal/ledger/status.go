package ledger

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"stockpos-system/internal/database/models"
)

// reviewAfter is how long an order may sit undelivered before it is flagged.
const reviewAfter = 3 * 24 * time.Hour

// RefreshOrderStatuses applies the shipment state rules to every undelivered
// order: no tracking means pending, tracking means in transit, and anything
// older than three days that still has not arrived needs review. Delivered is
// terminal. Returns the number of rows changed.
func (l *Ledger) RefreshOrderStatuses(now time.Time) (int, error) {
	var orders []models.Order
	if err := l.db.
		Where("status <> ?", models.OrderStatusDelivered).
		Find(&orders).Error; err != nil {
		return 0, err
	}

	changed := 0
	for i := range orders {
		order := &orders[i]

		next := models.OrderStatusInTransit
		if strings.TrimSpace(order.Tracking) == "" {
			next = models.OrderStatusPending
		}
		if now.Sub(order.CreatedAt) > reviewAfter {
			next = models.OrderStatusNeedsReview
		}

		if next == order.Status {
			continue
		}
		if err := l.db.Model(&models.Order{}).
			Where("id = ?", order.ID).
			Updates(map[string]interface{}{
				"status":            next,
				"status_updated_at": now,
			}).Error; err != nil {
			return changed, err
		}
		changed++
	}

	return changed, nil
}

// ForceOrderStatus is the operator correction path; normal transitions are
// one-way and driven by RefreshOrderStatuses.
func (l *Ledger) ForceOrderStatus(id int64, status string, now time.Time) error {
	if !models.ValidOrderStatus(status) {
		return fmt.Errorf("unknown order status %q", status)
	}

	result := l.db.Model(&models.Order{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":            status,
			"status_updated_at": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ShippingProvider guesses the courier from the tracking code prefix.
func ShippingProvider(tracking string) string {
	code := strings.ToUpper(strings.TrimSpace(tracking))
	switch {
	case code == "":
		return ""
	case strings.HasPrefix(code, "TH"):
		return "Flash Express"
	case strings.HasPrefix(code, "KEX"), strings.HasPrefix(code, "SHP"):
		return "Kerry Express"
	case strings.HasPrefix(code, "EMS"), strings.HasPrefix(code, "E"):
		return "Thailand Post"
	case strings.HasPrefix(code, "JT"), strings.HasPrefix(code, "82"):
		return "J&T Express"
	default:
		return "Other"
	}
}
