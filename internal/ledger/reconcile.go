package ledger

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"stockpos-system/internal/database/models"
	"stockpos-system/internal/units"
)

// ReconcileResult summarizes one reconciliation sweep.
type ReconcileResult struct {
	OrdersProcessed int
	Credited        map[string]int64
}

// ReconcileDeliveredOrders folds every delivered, unprocessed, tracked order
// into stock. Each order's credit and its processed mark run in a single
// transaction, so a crash cannot leave a credited order unmarked; re-running
// the sweep never double-credits.
func (l *Ledger) ReconcileDeliveredOrders(now time.Time) (*ReconcileResult, error) {
	var orders []models.Order
	if err := l.db.
		Where("status = ? AND processed = ? AND tracking <> ''",
			models.OrderStatusDelivered, false).
		Find(&orders).Error; err != nil {
		return nil, err
	}

	result := &ReconcileResult{Credited: map[string]int64{}}
	for i := range orders {
		order := orders[i]
		err := l.db.Transaction(func(tx *gorm.DB) error {
			credited, err := l.creditOrder(tx, &order, now)
			if err != nil {
				return err
			}
			result.Credited[order.ProductName] += credited
			return tx.Model(&models.Order{}).
				Where("id = ?", order.ID).
				Update("processed", true).Error
		})
		if err != nil {
			l.log.Error("reconcile failed for order",
				zap.Int64("order_id", order.ID),
				zap.String("product", order.ProductName),
				zap.Error(err))
			return result, err
		}
		result.OrdersProcessed++

		l.log.Info("order folded into stock",
			zap.Int64("order_id", order.ID),
			zap.String("product", order.ProductName),
			zap.Int64("base_units", result.Credited[order.ProductName]))
	}

	return result, nil
}

// creditOrder adds the order's declared unit count, converted at the carton
// ratio, to the product's stock entry, creating the entry if missing. Ratio
// and prices come from the catalog, falling back to the values the stock
// entry already carries.
func (l *Ledger) creditOrder(tx *gorm.DB, order *models.Order, now time.Time) (int64, error) {
	var existing models.StockEntry
	entryErr := tx.Where("product_name = ?", order.ProductName).First(&existing).Error
	if entryErr != nil && entryErr != gorm.ErrRecordNotFound {
		return 0, entryErr
	}
	haveEntry := entryErr == nil

	ratio := "1:1:1"
	retail, wholesale := "0", "0"
	var barcode *string
	if haveEntry {
		ratio, retail, wholesale, barcode =
			existing.UnitRatio, existing.RetailPrice, existing.WholesalePrice, existing.Barcode
	}

	var product models.Product
	catErr := tx.Where("product_name = ?", order.ProductName).First(&product).Error
	if catErr == nil {
		ratio, retail, wholesale, barcode =
			product.UnitRatio, product.RetailPrice, product.WholesalePrice, product.Barcode
	} else if catErr != gorm.ErrRecordNotFound {
		return 0, catErr
	}

	baseUnits := units.ToBase(ratio, order.Units, units.Carton)

	if haveEntry {
		return baseUnits, tx.Model(&models.StockEntry{}).
			Where("id = ?", existing.ID).
			Updates(map[string]interface{}{
				"quantity":        gorm.Expr("quantity + ?", baseUnits),
				"retail_price":    retail,
				"wholesale_price": wholesale,
				"unit_ratio":      ratio,
				"barcode":         barcode,
				"received_at":     now,
			}).Error
	}

	entry := models.StockEntry{
		ProductName:    order.ProductName,
		Quantity:       baseUnits,
		RetailPrice:    retail,
		WholesalePrice: wholesale,
		UnitRatio:      ratio,
		Barcode:        barcode,
		ReceivedAt:     &now,
	}
	return baseUnits, tx.Create(&entry).Error
}
