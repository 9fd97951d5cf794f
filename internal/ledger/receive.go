package ledger

import (
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"stockpos-system/internal/database/models"
	"stockpos-system/internal/units"
)

// Receipt is a manual stock delivery. Quantity is in UnitType units and is
// converted to base pieces on credit.
type Receipt struct {
	ProductName string
	Quantity    int64
	UnitType    string
	CostPrice   string
	Barcode     *string
}

// ReceiveStock credits a delivery into stock, creating the entry when the
// product has never been stocked. Pricing and the unit ratio come from the
// catalog when the product is listed there.
func (l *Ledger) ReceiveStock(r Receipt, now time.Time) (*models.StockEntry, error) {
	name := strings.TrimSpace(r.ProductName)
	if name == "" || r.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	var entry models.StockEntry
	err := l.db.Transaction(func(tx *gorm.DB) error {
		ratio := "1:1:1"
		retail, wholesale := "0", "0"
		barcode := r.Barcode

		var existing models.StockEntry
		haveEntry := tx.Where("product_name = ?", name).First(&existing).Error == nil
		if haveEntry {
			ratio = existing.UnitRatio
			retail = existing.RetailPrice
			wholesale = existing.WholesalePrice
			if barcode == nil {
				barcode = existing.Barcode
			}
		}

		var product models.Product
		if tx.Where("product_name = ?", name).First(&product).Error == nil {
			ratio = product.UnitRatio
			retail = product.RetailPrice
			wholesale = product.WholesalePrice
			if barcode == nil {
				barcode = product.Barcode
			}
		}

		baseUnits := units.ToBase(ratio, r.Quantity, units.ParseUnit(r.UnitType))
		receivedAt := now

		if haveEntry {
			updates := map[string]interface{}{
				"quantity":        gorm.Expr("quantity + ?", baseUnits),
				"retail_price":    retail,
				"wholesale_price": wholesale,
				"unit_ratio":      ratio,
				"barcode":         barcode,
				"received_at":     receivedAt,
			}
			if r.CostPrice != "" {
				updates["cost_price"] = r.CostPrice
			}
			if err := tx.Model(&existing).Updates(updates).Error; err != nil {
				return err
			}
			return tx.Where("product_name = ?", name).First(&entry).Error
		}

		cost := r.CostPrice
		if cost == "" {
			cost = "0"
		}
		entry = models.StockEntry{
			ProductName:    name,
			Quantity:       baseUnits,
			SoldRevenue:    "0",
			CostPrice:      cost,
			RetailPrice:    retail,
			WholesalePrice: wholesale,
			UnitRatio:      ratio,
			Barcode:        barcode,
			ReceivedAt:     &receivedAt,
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return nil, err
	}

	l.log.Info("stock received",
		zap.String("product", name),
		zap.Int64("quantity", r.Quantity),
		zap.String("unit", r.UnitType))
	return &entry, nil
}
