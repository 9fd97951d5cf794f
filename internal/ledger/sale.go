package ledger

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"stockpos-system/internal/database/models"
	"stockpos-system/internal/units"
)

var (
	ErrProductNotStocked = errors.New("product not in stock")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("quantity must be a positive integer")
	ErrEmptySale         = errors.New("sale has no lines")
)

// SaleLine is one requested cart line. Wholesale selects the price tier.
type SaleLine struct {
	ProductName string
	Quantity    int64
	UnitType    string
	Wholesale   bool
}

// Quote is a priced, validated line against a live stock snapshot.
type Quote struct {
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	UnitType    string          `json:"unit_type"`
	BaseUnits   int64           `json:"base_units"`
	Available   int64           `json:"available"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// CommittedLine is a quote plus its commit outcome. Applied is false when the
// in-SQL quantity guard rejected the decrement.
type CommittedLine struct {
	Quote
	Applied bool `json:"applied"`
}

// CommitResult reports every line of a committed sale. Skipped names lines the
// guard refused; they are reported rather than silently dropped.
type CommitResult struct {
	Lines   []CommittedLine
	Skipped []string
	Total   decimal.Decimal
}

// QuoteLine validates and prices a single cart line against current stock.
// Used when a line is added to the cart; the commit re-runs the same rule so
// the two checks always agree.
func (l *Ledger) QuoteLine(line SaleLine) (*Quote, error) {
	return l.quoteLine(l.db, line)
}

func (l *Ledger) quoteLine(tx *gorm.DB, line SaleLine) (*Quote, error) {
	if line.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	var entry models.StockEntry
	if err := tx.Where("product_name = ?", line.ProductName).First(&entry).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrProductNotStocked
		}
		return nil, err
	}

	// Price tier comes from the catalog when it has a row, otherwise from the
	// copy carried on the stock entry.
	retail, wholesale := entry.RetailPrice, entry.WholesalePrice
	var product models.Product
	err := tx.Where("product_name = ?", line.ProductName).First(&product).Error
	if err == nil {
		retail, wholesale = product.RetailPrice, product.WholesalePrice
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	perPiece := parseDecimal(retail)
	if line.Wholesale {
		perPiece = parseDecimal(wholesale)
	}

	unit := units.ParseUnit(line.UnitType)
	unitPrice := units.ScalePrice(perPiece, entry.UnitRatio, unit)

	quote := &Quote{
		ProductName: line.ProductName,
		Quantity:    line.Quantity,
		UnitType:    unit.String(),
		BaseUnits:   units.ToBase(entry.UnitRatio, line.Quantity, unit),
		Available:   entry.Quantity,
		UnitPrice:   unitPrice,
		LineTotal:   unitPrice.Mul(decimal.NewFromInt(line.Quantity)),
	}

	if quote.BaseUnits > entry.Quantity {
		return quote, ErrInsufficientStock
	}
	return quote, nil
}

// CommitSale validates and applies a cart in one transaction. Any validation
// failure aborts the whole sale with nothing mutated. A line whose guarded
// decrement is refused mid-commit (an external writer moved the quantity) is
// recorded as skipped in the result.
func (l *Ledger) CommitSale(lines []SaleLine, now time.Time) (*CommitResult, error) {
	if len(lines) == 0 {
		return nil, ErrEmptySale
	}

	result := &CommitResult{Total: decimal.Zero}
	err := l.db.Transaction(func(tx *gorm.DB) error {
		for _, line := range lines {
			quote, err := l.quoteLine(tx, line)
			if err != nil {
				return err
			}

			applied, err := l.applyLine(tx, quote, now)
			if err != nil {
				return err
			}

			result.Lines = append(result.Lines, CommittedLine{Quote: *quote, Applied: applied})
			if applied {
				result.Total = result.Total.Add(quote.LineTotal)
			} else {
				result.Skipped = append(result.Skipped, quote.ProductName)
			}
		}

		if result.Total.GreaterThan(decimal.Zero) {
			return l.addDailySales(tx, now, result.Total)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, name := range result.Skipped {
		l.log.Warn("sale line skipped by stock guard", zap.String("product", name))
	}

	return result, nil
}

func (l *Ledger) applyLine(tx *gorm.DB, quote *Quote, now time.Time) (bool, error) {
	res := tx.Model(&models.StockEntry{}).
		Where("product_name = ? AND quantity >= ?", quote.ProductName, quote.BaseUnits).
		Updates(map[string]interface{}{
			"quantity":      gorm.Expr("quantity - ?", quote.BaseUnits),
			"sold_quantity": gorm.Expr("sold_quantity + ?", quote.BaseUnits),
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}

	var entry models.StockEntry
	if err := tx.Where("product_name = ?", quote.ProductName).First(&entry).Error; err != nil {
		return false, err
	}

	revenue := parseDecimal(entry.SoldRevenue).Add(quote.LineTotal)
	if err := tx.Model(&models.StockEntry{}).
		Where("product_name = ?", quote.ProductName).
		Update("sold_revenue", revenue.String()).Error; err != nil {
		return false, err
	}

	record := models.SaleRecord{
		ProductName: quote.ProductName,
		Quantity:    quote.Quantity,
		UnitType:    quote.UnitType,
		UnitPrice:   quote.UnitPrice.String(),
		TotalPrice:  quote.LineTotal.String(),
		SoldAt:      now,
	}
	return true, tx.Create(&record).Error
}
