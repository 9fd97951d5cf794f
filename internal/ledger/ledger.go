// Package ledger implements the bookkeeping core: folding delivered orders
// into stock, committing sales against it, and the daily sales counter.
package ledger

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Ledger struct {
	db  *gorm.DB
	log *zap.Logger
}

func New(db *gorm.DB, log *zap.Logger) *Ledger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ledger{db: db, log: log}
}

// DB exposes the underlying handle for read-only handler queries.
func (l *Ledger) DB() *gorm.DB {
	return l.db
}

// parseDecimal treats unparseable or empty money columns as zero, the typed
// equivalent of the store's old COALESCE(x, 0) reads.
func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
