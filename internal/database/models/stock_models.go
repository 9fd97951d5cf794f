package models

import "time"

// StockEntry is the per-product on-hand row, one per product name. Quantity is
// always in base units (pieces). Price and ratio columns are copies refreshed
// from the catalog on every reconcile so a sale can price itself even when the
// catalog row has been removed.
type StockEntry struct {
	ID             int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductName    string     `gorm:"uniqueIndex;not null" json:"product_name"`
	Quantity       int64      `gorm:"not null;default:0" json:"quantity"`
	SoldQuantity   int64      `gorm:"not null;default:0" json:"sold_quantity"`
	SoldRevenue    string     `gorm:"type:varchar(32);not null;default:'0'" json:"sold_revenue"`
	CostPrice      string     `gorm:"type:varchar(32);not null;default:'0'" json:"cost_price"`
	RetailPrice    string     `gorm:"type:varchar(32);not null;default:'0'" json:"retail_price"`
	WholesalePrice string     `gorm:"type:varchar(32);not null;default:'0'" json:"wholesale_price"`
	UnitRatio      string     `gorm:"type:varchar(32);not null;default:'1:1:1'" json:"unit_ratio"`
	Barcode        *string    `gorm:"index" json:"barcode,omitempty"`
	ReceivedAt     *time.Time `json:"received_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// SaleRecord is the persisted history of a committed sale line. The cart
// itself is transient; only applied lines are recorded.
type SaleRecord struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductName string    `gorm:"not null;index" json:"product_name"`
	Quantity    int64     `gorm:"not null" json:"quantity"`
	UnitType    string    `gorm:"size:16;not null" json:"unit_type"`
	UnitPrice   string    `gorm:"type:varchar(32);not null" json:"unit_price"`
	TotalPrice  string    `gorm:"type:varchar(32);not null" json:"total_price"`
	SoldAt      time.Time `json:"sold_at"`
}
