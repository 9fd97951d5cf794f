package models

import "time"

// Product is the catalog master row. Identity is the product name; orders and
// stock reference it by name rather than by id (no foreign key), matching the
// ledger's import format.
type Product struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductName    string    `gorm:"uniqueIndex;not null" json:"product_name"`
	Barcode        *string   `gorm:"uniqueIndex" json:"barcode,omitempty"`
	SKUPrefix      string    `gorm:"size:50;default:'-'" json:"sku_prefix"`
	RetailPrice    string    `gorm:"type:varchar(32);not null;default:'0'" json:"retail_price"`
	WholesalePrice string    `gorm:"type:varchar(32);not null;default:'0'" json:"wholesale_price"`
	UnitRatio      string    `gorm:"type:varchar(32);not null;default:'1:1:1'" json:"unit_ratio"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
