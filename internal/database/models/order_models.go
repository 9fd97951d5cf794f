package models

import "time"

const (
	OrderStatusPending     = "pending"
	OrderStatusInTransit   = "in_transit"
	OrderStatusDelivered   = "delivered"
	OrderStatusNeedsReview = "needs_review"
)

// OrderStatuses lists every valid shipment status.
var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusInTransit,
	OrderStatusDelivered,
	OrderStatusNeedsReview,
}

// ValidOrderStatus reports whether s is a known shipment status.
func ValidOrderStatus(s string) bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Order is a supplier purchase order. Units is the ordered count in nominal
// units (cartons for supplier orders); Processed marks the row as already
// folded into stock and Hidden soft-deletes it from default views.
type Order struct {
	ID              int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductName     string     `gorm:"not null;index" json:"product_name"`
	Shop            string     `gorm:"size:100" json:"shop"`
	Units           int64      `gorm:"not null;default:1" json:"units"`
	UnitType        string     `gorm:"size:16;not null;default:'carton'" json:"unit_type"`
	Price           string     `gorm:"type:varchar(32);not null;default:'0'" json:"price"`
	Payment         string     `gorm:"size:50" json:"payment"`
	Tracking        string     `gorm:"size:100;index" json:"tracking"`
	Shipping        string     `gorm:"size:50" json:"shipping"`
	Status          string     `gorm:"size:32;index;not null;default:'pending'" json:"status"`
	Processed       bool       `gorm:"not null;default:false" json:"processed"`
	Hidden          bool       `gorm:"not null;default:false" json:"hidden"`
	CreatedAt       time.Time  `json:"created_at"`
	StatusUpdatedAt *time.Time `json:"status_updated_at,omitempty"`
}
