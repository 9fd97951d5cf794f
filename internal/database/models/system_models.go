package models

import "time"

// SystemStatusID is the id of the singleton system_statuses row.
const SystemStatusID = 1

// SystemStatus holds the running daily sales total and the date it was last
// reset. The reset is lazy: it happens on the next touch after midnight.
type SystemStatus struct {
	ID         int64  `gorm:"primaryKey"`
	DailySales string `gorm:"type:varchar(32);not null;default:'0'"`
	LastReset  string `gorm:"size:10;not null;default:''"`
	UpdatedAt  time.Time
}
