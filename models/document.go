package models

import "time"

// Attachment limits, matching the original record sheets.
const (
	MaxItemDocuments   = 7
	MaxRepairDocuments = 5
)

// ItemDocument is an uploaded attachment (manual, datasheet, photo) on an item.
type ItemDocument struct {
	ID         uint   `gorm:"primaryKey"`
	ItemRefID  uint   `gorm:"not null;index"`
	FileName   string `gorm:"type:varchar(255);not null"` // original upload name
	StoredName string `gorm:"type:varchar(255);not null"` // uuid-based name on disk
	Path       string `gorm:"type:varchar(255);not null"`
	CreatedAt  time.Time
}

// RepairDocument is an uploaded attachment on a repair log (quote, invoice).
type RepairDocument struct {
	ID          uint   `gorm:"primaryKey"`
	RepairLogID uint   `gorm:"not null;index"`
	FileName    string `gorm:"type:varchar(255);not null"`
	StoredName  string `gorm:"type:varchar(255);not null"`
	Path        string `gorm:"type:varchar(255);not null"`
	CreatedAt   time.Time
}
