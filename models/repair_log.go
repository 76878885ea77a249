package models

import "time"

// RepairLog records one repair of an item. The workflow keeps at most one
// active log per item; "active" is found by query, not a stored pointer.
type RepairLog struct {
	ID        uint `gorm:"primaryKey"`
	ItemRefID uint `gorm:"not null;index"`
	Item      Item `gorm:"foreignKey:ItemRefID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	RepairCompany string `gorm:"type:varchar(100);not null"`
	ContactName   string `gorm:"type:varchar(100)"`
	ContactPhone  string `gorm:"type:varchar(50)"`
	ContactEmail  string `gorm:"type:varchar(255)"`

	StartDate          time.Time `gorm:"not null"`
	ExpectedReturnDate *time.Time
	EndDate            *time.Time

	Description string   `gorm:"type:text"`
	Cost        *float64 `gorm:"type:decimal(10,2)"`
	IsActive    bool     `gorm:"not null;default:true;index"`

	Documents []RepairDocument `gorm:"foreignKey:RepairLogID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
