package models

import "time"

// Audit actions.
const (
	ActionCreated         = "Created"
	ActionUpdated         = "Updated"
	ActionDeleted         = "Deleted"
	ActionRepairStarted   = "Repair Started"
	ActionRepairUpdated   = "Repair Updated"
	ActionRepairCompleted = "Repair Completed"
)

// LogEntry is an append-only audit record. It deliberately holds no foreign
// key to Item: item_id_str is a snapshot so the entry survives item deletion.
// The user reference survives user deletion via SET NULL.
type LogEntry struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"not null;index"`
	UserID    *uint
	User      *User  `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	Action    string `gorm:"type:varchar(20);not null;index"`
	ItemIDStr string `gorm:"type:varchar(100);not null;index"`
	Details   string `gorm:"type:text"`
}
