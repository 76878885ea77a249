package models

// Well-known statuses the repair workflow depends on. Both are seeded at
// startup; "Warehouse" must exist for repair completion to revert item status.
const (
	StatusWarehouse = "Warehouse"
	StatusRepair    = "Repair"
)

type Status struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"type:varchar(100);uniqueIndex;not null"`
}
