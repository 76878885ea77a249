package models

import "time"

// Equipment categories. The set is closed; the category is fixed when an item
// is created and never rebound on edit.
const (
	CategoryPump          = "Pump"
	CategoryValve         = "Valve"
	CategoryFilter        = "Filter"
	CategoryMixTank       = "Mix Tank"
	CategoryCommandCenter = "Command Center"
	CategoryMisc          = "Misc"
)

var Categories = []string{
	CategoryPump,
	CategoryValve,
	CategoryFilter,
	CategoryMixTank,
	CategoryCommandCenter,
	CategoryMisc,
}

func ValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// CategoryFields maps each category to the payload fields its spec sheet
// carries. Fields outside a category's set are rejected on create/edit.
var CategoryFields = map[string][]string{
	CategoryPump:          {"speed", "inlet", "outlet", "moc", "power"},
	CategoryValve:         {"moc", "size", "valve_type"},
	CategoryFilter:        {"inlet", "outlet", "moc", "filter_type"},
	CategoryMixTank:       {"inlet", "outlet", "moc", "power"},
	CategoryCommandCenter: {},
	CategoryMisc:          {"speed", "inlet", "outlet", "moc", "power", "quantity"},
}

// CategoryAllowsField reports whether a category's spec sheet carries the field.
func CategoryAllowsField(category, field string) bool {
	for _, f := range CategoryFields[category] {
		if f == field {
			return true
		}
	}
	return false
}

// Item is a single-table rendering of the per-category equipment variants:
// common columns plus the union of all category payload columns, with
// CategoryFields deciding which of them a given item may use.
type Item struct {
	ID          uint   `gorm:"primaryKey"`
	ItemID      string `gorm:"type:varchar(100);uniqueIndex;not null"`
	Category    string `gorm:"type:varchar(50);not null;index"`
	Description string `gorm:"type:text"`
	Vendor      string `gorm:"type:varchar(100)"`
	Rating      string `gorm:"type:varchar(50)"`
	Location    string `gorm:"type:varchar(100)"`
	StatusID    *uint
	Status      *Status `gorm:"foreignKey:StatusID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`

	// Category payload columns
	Speed      string `gorm:"type:varchar(50)"`
	Inlet      string `gorm:"type:varchar(50)"`
	Outlet     string `gorm:"type:varchar(50)"`
	MOC        string `gorm:"column:moc;type:varchar(100)"` // material of construction
	Power      string `gorm:"type:varchar(50)"`
	Size       string `gorm:"type:varchar(50)"`
	ValveType  string `gorm:"type:varchar(100)"`
	FilterType string `gorm:"type:varchar(100)"`
	Quantity   string `gorm:"type:varchar(50)"`

	LastUpdated time.Time `gorm:"autoUpdateTime"`

	Documents []ItemDocument `gorm:"foreignKey:ItemRefID;constraint:OnDelete:CASCADE"`
	Repairs   []RepairLog    `gorm:"foreignKey:ItemRefID;constraint:OnDelete:CASCADE"`
}

// PayloadField returns a pointer to the column backing a payload field name,
// or nil for unknown names.
func (i *Item) PayloadField(name string) *string {
	switch name {
	case "speed":
		return &i.Speed
	case "inlet":
		return &i.Inlet
	case "outlet":
		return &i.Outlet
	case "moc":
		return &i.MOC
	case "power":
		return &i.Power
	case "size":
		return &i.Size
	case "valve_type":
		return &i.ValveType
	case "filter_type":
		return &i.FilterType
	case "quantity":
		return &i.Quantity
	}
	return nil
}
