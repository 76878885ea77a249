package services

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/equipage/facility-inventory/models"
	"github.com/equipage/facility-inventory/utils"
)

// AuditLogger writes the append-only change log. Writes are best-effort: a
// failed log write is reported and swallowed, never propagated to the caller,
// so it cannot roll back the item mutation it describes.
type AuditLogger struct {
	DB *gorm.DB
}

func NewAuditLogger(db *gorm.DB) *AuditLogger {
	return &AuditLogger{DB: db}
}

// auditField pairs a display label with the accessor for one audited column.
// last_updated is deliberately absent: it changes on every save and would turn
// every edit into a diff.
type auditField struct {
	Label string
	Value func(*models.Item) string
}

var auditFields = []auditField{
	{"Item ID", func(i *models.Item) string { return i.ItemID }},
	{"Category", func(i *models.Item) string { return i.Category }},
	{"Description", func(i *models.Item) string { return i.Description }},
	{"Vendor", func(i *models.Item) string { return i.Vendor }},
	{"Rating", func(i *models.Item) string { return i.Rating }},
	{"Location", func(i *models.Item) string { return i.Location }},
	{"Status", statusName},
	{"Speed", func(i *models.Item) string { return i.Speed }},
	{"Inlet", func(i *models.Item) string { return i.Inlet }},
	{"Outlet", func(i *models.Item) string { return i.Outlet }},
	{"Material of construction", func(i *models.Item) string { return i.MOC }},
	{"Power", func(i *models.Item) string { return i.Power }},
	{"Size", func(i *models.Item) string { return i.Size }},
	{"Valve type", func(i *models.Item) string { return i.ValveType }},
	{"Filter type", func(i *models.Item) string { return i.FilterType }},
	{"Quantity", func(i *models.Item) string { return i.Quantity }},
}

func statusName(i *models.Item) string {
	if i.Status != nil {
		return i.Status.Name
	}
	return ""
}

// DiffItems compares two item snapshots field by field and returns one
// human-readable line per change. Both snapshots must carry their Status
// association so status changes compare by name.
func DiffItems(before, after *models.Item) []string {
	var changes []string
	for _, f := range auditFields {
		oldVal := f.Value(before)
		newVal := f.Value(after)
		if oldVal != newVal {
			changes = append(changes, fmt.Sprintf("%s from '%s' to '%s'", f.Label, oldVal, newVal))
		}
	}
	return changes
}

// ItemCreated records a Created entry. Always emitted.
func (a *AuditLogger) ItemCreated(userID *uint, item *models.Item) {
	a.record(models.LogEntry{
		UserID:    userID,
		Action:    models.ActionCreated,
		ItemIDStr: item.ItemID,
		Details:   fmt.Sprintf("New item added to category '%s'.", item.Category),
	})
}

// ItemUpdated diffs the before/after snapshots and records one Updated entry
// listing every change. No-op edits produce no entry.
func (a *AuditLogger) ItemUpdated(userID *uint, before, after *models.Item) {
	changes := DiffItems(before, after)
	if len(changes) == 0 {
		return
	}
	a.record(models.LogEntry{
		UserID:    userID,
		Action:    models.ActionUpdated,
		ItemIDStr: after.ItemID,
		Details:   strings.Join(changes, "; "),
	})
}

// ItemDeleted records a Deleted entry from a snapshot captured before the row
// was removed.
func (a *AuditLogger) ItemDeleted(userID *uint, item *models.Item) {
	a.record(models.LogEntry{
		UserID:    userID,
		Action:    models.ActionDeleted,
		ItemIDStr: item.ItemID,
		Details:   fmt.Sprintf("Item '%s' (category '%s') deleted.", item.ItemID, item.Category),
	})
}

// RepairEvent records one of the repair workflow actions.
func (a *AuditLogger) RepairEvent(userID *uint, action string, itemID, details string) {
	a.record(models.LogEntry{
		UserID:    userID,
		Action:    action,
		ItemIDStr: itemID,
		Details:   details,
	})
}

func (a *AuditLogger) record(entry models.LogEntry) {
	if err := a.DB.Create(&entry).Error; err != nil {
		utils.ErrorLogger.Printf("audit: failed to write %s entry for %s: %v",
			entry.Action, entry.ItemIDStr, err)
	}
}
