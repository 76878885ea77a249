package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/equipage/facility-inventory/events"
	"github.com/equipage/facility-inventory/models"
	"github.com/equipage/facility-inventory/utils"
)

// ChangeMonitor drains db_changes rows written by the database triggers and
// broadcasts the matching records to the websocket feed. It is best-effort
// plumbing for live dashboards and has no part in request handling.
type ChangeMonitor struct {
	DB       *gorm.DB
	StopChan chan struct{}
	Interval time.Duration
}

func NewChangeMonitor(db *gorm.DB) *ChangeMonitor {
	return &ChangeMonitor{
		DB:       db,
		StopChan: make(chan struct{}),
		Interval: 1 * time.Second,
	}
}

func (cm *ChangeMonitor) Start() {
	go func() {
		ticker := time.NewTicker(cm.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				cm.checkChanges()
			case <-cm.StopChan:
				return
			}
		}
	}()
}

func (cm *ChangeMonitor) Stop() {
	close(cm.StopChan)
}

func (cm *ChangeMonitor) checkChanges() {
	var changes []models.DBChange

	tx := cm.DB.Begin()

	if err := tx.Where("processed = ?", false).
		Order("changed_at ASC").
		Limit(100).
		Find(&changes).Error; err != nil {
		tx.Rollback()
		utils.ErrorLogger.Printf("change monitor: fetching changes: %v", err)
		return
	}

	for _, change := range changes {
		switch change.TableName {
		case "log_entries":
			cm.processLogEntryChange(change)
		case "items":
			cm.processItemChange(change)
		case "repair_logs":
			cm.processRepairChange(change)
		}

		if err := tx.Model(&models.DBChange{}).
			Where("id = ?", change.ID).
			Update("processed", true).Error; err != nil {
			tx.Rollback()
			utils.ErrorLogger.Printf("change monitor: marking change processed: %v", err)
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		utils.ErrorLogger.Printf("change monitor: commit: %v", err)
		tx.Rollback()
		return
	}

	if len(changes) > 0 {
		utils.InfoLogger.Printf("change monitor: processed %d changes", len(changes))
	}
}

func (cm *ChangeMonitor) processLogEntryChange(change models.DBChange) {
	var entry models.LogEntry
	if err := cm.DB.Preload("User").First(&entry, change.RecordID).Error; err != nil {
		utils.ErrorLogger.Printf("change monitor: fetching log entry %d: %v", change.RecordID, err)
		return
	}
	events.BroadcastLogEntry(entry)
}

func (cm *ChangeMonitor) processItemChange(change models.DBChange) {
	if change.ActionType == "DELETE" {
		return
	}
	var item models.Item
	if err := cm.DB.Preload("Status").First(&item, change.RecordID).Error; err != nil {
		utils.ErrorLogger.Printf("change monitor: fetching item %d: %v", change.RecordID, err)
		return
	}
	events.BroadcastItemUpdate(item)
}

func (cm *ChangeMonitor) processRepairChange(change models.DBChange) {
	if change.ActionType == "DELETE" {
		return
	}
	var repair models.RepairLog
	if err := cm.DB.First(&repair, change.RecordID).Error; err != nil {
		utils.ErrorLogger.Printf("change monitor: fetching repair log %d: %v", change.RecordID, err)
		return
	}
	events.BroadcastRepairUpdate(repair)
}
