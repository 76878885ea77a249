package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/equipage/facility-inventory/models"
	"github.com/equipage/facility-inventory/utils"
)

func repairInput(company string) RepairInput {
	return RepairInput{
		RepairCompany: company,
		ContactName:   "Jo Field",
		StartDate:     "2026-08-01",
		Description:   "Leaking seal",
	}
}

func TestStartCreatesActiveRepair(t *testing.T) {
	db := setupServiceTestDB(t, "repair_start")
	svc := NewRepairService(db, NewAuditLogger(db))

	repairStatus := statusByName(t, db, models.StatusRepair)
	item := models.Item{ItemID: "P-101", Category: models.CategoryPump, StatusID: &repairStatus.ID}
	assert.NoError(t, db.Create(&item).Error)

	action, repair, err := svc.StartOrUpdate(db, &item, repairInput("Acme"))
	assert.NoError(t, err)
	assert.Equal(t, models.ActionRepairStarted, action)
	assert.True(t, repair.IsActive)
	assert.Equal(t, "Acme", repair.RepairCompany)

	var count int64
	db.Model(&models.RepairLog{}).Where("item_ref_id = ?", item.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestSecondStartUpdatesActiveRepair(t *testing.T) {
	db := setupServiceTestDB(t, "repair_second")
	svc := NewRepairService(db, NewAuditLogger(db))

	item := models.Item{ItemID: "P-102", Category: models.CategoryPump}
	assert.NoError(t, db.Create(&item).Error)

	action, first, err := svc.StartOrUpdate(db, &item, repairInput("Acme"))
	assert.NoError(t, err)
	assert.Equal(t, models.ActionRepairStarted, action)

	action, second, err := svc.StartOrUpdate(db, &item, repairInput("Blaze Repair"))
	assert.NoError(t, err)
	assert.Equal(t, models.ActionRepairUpdated, action)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Blaze Repair", second.RepairCompany)

	// Never a second active record
	var active int64
	db.Model(&models.RepairLog{}).Where("item_ref_id = ? AND is_active = ?", item.ID, true).Count(&active)
	assert.EqualValues(t, 1, active)
	var total int64
	db.Model(&models.RepairLog{}).Where("item_ref_id = ?", item.ID).Count(&total)
	assert.EqualValues(t, 1, total)
}

func TestInvalidStartDateRejected(t *testing.T) {
	db := setupServiceTestDB(t, "repair_baddate")
	svc := NewRepairService(db, NewAuditLogger(db))

	item := models.Item{ItemID: "P-103", Category: models.CategoryPump}
	assert.NoError(t, db.Create(&item).Error)

	in := repairInput("Acme")
	in.StartDate = "01/08/2026"
	_, _, err := svc.StartOrUpdate(db, &item, in)
	assert.Error(t, err)
	assert.True(t, utils.IsKind(err, utils.KindValidation))

	var count int64
	db.Model(&models.RepairLog{}).Count(&count)
	assert.Zero(t, count)
}

func TestCompleteRevertsStatusToWarehouse(t *testing.T) {
	db := setupServiceTestDB(t, "repair_complete")
	svc := NewRepairService(db, NewAuditLogger(db))

	repairStatus := statusByName(t, db, models.StatusRepair)
	warehouse := statusByName(t, db, models.StatusWarehouse)

	item := models.Item{ItemID: "P-104", Category: models.CategoryPump, StatusID: &repairStatus.ID}
	assert.NoError(t, db.Create(&item).Error)

	_, repair, err := svc.StartOrUpdate(db, &item, repairInput("Acme"))
	assert.NoError(t, err)

	completed, err := svc.Complete(repair.ID, nil)
	assert.NoError(t, err)
	assert.False(t, completed.IsActive)
	assert.NotNil(t, completed.EndDate)

	var reloaded models.Item
	assert.NoError(t, db.First(&reloaded, item.ID).Error)
	assert.NotNil(t, reloaded.StatusID)
	assert.Equal(t, warehouse.ID, *reloaded.StatusID)

	var entry models.LogEntry
	assert.NoError(t, db.Where("action = ?", models.ActionRepairCompleted).First(&entry).Error)
	assert.Equal(t, "P-104", entry.ItemIDStr)
}

func TestCompleteWithoutWarehouseStatus(t *testing.T) {
	db := setupServiceTestDB(t, "repair_nowarehouse")
	svc := NewRepairService(db, NewAuditLogger(db))

	repairStatus := statusByName(t, db, models.StatusRepair)
	item := models.Item{ItemID: "P-105", Category: models.CategoryPump, StatusID: &repairStatus.ID}
	assert.NoError(t, db.Create(&item).Error)

	_, repair, err := svc.StartOrUpdate(db, &item, repairInput("Acme"))
	assert.NoError(t, err)

	// Remove the status the completion path depends on.
	assert.NoError(t, db.Where("name = ?", models.StatusWarehouse).Delete(&models.Status{}).Error)

	completed, err := svc.Complete(repair.ID, nil)
	assert.Error(t, err)
	assert.True(t, utils.IsKind(err, utils.KindConfiguration))

	// The repair itself still completed; the item status is untouched.
	assert.NotNil(t, completed)
	var reloadedRepair models.RepairLog
	assert.NoError(t, db.First(&reloadedRepair, repair.ID).Error)
	assert.False(t, reloadedRepair.IsActive)
	assert.NotNil(t, reloadedRepair.EndDate)

	var reloadedItem models.Item
	assert.NoError(t, db.First(&reloadedItem, item.ID).Error)
	assert.Equal(t, repairStatus.ID, *reloadedItem.StatusID)

	var entry models.LogEntry
	assert.NoError(t, db.Where("action = ?", models.ActionRepairCompleted).First(&entry).Error)
}

func TestCompleteInactiveRepairRejected(t *testing.T) {
	db := setupServiceTestDB(t, "repair_inactive")
	svc := NewRepairService(db, NewAuditLogger(db))

	item := models.Item{ItemID: "P-106", Category: models.CategoryPump}
	assert.NoError(t, db.Create(&item).Error)

	_, repair, err := svc.StartOrUpdate(db, &item, repairInput("Acme"))
	assert.NoError(t, err)

	_, err = svc.Complete(repair.ID, nil)
	assert.NoError(t, err)

	_, err = svc.Complete(repair.ID, nil)
	assert.Error(t, err)
	assert.True(t, utils.IsKind(err, utils.KindValidation))
}

func TestActiveRepairLookup(t *testing.T) {
	db := setupServiceTestDB(t, "repair_lookup")
	svc := NewRepairService(db, NewAuditLogger(db))

	item := models.Item{ItemID: "P-107", Category: models.CategoryPump}
	assert.NoError(t, db.Create(&item).Error)

	active, err := svc.ActiveRepair(item.ID)
	assert.NoError(t, err)
	assert.Nil(t, active)

	_, repair, err := svc.StartOrUpdate(db, &item, repairInput("Acme"))
	assert.NoError(t, err)

	active, err = svc.ActiveRepair(item.ID)
	assert.NoError(t, err)
	assert.NotNil(t, active)
	assert.Equal(t, repair.ID, active.ID)
}
