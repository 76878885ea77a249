package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/equipage/facility-inventory/models"
	"github.com/equipage/facility-inventory/utils"
)

// RepairService couples item status transitions to repair records. An item is
// logically "in repair" exactly when it has one RepairLog with is_active=true;
// that log is found by query, never cached.
type RepairService struct {
	DB    *gorm.DB
	Audit *AuditLogger
}

func NewRepairService(db *gorm.DB, audit *AuditLogger) *RepairService {
	return &RepairService{DB: db, Audit: audit}
}

// RepairInput is the nested repair payload submitted alongside an item edit
// that sets the status to Repair. Dates use YYYY-MM-DD.
type RepairInput struct {
	RepairCompany      string   `json:"repair_company" binding:"required"`
	ContactName        string   `json:"contact_name"`
	ContactPhone       string   `json:"contact_phone"`
	ContactEmail       string   `json:"contact_email"`
	StartDate          string   `json:"start_date" binding:"required"`
	ExpectedReturnDate string   `json:"expected_return_date"`
	Description        string   `json:"description"`
	Cost               *float64 `json:"cost"`
}

const dateLayout = "2006-01-02"

func (in *RepairInput) parseDates() (start time.Time, expected *time.Time, err error) {
	start, err = time.Parse(dateLayout, in.StartDate)
	if err != nil {
		return start, nil, utils.NewValidationError("invalid start_date %q, expected YYYY-MM-DD", in.StartDate)
	}
	if in.ExpectedReturnDate != "" {
		t, err := time.Parse(dateLayout, in.ExpectedReturnDate)
		if err != nil {
			return start, nil, utils.NewValidationError("invalid expected_return_date %q, expected YYYY-MM-DD", in.ExpectedReturnDate)
		}
		expected = &t
	}
	return start, expected, nil
}

// StartOrUpdate runs inside the caller's transaction so the item status change
// and the repair record write commit or roll back together. If the item has no
// active repair a new one is created (Repair Started); otherwise the active
// record is updated in place (Repair Updated), never a second active row.
// The returned action and log are for post-commit audit/broadcast.
func (s *RepairService) StartOrUpdate(tx *gorm.DB, item *models.Item, in RepairInput) (string, *models.RepairLog, error) {
	start, expected, err := in.parseDates()
	if err != nil {
		return "", nil, err
	}

	var repair models.RepairLog
	err = tx.Where("item_ref_id = ? AND is_active = ?", item.ID, true).First(&repair).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		repair = models.RepairLog{
			ItemRefID:          item.ID,
			RepairCompany:      in.RepairCompany,
			ContactName:        in.ContactName,
			ContactPhone:       in.ContactPhone,
			ContactEmail:       in.ContactEmail,
			StartDate:          start,
			ExpectedReturnDate: expected,
			Description:        in.Description,
			Cost:               in.Cost,
			IsActive:           true,
		}
		if err := tx.Create(&repair).Error; err != nil {
			return "", nil, err
		}
		return models.ActionRepairStarted, &repair, nil
	case err != nil:
		return "", nil, err
	default:
		repair.RepairCompany = in.RepairCompany
		repair.ContactName = in.ContactName
		repair.ContactPhone = in.ContactPhone
		repair.ContactEmail = in.ContactEmail
		repair.StartDate = start
		repair.ExpectedReturnDate = expected
		repair.Description = in.Description
		repair.Cost = in.Cost
		if err := tx.Save(&repair).Error; err != nil {
			return "", nil, err
		}
		return models.ActionRepairUpdated, &repair, nil
	}
}

// Complete deactivates a repair, stamps its end date and emits the Repair
// Completed entry, then reverts the item's status to Warehouse. The
// deactivation commits on its own: a missing Warehouse status is reported as a
// ConfigurationError but does not undo the completed repair.
func (s *RepairService) Complete(repairID uint, userID *uint) (*models.RepairLog, error) {
	var repair models.RepairLog
	if err := s.DB.Preload("Item").First(&repair, repairID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("repair log %d not found", repairID)
		}
		return nil, err
	}
	if !repair.IsActive {
		return nil, utils.NewValidationError("repair log %d is not active", repairID)
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		repair.IsActive = false
		repair.EndDate = &now
		return tx.Save(&repair).Error
	})
	if err != nil {
		return nil, err
	}

	s.Audit.RepairEvent(userID, models.ActionRepairCompleted, repair.Item.ItemID,
		fmt.Sprintf("Repair by '%s' completed.", repair.RepairCompany))

	var warehouse models.Status
	if err := s.DB.Where("name = ?", models.StatusWarehouse).First(&warehouse).Error; err != nil {
		return &repair, utils.NewConfigurationError(
			"status %q not found; repair completed but item status left unchanged", models.StatusWarehouse)
	}

	if err := s.DB.Model(&models.Item{}).Where("id = ?", repair.ItemRefID).
		Update("status_id", warehouse.ID).Error; err != nil {
		return &repair, err
	}

	return &repair, nil
}

// ActiveRepair returns the item's active repair log, or nil when the item is
// not in repair.
func (s *RepairService) ActiveRepair(itemID uint) (*models.RepairLog, error) {
	var repair models.RepairLog
	err := s.DB.Where("item_ref_id = ? AND is_active = ?", itemID, true).First(&repair).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &repair, nil
}
