package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/equipage/facility-inventory/events"
	"github.com/equipage/facility-inventory/models"
	"github.com/equipage/facility-inventory/services"
	"github.com/equipage/facility-inventory/utils"
)

type ItemController struct {
	DB      *gorm.DB
	Audit   *services.AuditLogger
	Repairs *services.RepairService
}

func NewItemController(db *gorm.DB, audit *services.AuditLogger, repairs *services.RepairService) *ItemController {
	return &ItemController{DB: db, Audit: audit, Repairs: repairs}
}

// userIDFromContext returns the acting user's ID, or nil for anonymous writes
// (audit entries keep a nullable user reference).
func userIDFromContext(c *gin.Context) *uint {
	if v, exists := c.Get("user_id"); exists {
		if id, ok := v.(uint); ok {
			return &id
		}
	}
	return nil
}

// applyPayloadFields copies category payload values onto the item, rejecting
// fields the item's category does not carry.
func applyPayloadFields(item *models.Item, fields map[string]string) error {
	for name, value := range fields {
		target := item.PayloadField(name)
		if target == nil {
			return utils.NewValidationError("unknown field %q", name)
		}
		if !models.CategoryAllowsField(item.Category, name) {
			return utils.NewValidationError("field %q is not valid for category %q", name, item.Category)
		}
		*target = value
	}
	return nil
}

// GetAllItems lists items with optional free-text and status filters.
// q matches item_id, description, location and vendor case-insensitively.
func (ic *ItemController) GetAllItems(c *gin.Context) {
	query := ic.DB.Preload("Status")

	if q := c.Query("q"); q != "" {
		pat := "%" + strings.ToLower(q) + "%"
		query = query.Where(
			"LOWER(item_id) LIKE ? OR LOWER(description) LIKE ? OR LOWER(location) LIKE ? OR LOWER(vendor) LIKE ?",
			pat, pat, pat, pat)
	}
	if sid := c.Query("status"); sid != "" {
		query = query.Where("status_id = ?", sid)
	}

	var items []models.Item
	if err := query.Order("category, item_id").Find(&items).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All items", items)
}

// GetItemByID returns one item with its status, documents and repair history.
func (ic *ItemController) GetItemByID(c *gin.Context) {
	var item models.Item
	err := ic.DB.Preload("Status").
		Preload("Documents").
		Preload("Repairs", func(db *gorm.DB) *gorm.DB {
			return db.Order("start_date DESC")
		}).
		Preload("Repairs.Documents").
		Where("item_id = ?", c.Param("item_id")).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondAppError(c, utils.NewNotFoundError("item %q not found", c.Param("item_id")))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Item detail", item)
}

type itemCreateRequest struct {
	ItemID      string            `json:"item_id" binding:"required"`
	Description string            `json:"description"`
	Vendor      string            `json:"vendor"`
	Rating      string            `json:"rating"`
	Location    string            `json:"location"`
	StatusID    *uint             `json:"status_id"`
	Fields      map[string]string `json:"fields"`
}

// CreateItem creates an item of the category named in the route. The category
// comes from the URL only and is fixed for the item's lifetime.
func (ic *ItemController) CreateItem(c *gin.Context) {
	category := c.Param("category")
	if !models.ValidCategory(category) {
		utils.RespondAppError(c, utils.NewValidationError("unknown category %q", category))
		return
	}

	var req itemCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondAppError(c, utils.NewValidationError("invalid payload: %v", err))
		return
	}

	item := models.Item{
		ItemID:      req.ItemID,
		Category:    category,
		Description: req.Description,
		Vendor:      req.Vendor,
		Rating:      req.Rating,
		Location:    req.Location,
	}

	err := ic.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		tx.Model(&models.Item{}).Where("item_id = ?", req.ItemID).Count(&count)
		if count > 0 {
			return utils.NewValidationError("item ID %q already exists", req.ItemID)
		}

		if req.StatusID != nil {
			var status models.Status
			if err := tx.First(&status, *req.StatusID).Error; err != nil {
				return utils.NewValidationError("status %d does not exist", *req.StatusID)
			}
			item.StatusID = req.StatusID
		}

		if err := applyPayloadFields(&item, req.Fields); err != nil {
			return err
		}

		return tx.Create(&item).Error
	})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	// Audit and broadcast are best-effort once the create has committed.
	ic.Audit.ItemCreated(userIDFromContext(c), &item)

	ic.DB.Preload("Status").First(&item, item.ID)
	events.BroadcastItemUpdate(item)

	utils.RespondJSON(c, http.StatusCreated, "Item created", item)
}

type itemUpdateRequest struct {
	ItemID      *string               `json:"item_id"`
	Description *string               `json:"description"`
	Vendor      *string               `json:"vendor"`
	Rating      *string               `json:"rating"`
	Location    *string               `json:"location"`
	StatusID    *uint                 `json:"status_id"`
	Fields      map[string]string     `json:"fields"`
	Repair      *services.RepairInput `json:"repair"`
}

// UpdateItem edits an item. A category in the payload is ignored: categories
// are fixed at creation. Setting the status to Repair requires a valid nested
// repair payload; the status change and the repair record commit atomically.
func (ic *ItemController) UpdateItem(c *gin.Context) {
	var req itemUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondAppError(c, utils.NewValidationError("invalid payload: %v", err))
		return
	}

	var before models.Item
	var repairAction string
	var repairLog *models.RepairLog

	err := ic.DB.Transaction(func(tx *gorm.DB) error {
		// Before-image read inside the same transaction as the update, so the
		// audit diff reflects the state this write replaced.
		if err := tx.Preload("Status").Where("item_id = ?", c.Param("item_id")).First(&before).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NewNotFoundError("item %q not found", c.Param("item_id"))
			}
			return err
		}

		item := before
		item.Status = nil

		if req.ItemID != nil && *req.ItemID != before.ItemID {
			if *req.ItemID == "" {
				return utils.NewValidationError("item_id must not be empty")
			}
			var count int64
			tx.Model(&models.Item{}).Where("item_id = ? AND id <> ?", *req.ItemID, before.ID).Count(&count)
			if count > 0 {
				return utils.NewValidationError("item ID %q already exists", *req.ItemID)
			}
			item.ItemID = *req.ItemID
		}
		if req.Description != nil {
			item.Description = *req.Description
		}
		if req.Vendor != nil {
			item.Vendor = *req.Vendor
		}
		if req.Rating != nil {
			item.Rating = *req.Rating
		}
		if req.Location != nil {
			item.Location = *req.Location
		}

		var targetStatus *models.Status
		if req.StatusID != nil {
			var status models.Status
			if err := tx.First(&status, *req.StatusID).Error; err != nil {
				return utils.NewValidationError("status %d does not exist", *req.StatusID)
			}
			item.StatusID = req.StatusID
			targetStatus = &status
		}

		if err := applyPayloadFields(&item, req.Fields); err != nil {
			return err
		}

		if err := tx.Save(&item).Error; err != nil {
			return err
		}

		// Status set to Repair couples this edit to the repair workflow: both
		// writes commit or roll back together.
		if targetStatus != nil && targetStatus.Name == models.StatusRepair {
			if req.Repair == nil {
				return utils.NewValidationError(
					"repair details are required when status is set to %q", models.StatusRepair)
			}
			action, repair, err := ic.Repairs.StartOrUpdate(tx, &item, *req.Repair)
			if err != nil {
				return err
			}
			repairAction = action
			repairLog = repair
		}

		return nil
	})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	var after models.Item
	if err := ic.DB.Preload("Status").First(&after, before.ID).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	userID := userIDFromContext(c)
	ic.Audit.ItemUpdated(userID, &before, &after)

	if repairAction != "" {
		detail := fmt.Sprintf("Repair started with '%s'.", repairLog.RepairCompany)
		if repairAction == models.ActionRepairUpdated {
			detail = fmt.Sprintf("Active repair with '%s' updated.", repairLog.RepairCompany)
		}
		ic.Audit.RepairEvent(userID, repairAction, after.ItemID, detail)
		events.BroadcastRepairUpdate(*repairLog)
	}

	events.BroadcastItemUpdate(after)

	utils.RespondJSON(c, http.StatusOK, "Item updated", after)
}

// DeleteItem removes an item along with its repair logs and documents. The
// Deleted audit entry is captured from a snapshot taken before the row goes.
func (ic *ItemController) DeleteItem(c *gin.Context) {
	var item models.Item
	err := ic.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("item_id = ?", c.Param("item_id")).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NewNotFoundError("item %q not found", c.Param("item_id"))
			}
			return err
		}

		// Explicit cascade: SQLite test databases do not enforce the FK
		// constraints the MySQL schema carries.
		var repairIDs []uint
		tx.Model(&models.RepairLog{}).Where("item_ref_id = ?", item.ID).Pluck("id", &repairIDs)
		if len(repairIDs) > 0 {
			if err := tx.Where("repair_log_id IN ?", repairIDs).Delete(&models.RepairDocument{}).Error; err != nil {
				return err
			}
			if err := tx.Where("item_ref_id = ?", item.ID).Delete(&models.RepairLog{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("item_ref_id = ?", item.ID).Delete(&models.ItemDocument{}).Error; err != nil {
			return err
		}

		return tx.Delete(&item).Error
	})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	ic.Audit.ItemDeleted(userIDFromContext(c), &item)

	utils.RespondJSON(c, http.StatusOK, "Item deleted", gin.H{"item_id": item.ItemID})
}

// UploadItemDocuments attaches files to an item, capped at MaxItemDocuments.
func (ic *ItemController) UploadItemDocuments(c *gin.Context) {
	var item models.Item
	if err := ic.DB.Where("item_id = ?", c.Param("item_id")).First(&item).Error; err != nil {
		utils.RespondAppError(c, utils.NewNotFoundError("item %q not found", c.Param("item_id")))
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		utils.RespondAppError(c, utils.NewValidationError("invalid multipart form: %v", err))
		return
	}
	files := form.File["documents"]
	if len(files) == 0 {
		utils.RespondAppError(c, utils.NewValidationError("no documents provided"))
		return
	}

	var existing int64
	ic.DB.Model(&models.ItemDocument{}).Where("item_ref_id = ?", item.ID).Count(&existing)
	if int(existing)+len(files) > models.MaxItemDocuments {
		utils.RespondAppError(c, utils.NewValidationError(
			"an item may have at most %d documents", models.MaxItemDocuments))
		return
	}

	uploadDir := documentDir()
	var docs []models.ItemDocument
	for _, file := range files {
		storedName := uuid.NewString() + filepath.Ext(file.Filename)
		path := filepath.Join(uploadDir, storedName)
		if err := c.SaveUploadedFile(file, path); err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		doc := models.ItemDocument{
			ItemRefID:  item.ID,
			FileName:   file.Filename,
			StoredName: storedName,
			Path:       path,
		}
		if err := ic.DB.Create(&doc).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		docs = append(docs, doc)
	}

	utils.InfoLogger.Printf("uploaded %d documents for item %s", len(docs), item.ItemID)
	utils.RespondJSON(c, http.StatusCreated, "Documents uploaded", docs)
}

func documentDir() string {
	dir := os.Getenv("UPLOAD_DIR")
	if dir == "" {
		dir = filepath.Join("public", "uploads")
	}
	os.MkdirAll(dir, 0o755)
	return dir
}
