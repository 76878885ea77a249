package controllers

import (
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/equipage/facility-inventory/events"
	"github.com/equipage/facility-inventory/models"
	"github.com/equipage/facility-inventory/services"
	"github.com/equipage/facility-inventory/utils"
)

type RepairController struct {
	DB      *gorm.DB
	Repairs *services.RepairService
}

func NewRepairController(db *gorm.DB, repairs *services.RepairService) *RepairController {
	return &RepairController{DB: db, Repairs: repairs}
}

// CompleteRepair closes an active repair and reverts the item's status to
// Warehouse. A missing Warehouse status is reported as an error even though
// the repair itself has completed.
func (rc *RepairController) CompleteRepair(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("repair_id"))
	if err != nil {
		utils.RespondAppError(c, utils.NewValidationError("invalid repair id %q", c.Param("repair_id")))
		return
	}

	repair, err := rc.Repairs.Complete(uint(id), userIDFromContext(c))
	if err != nil {
		if repair != nil {
			// The repair record committed; only the status revert failed.
			utils.ErrorLogger.Printf("repair %d completed but status revert failed: %v", repair.ID, err)
		}
		utils.RespondAppError(c, err)
		return
	}

	events.BroadcastRepairUpdate(*repair)

	utils.RespondJSON(c, http.StatusOK, "Repair completed", repair)
}

// GetRepairByID returns one repair log with its documents.
func (rc *RepairController) GetRepairByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("repair_id"))
	if err != nil {
		utils.RespondAppError(c, utils.NewValidationError("invalid repair id %q", c.Param("repair_id")))
		return
	}

	var repair models.RepairLog
	if err := rc.DB.Preload("Documents").Preload("Item").First(&repair, id).Error; err != nil {
		utils.RespondAppError(c, utils.NewNotFoundError("repair log %d not found", id))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Repair detail", repair)
}

// UploadRepairDocuments attaches files to a repair log, capped at
// MaxRepairDocuments.
func (rc *RepairController) UploadRepairDocuments(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("repair_id"))
	if err != nil {
		utils.RespondAppError(c, utils.NewValidationError("invalid repair id %q", c.Param("repair_id")))
		return
	}

	var repair models.RepairLog
	if err := rc.DB.First(&repair, id).Error; err != nil {
		utils.RespondAppError(c, utils.NewNotFoundError("repair log %d not found", id))
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
	rc.DB.Model(&models.RepairDocument{}).Where("repair_log_id = ?", repair.ID).Count(&existing)
	if int(existing)+len(files) > models.MaxRepairDocuments {
		utils.RespondAppError(c, utils.NewValidationError(
			"a repair log may have at most %d documents", models.MaxRepairDocuments))
		return
	}

	uploadDir := documentDir()
	var docs []models.RepairDocument
	for _, file := range files {
		storedName := uuid.NewString() + filepath.Ext(file.Filename)
		path := filepath.Join(uploadDir, storedName)
		if err := c.SaveUploadedFile(file, path); err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		doc := models.RepairDocument{
			RepairLogID: repair.ID,
			FileName:    file.Filename,
			StoredName:  storedName,
			Path:        path,
		}
		if err := rc.DB.Create(&doc).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		docs = append(docs, doc)
	}

	utils.InfoLogger.Printf("uploaded %d documents for repair log %d", len(docs), repair.ID)
	utils.RespondJSON(c, http.StatusCreated, "Documents uploaded", docs)
}
