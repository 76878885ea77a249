package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/equipage/facility-inventory/models"
	"github.com/equipage/facility-inventory/utils"
)

type StatusController struct {
	DB *gorm.DB
}

func NewStatusController(db *gorm.DB) *StatusController {
	return &StatusController{DB: db}
}

// GetAllStatuses lists the registry.
func (sc *StatusController) GetAllStatuses(c *gin.Context) {
	var statuses []models.Status
	if err := sc.DB.Order("name").Find(&statuses).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All statuses", statuses)
}

// CreateStatus adds a status. Adding is idempotent by name: an existing name
// is reported back without creating a duplicate.
func (sc *StatusController) CreateStatus(c *gin.Context) {
	var body struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondAppError(c, utils.NewValidationError("invalid payload: %v", err))
		return
	}

	name := strings.TrimSpace(body.Name)
	if name == "" {
		utils.RespondAppError(c, utils.NewValidationError("status name must not be empty"))
		return
	}

	var existing models.Status
	err := sc.DB.Where("name = ?", name).First(&existing).Error
	if err == nil {
		utils.RespondJSON(c, http.StatusOK, "Status already exists", existing)
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	status := models.Status{Name: name}
	if err := sc.DB.Create(&status).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Status created", status)
}

// DeleteStatus removes a status unless any item still references it.
func (sc *StatusController) DeleteStatus(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("status_id"))
	if err != nil {
		utils.RespondAppError(c, utils.NewValidationError("invalid status id %q", c.Param("status_id")))
		return
	}

	var status models.Status
	if err := sc.DB.First(&status, id).Error; err != nil {
		utils.RespondAppError(c, utils.NewNotFoundError("status %d not found", id))
		return
	}

	var inUse int64
	sc.DB.Model(&models.Item{}).Where("status_id = ?", status.ID).Count(&inUse)
	if inUse > 0 {
		utils.RespondAppError(c, utils.NewInUseError(
			"status %q is referenced by %d item(s) and cannot be deleted", status.Name, inUse))
		return
	}

	if err := sc.DB.Delete(&status).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Status deleted", gin.H{"status_id": status.ID})
}
