package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/equipage/facility-inventory/models"
	"github.com/equipage/facility-inventory/utils"
)

// LogController exposes the audit trail read-only. Entries are written only
// by the audit service; there is deliberately no create/update/delete here.
type LogController struct {
	DB *gorm.DB
}

func NewLogController(db *gorm.DB) *LogController {
	return &LogController{DB: db}
}

// GetAllLogs lists audit entries newest first, optionally filtered by the
// item's ID string or by action.
func (lc *LogController) GetAllLogs(c *gin.Context) {
	query := lc.DB.Preload("User")

	if item := c.Query("item"); item != "" {
		query = query.Where("item_id_str = ?", item)
	}
	if action := c.Query("action"); action != "" {
		query = query.Where("action = ?", action)
	}

	var entries []models.LogEntry
	if err := query.Order("created_at DESC, id DESC").Find(&entries).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Audit log", entries)
}
