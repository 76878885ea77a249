package controllers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-pdf/fpdf"
	"gorm.io/gorm"

	"github.com/equipage/facility-inventory/models"
	"github.com/equipage/facility-inventory/utils"
)

type ReportController struct {
	DB *gorm.DB
}

func NewReportController(db *gorm.DB) *ReportController {
	return &ReportController{DB: db}
}

// GetInventoryStats summarizes the inventory for the dashboard.
func (rc *ReportController) GetInventoryStats(c *gin.Context) {
	var stats struct {
		TotalItems      int64            `json:"total_items"`
		ActiveRepairs   int64            `json:"active_repairs"`
		TotalRepairCost float64          `json:"total_repair_cost"`
		ByCategory      map[string]int64 `json:"by_category"`
		ByStatus        map[string]int64 `json:"by_status"`
	}
	stats.ByCategory = make(map[string]int64)
	stats.ByStatus = make(map[string]int64)

	if err := rc.DB.Model(&models.Item{}).Count(&stats.TotalItems).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	rc.DB.Model(&models.RepairLog{}).Where("is_active = ?", true).Count(&stats.ActiveRepairs)
	rc.DB.Model(&models.RepairLog{}).Select("COALESCE(SUM(cost), 0)").Scan(&stats.TotalRepairCost)

	var categoryCounts []struct {
		Category string
		Count    int64
	}
	rc.DB.Model(&models.Item{}).Select("category, COUNT(*) as count").
		Group("category").Scan(&categoryCounts)
	for _, row := range categoryCounts {
		stats.ByCategory[row.Category] = row.Count
	}

	var statusCounts []struct {
		Name  string
		Count int64
	}
	rc.DB.Model(&models.Item{}).
		Select("statuses.name, COUNT(*) as count").
		Joins("JOIN statuses ON statuses.id = items.status_id").
		Group("statuses.name").Scan(&statusCounts)
	for _, row := range statusCounts {
		stats.ByStatus[row.Name] = row.Count
	}

	utils.RespondJSON(c, http.StatusOK, "Inventory stats", stats)
}

// ExportCSV streams the full item list as CSV.
func (rc *ReportController) ExportCSV(c *gin.Context) {
	var items []models.Item
	if err := rc.DB.Preload("Status").Order("category, item_id").Find(&items).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	filename := fmt.Sprintf("inventory-%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename="+filename)

	w := csv.NewWriter(c.Writer)
	w.Write([]string{"Item ID", "Category", "Description", "Vendor", "Rating", "Location", "Status", "Last Updated"})
	for _, item := range items {
		status := ""
		if item.Status != nil {
			status = item.Status.Name
		}
		w.Write([]string{
			item.ItemID,
			item.Category,
			item.Description,
			item.Vendor,
			item.Rating,
			item.Location,
			status,
			item.LastUpdated.Format("2006-01-02 15:04"),
		})
	}
	w.Flush()
}

// ExportPDF renders the item list as a PDF inventory sheet.
func (rc *ReportController) ExportPDF(c *gin.Context) {
	var items []models.Item
	if err := rc.DB.Preload("Status").Order("category, item_id").Find(&items).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 10, "Facility Equipment Inventory")
	pdf.Ln(12)

	headers := []string{"Item ID", "Category", "Vendor", "Location", "Status", "Last Updated"}
	widths := []float64{45, 40, 45, 50, 40, 45}

	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range items {
		status := ""
		if item.Status != nil {
			status = item.Status.Name
		}
		row := []string{
			item.ItemID,
			item.Category,
			item.Vendor,
			item.Location,
			status,
			item.LastUpdated.Format("2006-01-02"),
		}
		for i, cell := range row {
			pdf.CellFormat(widths[i], 7, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	filename := fmt.Sprintf("inventory-%s.pdf", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", "attachment; filename="+filename)

	if err := pdf.Output(c.Writer); err != nil {
		utils.ErrorLogger.Printf("pdf export: %v", err)
	}
}
