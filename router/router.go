package router

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/equipage/facility-inventory/controllers"
	"github.com/equipage/facility-inventory/middlewares"
	"github.com/equipage/facility-inventory/services"
)

func SetupRouter(db *gorm.DB) *gin.Engine {
	r := gin.Default()

	// Uploaded documents are served statically; everything else is JSON.
	uploadsPath := os.Getenv("UPLOAD_DIR")
	if uploadsPath == "" {
		workDir, _ := os.Getwd()
		uploadsPath = filepath.Join(workDir, "public", "uploads")
	}
	r.Static("/uploads", uploadsPath)

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	audit := services.NewAuditLogger(db)
	repairs := services.NewRepairService(db, audit)

	userCtrl := controllers.NewUserController(db)
	itemCtrl := controllers.NewItemController(db, audit, repairs)
	statusCtrl := controllers.NewStatusController(db)
	repairCtrl := controllers.NewRepairController(db, repairs)
	logCtrl := controllers.NewLogController(db)
	reportCtrl := controllers.NewReportController(db)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Login/register behind a strict limiter
	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	auth := r.Group("/")
	auth.Use(middlewares.AuthMiddleware())
	{
		auth.GET("/profile", userCtrl.GetProfile)
		auth.POST("/logout", userCtrl.Logout)

		// ITEMS
		auth.GET("/items", itemCtrl.GetAllItems)
		auth.GET("/items/:item_id", itemCtrl.GetItemByID)
		auth.POST("/items/new/:category",
			middlewares.RequirePermission(middlewares.PermAddItem), itemCtrl.CreateItem)
		auth.PATCH("/items/:item_id",
			middlewares.RequirePermission(middlewares.PermChangeItem), itemCtrl.UpdateItem)
		auth.DELETE("/items/:item_id",
			middlewares.RequirePermission(middlewares.PermDeleteItem), itemCtrl.DeleteItem)
		auth.POST("/items/:item_id/documents",
			middlewares.RequirePermission(middlewares.PermChangeItem), itemCtrl.UploadItemDocuments)

		// REPAIRS
		auth.GET("/repairs/:repair_id", repairCtrl.GetRepairByID)
		auth.POST("/repairs/:repair_id/complete",
			middlewares.RequirePermission(middlewares.PermChangeItem), repairCtrl.CompleteRepair)
		auth.POST("/repairs/:repair_id/documents",
			middlewares.RequirePermission(middlewares.PermChangeItem), repairCtrl.UploadRepairDocuments)

		// STATUS REGISTRY
		auth.GET("/statuses", statusCtrl.GetAllStatuses)
		auth.POST("/statuses",
			middlewares.RequirePermission(middlewares.PermManageStatus), statusCtrl.CreateStatus)
		auth.DELETE("/statuses/:status_id",
			middlewares.RequirePermission(middlewares.PermManageStatus), statusCtrl.DeleteStatus)

		// AUDIT TRAIL
		auth.GET("/logs", logCtrl.GetAllLogs)

		// REPORTS (admin)
		auth.GET("/reports/stats",
			middlewares.RequirePermission(middlewares.PermViewReports), reportCtrl.GetInventoryStats)
		auth.GET("/reports/export",
			middlewares.RequirePermission(middlewares.PermViewReports), reportCtrl.ExportCSV)
		auth.GET("/reports/export-pdf",
			middlewares.RequirePermission(middlewares.PermViewReports), reportCtrl.ExportPDF)
	}

	// Live feed over websocket; token comes as a query parameter.
	wsGroup := r.Group("/ws")
	wsGroup.Use(middlewares.WebSocketAuthMiddleware())
	{
		wsGroup.GET("", controllers.FeedHandler)
	}

	return r
}
