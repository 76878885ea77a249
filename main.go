package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/equipage/facility-inventory/config"
	"github.com/equipage/facility-inventory/database"
	"github.com/equipage/facility-inventory/middlewares"
	"github.com/equipage/facility-inventory/models"
	"github.com/equipage/facility-inventory/router"
	"github.com/equipage/facility-inventory/services"
	"github.com/equipage/facility-inventory/utils"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading: %v", err)
	}

	utils.InitLogger()
}

func main() {
	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	utils.InitDB(db)

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	autoMigrate(db)
	seedStatuses(db)

	rateLimiter := middlewares.NewRateLimiter(50, 1)

	monitor := services.NewChangeMonitor(db)
	monitor.Start()
	defer monitor.Stop()

	r := router.SetupRouter(db)
	r.Use(rateLimiter.RateLimit())

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	utils.InfoLogger.Printf("Listening on port %s", port)
	if err := r.Run(":" + port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.User{},
		&models.Status{},
		&models.Item{},
		&models.ItemDocument{},
		&models.RepairLog{},
		&models.RepairDocument{},
		&models.LogEntry{},
		&models.DBChange{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")

	if err := database.ExecuteTriggers(db); err != nil {
		utils.ErrorLogger.Printf("Error setting up triggers: %v", err)
	}
}

// seedStatuses guarantees the statuses the repair workflow depends on. The
// completion path hard-requires "Warehouse" to exist by name.
func seedStatuses(db *gorm.DB) {
	for _, name := range []string{models.StatusWarehouse, models.StatusRepair} {
		var status models.Status
		if err := db.Where("name = ?", name).FirstOrCreate(&status, models.Status{Name: name}).Error; err != nil {
			utils.ErrorLogger.Fatalf("Failed to seed status %q: %v", name, err)
		}
	}
	utils.InfoLogger.Println("Default statuses verified.")
}
