package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/equipage/facility-inventory/models"
	"github.com/equipage/facility-inventory/router"
	"github.com/equipage/facility-inventory/utils"
)

func setupIntegrationDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	utils.InitLogger()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in-memory sqlite: %v", err)
	}

	err = db.AutoMigrate(
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
		t.Fatalf("failed to migrate: %v", err)
	}
	seedStatuses(db)
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email, role string) {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	assert.NoError(t, err)
	user := models.User{Name: "Test " + role, Email: email, Password: string(hashed), Role: role}
	assert.NoError(t, db.Create(&user).Error)
}

func request(t *testing.T, r *gin.Engine, method, url, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		b, err := json.Marshal(payload)
		assert.NoError(t, err)
		body = bytes.NewBuffer(b)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, url, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, r *gin.Engine, email string) string {
	t.Helper()
	w := request(t, r, http.MethodPost, "/login", "", gin.H{
		"email":    email,
		"password": "secret123",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Data.Token)
	return resp.Data.Token
}

// TestPumpRepairLifecycle walks one piece of equipment through the whole
// workflow over HTTP: created in the warehouse, sent out for repair, repair
// updated, then completed and returned to the warehouse. Every step must
// leave its trace in the audit trail.
func TestPumpRepairLifecycle(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupIntegrationDB(t, "integration_lifecycle")
	seedUser(t, db, "manager@plant.test", "manager")
	r := router.SetupRouter(db)

	token := login(t, r, "manager@plant.test")

	var warehouse, repair models.Status
	assert.NoError(t, db.Where("name = ?", models.StatusWarehouse).First(&warehouse).Error)
	assert.NoError(t, db.Where("name = ?", models.StatusRepair).First(&repair).Error)

	// Create the pump.
	w := request(t, r, http.MethodPost, "/items/new/Pump", token, gin.H{
		"item_id":     "P-101",
		"description": "Feed water pump",
		"vendor":      "Acme Pumps",
		"location":    "Bay 4",
		"status_id":   warehouse.ID,
		"fields":      gin.H{"speed": "1450 rpm", "moc": "316L SS", "power": "15 kW"},
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var item models.Item
	assert.NoError(t, db.Where("item_id = ?", "P-101").First(&item).Error)
	assert.Equal(t, "1450 rpm", item.Speed)

	var logCount int64
	db.Model(&models.LogEntry{}).Where("item_id_str = ?", "P-101").Count(&logCount)
	assert.EqualValues(t, 1, logCount)

	// Send it for repair.
	w = request(t, r, http.MethodPatch, "/items/P-101", token, gin.H{
		"status_id": repair.ID,
		"repair": gin.H{
			"repair_company": "Acme",
			"contact_name":   "Jo Field",
			"start_date":     "2026-08-01",
			"description":    "Leaking mechanical seal",
		},
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var activeRepair models.RepairLog
	assert.NoError(t, db.Where("item_ref_id = ? AND is_active = ?", item.ID, true).First(&activeRepair).Error)
	assert.Equal(t, "Acme", activeRepair.RepairCompany)

	var startedCount int64
	db.Model(&models.LogEntry{}).
		Where("item_id_str = ? AND action = ?", "P-101", models.ActionRepairStarted).Count(&startedCount)
	assert.EqualValues(t, 1, startedCount)

	// A second submission updates the same active record.
	w = request(t, r, http.MethodPatch, "/items/P-101", token, gin.H{
		"status_id": repair.ID,
		"repair": gin.H{
			"repair_company": "Acme",
			"start_date":     "2026-08-01",
			"description":    "Seal and bearing replacement",
		},
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var repairTotal int64
	db.Model(&models.RepairLog{}).Where("item_ref_id = ?", item.ID).Count(&repairTotal)
	assert.EqualValues(t, 1, repairTotal)

	// Complete the repair; the pump returns to the warehouse.
	w = request(t, r, http.MethodPost, fmt.Sprintf("/repairs/%d/complete", activeRepair.ID), token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	assert.NoError(t, db.First(&activeRepair, activeRepair.ID).Error)
	assert.False(t, activeRepair.IsActive)
	assert.NotNil(t, activeRepair.EndDate)

	assert.NoError(t, db.Where("item_id = ?", "P-101").First(&item).Error)
	assert.Equal(t, warehouse.ID, *item.StatusID)

	var completedCount int64
	db.Model(&models.LogEntry{}).
		Where("item_id_str = ? AND action = ?", "P-101", models.ActionRepairCompleted).Count(&completedCount)
	assert.EqualValues(t, 1, completedCount)

	// The trail is readable back through the API.
	w = request(t, r, http.MethodGet, "/logs?item=P-101", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), models.ActionRepairCompleted)
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupIntegrationDB(t, "integration_unauth")
	r := router.SetupRouter(db)

	w := request(t, r, http.MethodGet, "/items", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "login_url")

	w = request(t, r, http.MethodPost, "/items/new/Pump", "", gin.H{"item_id": "P-1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestViewerCannotMutate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupIntegrationDB(t, "integration_viewer")
	seedUser(t, db, "viewer@plant.test", "viewer")
	r := router.SetupRouter(db)

	token := login(t, r, "viewer@plant.test")

	// Reads are allowed.
	w := request(t, r, http.MethodGet, "/items", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = request(t, r, http.MethodGet, "/statuses", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Mutations are not.
	w = request(t, r, http.MethodPost, "/items/new/Pump", token, gin.H{"item_id": "P-1"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = request(t, r, http.MethodPost, "/statuses", token, gin.H{"name": "Scrapped"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = request(t, r, http.MethodDelete, "/items/P-1", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Reports are admin-only.
	w = request(t, r, http.MethodGet, "/reports/stats", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	var count int64
	db.Model(&models.Item{}).Count(&count)
	assert.Zero(t, count)
}

func TestAdminReportsAndLogout(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupIntegrationDB(t, "integration_admin")
	seedUser(t, db, "admin@plant.test", "admin")
	r := router.SetupRouter(db)

	token := login(t, r, "admin@plant.test")

	var warehouse models.Status
	assert.NoError(t, db.Where("name = ?", models.StatusWarehouse).First(&warehouse).Error)
	w := request(t, r, http.MethodPost, "/items/new/Valve", token, gin.H{
		"item_id":   "V-500",
		"status_id": warehouse.ID,
		"fields":    gin.H{"valve_type": "Gate"},
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = request(t, r, http.MethodGet, "/reports/stats", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "total_items")

	w = request(t, r, http.MethodGet, "/reports/export", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Body.String(), "V-500")

	// A revoked token stops working.
	w = request(t, r, http.MethodPost, "/logout", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = request(t, r, http.MethodGet, "/items", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
