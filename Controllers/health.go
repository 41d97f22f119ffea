package Controllers

import (
	"net/http"

	"RestroManage/Storage"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type HealthController struct {
	DB      *gorm.DB
	Chooser *Storage.Chooser
}

func NewHealthController(db *gorm.DB, chooser *Storage.Chooser) *HealthController {
	return &HealthController{DB: db, Chooser: chooser}
}

// Health reports service liveness, DB reachability and the active storage
// backend.
// GET /health
func (hc *HealthController) Health(c *fiber.Ctx) error {
	overall := "ok"
	database := "ok"
	status := http.StatusOK

	sqlDB, err := hc.DB.DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		overall = "degraded"
		database = err.Error()
		status = http.StatusServiceUnavailable
	}

	storageMode := Storage.BackendLocal
	if hc.Chooser.CloudEnabled() {
		storageMode = Storage.BackendCloud
	}

	return c.Status(status).JSON(fiber.Map{
		"status":   overall,
		"database": database,
		"storage":  storageMode,
	})
}
