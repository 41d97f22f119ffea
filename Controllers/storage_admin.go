package Controllers

import (
	"log"
	"net/http"

	"RestroManage/Models"
	"RestroManage/Storage"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// StorageAdminController exposes operator endpoints for moving evidence
// files between backends and inspecting past runs.
type StorageAdminController struct {
	DB       *gorm.DB
	Migrator *Storage.Migrator
	Chooser  *Storage.Chooser
}

func NewStorageAdminController(db *gorm.DB, migrator *Storage.Migrator, chooser *Storage.Chooser) *StorageAdminController {
	return &StorageAdminController{DB: db, Migrator: migrator, Chooser: chooser}
}

type MigrateRequest struct {
	TaskID *uint `json:"task_id"`
}

// StartMigration kicks off a local-to-cloud migration in the background and
// returns immediately. Progress lands in migration_runs.
// POST /api/storage/migrate
func (sc *StorageAdminController) StartMigration(c *fiber.Ctx) error {
	if !sc.Chooser.CloudEnabled() {
		return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{
			"message": "Cloud storage is not configured",
		})
	}
	if sc.Migrator.Running() {
		return c.Status(http.StatusConflict).JSON(fiber.Map{
			"message": "A migration is already running",
		})
	}

	var req MigrateRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid request body",
				"error":   err.Error(),
			})
		}
	}

	go func(taskID *uint) {
		report, err := sc.Migrator.Migrate(taskID)
		if err != nil {
			log.Printf("Storage migration failed: %v", err)
			return
		}
		log.Printf("Storage migration finished: %d migrated, %d failed, stopped=%v",
			len(report.Migrated), len(report.Failed), report.Stopped)
	}(req.TaskID)

	return c.Status(http.StatusAccepted).JSON(fiber.Map{
		"message": "Migration started",
	})
}

// StopMigration asks the running migration to halt after the current file.
// POST /api/storage/migrate/stop
func (sc *StorageAdminController) StopMigration(c *fiber.Ctx) error {
	if !sc.Migrator.Running() {
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"message": "No migration is running",
		})
	}
	sc.Migrator.Stop()
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "Stop requested",
	})
}

// TestConnection checks the active storage backend on demand: local disk
// reports its mode, a configured cloud backend gets a fresh credential ping.
// POST /api/storage/test
func (sc *StorageAdminController) TestConnection(c *fiber.Ctx) error {
	if !sc.Chooser.CloudEnabled() {
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":  "ok",
			"storage": Storage.BackendLocal,
		})
	}
	if err := sc.Chooser.TestConnection(); err != nil {
		return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{
			"status":  "unavailable",
			"storage": Storage.BackendCloud,
			"error":   err.Error(),
		})
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"status":  "ok",
		"storage": Storage.BackendCloud,
	})
}

// GetMigrationStatus reports whether a migration is running plus the most
// recent run records.
// GET /api/storage/migrate/status
func (sc *StorageAdminController) GetMigrationStatus(c *fiber.Ctx) error {
	var runs []Models.MigrationRun
	if err := sc.DB.Order("started_at DESC").Limit(10).Find(&runs).Error; err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to fetch migration runs",
			"error":   err.Error(),
		})
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"running":       sc.Migrator.Running(),
		"cloud_enabled": sc.Chooser.CloudEnabled(),
		"runs":          runs,
	})
}
