package Controllers

import (
	"errors"
	"net/http"
	"time"

	"RestroManage/Models"
	"RestroManage/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type NFCController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewNFCController(db *gorm.DB) *NFCController {
	return &NFCController{DB: db, Validate: validator.New()}
}

type TapRequest struct {
	AssetID   string `json:"asset_id" validate:"required,max=100"`
	StaffName string `json:"staff_name" validate:"required,max=255"`
	TaskID    *uint  `json:"task_id"`
	Notes     string `json:"notes"`
}

// Tap records a tag tap against an asset. When the tap names a task, the
// task is marked done as well; a tap with no scheduled task still produces
// a log entry.
// POST /api/nfc/tap
func (nc *NFCController) Tap(c *fiber.Ctx) error {
	restaurant := middleware.CurrentRestaurant(c)

	var req TapRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := nc.Validate.Struct(req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}

	var task *Models.Task
	if req.TaskID != nil {
		var err error
		task, err = Models.ApproveTask(nc.DB, *req.TaskID, restaurant.ID)
		if err != nil {
			if errors.Is(err, Models.ErrNotFound) {
				return c.Status(http.StatusNotFound).JSON(fiber.Map{
					"message": "Task not found",
				})
			}
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
				"message": "Failed to complete task",
				"error":   err.Error(),
			})
		}
	}

	entry := Models.CleaningLog{
		AssetID:      req.AssetID,
		TaskID:       req.TaskID,
		RestaurantID: restaurant.ID,
		StaffName:    req.StaffName,
		Notes:        req.Notes,
	}
	if err := Models.CreateCleaningLog(nc.DB, &entry); err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to record cleaning",
			"error":   err.Error(),
		})
	}

	resp := fiber.Map{
		"message": "Cleaning recorded",
		"log":     entry,
	}
	if task != nil {
		resp["task"] = task
	}
	return c.Status(http.StatusCreated).JSON(resp)
}

// GetAssetLogs returns recent cleanings for one asset, newest first and
// bucketed per day.
// GET /api/nfc/assets/:asset_id/logs?limit=20
func (nc *NFCController) GetAssetLogs(c *fiber.Ctx) error {
	restaurant := middleware.CurrentRestaurant(c)
	assetID := c.Params("asset_id")

	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 200 {
		limit = 20
	}

	logs, err := Models.GetRecentCleaningLogs(nc.DB, assetID, restaurant.ID, limit)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to fetch cleaning logs",
			"error":   err.Error(),
		})
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"asset_id":     assetID,
		"logs_by_date": Models.GroupCleaningLogsByDate(logs),
		"total":        len(logs),
	})
}

// GetAssetStats reports how often an asset was cleaned today and over the
// trailing week.
// GET /api/nfc/assets/:asset_id/stats
func (nc *NFCController) GetAssetStats(c *fiber.Ctx) error {
	restaurant := middleware.CurrentRestaurant(c)
	assetID := c.Params("asset_id")

	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	today, err := Models.CountCleaningsSince(nc.DB, assetID, restaurant.ID, startOfDay)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to compute stats",
			"error":   err.Error(),
		})
	}
	week, err := Models.CountCleaningsSince(nc.DB, assetID, restaurant.ID, now.AddDate(0, 0, -7))
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to compute stats",
			"error":   err.Error(),
		})
	}

	logs, err := Models.GetCleaningLogsByAsset(nc.DB, assetID, restaurant.ID, now.AddDate(0, 0, -7))
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to compute stats",
			"error":   err.Error(),
		})
	}

	byDay := make(map[string]int)
	for _, entry := range logs {
		byDay[entry.CompletedAt.Format("2006-01-02")]++
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"asset_id":       assetID,
		"cleaned_today":  today,
		"cleaned_7_days": week,
		"by_day":         byDay,
	})
}
