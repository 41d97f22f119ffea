package Controllers

import (
	"errors"
	"io"
	"log"
	"net/http"
	"path/filepath"

	"RestroManage/Models"
	"RestroManage/Storage"
	"RestroManage/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type UploadController struct {
	DB       *gorm.DB
	Ingestor *Storage.Ingestor
	Chooser  *Storage.Chooser
}

func NewUploadController(db *gorm.DB, ingestor *Storage.Ingestor, chooser *Storage.Chooser) *UploadController {
	return &UploadController{DB: db, Ingestor: ingestor, Chooser: chooser}
}

// UploadImage ingests an image for a task and records its URL as the task's
// image evidence.
// POST /api/upload/image
func (uc *UploadController) UploadImage(c *fiber.Ctx) error {
	return uc.upload(c, "image")
}

// UploadVideo ingests a video for a task and records its URL as the task's
// video evidence.
// POST /api/upload/video
func (uc *UploadController) UploadVideo(c *fiber.Ctx) error {
	return uc.upload(c, "video")
}

func (uc *UploadController) upload(c *fiber.Ctx, kind string) error {
	restaurant := middleware.CurrentRestaurant(c)

	taskID, err := parseID(c.FormValue("task_id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid or missing task_id",
		})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"message": "Missing file",
			"error":   err.Error(),
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"message": "Failed to read file",
			"error":   err.Error(),
		})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"message": "Failed to read file",
			"error":   err.Error(),
		})
	}

	result, err := uc.Ingestor.Save(taskID, restaurant.ID, data, fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"), kind)
	if err != nil {
		return uc.uploadError(c, err)
	}
	if result.FellBackToLocal {
		log.Printf("Evidence for task %d stored on local disk after cloud failure", taskID)
	}
	if result.OptimizationSkipped {
		log.Printf("Evidence for task %d stored unoptimized", taskID)
	}

	// Record the URL on the task itself
	patch := Models.TaskUpdate{}
	if kind == "image" {
		patch.ImageURL = &result.Media.FileURL
	} else {
		patch.VideoURL = &result.Media.FileURL
	}
	if _, err := Models.UpdateTask(uc.DB, taskID, restaurant.ID, patch); err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"message": "File stored but task update failed",
			"error":   err.Error(),
		})
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"url":       result.Media.FileURL,
		"filename":  result.Media.Filename,
		"file_size": result.Media.FileSize,
		"media":     result.Media,
	})
}

// ServeFile serves a locally stored evidence blob after a tenancy check.
// The public /uploads static mount stays for already-issued URLs; this
// route is the authenticated path.
// GET /api/upload/serve/:taskId/:filename
func (uc *UploadController) ServeFile(c *fiber.Ctx) error {
	restaurant := middleware.CurrentRestaurant(c)

	taskID, err := parseID(c.Params("taskId"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid task id",
		})
	}
	if _, err := Models.GetTaskByID(uc.DB, taskID, restaurant.ID); err != nil {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{
			"message": "Task not found",
		})
	}

	filename := filepath.Base(c.Params("filename"))
	path := filepath.Join(uc.Chooser.Local().Root(), "task_completions", c.Params("taskId"), filename)
	return c.SendFile(path)
}

// DeleteMedia removes an evidence blob and its row.
// DELETE /api/upload/media/:id
func (uc *UploadController) DeleteMedia(c *fiber.Ctx) error {
	restaurant := middleware.CurrentRestaurant(c)

	mediaID, err := parseID(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid media id",
		})
	}

	if err := uc.Ingestor.DeleteMedia(mediaID, restaurant.ID); err != nil {
		if errors.Is(err, Models.ErrNotFound) {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{
				"message": "Media file not found",
			})
		}
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to delete media file",
			"error":   err.Error(),
		})
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "Media file deleted successfully",
	})
}

// Gallery lists every evidence file across the restaurant's tasks, newest
// first. ?type=image or ?type=video narrows the listing.
// GET /api/media
func (uc *UploadController) Gallery(c *fiber.Ctx) error {
	restaurant := middleware.CurrentRestaurant(c)

	fileType := c.Query("type")
	if fileType != "" && fileType != "image" && fileType != "video" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"message": "type must be image or video",
		})
	}

	files, err := Models.GetMediaFilesByRestaurant(uc.DB, restaurant.ID, fileType)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to list media files",
			"error":   err.Error(),
		})
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"media_files": files,
		"total":       len(files),
	})
}

// UploadHealth reports the storage configuration in use.
// GET /api/upload/health
func (uc *UploadController) UploadHealth(c *fiber.Ctx) error {
	storageType := "Local Storage"
	if uc.Chooser.CloudEnabled() {
		storageType = "Cloud Storage"
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"status":        "healthy",
		"storage_type":  storageType,
		"cloud_enabled": uc.Chooser.CloudEnabled(),
		"upload_root":   uc.Chooser.Local().Root(),
	})
}

func (uc *UploadController) uploadError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, Storage.ErrFileTooLarge):
		return c.Status(http.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"message": "File too large",
			"error":   err.Error(),
		})
	case errors.Is(err, Storage.ErrUnsupportedMediaType):
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"message": "Unsupported media type",
			"error":   err.Error(),
		})
	case errors.Is(err, Models.ErrNotFound):
		return c.Status(http.StatusNotFound).JSON(fiber.Map{
			"message": "Task not found",
		})
	case errors.Is(err, Storage.ErrStorageUnavailable):
		return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{
			"message": "Storage unavailable",
			"error":   err.Error(),
		})
	default:
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"message": "Upload failed",
			"error":   err.Error(),
		})
	}
}
