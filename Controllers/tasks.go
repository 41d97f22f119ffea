package Controllers

import (
	"errors"
	"net/http"
	"strconv"

	"RestroManage/Models"
	"RestroManage/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type TaskController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewTaskController(db *gorm.DB) *TaskController {
	return &TaskController{DB: db, Validate: validator.New()}
}

type SubmitTaskRequest struct {
	ImageURL *string `json:"image_url"`
	VideoURL *string `json:"video_url"`
	Initials *string `json:"initials"`
}

type DeclineTaskRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// GetTasks lists the restaurant's tasks with optional enum filters.
// GET /api/tasks
func (tc *TaskController) GetTasks(c *fiber.Ctx) error {
	restaurant := middleware.CurrentRestaurant(c)

	filters := Models.TaskFilters{
		Status:   c.Query("status"),
		Category: c.Query("category"),
		Day:      c.Query("day"),
		TaskType: c.Query("task_type"),
		Initials: c.Query("initials"),
	}

	tasks, err := Models.GetTasksByRestaurant(tc.DB, restaurant.ID, filters)
	if err != nil {
		if errors.Is(err, Models.ErrInvalidEnumValue) {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid filter value",
				"error":   err.Error(),
			})
		}
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to fetch tasks",
			"error":   err.Error(),
		})
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"tasks": tasks,
		"total": len(tasks),
	})
}

// CreateTask creates a task for the restaurant. Status always starts
// Unknown, whatever the caller sends.
// POST /api/tasks
func (tc *TaskController) CreateTask(c *fiber.Ctx) error {
	restaurant := middleware.CurrentRestaurant(c)

	var req Models.TaskCreate
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := tc.Validate.Struct(req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}

	task, err := Models.CreateTask(tc.DB, restaurant.ID, req)
	if err != nil {
		if errors.Is(err, Models.ErrInvalidEnumValue) {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid enum value",
				"error":   err.Error(),
			})
		}
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to create task",
			"error":   err.Error(),
		})
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "Task created successfully",
		"task":    task,
	})
}

// GetTask fetches one task.
// GET /api/tasks/:id
func (tc *TaskController) GetTask(c *fiber.Ctx) error {
	restaurant := middleware.CurrentRestaurant(c)
	taskID, err := parseID(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid task id",
		})
	}

	task, err := Models.GetTaskByID(tc.DB, taskID, restaurant.ID)
	if err != nil {
		return tc.taskError(c, err, "Failed to fetch task")
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"task": task,
	})
}

// UpdateTask applies a partial patch.
// PUT /api/tasks/:id
func (tc *TaskController) UpdateTask(c *fiber.Ctx) error {
	restaurant := middleware.CurrentRestaurant(c)
	taskID, err := parseID(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid task id",
		})
	}

	var patch Models.TaskUpdate
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	task, err := Models.UpdateTask(tc.DB, taskID, restaurant.ID, patch)
	if err != nil {
		return tc.taskError(c, err, "Failed to update task")
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "Task updated successfully",
		"task":    task,
	})
}

// SubmitTask records evidence and moves the task to Submitted.
// POST /api/tasks/:id/submit
func (tc *TaskController) SubmitTask(c *fiber.Ctx) error {
	restaurant := middleware.CurrentRestaurant(c)
	taskID, err := parseID(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid task id",
		})
	}

	var req SubmitTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	task, err := Models.SubmitTask(tc.DB, taskID, restaurant.ID, req.ImageURL, req.VideoURL, req.Initials)
	if err != nil {
		return tc.taskError(c, err, "Failed to submit task")
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "Task submitted successfully",
		"task":    task,
	})
}

// ApproveTask marks the task Done and stamps the completion time.
// POST /api/tasks/:id/approve
func (tc *TaskController) ApproveTask(c *fiber.Ctx) error {
	restaurant := middleware.CurrentRestaurant(c)
	taskID, err := parseID(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid task id",
		})
	}

	task, err := Models.ApproveTask(tc.DB, taskID, restaurant.ID)
	if err != nil {
		return tc.taskError(c, err, "Failed to approve task")
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "Task approved successfully",
		"task":    task,
	})
}

// DeclineTask records the reason and clears the evidence URLs.
// POST /api/tasks/:id/decline
func (tc *TaskController) DeclineTask(c *fiber.Ctx) error {
	restaurant := middleware.CurrentRestaurant(c)
	taskID, err := parseID(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid task id",
		})
	}

	var req DeclineTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := tc.Validate.Struct(req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"message": "Decline reason is required",
		})
	}

	task, err := Models.DeclineTask(tc.DB, taskID, restaurant.ID, req.Reason)
	if err != nil {
		return tc.taskError(c, err, "Failed to decline task")
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "Task declined",
		"task":    task,
	})
}

// DeleteTask hard-deletes the task and its media rows.
// DELETE /api/tasks/:id
func (tc *TaskController) DeleteTask(c *fiber.Ctx) error {
	restaurant := middleware.CurrentRestaurant(c)
	taskID, err := parseID(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid task id",
		})
	}

	if err := Models.DeleteTask(tc.DB, taskID, restaurant.ID); err != nil {
		return tc.taskError(c, err, "Failed to delete task")
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "Task deleted successfully",
	})
}

// GetTaskMedia lists the evidence rows attached to a task.
// GET /api/tasks/:id/media
func (tc *TaskController) GetTaskMedia(c *fiber.Ctx) error {
	restaurant := middleware.CurrentRestaurant(c)
	taskID, err := parseID(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid task id",
		})
	}

	files, err := Models.GetMediaFilesByTask(tc.DB, taskID, restaurant.ID)
	if err != nil {
		return tc.taskError(c, err, "Failed to fetch task media")
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"media_files": files,
		"total":       len(files),
	})
}

// taskError maps lifecycle errors to HTTP responses.
func (tc *TaskController) taskError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, Models.ErrNotFound):
		return c.Status(http.StatusNotFound).JSON(fiber.Map{
			"message": "Task not found",
		})
	case errors.Is(err, Models.ErrEvidenceMissing):
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"message": "Required evidence is missing",
			"error":   err.Error(),
		})
	case errors.Is(err, Models.ErrInvalidEnumValue):
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid enum value",
			"error":   err.Error(),
		})
	default:
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"message": fallback,
			"error":   err.Error(),
		})
	}
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
