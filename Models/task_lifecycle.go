package Models

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrNotFound covers both a genuinely missing row and a row owned by a
	// different restaurant. The two must be indistinguishable to callers.
	ErrNotFound = errors.New("not found")

	// ErrEvidenceMissing is returned by SubmitTask when a required image or
	// video URL was not supplied.
	ErrEvidenceMissing = errors.New("required evidence missing")
)

// TaskCreate carries the accepted create-time fields. Status is deliberately
// absent: new tasks always start as Unknown.
type TaskCreate struct {
	Task          string  `json:"task" validate:"required,max=500"`
	Description   string  `json:"description"`
	Category      string  `json:"category" validate:"required"`
	Day           string  `json:"day" validate:"required"`
	TaskType      string  `json:"task_type"`
	ImageRequired bool    `json:"image_required"`
	VideoRequired bool    `json:"video_required"`
	Initials      *string `json:"initials"`
}

// TaskUpdate is a partial patch. Nil pointers are left untouched. Enum fields
// arrive as wire strings and are coerced before anything is written; a
// coercion failure aborts the whole patch.
type TaskUpdate struct {
	Task          *string `json:"task"`
	Description   *string `json:"description"`
	Category      *string `json:"category"`
	Day           *string `json:"day"`
	Status        *string `json:"status"`
	TaskType      *string `json:"task_type"`
	ImageRequired *bool   `json:"image_required"`
	VideoRequired *bool   `json:"video_required"`
	ImageURL      *string `json:"image_url"`
	VideoURL      *string `json:"video_url"`
	DeclineReason *string `json:"decline_reason"`
	Initials      *string `json:"initials"`
}

type TaskFilters struct {
	Status   string
	Category string
	Day      string
	TaskType string
	Initials string
}

// lockForUpdate takes a row lock on MySQL so concurrent submit/approve/
// decline calls on the same task serialize. SQLite has a single writer, the
// clause would be a syntax error there.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "mysql" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

func findTask(tx *gorm.DB, taskID, restaurantID uint) (*Task, error) {
	var task Task
	err := tx.Where("id = ? AND restaurant_id = ?", taskID, restaurantID).First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &task, nil
}

func GetTaskByID(db *gorm.DB, taskID, restaurantID uint) (*Task, error) {
	return findTask(db, taskID, restaurantID)
}

// GetTasksByRestaurant lists tasks newest first, with optional filters. Each
// non-empty enum filter is coerced; an unrecognized value fails the call.
func GetTasksByRestaurant(db *gorm.DB, restaurantID uint, filters TaskFilters) ([]Task, error) {
	query := db.Where("restaurant_id = ?", restaurantID)

	if filters.Status != "" {
		status, err := CoerceTaskStatus(filters.Status)
		if err != nil {
			return nil, err
		}
		query = query.Where("status = ?", status)
	}
	if filters.Category != "" {
		category, err := CoerceTaskCategory(filters.Category)
		if err != nil {
			return nil, err
		}
		query = query.Where("category = ?", category)
	}
	if filters.Day != "" {
		day, err := CoerceDay(filters.Day)
		if err != nil {
			return nil, err
		}
		query = query.Where("day = ?", day)
	}
	if filters.TaskType != "" {
		taskType, err := CoerceTaskType(filters.TaskType)
		if err != nil {
			return nil, err
		}
		query = query.Where("task_type = ?", taskType)
	}
	if filters.Initials != "" {
		query = query.Where("initials = ?", filters.Initials)
	}

	var tasks []Task
	if err := query.Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func CreateTask(db *gorm.DB, restaurantID uint, in TaskCreate) (*Task, error) {
	category, err := CoerceTaskCategory(in.Category)
	if err != nil {
		return nil, err
	}
	day, err := CoerceDay(in.Day)
	if err != nil {
		return nil, err
	}
	taskType := TypeDaily
	if in.TaskType != "" {
		if taskType, err = CoerceTaskType(in.TaskType); err != nil {
			return nil, err
		}
	}

	task := Task{
		RestaurantID:  restaurantID,
		Task:          in.Task,
		Description:   in.Description,
		Category:      category,
		Day:           day,
		Status:        StatusUnknown,
		TaskType:      taskType,
		ImageRequired: in.ImageRequired,
		VideoRequired: in.VideoRequired,
		Initials:      in.Initials,
	}
	if err := db.Create(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// SubmitTask moves a task to Submitted once every required evidence URL is
// present. On a guard failure nothing is written.
func SubmitTask(db *gorm.DB, taskID, restaurantID uint, imageURL, videoURL, initials *string) (*Task, error) {
	var task *Task
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		task, err = findTask(lockForUpdate(tx), taskID, restaurantID)
		if err != nil {
			return err
		}

		if task.ImageRequired && (imageURL == nil || *imageURL == "") {
			return ErrEvidenceMissing
		}
		if task.VideoRequired && (videoURL == nil || *videoURL == "") {
			return ErrEvidenceMissing
		}

		updates := map[string]interface{}{"status": StatusSubmitted}
		if imageURL != nil {
			updates["image_url"] = *imageURL
		}
		if videoURL != nil {
			updates["video_url"] = *videoURL
		}
		if initials != nil {
			updates["initials"] = *initials
		}
		if err := tx.Model(task).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(task, task.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// ApproveTask is allowed from any state and stamps the completion time.
func ApproveTask(db *gorm.DB, taskID, restaurantID uint) (*Task, error) {
	var task *Task
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		task, err = findTask(lockForUpdate(tx), taskID, restaurantID)
		if err != nil {
			return err
		}
		if err := tx.Model(task).Updates(map[string]interface{}{
			"status":       StatusDone,
			"completed_at": time.Now(),
		}).Error; err != nil {
			return err
		}
		return tx.First(task, task.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// DeclineTask records the reason and scrubs both evidence URLs so rejected
// media is never shown as the task's current proof. MediaFile rows are kept
// for audit.
func DeclineTask(db *gorm.DB, taskID, restaurantID uint, reason string) (*Task, error) {
	var task *Task
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		task, err = findTask(lockForUpdate(tx), taskID, restaurantID)
		if err != nil {
			return err
		}
		if err := tx.Model(task).Updates(map[string]interface{}{
			"status":         StatusDeclined,
			"decline_reason": reason,
			"image_url":      nil,
			"video_url":      nil,
		}).Error; err != nil {
			return err
		}
		return tx.First(task, task.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateTask applies a partial patch. All enum coercions happen before the
// first write so an invalid value leaves the row untouched. A patch that
// resolves the status to Done also stamps completed_at.
func UpdateTask(db *gorm.DB, taskID, restaurantID uint, patch TaskUpdate) (*Task, error) {
	updates := map[string]interface{}{}

	if patch.Status != nil {
		status, err := CoerceTaskStatus(*patch.Status)
		if err != nil {
			return nil, err
		}
		updates["status"] = status
		if status == StatusDone {
			updates["completed_at"] = time.Now()
		}
	}
	if patch.Category != nil {
		category, err := CoerceTaskCategory(*patch.Category)
		if err != nil {
			return nil, err
		}
		updates["category"] = category
	}
	if patch.Day != nil {
		day, err := CoerceDay(*patch.Day)
		if err != nil {
			return nil, err
		}
		updates["day"] = day
	}
	if patch.TaskType != nil {
		taskType, err := CoerceTaskType(*patch.TaskType)
		if err != nil {
			return nil, err
		}
		updates["task_type"] = taskType
	}
	if patch.Task != nil {
		updates["task"] = *patch.Task
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.ImageRequired != nil {
		updates["image_required"] = *patch.ImageRequired
	}
	if patch.VideoRequired != nil {
		updates["video_required"] = *patch.VideoRequired
	}
	if patch.ImageURL != nil {
		updates["image_url"] = *patch.ImageURL
	}
	if patch.VideoURL != nil {
		updates["video_url"] = *patch.VideoURL
	}
	if patch.DeclineReason != nil {
		updates["decline_reason"] = *patch.DeclineReason
	}
	if patch.Initials != nil {
		updates["initials"] = *patch.Initials
	}

	var task *Task
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		task, err = findTask(lockForUpdate(tx), taskID, restaurantID)
		if err != nil {
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(task).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(task, task.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// DeleteTask hard-deletes the task and its media rows. Callers that also
// want the blobs gone delete them through the ingestor first.
func DeleteTask(db *gorm.DB, taskID, restaurantID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		task, err := findTask(lockForUpdate(tx), taskID, restaurantID)
		if err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", task.ID).Delete(&MediaFile{}).Error; err != nil {
			return err
		}
		return tx.Delete(task).Error
	})
}

// GetMediaFilesByTask lists evidence rows for a task after verifying the
// task belongs to the restaurant.
func GetMediaFilesByTask(db *gorm.DB, taskID, restaurantID uint) ([]MediaFile, error) {
	if _, err := findTask(db, taskID, restaurantID); err != nil {
		return nil, err
	}
	var files []MediaFile
	if err := db.Where("task_id = ?", taskID).Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

// GetMediaFilesByRestaurant lists evidence across every task belonging to a
// restaurant, newest first. fileType narrows to "image" or "video"; empty
// returns both.
func GetMediaFilesByRestaurant(db *gorm.DB, restaurantID uint, fileType string) ([]MediaFile, error) {
	query := db.
		Joins("JOIN tasks ON tasks.id = media_files.task_id").
		Where("tasks.restaurant_id = ?", restaurantID)
	if fileType != "" {
		query = query.Where("media_files.file_type = ?", fileType)
	}
	var files []MediaFile
	if err := query.Order("media_files.created_at DESC").Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}
