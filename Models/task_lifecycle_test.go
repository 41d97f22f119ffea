package Models

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return db
}

func testRestaurant(t *testing.T, db *gorm.DB, code string) *Restaurant {
	t.Helper()
	r := &Restaurant{
		RestaurantCode: code,
		Name:           "Test Kitchen " + code,
		CuisineType:    "Italian",
		ContactEmail:   code + "@example.com",
		ContactPhone:   "01234567890",
		PasswordHash:   "not-a-real-hash",
	}
	require.NoError(t, db.Create(r).Error)
	return r
}

func strPtr(s string) *string { return &s }

func TestCreateTaskStartsUnknown(t *testing.T) {
	db := testDB(t)
	r := testRestaurant(t, db, "R1")

	task, err := CreateTask(db, r.ID, TaskCreate{
		Task:     "Wipe down prep surfaces",
		Category: "Cleaning",
		Day:      "monday",
	})
	require.NoError(t, err)

	assert.Equal(t, StatusUnknown, task.Status)
	assert.Equal(t, TypeDaily, task.TaskType)
	assert.Equal(t, CategoryCleaning, task.Category)
	assert.Equal(t, Monday, task.Day)
	assert.Nil(t, task.CompletedAt)
}

func TestCreateTaskCoercesMemberNames(t *testing.T) {
	db := testDB(t)
	r := testRestaurant(t, db, "R1")

	task, err := CreateTask(db, r.ID, TaskCreate{
		Task:     "Slice onions",
		Category: "TaskCategory.CUTTING",
		Day:      "FRIDAY",
		TaskType: "PRIORITY",
	})
	require.NoError(t, err)

	assert.Equal(t, CategoryCutting, task.Category)
	assert.Equal(t, Friday, task.Day)
	assert.Equal(t, TypePriority, task.TaskType)
}

func TestCreateTaskRejectsInvalidEnum(t *testing.T) {
	db := testDB(t)
	r := testRestaurant(t, db, "R1")

	_, err := CreateTask(db, r.ID, TaskCreate{
		Task:     "Bad task",
		Category: "Cooking",
		Day:      "monday",
	})
	require.ErrorIs(t, err, ErrInvalidEnumValue)

	var count int64
	require.NoError(t, db.Model(&Task{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSubmitTaskRequiresEvidence(t *testing.T) {
	db := testDB(t)
	r := testRestaurant(t, db, "R1")

	task, err := CreateTask(db, r.ID, TaskCreate{
		Task:          "Clean fryer",
		Category:      "Cleaning",
		Day:           "tuesday",
		ImageRequired: true,
		VideoRequired: true,
	})
	require.NoError(t, err)

	// No evidence at all
	_, err = SubmitTask(db, task.ID, r.ID, nil, nil, nil)
	require.ErrorIs(t, err, ErrEvidenceMissing)

	// Image only, video still missing
	_, err = SubmitTask(db, task.ID, r.ID, strPtr("http://x/img.jpg"), nil, nil)
	require.ErrorIs(t, err, ErrEvidenceMissing)

	// Guard failures must leave the row untouched
	var stored Task
	require.NoError(t, db.First(&stored, task.ID).Error)
	assert.Equal(t, StatusUnknown, stored.Status)
	assert.Nil(t, stored.ImageURL)

	// Both present
	got, err := SubmitTask(db, task.ID, r.ID, strPtr("http://x/img.jpg"), strPtr("http://x/vid.mp4"), strPtr("AB"))
	require.NoError(t, err)
	assert.Equal(t, StatusSubmitted, got.Status)
	require.NotNil(t, got.ImageURL)
	assert.Equal(t, "http://x/img.jpg", *got.ImageURL)
	require.NotNil(t, got.Initials)
	assert.Equal(t, "AB", *got.Initials)
}

func TestSubmitTaskWithoutRequirements(t *testing.T) {
	db := testDB(t)
	r := testRestaurant(t, db, "R1")

	task, err := CreateTask(db, r.ID, TaskCreate{
		Task:     "Refill napkins",
		Category: "Refilling",
		Day:      "wednesday",
	})
	require.NoError(t, err)

	got, err := SubmitTask(db, task.ID, r.ID, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusSubmitted, got.Status)
}

func TestApproveTaskStampsCompletion(t *testing.T) {
	db := testDB(t)
	r := testRestaurant(t, db, "R1")

	task, err := CreateTask(db, r.ID, TaskCreate{
		Task:     "Mop floor",
		Category: "Cleaning",
		Day:      "thursday",
	})
	require.NoError(t, err)

	got, err := ApproveTask(db, task.ID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusDone, got.Status)
	require.NotNil(t, got.CompletedAt)
	assert.False(t, got.CompletedAt.Before(got.CreatedAt))
	assert.WithinDuration(t, time.Now(), *got.CompletedAt, 5*time.Second)
}

func TestDeclineTaskClearsEvidence(t *testing.T) {
	db := testDB(t)
	r := testRestaurant(t, db, "R1")

	task, err := CreateTask(db, r.ID, TaskCreate{
		Task:          "Clean grill",
		Category:      "Cleaning",
		Day:           "friday",
		ImageRequired: true,
	})
	require.NoError(t, err)

	_, err = SubmitTask(db, task.ID, r.ID, strPtr("http://x/img.jpg"), strPtr("http://x/vid.mp4"), nil)
	require.NoError(t, err)

	got, err := DeclineTask(db, task.ID, r.ID, "photo is too dark")
	require.NoError(t, err)
	assert.Equal(t, StatusDeclined, got.Status)
	require.NotNil(t, got.DeclineReason)
	assert.Equal(t, "photo is too dark", *got.DeclineReason)
	assert.Nil(t, got.ImageURL)
	assert.Nil(t, got.VideoURL)

	// The scrub must be visible on a fresh read too.
	var stored Task
	require.NoError(t, db.First(&stored, task.ID).Error)
	assert.Nil(t, stored.ImageURL)
	assert.Nil(t, stored.VideoURL)
}

func TestResubmitAfterDecline(t *testing.T) {
	db := testDB(t)
	r := testRestaurant(t, db, "R1")

	task, err := CreateTask(db, r.ID, TaskCreate{
		Task:          "Clean hood filters",
		Category:      "Cleaning",
		Day:           "saturday",
		ImageRequired: true,
	})
	require.NoError(t, err)

	_, err = SubmitTask(db, task.ID, r.ID, strPtr("http://x/first.jpg"), nil, nil)
	require.NoError(t, err)
	_, err = DeclineTask(db, task.ID, r.ID, "wrong angle")
	require.NoError(t, err)

	// Declined cleared the URL, so a bare resubmit must fail again.
	_, err = SubmitTask(db, task.ID, r.ID, nil, nil, nil)
	require.ErrorIs(t, err, ErrEvidenceMissing)

	got, err := SubmitTask(db, task.ID, r.ID, strPtr("http://x/second.jpg"), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusSubmitted, got.Status)

	got, err = ApproveTask(db, task.ID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusDone, got.Status)
	require.NotNil(t, got.CompletedAt)
}

func TestUpdateTaskPartialPatch(t *testing.T) {
	db := testDB(t)
	r := testRestaurant(t, db, "R1")

	task, err := CreateTask(db, r.ID, TaskCreate{
		Task:        "Restock fridge",
		Description: "Back fridge",
		Category:    "Refilling",
		Day:         "monday",
	})
	require.NoError(t, err)

	got, err := UpdateTask(db, task.ID, r.ID, TaskUpdate{
		Task: strPtr("Restock walk-in fridge"),
		Day:  strPtr("tuesday"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Restock walk-in fridge", got.Task)
	assert.Equal(t, Tuesday, got.Day)
	// Untouched fields survive
	assert.Equal(t, "Back fridge", got.Description)
	assert.Equal(t, CategoryRefilling, got.Category)
}

func TestUpdateTaskToDoneStampsCompletion(t *testing.T) {
	db := testDB(t)
	r := testRestaurant(t, db, "R1")

	task, err := CreateTask(db, r.ID, TaskCreate{
		Task:     "Empty bins",
		Category: "Other",
		Day:      "sunday",
	})
	require.NoError(t, err)

	got, err := UpdateTask(db, task.ID, r.ID, TaskUpdate{Status: strPtr("Done")})
	require.NoError(t, err)
	assert.Equal(t, StatusDone, got.Status)
	require.NotNil(t, got.CompletedAt)
}

func TestUpdateTaskInvalidEnumAborts(t *testing.T) {
	db := testDB(t)
	r := testRestaurant(t, db, "R1")

	task, err := CreateTask(db, r.ID, TaskCreate{
		Task:     "Prep salad station",
		Category: "Cutting",
		Day:      "monday",
	})
	require.NoError(t, err)

	// A valid field alongside an invalid enum: nothing may be written.
	_, err = UpdateTask(db, task.ID, r.ID, TaskUpdate{
		Task:   strPtr("renamed"),
		Status: strPtr("NotAStatus"),
	})
	require.ErrorIs(t, err, ErrInvalidEnumValue)

	var stored Task
	require.NoError(t, db.First(&stored, task.ID).Error)
	assert.Equal(t, "Prep salad station", stored.Task)
	assert.Equal(t, StatusUnknown, stored.Status)
}

func TestTenantIsolation(t *testing.T) {
	db := testDB(t)
	owner := testRestaurant(t, db, "OWNER")
	other := testRestaurant(t, db, "OTHER")

	task, err := CreateTask(db, owner.ID, TaskCreate{
		Task:     "Clean espresso machine",
		Category: "Cleaning",
		Day:      "monday",
	})
	require.NoError(t, err)

	_, err = GetTaskByID(db, task.ID, other.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = SubmitTask(db, task.ID, other.ID, nil, nil, nil)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = ApproveTask(db, task.ID, other.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = DeclineTask(db, task.ID, other.ID, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = UpdateTask(db, task.ID, other.ID, TaskUpdate{Task: strPtr("hijacked")})
	assert.ErrorIs(t, err, ErrNotFound)
	err = DeleteTask(db, task.ID, other.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// A missing id reads the same as a foreign one.
	_, err = GetTaskByID(db, 99999, owner.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// The owner still sees the row untouched.
	got, err := GetTaskByID(db, task.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "Clean espresso machine", got.Task)
	assert.Equal(t, StatusUnknown, got.Status)
}

func TestGetTasksByRestaurantFilters(t *testing.T) {
	db := testDB(t)
	r := testRestaurant(t, db, "R1")

	mk := func(name, category, day, taskType string) {
		_, err := CreateTask(db, r.ID, TaskCreate{
			Task: name, Category: category, Day: day, TaskType: taskType,
		})
		require.NoError(t, err)
	}
	mk("a", "Cleaning", "monday", "Daily")
	mk("b", "Cleaning", "tuesday", "Priority")
	mk("c", "Cutting", "monday", "Daily")

	tasks, err := GetTasksByRestaurant(db, r.ID, TaskFilters{})
	require.NoError(t, err)
	assert.Len(t, tasks, 3)

	tasks, err = GetTasksByRestaurant(db, r.ID, TaskFilters{Category: "Cleaning"})
	require.NoError(t, err)
	assert.Len(t, tasks, 2)

	tasks, err = GetTasksByRestaurant(db, r.ID, TaskFilters{Category: "CLEANING", Day: "monday"})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "a", tasks[0].Task)

	tasks, err = GetTasksByRestaurant(db, r.ID, TaskFilters{TaskType: "Priority"})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "b", tasks[0].Task)

	_, err = GetTasksByRestaurant(db, r.ID, TaskFilters{Status: "frobnicated"})
	assert.ErrorIs(t, err, ErrInvalidEnumValue)
}

func TestDeleteTaskRemovesMediaRows(t *testing.T) {
	db := testDB(t)
	r := testRestaurant(t, db, "R1")

	task, err := CreateTask(db, r.ID, TaskCreate{
		Task:     "Degrease oven",
		Category: "Cleaning",
		Day:      "monday",
	})
	require.NoError(t, err)

	media := MediaFile{
		TaskID:           task.ID,
		Filename:         "abc.jpg",
		OriginalFilename: "photo.jpg",
		FilePath:         "task_completions/1/abc.jpg",
		FileURL:          "http://x/uploads/task_completions/1/abc.jpg",
		FileSize:         123,
		MimeType:         "image/jpeg",
		FileType:         "image",
		StorageBackend:   "local",
	}
	require.NoError(t, db.Create(&media).Error)

	require.NoError(t, DeleteTask(db, task.ID, r.ID))

	var taskCount, mediaCount int64
	require.NoError(t, db.Model(&Task{}).Count(&taskCount).Error)
	require.NoError(t, db.Model(&MediaFile{}).Count(&mediaCount).Error)
	assert.Zero(t, taskCount)
	assert.Zero(t, mediaCount)
}

func TestGetMediaFilesByTaskChecksTenancy(t *testing.T) {
	db := testDB(t)
	owner := testRestaurant(t, db, "OWNER")
	other := testRestaurant(t, db, "OTHER")

	task, err := CreateTask(db, owner.ID, TaskCreate{
		Task:     "Sanitize cutting boards",
		Category: "Cleaning",
		Day:      "monday",
	})
	require.NoError(t, err)

	_, err = GetMediaFilesByTask(db, task.ID, other.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	files, err := GetMediaFilesByTask(db, task.ID, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestGetMediaFilesByRestaurant(t *testing.T) {
	db := testDB(t)
	owner := testRestaurant(t, db, "OWNER")
	other := testRestaurant(t, db, "OTHER")

	newTask := func(r *Restaurant, name string) *Task {
		task, err := CreateTask(db, r.ID, TaskCreate{
			Task:     name,
			Category: "Cleaning",
			Day:      "monday",
		})
		require.NoError(t, err)
		return task
	}
	newMedia := func(task *Task, name, fileType string) {
		media := MediaFile{
			TaskID:           task.ID,
			Filename:         name,
			OriginalFilename: name,
			FilePath:         "task_completions/" + name,
			FileURL:          "http://x/uploads/task_completions/" + name,
			FileSize:         123,
			MimeType:         "image/jpeg",
			FileType:         fileType,
			StorageBackend:   "local",
		}
		require.NoError(t, db.Create(&media).Error)
	}

	ownerTask := newTask(owner, "Degrease oven")
	newMedia(ownerTask, "a.jpg", "image")
	newMedia(ownerTask, "b.mp4", "video")
	newMedia(newTask(owner, "Mop floors"), "c.jpg", "image")
	newMedia(newTask(other, "Wipe counters"), "d.jpg", "image")

	all, err := GetMediaFilesByRestaurant(db, owner.ID, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	images, err := GetMediaFilesByRestaurant(db, owner.ID, "image")
	require.NoError(t, err)
	require.Len(t, images, 2)
	for _, m := range images {
		assert.Equal(t, "image", m.FileType)
	}

	videos, err := GetMediaFilesByRestaurant(db, other.ID, "video")
	require.NoError(t, err)
	assert.Empty(t, videos)
}
