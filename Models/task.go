package Models

import "time"

type Task struct {
	ID           uint         `json:"id" gorm:"primaryKey"`
	RestaurantID uint         `json:"restaurant_id" gorm:"index;not null"`
	Task         string       `json:"task" gorm:"type:varchar(500);not null"`
	Description  string       `json:"description" gorm:"type:text"`
	Category     TaskCategory `json:"category" gorm:"type:varchar(20);not null"`
	Day          Day          `json:"day" gorm:"type:varchar(10);not null"`
	Status       TaskStatus   `json:"status" gorm:"type:varchar(10);not null;default:'Unknown'"`
	TaskType     TaskType     `json:"task_type" gorm:"type:varchar(10);not null;default:'Daily'"`

	// Evidence requirements and the proof that satisfied them. A task can
	// only reach Submitted or Done while every required URL is set.
	ImageRequired bool    `json:"image_required" gorm:"default:false"`
	VideoRequired bool    `json:"video_required" gorm:"default:false"`
	ImageURL      *string `json:"image_url" gorm:"type:varchar(1000)"`
	VideoURL      *string `json:"video_url" gorm:"type:varchar(1000)"`

	DeclineReason *string    `json:"decline_reason" gorm:"type:text"`
	Initials      *string    `json:"initials" gorm:"type:varchar(10)"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at"`
	CompletedAt   *time.Time `json:"completed_at"`

	// Relationships
	MediaFiles []MediaFile `json:"media_files,omitempty" gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
}

// MediaFile records one stored evidence blob. StorageBackend tells which
// backend owns the blob: "local" rows resolve under the service's own
// /uploads mount via FilePath, "cloud" rows carry the provider's absolute
// URL and a ProviderID usable for deletion.
type MediaFile struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	TaskID           uint      `json:"task_id" gorm:"index;not null"`
	Filename         string    `json:"filename" gorm:"type:varchar(255);not null"`
	OriginalFilename string    `json:"original_filename" gorm:"type:varchar(255);not null"`
	FilePath         string    `json:"file_path" gorm:"type:varchar(500);not null"` // logical path: task_completions/<task_id>/<filename>
	FileURL          string    `json:"file_url" gorm:"type:varchar(1000);not null"`
	FileSize         int64     `json:"file_size" gorm:"not null"`
	MimeType         string    `json:"mime_type" gorm:"type:varchar(100);not null"`
	FileType         string    `json:"file_type" gorm:"type:varchar(20);not null"`       // image, video
	StorageBackend   string    `json:"storage_backend" gorm:"type:varchar(20);not null"` // local, cloud
	ProviderID       string    `json:"provider_id,omitempty" gorm:"type:varchar(255)"`
	CreatedAt        time.Time `json:"created_at"`
}
