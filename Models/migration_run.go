package Models

import (
	"time"

	"gorm.io/datatypes"
)

// MigrationRun keeps the outcome of one local-to-cloud storage migration
// batch so an operator can audit what moved and what failed after the fact.
// Report holds the full per-file breakdown as JSON.
type MigrationRun struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	TaskID        *uint          `json:"task_id"` // set when the run was scoped to one task
	Status        string         `json:"status" gorm:"type:varchar(20);not null;default:'running'"` // running, finished, stopped, failed
	MigratedCount int            `json:"migrated_count"`
	FailedCount   int            `json:"failed_count"`
	Report        datatypes.JSON `json:"report"`
	StartedAt     time.Time      `json:"started_at"`
	FinishedAt    *time.Time     `json:"finished_at"`
}
