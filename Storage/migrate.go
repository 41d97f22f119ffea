package Storage

import (
	"encoding/json"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"RestroManage/Models"

	"gorm.io/gorm"
)

// Migrator moves local-disk evidence blobs to the cloud backend in bulk.
// Each file is handled independently, a failure is recorded and the batch
// keeps going. Rows already on the cloud backend are skipped by the query,
// which is what makes repeated runs idempotent. Local files are kept after
// a successful copy as a safety net.
type Migrator struct {
	db      *gorm.DB
	local   *LocalStore
	cloud   *CloudStore
	stop    atomic.Bool
	running atomic.Bool
}

func NewMigrator(db *gorm.DB, chooser *Chooser) *Migrator {
	return &Migrator{
		db:    db,
		local: chooser.Local(),
		cloud: chooser.Cloud(),
	}
}

type MigrationItem struct {
	MediaID uint   `json:"media_id"`
	Path    string `json:"path"`
	URL     string `json:"url,omitempty"`
	Error   string `json:"error,omitempty"`
}

type MigrationReport struct {
	Migrated []MigrationItem `json:"migrated"`
	Failed   []MigrationItem `json:"failed"`
	Stopped  bool            `json:"stopped"`
}

// Stop asks a running migration to halt after the file currently being
// copied. It does not interrupt an in-flight upload.
func (m *Migrator) Stop() {
	m.stop.Store(true)
}

func (m *Migrator) Running() bool {
	return m.running.Load()
}

// Migrate copies every local-backed MediaFile (optionally scoped to one
// task) to the cloud backend and rewrites the row to point at it. The
// outcome is persisted as a MigrationRun row and returned.
func (m *Migrator) Migrate(taskID *uint) (*MigrationReport, error) {
	if m.cloud == nil {
		return nil, ErrCloudNotConfigured
	}
	if !m.running.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("migration already running")
	}
	defer m.running.Store(false)
	m.stop.Store(false)

	run := Models.MigrationRun{TaskID: taskID, Status: "running", StartedAt: time.Now()}
	if err := m.db.Create(&run).Error; err != nil {
		return nil, err
	}

	query := m.db.Where("storage_backend = ?", BackendLocal)
	if taskID != nil {
		query = query.Where("task_id = ?", *taskID)
	}
	var files []Models.MediaFile
	if err := query.Find(&files).Error; err != nil {
		m.failRun(&run, err)
		return nil, err
	}

	report := &MigrationReport{
		Migrated: []MigrationItem{},
		Failed:   []MigrationItem{},
	}
	for _, file := range files {
		if m.stop.Load() {
			report.Stopped = true
			break
		}
		item := MigrationItem{MediaID: file.ID, Path: file.FilePath}

		data, err := m.local.Read(file.FilePath)
		if err != nil {
			item.Error = fmt.Sprintf("read local file: %v", err)
			report.Failed = append(report.Failed, item)
			continue
		}

		put, err := m.cloud.Put(data, file.FilePath, file.MimeType)
		if err != nil {
			item.Error = fmt.Sprintf("cloud upload: %v", err)
			report.Failed = append(report.Failed, item)
			continue
		}

		err = m.db.Model(&Models.MediaFile{}).Where("id = ?", file.ID).Updates(map[string]interface{}{
			"file_url":        put.URL,
			"storage_backend": put.Backend,
			"provider_id":     put.ProviderID,
		}).Error
		if err != nil {
			item.Error = fmt.Sprintf("update record: %v", err)
			report.Failed = append(report.Failed, item)
			continue
		}

		item.URL = put.URL
		report.Migrated = append(report.Migrated, item)
	}

	m.finishRun(&run, report)
	return report, nil
}

// failRun closes out a run that never got to process files, so no row is
// ever left stuck at "running".
func (m *Migrator) failRun(run *Models.MigrationRun, cause error) {
	raw, err := json.Marshal(map[string]string{"error": cause.Error()})
	if err != nil {
		raw = []byte("{}")
	}
	err = m.db.Model(run).Updates(map[string]interface{}{
		"status":      "failed",
		"report":      raw,
		"finished_at": time.Now(),
	}).Error
	if err != nil {
		log.Printf("Failed to persist migration run %d: %v", run.ID, err)
	}
}

func (m *Migrator) finishRun(run *Models.MigrationRun, report *MigrationReport) {
	status := "finished"
	if report.Stopped {
		status = "stopped"
	}
	now := time.Now()

	raw, err := json.Marshal(report)
	if err != nil {
		log.Printf("Failed to encode migration report for run %d: %v", run.ID, err)
		raw = []byte("{}")
	}

	err = m.db.Model(run).Updates(map[string]interface{}{
		"status":         status,
		"migrated_count": len(report.Migrated),
		"failed_count":   len(report.Failed),
		"report":         raw,
		"finished_at":    now,
	}).Error
	if err != nil {
		log.Printf("Failed to persist migration run %d: %v", run.ID, err)
	}
}
