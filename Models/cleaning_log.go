package Models

import (
	"time"

	"gorm.io/gorm"
)

// CleaningLog is a write-once record of a single evidence-free completion,
// usually an NFC tap on the tag stuck to the asset ("table-5",
// "main-freezer"). TaskID is optional so a tap still counts when no task is
// scheduled for the asset.
type CleaningLog struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	AssetID      string    `json:"asset_id" gorm:"type:varchar(100);index;not null"`
	TaskID       *uint     `json:"task_id" gorm:"index"`
	RestaurantID uint      `json:"restaurant_id" gorm:"index;not null"`
	StaffName    string    `json:"staff_name" gorm:"type:varchar(255);not null"`
	Method       string    `json:"method" gorm:"type:varchar(20);not null;default:'NFC'"`
	Notes        string    `json:"notes" gorm:"type:text"`
	CompletedAt  time.Time `json:"completed_at" gorm:"not null"`
}

func CreateCleaningLog(db *gorm.DB, entry *CleaningLog) error {
	if entry.CompletedAt.IsZero() {
		entry.CompletedAt = time.Now()
	}
	if entry.Method == "" {
		entry.Method = "NFC"
	}
	return db.Create(entry).Error
}

// GetCleaningLogsByAsset returns logs for one asset since the given time,
// newest first.
func GetCleaningLogsByAsset(db *gorm.DB, assetID string, restaurantID uint, since time.Time) ([]CleaningLog, error) {
	var logs []CleaningLog
	err := db.Where("asset_id = ? AND restaurant_id = ? AND completed_at >= ?", assetID, restaurantID, since).
		Order("completed_at DESC").
		Find(&logs).Error
	return logs, err
}

func GetRecentCleaningLogs(db *gorm.DB, assetID string, restaurantID uint, limit int) ([]CleaningLog, error) {
	var logs []CleaningLog
	err := db.Where("asset_id = ? AND restaurant_id = ?", assetID, restaurantID).
		Order("completed_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

// GroupCleaningLogsByDate buckets logs under their completion date
// (YYYY-MM-DD). Entries keep their order within each bucket.
func GroupCleaningLogsByDate(logs []CleaningLog) map[string][]CleaningLog {
	grouped := make(map[string][]CleaningLog)
	for _, entry := range logs {
		key := entry.CompletedAt.Format("2006-01-02")
		grouped[key] = append(grouped[key], entry)
	}
	return grouped
}

func CountCleaningsSince(db *gorm.DB, assetID string, restaurantID uint, since time.Time) (int64, error) {
	var count int64
	err := db.Model(&CleaningLog{}).
		Where("asset_id = ? AND restaurant_id = ? AND completed_at >= ?", assetID, restaurantID, since).
		Count(&count).Error
	return count, err
}
