package Storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"log"
	"path/filepath"
	"strings"

	"RestroManage/Config"
	"RestroManage/Models"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	maxImageWidth  = 1920
	maxImageHeight = 1080
	jpegQuality    = 85
)

// Ingestor validates, optimizes and persists uploaded evidence. Failures of
// the preferred backend and of image optimization both degrade instead of
// aborting: the only fatal storage outcome is every backend failing.
type Ingestor struct {
	db          *gorm.DB
	chooser     *Chooser
	maxFileSize int64
	imageTypes  []string
	videoTypes  []string
}

func NewIngestor(db *gorm.DB, chooser *Chooser, cfg *Config.Settings) *Ingestor {
	return &Ingestor{
		db:          db,
		chooser:     chooser,
		maxFileSize: cfg.MaxFileSize,
		imageTypes:  cfg.AllowedImageTypes,
		videoTypes:  cfg.AllowedVideoTypes,
	}
}

// SaveResult reports where the blob went and which degraded paths were
// taken, so callers can log them without branching on it.
type SaveResult struct {
	Media               *Models.MediaFile
	FellBackToLocal     bool
	OptimizationSkipped bool
}

// Save ingests one uploaded blob for a task. kind is "image" or "video".
// The caller-supplied filename is only kept for display; the storage key is
// always a fresh opaque token.
func (ing *Ingestor) Save(taskID, restaurantID uint, data []byte, filename, declaredMime, kind string) (*SaveResult, error) {
	if int64(len(data)) > ing.maxFileSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrFileTooLarge, len(data), ing.maxFileSize)
	}
	if err := ing.checkMime(declaredMime, kind); err != nil {
		return nil, err
	}

	// Tenancy check up front: an id from another restaurant reads as absent.
	if _, err := Models.GetTaskByID(ing.db, taskID, restaurantID); err != nil {
		return nil, err
	}

	result := &SaveResult{}

	if kind == "image" {
		optimized, err := optimizeImage(data)
		if err != nil {
			// A bigger file is acceptable, losing the evidence is not.
			log.Printf("Image optimization failed for task %d, storing original: %v", taskID, err)
			result.OptimizationSkipped = true
		} else {
			data = optimized
		}
	}

	generated := uuid.New().String() + strings.ToLower(filepath.Ext(filename))
	logicalPath := fmt.Sprintf("task_completions/%d/%s", taskID, generated)

	put, err := ing.chooser.Preferred().Put(data, logicalPath, declaredMime)
	if err != nil && ing.chooser.CloudEnabled() {
		log.Printf("Cloud put failed for %s, falling back to local disk: %v", logicalPath, err)
		result.FellBackToLocal = true
		put, err = ing.chooser.Local().Put(data, logicalPath, declaredMime)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	media := Models.MediaFile{
		TaskID:           taskID,
		Filename:         generated,
		OriginalFilename: filename,
		FilePath:         logicalPath,
		FileURL:          put.URL,
		FileSize:         int64(len(data)),
		MimeType:         declaredMime,
		FileType:         kind,
		StorageBackend:   put.Backend,
		ProviderID:       put.ProviderID,
	}
	if err := ing.db.Create(&media).Error; err != nil {
		return nil, err
	}
	result.Media = &media
	return result, nil
}

// DeleteMedia removes the blob and then the bookkeeping row. A blob the
// backend no longer has, or a backend that errors on delete, never blocks
// removing the row.
func (ing *Ingestor) DeleteMedia(mediaID, restaurantID uint) error {
	var media Models.MediaFile
	if err := ing.db.First(&media, mediaID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Models.ErrNotFound
		}
		return err
	}
	if _, err := Models.GetTaskByID(ing.db, media.TaskID, restaurantID); err != nil {
		return err
	}

	switch media.StorageBackend {
	case BackendCloud:
		if cloud := ing.chooser.Cloud(); cloud != nil {
			if _, err := cloud.Delete(media.ProviderID); err != nil {
				log.Printf("Cloud delete failed for media %d (%s): %v", media.ID, media.ProviderID, err)
			}
		} else {
			log.Printf("Cloud storage unavailable, leaving remote blob for media %d (%s)", media.ID, media.ProviderID)
		}
	default:
		if _, err := ing.chooser.Local().Delete(media.FilePath); err != nil {
			log.Printf("Local delete failed for media %d (%s): %v", media.ID, media.FilePath, err)
		}
	}

	return ing.db.Delete(&media).Error
}

func (ing *Ingestor) checkMime(declaredMime, kind string) error {
	var allowed []string
	switch kind {
	case "image":
		allowed = ing.imageTypes
	case "video":
		allowed = ing.videoTypes
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrUnsupportedMediaType, kind)
	}
	for _, mime := range allowed {
		if mime == declaredMime {
			return nil
		}
	}
	return fmt.Errorf("%w: %s not allowed for %s uploads (allowed: %s)",
		ErrUnsupportedMediaType, declaredMime, kind, strings.Join(allowed, ", "))
}

// optimizeImage re-encodes the image bounded to 1920x1080 (aspect ratio
// preserved) at a fixed quality. Decoding normalizes the color mode as a
// side effect. Formats without an encoder (webp) come back as an error and
// the caller keeps the original bytes.
func optimizeImage(data []byte) ([]byte, error) {
	img, formatName, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxImageWidth || bounds.Dy() > maxImageHeight {
		img = imaging.Fit(img, maxImageWidth, maxImageHeight, imaging.Lanczos)
	}

	format, err := imaging.FormatFromExtension(formatName)
	if err != nil {
		return nil, fmt.Errorf("no encoder for %s: %w", formatName, err)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("failed to re-encode image: %w", err)
	}
	return buf.Bytes(), nil
}
