package Storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"RestroManage/Config"
	"RestroManage/Models"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func storageTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Models.Migrate(db))
	return db
}

func storageTestTask(t *testing.T, db *gorm.DB) (*Models.Restaurant, *Models.Task) {
	t.Helper()
	r := &Models.Restaurant{
		RestaurantCode: "TESTCODE",
		Name:           "Test Kitchen",
		CuisineType:    "Thai",
		ContactEmail:   "test@example.com",
		ContactPhone:   "01234567890",
		PasswordHash:   "not-a-real-hash",
	}
	require.NoError(t, db.Create(r).Error)

	task, err := Models.CreateTask(db, r.ID, Models.TaskCreate{
		Task:     "Clean fryer",
		Category: "Cleaning",
		Day:      "monday",
	})
	require.NoError(t, err)
	return r, task
}

func testSettings(root string) *Config.Settings {
	return &Config.Settings{
		UploadDirectory:   root,
		BaseURL:           "http://localhost:3001",
		MaxFileSize:       10 * 1024 * 1024,
		AllowedImageTypes: []string{"image/jpeg", "image/png", "image/gif", "image/webp"},
		AllowedVideoTypes: []string{"video/mp4", "video/webm", "video/avi", "video/mov"},
	}
}

// fakeProvider implements CloudProvider in-memory, optionally failing every
// upload.
type fakeProvider struct {
	failUploads bool
	pingErr     error
	uploads     map[string][]byte
	destroyed   []string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{uploads: map[string][]byte{}}
}

func (f *fakeProvider) Ping() error { return f.pingErr }

func (f *fakeProvider) Upload(data []byte, publicID, resourceType string) (string, string, error) {
	if f.failUploads {
		return "", "", fmt.Errorf("simulated provider outage")
	}
	f.uploads[publicID] = data
	return "https://cloud.example.com/" + resourceType + "/" + publicID, publicID, nil
}

func (f *fakeProvider) Destroy(publicID, resourceType string) (bool, error) {
	f.destroyed = append(f.destroyed, publicID)
	if _, ok := f.uploads[publicID]; !ok {
		return false, nil
	}
	delete(f.uploads, publicID)
	return true, nil
}

func jpegBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x += 10 {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.JPEG))
	return buf.Bytes()
}

func TestIngestorSaveLocalImage(t *testing.T) {
	db := storageTestDB(t)
	r, task := storageTestTask(t, db)
	root := t.TempDir()
	chooser := &Chooser{local: NewLocalStore(root, "http://localhost:3001")}
	ing := NewIngestor(db, chooser, testSettings(root))

	result, err := ing.Save(task.ID, r.ID, jpegBytes(t, 640, 480), "photo.JPG", "image/jpeg", "image")
	require.NoError(t, err)
	require.NotNil(t, result.Media)
	assert.False(t, result.FellBackToLocal)
	assert.False(t, result.OptimizationSkipped)

	media := result.Media
	assert.Equal(t, task.ID, media.TaskID)
	assert.Equal(t, "photo.JPG", media.OriginalFilename)
	assert.NotEqual(t, "photo.JPG", media.Filename)
	assert.Equal(t, ".jpg", filepath.Ext(media.Filename)) // extension lowercased
	assert.Equal(t, fmt.Sprintf("task_completions/%d/%s", task.ID, media.Filename), media.FilePath)
	assert.Equal(t, "image/jpeg", media.MimeType)
	assert.Equal(t, "image", media.FileType)
	assert.Equal(t, BackendLocal, media.StorageBackend)
	assert.Empty(t, media.ProviderID)

	// Blob exists on disk under the logical path.
	data, err := chooser.Local().Read(media.FilePath)
	require.NoError(t, err)
	assert.Equal(t, media.FileSize, int64(len(data)))
}

func TestIngestorResizesOversizedImage(t *testing.T) {
	db := storageTestDB(t)
	r, task := storageTestTask(t, db)
	root := t.TempDir()
	chooser := &Chooser{local: NewLocalStore(root, "http://localhost:3001")}
	ing := NewIngestor(db, chooser, testSettings(root))

	result, err := ing.Save(task.ID, r.ID, jpegBytes(t, 4000, 2000), "big.jpg", "image/jpeg", "image")
	require.NoError(t, err)
	assert.False(t, result.OptimizationSkipped)

	stored, err := chooser.Local().Read(result.Media.FilePath)
	require.NoError(t, err)
	img, err := imaging.Decode(bytes.NewReader(stored))
	require.NoError(t, err)
	assert.LessOrEqual(t, img.Bounds().Dx(), 1920)
	assert.LessOrEqual(t, img.Bounds().Dy(), 1080)
}

func TestIngestorKeepsOriginalWhenOptimizationFails(t *testing.T) {
	db := storageTestDB(t)
	r, task := storageTestTask(t, db)
	root := t.TempDir()
	chooser := &Chooser{local: NewLocalStore(root, "http://localhost:3001")}
	ing := NewIngestor(db, chooser, testSettings(root))

	// Declared as an image but not decodable. Optimization degrades, the
	// upload still lands.
	raw := []byte("definitely not an image")
	result, err := ing.Save(task.ID, r.ID, raw, "broken.png", "image/png", "image")
	require.NoError(t, err)
	assert.True(t, result.OptimizationSkipped)

	stored, err := chooser.Local().Read(result.Media.FilePath)
	require.NoError(t, err)
	assert.Equal(t, raw, stored)
}

func TestIngestorVideoBytesUntouched(t *testing.T) {
	db := storageTestDB(t)
	r, task := storageTestTask(t, db)
	root := t.TempDir()
	chooser := &Chooser{local: NewLocalStore(root, "http://localhost:3001")}
	ing := NewIngestor(db, chooser, testSettings(root))

	raw := []byte{0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p'}
	result, err := ing.Save(task.ID, r.ID, raw, "clip.mp4", "video/mp4", "video")
	require.NoError(t, err)
	assert.False(t, result.OptimizationSkipped)
	assert.Equal(t, "video", result.Media.FileType)

	stored, err := chooser.Local().Read(result.Media.FilePath)
	require.NoError(t, err)
	assert.Equal(t, raw, stored)
}

func TestIngestorRejectsOversizedFile(t *testing.T) {
	db := storageTestDB(t)
	r, task := storageTestTask(t, db)
	root := t.TempDir()
	chooser := &Chooser{local: NewLocalStore(root, "http://localhost:3001")}
	cfg := testSettings(root)
	cfg.MaxFileSize = 16
	ing := NewIngestor(db, chooser, cfg)

	_, err := ing.Save(task.ID, r.ID, make([]byte, 17), "big.jpg", "image/jpeg", "image")
	require.ErrorIs(t, err, ErrFileTooLarge)

	var count int64
	require.NoError(t, db.Model(&Models.MediaFile{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestIngestorRejectsBadMime(t *testing.T) {
	db := storageTestDB(t)
	r, task := storageTestTask(t, db)
	root := t.TempDir()
	chooser := &Chooser{local: NewLocalStore(root, "http://localhost:3001")}
	ing := NewIngestor(db, chooser, testSettings(root))

	_, err := ing.Save(task.ID, r.ID, []byte("x"), "doc.pdf", "application/pdf", "image")
	require.ErrorIs(t, err, ErrUnsupportedMediaType)

	// A video mime on an image upload is still rejected.
	_, err = ing.Save(task.ID, r.ID, []byte("x"), "clip.mp4", "video/mp4", "image")
	require.ErrorIs(t, err, ErrUnsupportedMediaType)
}

func TestIngestorTenancyCheck(t *testing.T) {
	db := storageTestDB(t)
	_, task := storageTestTask(t, db)
	other := &Models.Restaurant{
		RestaurantCode: "OTHERCODE",
		Name:           "Other Kitchen",
		CuisineType:    "French",
		ContactEmail:   "other@example.com",
		ContactPhone:   "09876543210",
		PasswordHash:   "not-a-real-hash",
	}
	require.NoError(t, db.Create(other).Error)

	root := t.TempDir()
	chooser := &Chooser{local: NewLocalStore(root, "http://localhost:3001")}
	ing := NewIngestor(db, chooser, testSettings(root))

	_, err := ing.Save(task.ID, other.ID, []byte("x"), "photo.jpg", "image/jpeg", "image")
	assert.True(t, errors.Is(err, Models.ErrNotFound))
}

func TestIngestorPrefersCloud(t *testing.T) {
	db := storageTestDB(t)
	r, task := storageTestTask(t, db)
	root := t.TempDir()
	provider := newFakeProvider()
	chooser := &Chooser{
		local: NewLocalStore(root, "http://localhost:3001"),
		cloud: NewCloudStore(provider),
	}
	ing := NewIngestor(db, chooser, testSettings(root))

	result, err := ing.Save(task.ID, r.ID, jpegBytes(t, 100, 100), "photo.jpg", "image/jpeg", "image")
	require.NoError(t, err)
	assert.False(t, result.FellBackToLocal)
	assert.Equal(t, BackendCloud, result.Media.StorageBackend)
	assert.Contains(t, result.Media.FileURL, "https://cloud.example.com/")
	assert.Contains(t, result.Media.ProviderID, "image/")
	assert.Len(t, provider.uploads, 1)
}

func TestIngestorFallsBackToLocalOnCloudFailure(t *testing.T) {
	db := storageTestDB(t)
	r, task := storageTestTask(t, db)
	root := t.TempDir()
	provider := newFakeProvider()
	provider.failUploads = true
	chooser := &Chooser{
		local: NewLocalStore(root, "http://localhost:3001"),
		cloud: NewCloudStore(provider),
	}
	ing := NewIngestor(db, chooser, testSettings(root))

	result, err := ing.Save(task.ID, r.ID, jpegBytes(t, 100, 100), "photo.jpg", "image/jpeg", "image")
	require.NoError(t, err)
	assert.True(t, result.FellBackToLocal)
	assert.Equal(t, BackendLocal, result.Media.StorageBackend)

	// The blob really is on disk.
	_, err = chooser.Local().Read(result.Media.FilePath)
	require.NoError(t, err)
}

func TestIngestorStorageUnavailableWhenAllBackendsFail(t *testing.T) {
	db := storageTestDB(t)
	r, task := storageTestTask(t, db)

	// Local root is a regular file, so every local write fails; the cloud
	// provider fails too. With nowhere left to fall back to, the save is the
	// one terminal storage outcome.
	root := filepath.Join(t.TempDir(), "not-a-directory")
	require.NoError(t, os.WriteFile(root, []byte("x"), 0644))

	provider := newFakeProvider()
	provider.failUploads = true
	chooser := &Chooser{
		local: NewLocalStore(root, "http://localhost:3001"),
		cloud: NewCloudStore(provider),
	}
	ing := NewIngestor(db, chooser, testSettings(root))

	_, err := ing.Save(task.ID, r.ID, []byte("evidence"), "photo.jpg", "image/jpeg", "image")
	require.ErrorIs(t, err, ErrStorageUnavailable)

	// No bookkeeping row for a blob that landed nowhere.
	var count int64
	require.NoError(t, db.Model(&Models.MediaFile{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestIngestorDeleteMedia(t *testing.T) {
	db := storageTestDB(t)
	r, task := storageTestTask(t, db)
	root := t.TempDir()
	chooser := &Chooser{local: NewLocalStore(root, "http://localhost:3001")}
	ing := NewIngestor(db, chooser, testSettings(root))

	result, err := ing.Save(task.ID, r.ID, []byte("evidence"), "clip.mp4", "video/mp4", "video")
	require.NoError(t, err)

	require.NoError(t, ing.DeleteMedia(result.Media.ID, r.ID))

	var count int64
	require.NoError(t, db.Model(&Models.MediaFile{}).Count(&count).Error)
	assert.Zero(t, count)
	_, err = chooser.Local().Read(result.Media.FilePath)
	assert.Error(t, err)

	// Deleting again reads as absent.
	err = ing.DeleteMedia(result.Media.ID, r.ID)
	assert.True(t, errors.Is(err, Models.ErrNotFound))
}
