package Storage

import (
	"errors"
	"log"

	"RestroManage/Config"
)

const (
	BackendLocal = "local"
	BackendCloud = "cloud"
)

var (
	ErrFileTooLarge         = errors.New("file too large")
	ErrUnsupportedMediaType = errors.New("unsupported media type")

	// ErrStorageUnavailable means every configured backend failed. A single
	// backend failing is handled by falling back, never surfaced.
	ErrStorageUnavailable = errors.New("storage unavailable")

	ErrCloudNotConfigured = errors.New("cloud storage not configured")
)

// PutResult identifies where a blob ended up. ProviderID is only set for
// cloud puts and is what Delete later needs.
type PutResult struct {
	URL        string
	Backend    string
	ProviderID string
}

// Backend stores and removes blobs addressed by backend-agnostic logical
// paths (task_completions/<task_id>/<filename>). Put overwrites on re-invoke
// with the same path and never leaves a partial write behind. Delete reports
// false, not an error, for a locator that does not exist.
type Backend interface {
	Put(data []byte, logicalPath, contentType string) (PutResult, error)
	Delete(locator string) (bool, error)
}

// Chooser picks the backend for new writes. Cloud credentials are validated
// once at construction; a cloud that fails the ping stays disabled for the
// life of the process and everything lands on disk.
type Chooser struct {
	local *LocalStore
	cloud *CloudStore
}

func NewChooser(cfg *Config.Settings) *Chooser {
	c := &Chooser{
		local: NewLocalStore(cfg.UploadDirectory, cfg.BaseURL),
	}
	if !cfg.UseCloudStorage {
		return c
	}

	provider := NewCloudinaryProvider(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err := provider.Ping(); err != nil {
		log.Printf("Cloud storage disabled, credentials failed validation: %v", err)
		return c
	}
	c.cloud = NewCloudStore(provider)
	log.Printf("Cloud storage enabled for %s", cfg.CloudinaryCloudName)
	return c
}

// Preferred returns the backend new writes should go to first.
func (c *Chooser) Preferred() Backend {
	if c.cloud != nil {
		return c.cloud
	}
	return c.local
}

func (c *Chooser) Local() *LocalStore { return c.local }

// Cloud returns the cloud backend, nil when unconfigured or unvalidated.
func (c *Chooser) Cloud() *CloudStore { return c.cloud }

func (c *Chooser) CloudEnabled() bool { return c.cloud != nil }

// TestConnection re-checks the active backend. Local disk has nothing to
// validate beyond being writable, which every Put already proves, so the
// check only talks to the cloud provider when one is configured.
func (c *Chooser) TestConnection() error {
	if c.cloud == nil {
		return nil
	}
	return c.cloud.Ping()
}
