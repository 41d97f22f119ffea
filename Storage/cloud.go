package Storage

import (
	"fmt"
	"strings"
)

// CloudProvider is the capability contract a cloud object store has to meet.
// The concrete wiring (Cloudinary today) lives behind this so the rest of
// the storage code never sees a provider SDK or its URL formats.
type CloudProvider interface {
	// Ping validates credentials. Called once at startup.
	Ping() error
	// Upload stores the blob and returns its canonical public URL plus the
	// provider's own id for the object.
	Upload(data []byte, publicID, resourceType string) (url string, providerID string, err error)
	// Destroy removes the object. Returns false when it was already gone.
	Destroy(publicID, resourceType string) (bool, error)
}

// CloudStore adapts a CloudProvider to the Backend interface. The recorded
// provider id is "<resource_type>/<public_id>" so Delete can recover the
// resource type without another lookup.
type CloudStore struct {
	provider CloudProvider
}

func NewCloudStore(provider CloudProvider) *CloudStore {
	return &CloudStore{provider: provider}
}

// Ping re-validates the provider credentials on demand.
func (s *CloudStore) Ping() error {
	return s.provider.Ping()
}

func (s *CloudStore) Put(data []byte, logicalPath, contentType string) (PutResult, error) {
	resourceType := "image"
	if strings.HasPrefix(contentType, "video/") {
		resourceType = "video"
	}

	// Providers key objects without the file extension.
	publicID := strings.TrimSuffix(logicalPath, extOf(logicalPath))

	url, providerID, err := s.provider.Upload(data, publicID, resourceType)
	if err != nil {
		return PutResult{}, err
	}
	return PutResult{
		URL:        url,
		Backend:    BackendCloud,
		ProviderID: resourceType + "/" + providerID,
	}, nil
}

func (s *CloudStore) Delete(locator string) (bool, error) {
	resourceType, publicID, ok := strings.Cut(locator, "/")
	if !ok || (resourceType != "image" && resourceType != "video") {
		return false, fmt.Errorf("malformed cloud locator: %q", locator)
	}
	return s.provider.Destroy(publicID, resourceType)
}

func extOf(p string) string {
	if i := strings.LastIndex(p, "."); i > strings.LastIndex(p, "/") {
		return p[i:]
	}
	return ""
}
