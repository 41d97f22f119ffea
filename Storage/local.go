package Storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps blobs under root, mirroring the logical path layout, and
// serves them through the app's /uploads static mount.
type LocalStore struct {
	root    string
	baseURL string
}

func NewLocalStore(root, baseURL string) *LocalStore {
	return &LocalStore{root: root, baseURL: strings.TrimRight(baseURL, "/")}
}

// Put writes to a temp file in the destination directory and renames it into
// place, so a crash mid-write never leaves a readable partial blob at the
// logical path.
func (s *LocalStore) Put(data []byte, logicalPath, contentType string) (PutResult, error) {
	dest, err := s.safeJoin(logicalPath)
	if err != nil {
		return PutResult{}, err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return PutResult{}, fmt.Errorf("failed to create upload directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".upload-*")
	if err != nil {
		return PutResult{}, fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return PutResult{}, fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return PutResult{}, fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		os.Remove(tmp.Name())
		return PutResult{}, fmt.Errorf("failed to move file into place: %w", err)
	}

	return PutResult{
		URL:     s.URLFor(logicalPath),
		Backend: BackendLocal,
	}, nil
}

// Delete removes the blob at the logical path. Missing files are not errors.
func (s *LocalStore) Delete(locator string) (bool, error) {
	dest, err := s.safeJoin(locator)
	if err != nil {
		return false, err
	}
	if err := os.Remove(dest); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to delete file: %w", err)
	}
	return true, nil
}

// Read returns the blob bytes for a logical path. Used by the migrator.
func (s *LocalStore) Read(logicalPath string) ([]byte, error) {
	dest, err := s.safeJoin(logicalPath)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(dest)
}

func (s *LocalStore) URLFor(logicalPath string) string {
	return s.baseURL + "/uploads/" + strings.TrimLeft(filepath.ToSlash(logicalPath), "/")
}

func (s *LocalStore) Root() string { return s.root }

// safeJoin resolves a logical path under root and rejects traversal.
func (s *LocalStore) safeJoin(logicalPath string) (string, error) {
	absRoot, err := filepath.Abs(s.root)
	if err != nil {
		return "", fmt.Errorf("invalid upload root: %w", err)
	}
	absPath, err := filepath.Abs(filepath.Join(s.root, filepath.FromSlash(logicalPath)))
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}
	if !strings.HasPrefix(absPath, absRoot+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes upload root: %q", logicalPath)
	}
	return absPath, nil
}
