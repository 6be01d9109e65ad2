// Package local implements the local filesystem storage adapter.
package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gracechapel/backend/pkg/storage"
)

// Storage implements the storage.Storage interface using local filesystem.
type Storage struct {
	basePath string
}

// New creates a new local storage adapter.
// basePath is the root directory for storing blobs (e.g., "data/uploads").
func New(basePath string) (*Storage, error) {
	if basePath == "" {
		basePath = "data/uploads"
	}

	// Ensure base directory exists
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	return &Storage{basePath: basePath}, nil
}

// PutObject writes a blob to the local filesystem.
func (s *Storage) PutObject(ctx context.Context, key string, data io.Reader, contentType string, size int64) error {
	fullPath := s.keyToPath(key)

	// Ensure parent directory exists
	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return storage.Classify("put", err)
	}

	f, err := os.Create(fullPath)
	if err != nil {
		return storage.Classify("put", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, data); err != nil {
		os.Remove(fullPath)
		return storage.Classify("put", err)
	}

	return nil
}

// GetObject reads a blob from the local filesystem.
func (s *Storage) GetObject(ctx context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(s.keyToPath(key))
	if err != nil {
		return nil, storage.Classify("get", err)
	}
	return f, nil
}

// DeleteObject removes a blob from the local filesystem.
func (s *Storage) DeleteObject(ctx context.Context, key string) error {
	fullPath := s.keyToPath(key)

	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return nil // Already deleted
		}
		return storage.Classify("delete", err)
	}

	// Try to remove parent directory if empty
	dir := filepath.Dir(fullPath)
	os.Remove(dir) // Ignore error if directory is not empty

	return nil
}

// ObjectExists checks if a blob exists on disk.
func (s *Storage) ObjectExists(ctx context.Context, key string) (bool, error) {
	_, err := os.Stat(s.keyToPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, storage.Classify("head", err)
	}
	return true, nil
}

// ListObjects walks the directory tree under the prefix and returns stored objects.
func (s *Storage) ListObjects(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	root := s.keyToPath(prefix)

	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // Empty prefix is not an error
		}
		return nil, storage.Classify("list", err)
	}
	if !info.IsDir() {
		return []storage.ObjectInfo{{
			Name: filepath.Base(root),
			Key:  filepath.ToSlash(prefix),
			Size: info.Size(),
		}}, nil
	}

	var objects []storage.ObjectInfo
	err = filepath.Walk(root, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.basePath, path)
		if err != nil {
			return err
		}
		objects = append(objects, storage.ObjectInfo{
			Name: fi.Name(),
			Key:  filepath.ToSlash(rel),
			Size: fi.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, storage.Classify("list", err)
	}
	return objects, nil
}

// GenerateURL returns the API path the blob proxy handler serves the object from.
func (s *Storage) GenerateURL(ctx context.Context, key string) (string, error) {
	return "/api/v1/media/blob/" + strings.TrimPrefix(key, "/"), nil
}

// Type returns "local" as the storage type identifier.
func (s *Storage) Type() string {
	return "local"
}

// keyToPath converts an object key to a full filesystem path.
func (s *Storage) keyToPath(key string) string {
	return filepath.Join(s.basePath, key)
}

// BasePath returns the base path of the storage.
func (s *Storage) BasePath() string {
	return s.basePath
}
