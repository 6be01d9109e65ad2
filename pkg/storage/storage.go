// Package storage defines the blob storage abstraction for the media pipeline.
// It provides a unified interface for different storage backends including
// local filesystem and S3-compatible object storage (AWS S3, MinIO).
package storage

import (
	"context"
	"io"
)

// ObjectInfo describes a stored object returned from a prefix listing.
type ObjectInfo struct {
	Name string // base name of the object
	Key  string // full object key
	Size int64
}

// Storage defines the interface for blob storage operations.
// All storage backends (local, S3) must implement this interface.
// Errors returned from failed operations are classified *Error values so
// callers never see raw SDK or filesystem errors.
type Storage interface {
	// PutObject uploads a blob to storage.
	// key: object key in format "{collection}/{fileName}"
	// data: blob content reader
	// contentType: MIME type of the blob
	// size: blob size in bytes
	PutObject(ctx context.Context, key string, data io.Reader, contentType string, size int64) error

	// GetObject retrieves a blob from storage.
	// Returns a ReadCloser that must be closed by the caller.
	GetObject(ctx context.Context, key string) (io.ReadCloser, error)

	// DeleteObject removes a blob from storage.
	DeleteObject(ctx context.Context, key string) error

	// ObjectExists checks if an object exists in storage.
	ObjectExists(ctx context.Context, key string) (bool, error)

	// ListObjects returns the objects stored under the given key prefix.
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)

	// GenerateURL creates a time-durable fetch address for the object.
	// For local storage: returns an API path served by the blob proxy handler.
	// For S3 with presigned mode: returns a presigned URL.
	GenerateURL(ctx context.Context, key string) (string, error)

	// Type returns the storage type identifier ("local" or "s3").
	Type() string
}
