// Package factory builds a storage adapter from service configuration.
package factory

import (
	"fmt"

	"github.com/gracechapel/backend/pkg/config"
	"github.com/gracechapel/backend/pkg/storage"
	"github.com/gracechapel/backend/pkg/storage/local"
	"github.com/gracechapel/backend/pkg/storage/s3"
)

// New creates a storage adapter based on configuration.
func New(cfg config.StorageConfig) (storage.Storage, error) {
	switch cfg.Type {
	case "", "local":
		basePath := cfg.Local.BasePath
		if basePath == "" {
			basePath = "data/uploads"
		}
		return local.New(basePath)

	case "s3":
		return s3.New(s3.Config{
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			Bucket:    cfg.S3.Bucket,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			UseSSL:    cfg.S3.UseSSL,
			PathStyle: cfg.S3.PathStyle,
			URLMode:   cfg.S3.URLMode,
		})

	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
