package service

import (
	"gorm.io/gorm"

	"github.com/gracechapel/backend/pkg/storage"
	"github.com/gracechapel/backend/pkg/thumbnail"
	"github.com/gracechapel/backend/pkg/validator"
)

const (
	mediaCollection     = "media"
	thumbnailCollection = "thumbnails"
)

// Service orchestrates media pipeline operations using Logic, blob storage
// and the thumbnail generator.
type Service struct {
	logic      *Logic
	storage    storage.Storage
	thumbnails thumbnail.Generator
	upload     *validator.UploadConfig
}

func NewService(db *gorm.DB, store storage.Storage, thumbs thumbnail.Generator, upload *validator.UploadConfig) *Service {
	if upload == nil {
		upload = validator.NewUploadConfig(0, nil)
	}
	return &Service{
		logic:      NewLogic(db),
		storage:    store,
		thumbnails: thumbs,
		upload:     upload,
	}
}
