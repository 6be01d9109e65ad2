package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/gracechapel/backend/biz/dal/model"

	"gorm.io/gorm"
)

// MediaDAO handles CRUD operations for media catalog records.
type MediaDAO struct{}

func NewMediaDAO() *MediaDAO { return &MediaDAO{} }

func (dao *MediaDAO) Create(ctx context.Context, db *gorm.DB, asset *model.MediaAsset) error {
	if asset == nil {
		return errors.New("asset must not be nil")
	}
	if asset.AssetID == "" {
		asset.AssetID = uuid.NewString()
	}
	return db.WithContext(ctx).Create(asset).Error
}

// UpdateFields applies a partial patch to a record identified by asset id.
// Only the supplied columns change; concurrent patches are last-write-wins.
func (dao *MediaDAO) UpdateFields(ctx context.Context, db *gorm.DB, assetID string, patch map[string]interface{}) error {
	if assetID == "" {
		return errors.New("asset_id is required")
	}
	if len(patch) == 0 {
		return nil
	}
	result := db.WithContext(ctx).
		Model(&model.MediaAsset{}).
		Where("asset_id = ?", assetID).
		Updates(patch)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteByAssetID removes only the catalog row. Blob deletion is the caller's
// responsibility; the asset is not fully removed until both succeed.
func (dao *MediaDAO) DeleteByAssetID(ctx context.Context, db *gorm.DB, assetID string) error {
	return db.WithContext(ctx).Unscoped().Where("asset_id = ?", assetID).Delete(&model.MediaAsset{}).Error
}

func (dao *MediaDAO) GetByAssetID(ctx context.Context, db *gorm.DB, assetID string) (*model.MediaAsset, error) {
	var asset model.MediaAsset
	if err := db.WithContext(ctx).Where("asset_id = ?", assetID).First(&asset).Error; err != nil {
		return nil, err
	}
	return &asset, nil
}

// GetByStorageKey finds the record owning a blob key, matching either the
// primary object or its thumbnail.
func (dao *MediaDAO) GetByStorageKey(ctx context.Context, db *gorm.DB, key string) (*model.MediaAsset, error) {
	var asset model.MediaAsset
	if err := db.WithContext(ctx).
		Where("storage_key = ? OR thumbnail_key = ?", key, key).
		First(&asset).Error; err != nil {
		return nil, err
	}
	return &asset, nil
}

// List returns all catalog records, newest first. This is the sole read path
// for the gallery view model.
func (dao *MediaDAO) List(ctx context.Context, db *gorm.DB) ([]model.MediaAsset, error) {
	var assets []model.MediaAsset
	if err := db.WithContext(ctx).
		Order("created_at DESC").
		Find(&assets).Error; err != nil {
		return nil, err
	}
	return assets, nil
}
