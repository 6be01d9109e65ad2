package service

import (
	"context"
	"errors"

	"github.com/gracechapel/backend/biz/dal/db"
	"github.com/gracechapel/backend/biz/dal/model"
	"gorm.io/gorm"
)

// Logic contains catalog business rules on top of data persistence.
type Logic struct {
	db       *gorm.DB
	mediaDAO *db.MediaDAO
}

func NewLogic(dbConn *gorm.DB) *Logic {
	return &Logic{
		db:       dbConn,
		mediaDAO: db.NewMediaDAO(),
	}
}

func (l *Logic) CreateAsset(ctx context.Context, asset *model.MediaAsset) error {
	if err := l.mediaDAO.Create(ctx, l.db, asset); err != nil {
		return newCatalogError(err)
	}
	return nil
}

func (l *Logic) PatchAsset(ctx context.Context, assetID string, patch map[string]interface{}) error {
	if err := l.mediaDAO.UpdateFields(ctx, l.db, assetID, patch); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssetNotFound
		}
		return newCatalogError(err)
	}
	return nil
}

func (l *Logic) DeleteAsset(ctx context.Context, assetID string) error {
	if err := l.mediaDAO.DeleteByAssetID(ctx, l.db, assetID); err != nil {
		return newCatalogError(err)
	}
	return nil
}

func (l *Logic) GetAsset(ctx context.Context, assetID string) (*model.MediaAsset, error) {
	asset, err := l.mediaDAO.GetByAssetID(ctx, l.db, assetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssetNotFound
		}
		return nil, newCatalogError(err)
	}
	return asset, nil
}

func (l *Logic) GetAssetByStorageKey(ctx context.Context, key string) (*model.MediaAsset, error) {
	asset, err := l.mediaDAO.GetByStorageKey(ctx, l.db, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssetNotFound
		}
		return nil, newCatalogError(err)
	}
	return asset, nil
}

func (l *Logic) ListAssets(ctx context.Context) ([]model.MediaAsset, error) {
	assets, err := l.mediaDAO.List(ctx, l.db)
	if err != nil {
		return nil, newCatalogError(err)
	}
	return assets, nil
}
