package db

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gracechapel/backend/biz/dal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates an in-memory SQLite database for testing
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // Reduce log noise in tests
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(&model.MediaAsset{}); err != nil {
		t.Fatalf("Failed to migrate tables: %v", err)
	}

	return db
}

// CleanupTestDB closes the database connection
func CleanupTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()
	sqlDB, err := db.DB()
	if err != nil {
		t.Logf("Warning: Failed to get underlying DB: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		t.Logf("Warning: Failed to close DB: %v", err)
	}
}

// CreateTestAsset persists a media asset with sensible defaults for tests.
func CreateTestAsset(t *testing.T, db *gorm.DB, assetID string, mutate func(*model.MediaAsset)) *model.MediaAsset {
	t.Helper()
	dao := NewMediaDAO()
	asset := &model.MediaAsset{
		AssetID:     assetID,
		StorageKey:  "media/" + assetID + "-test.jpg",
		URL:         "/api/v1/media/blob/media/" + assetID + "-test.jpg",
		Kind:        "image",
		Title:       "Test " + assetID,
		Tags:        model.TagList{},
		SizeBytes:   1024,
		SourceName:  assetID + "-test.jpg",
		ContentType: "image/jpeg",
	}
	if mutate != nil {
		mutate(asset)
	}
	if err := dao.Create(context.Background(), db, asset); err != nil {
		t.Fatalf("Failed to create test asset: %v", err)
	}
	return asset
}
