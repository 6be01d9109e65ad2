package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gracechapel/backend/biz/dal/model"
	"gorm.io/gorm"
)

func TestMediaDAO_Create(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)
	dao := NewMediaDAO()
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		asset := &model.MediaAsset{
			StorageKey:  "media/1-sunrise.jpg",
			URL:         "/api/v1/media/blob/media/1-sunrise.jpg",
			Kind:        "image",
			Tags:        model.TagList{"event"},
			SizeBytes:   2048,
			SourceName:  "sunrise.jpg",
			ContentType: "image/jpeg",
		}

		if err := dao.Create(ctx, db, asset); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if asset.AssetID == "" {
			t.Error("Expected asset_id to be assigned on create")
		}
		if asset.ID == 0 {
			t.Error("Expected ID to be set after creation")
		}

		found, err := dao.GetByAssetID(ctx, db, asset.AssetID)
		if err != nil {
			t.Fatalf("GetByAssetID failed: %v", err)
		}
		if found.SourceName != "sunrise.jpg" {
			t.Errorf("Expected source name 'sunrise.jpg', got '%s'", found.SourceName)
		}
		if len(found.Tags) != 1 || found.Tags[0] != "event" {
			t.Errorf("Expected tags [event], got %v", found.Tags)
		}
	})

	t.Run("NilEntity", func(t *testing.T) {
		if err := dao.Create(ctx, db, nil); err == nil {
			t.Error("Expected error for nil asset")
		}
	})

	t.Run("DuplicateAssetID", func(t *testing.T) {
		a1 := &model.MediaAsset{AssetID: "dup-asset", StorageKey: "media/a", Kind: "image"}
		a2 := &model.MediaAsset{AssetID: "dup-asset", StorageKey: "media/b", Kind: "image"}

		if err := dao.Create(ctx, db, a1); err != nil {
			t.Fatalf("First create failed: %v", err)
		}
		if err := dao.Create(ctx, db, a2); err == nil {
			t.Error("Expected error for duplicate asset_id")
		}
	})
}

func TestMediaDAO_UpdateFields(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)
	dao := NewMediaDAO()
	ctx := context.Background()

	asset := CreateTestAsset(t, db, "patch-test", nil)

	t.Run("PartialPatch", func(t *testing.T) {
		patch := map[string]interface{}{
			"description": "Easter sunrise service",
		}
		if err := dao.UpdateFields(ctx, db, asset.AssetID, patch); err != nil {
			t.Fatalf("UpdateFields failed: %v", err)
		}

		found, err := dao.GetByAssetID(ctx, db, asset.AssetID)
		if err != nil {
			t.Fatalf("GetByAssetID failed: %v", err)
		}
		if found.Description != "Easter sunrise service" {
			t.Errorf("Expected patched description, got %q", found.Description)
		}
		// Untouched fields survive the patch.
		if found.Title != asset.Title {
			t.Errorf("Title changed by unrelated patch: %q", found.Title)
		}
		if found.StorageKey != asset.StorageKey {
			t.Errorf("StorageKey changed by unrelated patch: %q", found.StorageKey)
		}
	})

	t.Run("TagsOnlyPatch", func(t *testing.T) {
		patch := map[string]interface{}{
			"tags": model.TagList{"worship", "sermon"},
		}
		if err := dao.UpdateFields(ctx, db, asset.AssetID, patch); err != nil {
			t.Fatalf("UpdateFields failed: %v", err)
		}

		found, err := dao.GetByAssetID(ctx, db, asset.AssetID)
		if err != nil {
			t.Fatalf("GetByAssetID failed: %v", err)
		}
		if len(found.Tags) != 2 || found.Tags[0] != "worship" || found.Tags[1] != "sermon" {
			t.Errorf("Expected tags [worship sermon], got %v", found.Tags)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		err := dao.UpdateFields(ctx, db, "no-such-asset", map[string]interface{}{"title": "x"})
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			t.Errorf("Expected ErrRecordNotFound, got %v", err)
		}
	})

	t.Run("EmptyPatch", func(t *testing.T) {
		if err := dao.UpdateFields(ctx, db, asset.AssetID, nil); err != nil {
			t.Errorf("Empty patch should be a no-op, got %v", err)
		}
	})
}

func TestMediaDAO_Delete(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)
	dao := NewMediaDAO()
	ctx := context.Background()

	asset := CreateTestAsset(t, db, "delete-test", nil)

	if err := dao.DeleteByAssetID(ctx, db, asset.AssetID); err != nil {
		t.Fatalf("DeleteByAssetID failed: %v", err)
	}

	if _, err := dao.GetByAssetID(ctx, db, asset.AssetID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("Expected record gone after delete, got %v", err)
	}

	// Deleting a missing record is not an error.
	if err := dao.DeleteByAssetID(ctx, db, asset.AssetID); err != nil {
		t.Errorf("Second delete should be a no-op, got %v", err)
	}
}

func TestMediaDAO_ListOrdering(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)
	dao := NewMediaDAO()
	ctx := context.Background()

	older := CreateTestAsset(t, db, "older", nil)
	// Force distinct created_at values; sqlite timestamp resolution can
	// otherwise collapse both rows into the same instant.
	if err := db.Model(older).Update("created_at", time.Now().Add(-time.Hour)).Error; err != nil {
		t.Fatalf("backdate older asset: %v", err)
	}
	CreateTestAsset(t, db, "newer", nil)

	assets, err := dao.List(ctx, db)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(assets) != 2 {
		t.Fatalf("Expected 2 assets, got %d", len(assets))
	}
	if assets[0].AssetID != "newer" || assets[1].AssetID != "older" {
		t.Errorf("Expected newest-first ordering, got [%s %s]", assets[0].AssetID, assets[1].AssetID)
	}
}
