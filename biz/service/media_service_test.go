package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/gracechapel/backend/biz/dal/db"
	"github.com/gracechapel/backend/biz/dal/model"
	pkgstorage "github.com/gracechapel/backend/pkg/storage"
	"github.com/gracechapel/backend/pkg/thumbnail"
	"github.com/gracechapel/backend/pkg/validator"
	"gorm.io/gorm"
)

// fakeStorage is an in-memory Storage with injectable failures.
type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
	delErr  func(key string) error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (f *fakeStorage) PutObject(_ context.Context, key string, data io.Reader, _ string, _ int64) error {
	if f.putErr != nil {
		return f.putErr
	}
	buf, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = buf
	return nil
}

func (f *fakeStorage) GetObject(_ context.Context, key string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return nil, &pkgstorage.Error{Code: pkgstorage.CodeNotFound, Op: "get_object", Err: errors.New("missing")}
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeStorage) DeleteObject(_ context.Context, key string) error {
	if f.delErr != nil {
		if err := f.delErr(key); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

func (f *fakeStorage) ObjectExists(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok, nil
}

func (f *fakeStorage) ListObjects(_ context.Context, prefix string) ([]pkgstorage.ObjectInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []pkgstorage.ObjectInfo
	for key, data := range f.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, pkgstorage.ObjectInfo{Name: key, Key: key, Size: int64(len(data))})
		}
	}
	return out, nil
}

func (f *fakeStorage) GenerateURL(_ context.Context, key string) (string, error) {
	return "/api/v1/media/blob/" + key, nil
}

func (f *fakeStorage) Type() string { return "fake" }

func (f *fakeStorage) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for key := range f.objects {
		keys = append(keys, key)
	}
	return keys
}

// fakeThumbnailer returns a canned result without touching ffmpeg.
type fakeThumbnailer struct {
	result thumbnail.Result
}

func (f *fakeThumbnailer) Generate(context.Context, []byte) thumbnail.Result {
	return f.result
}

func newTestService(t *testing.T, store pkgstorage.Storage, thumbs thumbnail.Generator) (*Service, *gorm.DB) {
	t.Helper()
	conn := db.SetupTestDB(t)
	t.Cleanup(func() { db.CleanupTestDB(t, conn) })
	svc := NewService(conn, store, thumbs, validator.NewUploadConfig(0, nil))
	return svc, conn
}

func jpegPayload(size int) []byte {
	data := make([]byte, size)
	copy(data, []byte{0xFF, 0xD8, 0xFF, 0xE0})
	return data
}

func TestUploadMediaImage(t *testing.T) {
	store := newFakeStorage()
	svc, _ := newTestService(t, store, &fakeThumbnailer{})

	var last pkgstorage.Progress
	asset, err := svc.UploadMedia(context.Background(), &UploadInput{
		FileName:    "sunrise.jpg",
		ContentType: "image/jpeg",
		Title:       "Easter Sunrise",
		Tags:        []string{"Event", "event "},
		Data:        jpegPayload(2 * 1024 * 1024),
		OnProgress:  func(p pkgstorage.Progress) { last = p },
	})
	if err != nil {
		t.Fatalf("UploadMedia: %v", err)
	}
	if asset.AssetID == "" {
		t.Fatalf("expected asset id assigned")
	}
	if asset.Kind != string(validator.KindImage) {
		t.Fatalf("expected image kind, got %q", asset.Kind)
	}
	if len(asset.Tags) != 1 || asset.Tags[0] != "event" {
		t.Fatalf("expected normalized tags [event], got %v", asset.Tags)
	}
	if !strings.Contains(asset.StorageKey, "sunrise.jpg") || !strings.HasPrefix(asset.StorageKey, "media/") {
		t.Fatalf("unexpected storage key %q", asset.StorageKey)
	}
	if asset.ThumbnailKey != "" {
		t.Fatalf("image upload must not produce a thumbnail, got %q", asset.ThumbnailKey)
	}
	if asset.URL != "/api/v1/media/blob/"+asset.StorageKey {
		t.Fatalf("unexpected url %q", asset.URL)
	}
	if last.Percent() != 100 {
		t.Fatalf("expected final progress 100%%, got %d", last.Percent())
	}

	got, reader, err := svc.OpenBlob(context.Background(), asset.StorageKey)
	if err != nil {
		t.Fatalf("OpenBlob: %v", err)
	}
	defer reader.Close()
	if got.AssetID != asset.AssetID {
		t.Fatalf("blob resolved to wrong record")
	}
}

func TestUploadMediaRejectsOversize(t *testing.T) {
	store := newFakeStorage()
	svc, _ := newTestService(t, store, &fakeThumbnailer{})

	_, err := svc.UploadMedia(context.Background(), &UploadInput{
		FileName:    "huge.jpg",
		ContentType: "image/jpeg",
		Data:        jpegPayload(validator.DefaultMaxUploadSize + 1),
	})
	var verr *validator.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if verr.Reason != validator.ReasonFileTooLarge {
		t.Fatalf("expected file_too_large, got %q", verr.Reason)
	}
	if len(store.keys()) != 0 {
		t.Fatalf("rejected upload must not write blobs, found %v", store.keys())
	}
}

func TestUploadMediaRejectsDisallowedType(t *testing.T) {
	svc, _ := newTestService(t, newFakeStorage(), &fakeThumbnailer{})

	_, err := svc.UploadMedia(context.Background(), &UploadInput{
		FileName:    "notes.pdf",
		ContentType: "application/pdf",
		Data:        []byte("%PDF-1.4"),
	})
	var verr *validator.ValidationError
	if !errors.As(err, &verr) || verr.Reason != validator.ReasonInvalidFileType {
		t.Fatalf("expected invalid_file_type, got %v", err)
	}
}

func TestUploadMediaDeclaredTypeIsAuthoritative(t *testing.T) {
	store := newFakeStorage()
	svc, _ := newTestService(t, store, &fakeThumbnailer{})

	// The payload carries a real JPEG signature; only the declared type counts.
	for _, declared := range []string{"", "application/octet-stream"} {
		_, err := svc.UploadMedia(context.Background(), &UploadInput{
			FileName:    "mystery.jpg",
			ContentType: declared,
			Data:        jpegPayload(64),
		})
		var verr *validator.ValidationError
		if !errors.As(err, &verr) || verr.Reason != validator.ReasonInvalidFileType {
			t.Fatalf("declared %q: expected invalid_file_type, got %v", declared, err)
		}
	}
	if len(store.keys()) != 0 {
		t.Fatalf("rejected upload must not write blobs, found %v", store.keys())
	}
}

func TestUploadMediaTransportFailureLeavesNoRecord(t *testing.T) {
	store := newFakeStorage()
	store.putErr = &pkgstorage.Error{Code: pkgstorage.CodeQuotaExceeded, Op: "put_object", Err: errors.New("full")}
	svc, conn := newTestService(t, store, &fakeThumbnailer{})

	_, err := svc.UploadMedia(context.Background(), &UploadInput{
		FileName:    "a.jpg",
		ContentType: "image/jpeg",
		Data:        jpegPayload(16),
	})
	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if terr.Code != pkgstorage.CodeQuotaExceeded {
		t.Fatalf("expected quota-exceeded, got %s", terr.Code)
	}

	var count int64
	if err := conn.Model(&model.MediaAsset{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("transport failure must not create a record, found %d", count)
	}
}

func TestUploadMediaCatalogFailureOrphansBlob(t *testing.T) {
	store := newFakeStorage()
	svc, conn := newTestService(t, store, &fakeThumbnailer{})

	// Break only the catalog write, after the blob write succeeded.
	if err := conn.Migrator().DropTable(&model.MediaAsset{}); err != nil {
		t.Fatalf("drop table: %v", err)
	}

	_, err := svc.UploadMedia(context.Background(), &UploadInput{
		FileName:    "orphan.jpg",
		ContentType: "image/jpeg",
		Data:        jpegPayload(16),
	})
	var cerr *CatalogError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected catalog error, got %v", err)
	}
	if len(store.keys()) != 1 {
		t.Fatalf("blob must remain after catalog failure, found %v", store.keys())
	}

	if err := conn.AutoMigrate(&model.MediaAsset{}); err != nil {
		t.Fatalf("re-migrate: %v", err)
	}
	assets, err := svc.ListMedia(context.Background())
	if err != nil {
		t.Fatalf("ListMedia: %v", err)
	}
	if len(assets) != 0 {
		t.Fatalf("orphaned blob must not be visible, got %d assets", len(assets))
	}
}

func TestUploadMediaVideoThumbnail(t *testing.T) {
	store := newFakeStorage()
	thumbs := &fakeThumbnailer{result: thumbnail.ReadyResult([]byte{0xFF, 0xD8, 0xFF}, "image/jpeg")}
	svc, _ := newTestService(t, store, thumbs)

	asset, err := svc.UploadMedia(context.Background(), &UploadInput{
		FileName:    "sermon.mp4",
		ContentType: "video/mp4",
		Data:        bytes.Repeat([]byte{0x01}, 128),
	})
	if err != nil {
		t.Fatalf("UploadMedia: %v", err)
	}
	if asset.Kind != string(validator.KindVideo) {
		t.Fatalf("expected video kind, got %q", asset.Kind)
	}
	if !asset.HasThumbnail() {
		t.Fatalf("expected thumbnail key")
	}
	if !strings.HasPrefix(asset.ThumbnailKey, "thumbnails/") {
		t.Fatalf("unexpected thumbnail key %q", asset.ThumbnailKey)
	}
	if exists, _ := store.ObjectExists(context.Background(), asset.ThumbnailKey); !exists {
		t.Fatalf("thumbnail blob not stored")
	}
}

func TestUploadMediaVideoThumbnailSkipped(t *testing.T) {
	store := newFakeStorage()
	svc, _ := newTestService(t, store, &fakeThumbnailer{result: thumbnail.Skipped()})

	asset, err := svc.UploadMedia(context.Background(), &UploadInput{
		FileName:    "sermon.mp4",
		ContentType: "video/mp4",
		Data:        bytes.Repeat([]byte{0x01}, 128),
	})
	if err != nil {
		t.Fatalf("UploadMedia: %v", err)
	}
	if asset.HasThumbnail() {
		t.Fatalf("skipped thumbnail must leave key empty, got %q", asset.ThumbnailKey)
	}
	if len(store.keys()) != 1 {
		t.Fatalf("expected only the video blob, found %v", store.keys())
	}
}

func TestUploadBatchContinuesPastFailures(t *testing.T) {
	store := newFakeStorage()
	svc, _ := newTestService(t, store, &fakeThumbnailer{})

	results := svc.UploadBatch(context.Background(), []*UploadInput{
		{FileName: "ok1.jpg", ContentType: "image/jpeg", Data: jpegPayload(8)},
		{FileName: "bad.pdf", ContentType: "application/pdf", Data: []byte("%PDF")},
		{FileName: "ok2.png", ContentType: "image/png", Data: jpegPayload(8)},
	})
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Err != nil || results[2].Err != nil {
		t.Fatalf("valid files must succeed: %v / %v", results[0].Err, results[2].Err)
	}
	if results[1].Err == nil {
		t.Fatalf("invalid file must fail")
	}
	assets, _ := svc.ListMedia(context.Background())
	if len(assets) != 2 {
		t.Fatalf("expected 2 records, got %d", len(assets))
	}
}

func TestDeleteMediaKeepsRecordOnTransportFailure(t *testing.T) {
	store := newFakeStorage()
	svc, _ := newTestService(t, store, &fakeThumbnailer{})

	asset, err := svc.UploadMedia(context.Background(), &UploadInput{
		FileName:    "keep.jpg",
		ContentType: "image/jpeg",
		Data:        jpegPayload(8),
	})
	if err != nil {
		t.Fatalf("UploadMedia: %v", err)
	}

	store.delErr = func(string) error {
		return &pkgstorage.Error{Code: pkgstorage.CodeUnauthorized, Op: "delete_object", Err: errors.New("denied")}
	}
	err = svc.DeleteMedia(context.Background(), asset.AssetID)
	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if _, err := svc.GetMedia(context.Background(), asset.AssetID); err != nil {
		t.Fatalf("record must survive a failed blob delete: %v", err)
	}

	store.delErr = nil
	if err := svc.DeleteMedia(context.Background(), asset.AssetID); err != nil {
		t.Fatalf("retry delete: %v", err)
	}
	if _, err := svc.GetMedia(context.Background(), asset.AssetID); !errors.Is(err, ErrAssetNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if len(store.keys()) != 0 {
		t.Fatalf("blobs must be gone, found %v", store.keys())
	}
}

func TestPatchMediaPartialUpdate(t *testing.T) {
	store := newFakeStorage()
	svc, _ := newTestService(t, store, &fakeThumbnailer{})

	asset, err := svc.UploadMedia(context.Background(), &UploadInput{
		FileName:    "patch.jpg",
		ContentType: "image/jpeg",
		Title:       "Original",
		Description: "Keep me",
		Data:        jpegPayload(8),
	})
	if err != nil {
		t.Fatalf("UploadMedia: %v", err)
	}

	title := "Renamed"
	updated, err := svc.PatchMedia(context.Background(), asset.AssetID, MediaPatch{Title: &title})
	if err != nil {
		t.Fatalf("PatchMedia: %v", err)
	}
	if updated.Title != "Renamed" {
		t.Fatalf("expected new title, got %q", updated.Title)
	}
	if updated.Description != "Keep me" {
		t.Fatalf("untouched field must survive, got %q", updated.Description)
	}

	if _, err := svc.PatchMedia(context.Background(), "missing", MediaPatch{Title: &title}); !errors.Is(err, ErrAssetNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUploadThenBulkTagFlow(t *testing.T) {
	store := newFakeStorage()
	svc, _ := newTestService(t, store, &fakeThumbnailer{})

	asset, err := svc.UploadMedia(context.Background(), &UploadInput{
		FileName:    "sunrise.jpg",
		ContentType: "image/jpeg",
		Tags:        []string{"event"},
		Data:        jpegPayload(2 * 1024 * 1024),
	})
	if err != nil {
		t.Fatalf("UploadMedia: %v", err)
	}

	result, err := svc.BulkTag(context.Background(), []string{asset.AssetID}, []string{"Worship"})
	if err != nil {
		t.Fatalf("BulkTag: %v", err)
	}
	if result.Succeeded != 1 {
		t.Fatalf("expected 1 success, got %+v", result)
	}

	got, err := svc.GetMedia(context.Background(), asset.AssetID)
	if err != nil {
		t.Fatalf("GetMedia: %v", err)
	}
	want := []string{"event", "worship"}
	if len(got.Tags) != 2 || got.Tags[0] != want[0] || got.Tags[1] != want[1] {
		t.Fatalf("expected tags %v, got %v", want, got.Tags)
	}
}

func TestBulkDeletePartialFailure(t *testing.T) {
	store := newFakeStorage()
	svc, _ := newTestService(t, store, &fakeThumbnailer{})

	var ids []string
	var keys []string
	for i := 0; i < 3; i++ {
		asset, err := svc.UploadMedia(context.Background(), &UploadInput{
			FileName:    fmt.Sprintf("file%d.jpg", i),
			ContentType: "image/jpeg",
			Data:        jpegPayload(8),
		})
		if err != nil {
			t.Fatalf("UploadMedia: %v", err)
		}
		ids = append(ids, asset.AssetID)
		keys = append(keys, asset.StorageKey)
	}

	store.delErr = func(key string) error {
		if key == keys[1] {
			return &pkgstorage.Error{Code: pkgstorage.CodeUnknown, Op: "delete_object", Err: errors.New("flaky")}
		}
		return nil
	}

	result, err := svc.BulkDelete(context.Background(), ids)
	var perr *PartialBulkFailure
	if !errors.As(err, &perr) {
		t.Fatalf("expected partial failure, got %v", err)
	}
	if result.Succeeded != 2 || result.Failed != 1 {
		t.Fatalf("expected 2/1 split, got %+v", result)
	}
	if len(result.FailedIDs) != 1 || result.FailedIDs[0] != ids[1] {
		t.Fatalf("expected failed id %s, got %v", ids[1], result.FailedIDs)
	}
	// Completed deletions stay deleted.
	if _, err := svc.GetMedia(context.Background(), ids[0]); !errors.Is(err, ErrAssetNotFound) {
		t.Fatalf("first asset should be gone, got %v", err)
	}
	if _, err := svc.GetMedia(context.Background(), ids[1]); err != nil {
		t.Fatalf("failed asset must keep its record: %v", err)
	}
}

func TestVerifyStorage(t *testing.T) {
	store := newFakeStorage()
	svc, _ := newTestService(t, store, &fakeThumbnailer{})

	health := svc.VerifyStorage(context.Background())
	if !health.Success {
		t.Fatalf("expected healthy storage, got %+v", health)
	}
}
