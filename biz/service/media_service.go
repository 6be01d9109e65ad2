package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/google/uuid"
	"github.com/gracechapel/backend/biz/dal/model"
	pkgcommon "github.com/gracechapel/backend/pkg/common"
	pkgstorage "github.com/gracechapel/backend/pkg/storage"
	"github.com/gracechapel/backend/pkg/validator"
)

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9._\-]+`)

// UploadInput captures metadata and payload for one media upload.
type UploadInput struct {
	FileName    string
	ContentType string
	Title       string
	Description string
	Tags        []string
	Data        []byte
	OnProgress  pkgstorage.ProgressFunc
}

// BatchItemResult reports the outcome of a single file within a batch upload.
type BatchItemResult struct {
	FileName string
	Asset    *model.MediaAsset
	Err      error
}

// StorageHealth is the result of a storage reachability probe.
type StorageHealth struct {
	Success bool   `json:"success"`
	Warning bool   `json:"warning"`
	Message string `json:"message"`
}

// UploadMedia runs the full pipeline for one file: classification, thumbnail
// derivation for videos, blob write with progress, then catalog record
// creation. A catalog failure after a successful blob write leaves the blob
// in place; the record is the source of truth for gallery visibility, so the
// orphan is simply invisible.
func (s *Service) UploadMedia(ctx context.Context, input *UploadInput) (*model.MediaAsset, error) {
	if input == nil {
		return nil, errors.New("input required")
	}
	if len(input.Data) == 0 {
		return nil, &validator.ValidationError{
			Reason:  validator.ReasonInvalidFileType,
			Message: "file data is empty",
		}
	}

	// The declared type is authoritative; payload bytes are never sniffed.
	contentType := strings.TrimSpace(input.ContentType)
	kind, err := s.upload.Classify(contentType, int64(len(input.Data)))
	if err != nil {
		return nil, err
	}

	var thumb []byte
	var thumbType string
	if kind == validator.KindVideo && s.thumbnails != nil {
		if res := s.thumbnails.Generate(ctx, input.Data); res.Ready() {
			thumb, thumbType = res.Image()
		}
	}

	key := buildObjectKey(mediaCollection, input.FileName)
	size := int64(len(input.Data))

	reader := io.Reader(bytes.NewReader(input.Data))
	if input.OnProgress != nil {
		reader = pkgstorage.NewProgressReader(reader, size, input.OnProgress)
	}
	if err := s.storage.PutObject(ctx, key, reader, contentType, size); err != nil {
		return nil, newTransportError(err)
	}

	url, err := s.storage.GenerateURL(ctx, key)
	if err != nil {
		return nil, newTransportError(err)
	}

	var thumbKey, thumbURL string
	if len(thumb) > 0 {
		thumbKey = buildObjectKey(thumbnailCollection, thumbnailName(input.FileName, thumbType))
		if err := s.storage.PutObject(ctx, thumbKey, bytes.NewReader(thumb), thumbType, int64(len(thumb))); err != nil {
			// Thumbnail writes are best effort. The video stays usable.
			hlog.CtxWarnf(ctx, "thumbnail store failed for %s: %v", key, err)
			thumbKey = ""
		} else if thumbURL, err = s.storage.GenerateURL(ctx, thumbKey); err != nil {
			hlog.CtxWarnf(ctx, "thumbnail url failed for %s: %v", thumbKey, err)
			thumbKey, thumbURL = "", ""
		}
	}

	asset := &model.MediaAsset{
		StorageKey:   key,
		URL:          url,
		ThumbnailKey: thumbKey,
		ThumbnailURL: thumbURL,
		Kind:         string(kind),
		Title:        strings.TrimSpace(input.Title),
		Description:  strings.TrimSpace(input.Description),
		Tags:         validator.NormalizeTags(input.Tags),
		SizeBytes:    size,
		SourceName:   input.FileName,
		ContentType:  contentType,
	}
	if err := s.logic.CreateAsset(ctx, asset); err != nil {
		// The blob stays behind. Without a record it is unreachable from
		// the gallery, and no sweeper reclaims it.
		hlog.CtxErrorf(ctx, "catalog record failed, blob %s orphaned: %v", key, err)
		return nil, err
	}
	hlog.CtxInfof(ctx, "media uploaded by %s: asset=%s kind=%s size=%d", actor(ctx), asset.AssetID, asset.Kind, size)
	return asset, nil
}

// actor names the authenticated user for audit log lines.
func actor(ctx context.Context) string {
	if id, ok := pkgcommon.GetUserID(ctx); ok {
		return fmt.Sprintf("user %d", id)
	}
	return "anonymous"
}

// UploadBatch runs UploadMedia for each file in order. A failed file is
// recorded and the batch continues; completed uploads are never undone.
func (s *Service) UploadBatch(ctx context.Context, inputs []*UploadInput) []BatchItemResult {
	results := make([]BatchItemResult, 0, len(inputs))
	for _, input := range inputs {
		name := ""
		if input != nil {
			name = input.FileName
		}
		asset, err := s.UploadMedia(ctx, input)
		results = append(results, BatchItemResult{FileName: name, Asset: asset, Err: err})
	}
	return results
}

// DeleteMedia removes an asset's blobs and then its catalog record, in that
// order. If the blob delete fails the record is kept so the asset stays
// consistent and the delete can be retried.
func (s *Service) DeleteMedia(ctx context.Context, assetID string) error {
	asset, err := s.logic.GetAsset(ctx, assetID)
	if err != nil {
		return err
	}

	if asset.ThumbnailKey != "" {
		if err := s.storage.DeleteObject(ctx, asset.ThumbnailKey); err != nil {
			return newTransportError(err)
		}
	}
	if err := s.storage.DeleteObject(ctx, asset.StorageKey); err != nil {
		return newTransportError(err)
	}
	if err := s.logic.DeleteAsset(ctx, assetID); err != nil {
		return err
	}
	hlog.CtxInfof(ctx, "media deleted by %s: asset=%s", actor(ctx), assetID)
	return nil
}

// MediaPatch is a partial metadata update. Nil fields are untouched.
type MediaPatch struct {
	Title       *string
	Description *string
	Tags        []string
}

// PatchMedia applies a partial metadata update to one asset. Concurrent
// patches to the same asset are last-write-wins per column.
func (s *Service) PatchMedia(ctx context.Context, assetID string, patch MediaPatch) (*model.MediaAsset, error) {
	fields := map[string]interface{}{}
	if patch.Title != nil {
		fields["title"] = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		fields["description"] = strings.TrimSpace(*patch.Description)
	}
	if patch.Tags != nil {
		fields["tags"] = model.TagList(validator.NormalizeTags(patch.Tags))
	}
	if len(fields) > 0 {
		if err := s.logic.PatchAsset(ctx, assetID, fields); err != nil {
			return nil, err
		}
	}
	return s.logic.GetAsset(ctx, assetID)
}

func (s *Service) GetMedia(ctx context.Context, assetID string) (*model.MediaAsset, error) {
	return s.logic.GetAsset(ctx, assetID)
}

// ListMedia returns every catalog record, newest first.
func (s *Service) ListMedia(ctx context.Context) ([]model.MediaAsset, error) {
	return s.logic.ListAssets(ctx)
}

// OpenBlob resolves a storage key to its owning record and opens the blob
// for streaming. Keys not referenced by any record are not served.
func (s *Service) OpenBlob(ctx context.Context, key string) (*model.MediaAsset, io.ReadCloser, error) {
	if key == "" {
		return nil, nil, ErrAssetNotFound
	}
	asset, err := s.logic.GetAssetByStorageKey(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	reader, err := s.storage.GetObject(ctx, key)
	if err != nil {
		return nil, nil, newTransportError(err)
	}
	return asset, reader, nil
}

// VerifyStorage probes the blob store with a prefix listing and classifies
// the outcome for the admin dashboard.
func (s *Service) VerifyStorage(ctx context.Context) StorageHealth {
	objects, err := s.storage.ListObjects(ctx, mediaCollection+"/")
	if err != nil {
		te := newTransportError(err)
		if te.Code == pkgstorage.CodeUnauthorized {
			return StorageHealth{Warning: true, Message: "Storage reachable but listing denied. Check credentials."}
		}
		return StorageHealth{Message: te.Message()}
	}
	return StorageHealth{
		Success: true,
		Message: fmt.Sprintf("Storage verified (%s), %d objects under %s/.", s.storage.Type(), len(objects), mediaCollection),
	}
}

// buildObjectKey returns "{collection}/{unixMilli}-{rand}-{name}" so repeated
// uploads of the same file never collide.
func buildObjectKey(collection, fileName string) string {
	name := sanitizeFileName(fileName)
	return fmt.Sprintf("%s/%d-%s-%s", collection, time.Now().UnixMilli(), uuid.NewString()[:8], name)
}

func sanitizeFileName(fileName string) string {
	name := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	name = unsafeKeyChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		name = "file"
	}
	return name
}

func thumbnailName(fileName, contentType string) string {
	base := sanitizeFileName(fileName)
	if ext := path.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	ext := ".jpg"
	if contentType == "image/png" {
		ext = ".png"
	}
	return base + "_thumb" + ext
}
