package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/gracechapel/backend/biz/service"
	pkgcommon "github.com/gracechapel/backend/pkg/common"
)

// MediaHandler exposes the media pipeline over HTTP.
type MediaHandler struct {
	service *service.Service
}

func NewMediaHandler(svc *service.Service) *MediaHandler {
	return &MediaHandler{service: svc}
}

// Upload handles multipart uploads. One or more files are accepted under the
// "files" field (or a single "file"); title, description and tags apply to
// every file in the request. Files are processed in order and a failed file
// does not abort the rest.
func (h *MediaHandler) Upload(ctx context.Context, c *app.RequestContext) {
	form, err := c.MultipartForm()
	if err != nil {
		writeBadRequest(c, err)
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		headers = form.File["file"]
	}
	if len(headers) == 0 {
		writeBadRequest(c, errors.New("no file provided"))
		return
	}

	title := string(c.FormValue("title"))
	description := string(c.FormValue("description"))
	tags := splitTags(form.Value["tags"])

	inputs := make([]*service.UploadInput, 0, len(headers))
	for _, header := range headers {
		data, err := readUploadFile(header)
		if err != nil {
			writeInternalError(c, err)
			return
		}
		inputs = append(inputs, &service.UploadInput{
			FileName:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Title:       title,
			Description: description,
			Tags:        tags,
			Data:        data,
		})
	}

	results := h.service.UploadBatch(enrichContext(ctx, c), inputs)
	if len(results) == 1 {
		if results[0].Err != nil {
			writeServiceError(c, results[0].Err)
			return
		}
		c.JSON(consts.StatusOK, pkgcommon.CommonResponse{
			Code: consts.StatusOK,
			Data: map[string]any{"asset": results[0].Asset},
		})
		return
	}

	items := make([]map[string]any, 0, len(results))
	failed := 0
	for _, r := range results {
		item := map[string]any{"file_name": r.FileName}
		if r.Err != nil {
			failed++
			item["error"] = r.Err.Error()
		} else {
			item["asset"] = r.Asset
		}
		items = append(items, item)
	}
	c.JSON(consts.StatusOK, pkgcommon.CommonResponse{
		Code: consts.StatusOK,
		Data: map[string]any{
			"results": items,
			"failed":  failed,
		},
	})
}

// List returns the gallery view: assets narrowed by the optional search,
// kind and tags query parameters, plus the tag histogram over all assets.
func (h *MediaHandler) List(ctx context.Context, c *app.RequestContext) {
	assets, err := h.service.ListMedia(enrichContext(ctx, c))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	var tagValues []string
	c.QueryArgs().VisitAll(func(key, value []byte) {
		if string(key) == "tags" {
			tagValues = append(tagValues, string(value))
		}
	})
	filter := service.GalleryFilter{
		Search: c.Query("search"),
		Kind:   c.Query("kind"),
		Tags:   splitTags(tagValues),
	}
	filtered := service.FilterAssets(assets, filter)

	c.JSON(consts.StatusOK, pkgcommon.CommonResponse{
		Code: consts.StatusOK,
		Data: map[string]any{
			"assets": filtered,
			"tags":   service.AvailableTags(assets),
			"total":  len(assets),
		},
	})
}

// Get returns a single catalog record.
func (h *MediaHandler) Get(ctx context.Context, c *app.RequestContext) {
	asset, err := h.service.GetMedia(enrichContext(ctx, c), c.Param("assetID"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(consts.StatusOK, pkgcommon.CommonResponse{
		Code: consts.StatusOK,
		Data: map[string]any{"asset": asset},
	})
}

// Blob streams stored blob content back to the client. Only keys owned by a
// catalog record are served.
func (h *MediaHandler) Blob(ctx context.Context, c *app.RequestContext) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	asset, reader, err := h.service.OpenBlob(enrichContext(ctx, c), key)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	defer reader.Close()

	content, err := io.ReadAll(reader)
	if err != nil {
		writeInternalError(c, err)
		return
	}

	contentType := asset.ContentType
	if key == asset.ThumbnailKey {
		contentType = "image/jpeg"
		if strings.HasSuffix(key, ".png") {
			contentType = "image/png"
		}
	}
	if contentType == "" {
		contentType = consts.MIMEApplicationOctetStream
	}
	if asset.SourceName != "" && key == asset.StorageKey {
		c.Response.Header.Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", asset.SourceName))
	}
	c.Data(consts.StatusOK, contentType, content)
}

type patchRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Tags        []string `json:"tags"`
}

// Patch applies a partial metadata update to one asset.
func (h *MediaHandler) Patch(ctx context.Context, c *app.RequestContext) {
	var req patchRequest
	if err := bindJSON(c, &req); err != nil {
		writeBadRequest(c, err)
		return
	}
	asset, err := h.service.PatchMedia(enrichContext(ctx, c), c.Param("assetID"), service.MediaPatch{
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(consts.StatusOK, pkgcommon.CommonResponse{
		Code: consts.StatusOK,
		Data: map[string]any{"asset": asset},
	})
}

// Delete removes one asset. The caller must pass confirm=true; the admin UI
// only sends it after the explicit confirmation step.
func (h *MediaHandler) Delete(ctx context.Context, c *app.RequestContext) {
	if c.Query("confirm") != "true" {
		writeBadRequest(c, errors.New("delete requires confirm=true"))
		return
	}
	if err := h.service.DeleteMedia(enrichContext(ctx, c), c.Param("assetID")); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(consts.StatusOK, pkgcommon.CommonResponse{Code: consts.StatusOK, Msg: "deleted"})
}

type bulkDeleteRequest struct {
	AssetIDs []string `json:"asset_ids"`
	Confirm  bool     `json:"confirm"`
}

// BulkDelete deletes a selection of assets best effort. Partial failures
// report the per-item breakdown alongside a non-OK code.
func (h *MediaHandler) BulkDelete(ctx context.Context, c *app.RequestContext) {
	var req bulkDeleteRequest
	if err := bindJSON(c, &req); err != nil {
		writeBadRequest(c, err)
		return
	}
	if !req.Confirm {
		writeBadRequest(c, errors.New("bulk delete requires confirm"))
		return
	}
	if len(req.AssetIDs) == 0 {
		writeBadRequest(c, errors.New("asset_ids is required"))
		return
	}

	result, err := h.service.BulkDelete(enrichContext(ctx, c), req.AssetIDs)
	var perr *service.PartialBulkFailure
	if errors.As(err, &perr) {
		c.JSON(consts.StatusOK, pkgcommon.CommonResponse{
			Code:  consts.StatusMultiStatus,
			Msg:   perr.Error(),
			Error: "partial-failure",
			Data:  map[string]any{"result": result},
		})
		return
	}
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(consts.StatusOK, pkgcommon.CommonResponse{
		Code: consts.StatusOK,
		Data: map[string]any{"result": result},
	})
}

type bulkTagRequest struct {
	AssetIDs []string `json:"asset_ids"`
	Tags     []string `json:"tags"`
}

// BulkTag merges tags into a selection of assets.
func (h *MediaHandler) BulkTag(ctx context.Context, c *app.RequestContext) {
	var req bulkTagRequest
	if err := bindJSON(c, &req); err != nil {
		writeBadRequest(c, err)
		return
	}
	if len(req.AssetIDs) == 0 {
		writeBadRequest(c, errors.New("asset_ids is required"))
		return
	}
	if len(req.Tags) == 0 {
		writeBadRequest(c, errors.New("tags is required"))
		return
	}

	result, err := h.service.BulkTag(enrichContext(ctx, c), req.AssetIDs, req.Tags)
	var perr *service.PartialBulkFailure
	if errors.As(err, &perr) {
		c.JSON(consts.StatusOK, pkgcommon.CommonResponse{
			Code:  consts.StatusMultiStatus,
			Msg:   perr.Error(),
			Error: "partial-failure",
			Data:  map[string]any{"result": result},
		})
		return
	}
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(consts.StatusOK, pkgcommon.CommonResponse{
		Code: consts.StatusOK,
		Data: map[string]any{"result": result},
	})
}

// StorageHealth probes the blob store for the admin dashboard.
func (h *MediaHandler) StorageHealth(ctx context.Context, c *app.RequestContext) {
	health := h.service.VerifyStorage(enrichContext(ctx, c))
	c.JSON(consts.StatusOK, pkgcommon.CommonResponse{
		Code: consts.StatusOK,
		Data: map[string]any{"health": health},
	})
}

// --------------------- Helpers ---------------------

func readUploadFile(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

// splitTags accepts repeated form values and comma-separated lists.
func splitTags(values []string) []string {
	var out []string
	for _, value := range values {
		for _, tag := range strings.Split(value, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				out = append(out, tag)
			}
		}
	}
	return out
}

func bindJSON(c *app.RequestContext, out interface{}) error {
	body := c.Request.Body()
	if len(body) == 0 {
		return errors.New("request body is empty")
	}
	return json.Unmarshal(body, out)
}
