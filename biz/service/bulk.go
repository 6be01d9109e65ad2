package service

import (
	"context"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/gracechapel/backend/biz/dal/model"
	"github.com/gracechapel/backend/pkg/validator"
)

// BulkResult summarizes a best-effort bulk operation. Failed items never
// roll back the ones that already completed.
type BulkResult struct {
	Requested int      `json:"requested"`
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	FailedIDs []string `json:"failed_ids,omitempty"`
}

// BulkDelete deletes each asset in turn, continuing past failures. When any
// item fails the returned error is a *PartialBulkFailure alongside the
// per-item breakdown.
func (s *Service) BulkDelete(ctx context.Context, assetIDs []string) (*BulkResult, error) {
	result := &BulkResult{Requested: len(assetIDs)}
	for _, id := range assetIDs {
		if err := s.DeleteMedia(ctx, id); err != nil {
			hlog.CtxWarnf(ctx, "bulk delete failed for %s: %v", id, err)
			result.Failed++
			result.FailedIDs = append(result.FailedIDs, id)
			continue
		}
		result.Succeeded++
	}
	if result.Failed > 0 {
		return result, &PartialBulkFailure{
			Requested: result.Requested,
			Succeeded: result.Succeeded,
			Failed:    result.Failed,
		}
	}
	return result, nil
}

// BulkTag merges the given tags into each asset's existing set. Tags are
// normalized first; assets already carrying a tag are unchanged by it.
func (s *Service) BulkTag(ctx context.Context, assetIDs []string, tags []string) (*BulkResult, error) {
	result := &BulkResult{Requested: len(assetIDs)}
	extra := validator.NormalizeTags(tags)
	for _, id := range assetIDs {
		if err := s.mergeTags(ctx, id, extra); err != nil {
			hlog.CtxWarnf(ctx, "bulk tag failed for %s: %v", id, err)
			result.Failed++
			result.FailedIDs = append(result.FailedIDs, id)
			continue
		}
		result.Succeeded++
	}
	if result.Failed > 0 {
		return result, &PartialBulkFailure{
			Requested: result.Requested,
			Succeeded: result.Succeeded,
			Failed:    result.Failed,
		}
	}
	return result, nil
}

func (s *Service) mergeTags(ctx context.Context, assetID string, extra []string) error {
	asset, err := s.logic.GetAsset(ctx, assetID)
	if err != nil {
		return err
	}
	merged := validator.MergeTags(asset.Tags, extra)
	return s.logic.PatchAsset(ctx, assetID, map[string]interface{}{
		"tags": model.TagList(merged),
	})
}
