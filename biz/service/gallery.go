package service

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gracechapel/backend/biz/dal/model"
	"github.com/gracechapel/backend/pkg/validator"
)

// KindAll matches every media kind in a gallery filter.
const KindAll = "all"

// GalleryFilter selects a subset of catalog records for display.
// Search matches title or description case-insensitively, Kind narrows to
// one media kind ("all" or empty passes everything), and Tags keeps assets
// carrying at least one listed tag. The three criteria combine with AND;
// the tag list itself is an OR.
type GalleryFilter struct {
	Search string
	Kind   string
	Tags   []string
}

// FilterAssets applies the filter to an already loaded asset list, keeping
// the input order.
func FilterAssets(assets []model.MediaAsset, filter GalleryFilter) []model.MediaAsset {
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	kind := strings.TrimSpace(filter.Kind)
	if kind == KindAll {
		kind = ""
	}
	tags := validator.NormalizeTags(filter.Tags)

	out := make([]model.MediaAsset, 0, len(assets))
	for _, asset := range assets {
		if search != "" && !matchesSearch(&asset, search) {
			continue
		}
		if kind != "" && asset.Kind != kind {
			continue
		}
		if len(tags) > 0 && !matchesAnyTag(&asset, tags) {
			continue
		}
		out = append(out, asset)
	}
	return out
}

func matchesSearch(asset *model.MediaAsset, search string) bool {
	return strings.Contains(strings.ToLower(asset.Title), search) ||
		strings.Contains(strings.ToLower(asset.Description), search)
}

func matchesAnyTag(asset *model.MediaAsset, tags []string) bool {
	for _, tag := range tags {
		if asset.Tags.Contains(tag) {
			return true
		}
	}
	return false
}

// TagCount is one row of the tag histogram shown beside the gallery filter.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// AvailableTags builds the tag histogram over the given assets, ordered by
// descending count with ties broken alphabetically.
func AvailableTags(assets []model.MediaAsset) []TagCount {
	counts := map[string]int{}
	for _, asset := range assets {
		for _, tag := range asset.Tags {
			counts[tag]++
		}
	}
	out := make([]TagCount, 0, len(counts))
	for tag, count := range counts {
		out = append(out, TagCount{Tag: tag, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	return out
}

// DefaultSearchDelay is how long a Debouncer waits after the last trigger.
const DefaultSearchDelay = 300 * time.Millisecond

// Debouncer coalesces rapid triggers into one callback invocation fired
// after a quiet period. The gallery uses it to avoid filtering on every
// keystroke of the search box.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
}

func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultSearchDelay
	}
	return &Debouncer{delay: delay}
}

// Trigger schedules fn after the quiet period, replacing any pending call.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, fn)
}

// Stop cancels any pending call.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
