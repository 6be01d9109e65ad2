package service

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/gracechapel/backend/biz/dal/model"
)

func galleryFixture() []model.MediaAsset {
	return []model.MediaAsset{
		{AssetID: "a", Title: "Easter Sunrise", Description: "Morning service", Kind: "image", Tags: model.TagList{"worship"}},
		{AssetID: "b", Title: "Sunday Sermon", Description: "Teaching on grace", Kind: "image", Tags: model.TagList{"sermon"}},
		{AssetID: "c", Title: "Christmas Concert", Description: "Full recording", Kind: "video", Tags: model.TagList{"worship", "sermon", "video"}},
	}
}

func assetIDs(assets []model.MediaAsset) []string {
	ids := make([]string, 0, len(assets))
	for _, a := range assets {
		ids = append(ids, a.AssetID)
	}
	return ids
}

func TestFilterAssets(t *testing.T) {
	assets := galleryFixture()

	cases := []struct {
		name   string
		filter GalleryFilter
		want   []string
	}{
		{"empty filter keeps all", GalleryFilter{}, []string{"a", "b", "c"}},
		{"kind all is a no-op", GalleryFilter{Kind: "all"}, []string{"a", "b", "c"}},
		{"search title", GalleryFilter{Search: "sunrise"}, []string{"a"}},
		{"search description case insensitive", GalleryFilter{Search: "GRACE"}, []string{"b"}},
		{"kind only", GalleryFilter{Kind: "video"}, []string{"c"}},
		{"single tag", GalleryFilter{Tags: []string{"worship"}}, []string{"a", "c"}},
		{"tag list is OR", GalleryFilter{Tags: []string{"worship", "sermon"}}, []string{"a", "b", "c"}},
		{"criteria combine with AND", GalleryFilter{Kind: "video", Tags: []string{"worship"}}, []string{"c"}},
		{"search AND tag", GalleryFilter{Search: "sunday", Tags: []string{"worship"}}, nil},
		{"unnormalized tags match", GalleryFilter{Tags: []string{" Worship "}}, []string{"a", "c"}},
		{"no match", GalleryFilter{Search: "baptism"}, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := assetIDs(FilterAssets(assets, tc.filter))
			if len(got) != len(tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("expected %v, got %v", tc.want, got)
				}
			}
		})
	}
}

func TestAvailableTags(t *testing.T) {
	tags := AvailableTags(galleryFixture())
	want := []TagCount{
		{Tag: "sermon", Count: 2},
		{Tag: "worship", Count: 2},
		{Tag: "video", Count: 1},
	}
	if len(tags) != len(want) {
		t.Fatalf("expected %v, got %v", want, tags)
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Fatalf("expected %v at %d, got %v", want[i], i, tags[i])
		}
	}
}

func TestAvailableTagsEmpty(t *testing.T) {
	if tags := AvailableTags(nil); len(tags) != 0 {
		t.Fatalf("expected empty histogram, got %v", tags)
	}
}

func TestDebouncerCoalesces(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	defer d.Stop()

	var fired atomic.Int32
	for i := 0; i < 5; i++ {
		d.Trigger(func() { fired.Add(1) })
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(100 * time.Millisecond)
	if got := fired.Load(); got != 1 {
		t.Fatalf("expected exactly one firing, got %d", got)
	}
}

func TestDebouncerStop(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var fired atomic.Int32
	d.Trigger(func() { fired.Add(1) })
	d.Stop()
	time.Sleep(80 * time.Millisecond)
	if got := fired.Load(); got != 0 {
		t.Fatalf("stopped debouncer must not fire, got %d", got)
	}
}
