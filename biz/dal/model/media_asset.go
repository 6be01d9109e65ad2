package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// TagList stores an ordered, deduplicated set of lowercase tags as a JSON
// array in a single text column. Insertion order is preserved for display.
type TagList []string

// Value implements driver.Valuer.
func (t TagList) Value() (driver.Value, error) {
	if len(t) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal([]string(t))
	if err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (t *TagList) Scan(value interface{}) error {
	if value == nil {
		*t = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported tag column type %T", value)
	}
	if len(data) == 0 {
		*t = nil
		return nil
	}
	var tags []string
	if err := json.Unmarshal(data, &tags); err != nil {
		return fmt.Errorf("unmarshal tags: %w", err)
	}
	*t = tags
	return nil
}

// Contains reports whether the list holds the given (already normalized) tag.
func (t TagList) Contains(tag string) bool {
	for _, existing := range t {
		if existing == tag {
			return true
		}
	}
	return false
}

// MediaAsset is the catalog record describing one uploaded blob.
// AssetID and StorageKey are immutable once set; an asset is visible to the
// gallery if and only if its record exists here.
type MediaAsset struct {
	ID           uint           `gorm:"primaryKey" json:"-"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at,omitempty"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	AssetID      string         `gorm:"column:asset_id;uniqueIndex:idx_asset_id" json:"asset_id"`
	StorageKey   string         `gorm:"column:storage_key;type:text" json:"storage_key"`
	URL          string         `gorm:"column:url;type:text" json:"url"`
	ThumbnailKey string         `gorm:"column:thumbnail_key;type:text" json:"thumbnail_key,omitempty"`
	ThumbnailURL string         `gorm:"column:thumbnail_url;type:text" json:"thumbnail_url,omitempty"`
	Kind         string         `gorm:"column:kind;index:idx_media_kind" json:"kind"`
	Title        string         `gorm:"column:title" json:"title,omitempty"`
	Description  string         `gorm:"column:description;type:text" json:"description,omitempty"`
	Tags         TagList        `gorm:"column:tags;type:text" json:"tags"`
	SizeBytes    int64          `gorm:"column:size_bytes" json:"size_bytes"`
	SourceName   string         `gorm:"column:source_name" json:"source_name"`
	ContentType  string         `gorm:"column:content_type" json:"content_type"`
}

// TableName overrides gorm to use the media_asset table.
func (MediaAsset) TableName() string {
	return "media_asset"
}

// HasThumbnail reports whether a derived thumbnail was stored for the asset.
// Video assets without one fall back to a placeholder at render time.
func (a *MediaAsset) HasThumbnail() bool {
	return a.ThumbnailKey != ""
}
