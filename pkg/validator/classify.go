package validator

import (
	"fmt"
	"strings"
)

// Kind is the coarse media classification assigned once at ingestion.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
	KindOther Kind = "other"
)

// Default upload constraints
const (
	DefaultMaxUploadSize = 10 * 1024 * 1024 // 10MiB
)

// DefaultAllowedMimeTypes contains the default whitelist of allowed MIME types for uploads.
var DefaultAllowedMimeTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"video/mp4":       true,
	"video/quicktime": true,
}

// Validation failure reasons.
const (
	ReasonFileTooLarge    = "file_too_large"
	ReasonInvalidFileType = "invalid_file_type"
)

// ValidationError reports a policy rejection raised before any bytes are transferred.
type ValidationError struct {
	Reason  string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// UploadConfig defines constraints for media uploads.
type UploadConfig struct {
	MaxFileSize      int64
	AllowedMimeTypes map[string]bool
}

// DefaultUploadConfig returns the default upload configuration.
func DefaultUploadConfig() *UploadConfig {
	return &UploadConfig{
		MaxFileSize:      DefaultMaxUploadSize,
		AllowedMimeTypes: DefaultAllowedMimeTypes,
	}
}

// NewUploadConfig builds an UploadConfig from a size limit and an allow-list slice.
func NewUploadConfig(maxSize int64, allowedTypes []string) *UploadConfig {
	if maxSize <= 0 {
		maxSize = DefaultMaxUploadSize
	}
	allowed := make(map[string]bool, len(allowedTypes))
	for _, t := range allowedTypes {
		if normalized := normalizeMimeType(t); normalized != "" {
			allowed[normalized] = true
		}
	}
	if len(allowed) == 0 {
		allowed = DefaultAllowedMimeTypes
	}
	return &UploadConfig{MaxFileSize: maxSize, AllowedMimeTypes: allowed}
}

// Classify decides the media kind for a candidate upload and enforces the
// size and type policy. It is deterministic for a given input and runs before
// any storage call; a rejection means the transport is never invoked.
// The kind is derived solely from the declared MIME prefix, no content sniffing.
func (c *UploadConfig) Classify(contentType string, sizeBytes int64) (Kind, error) {
	if sizeBytes > c.MaxFileSize {
		return "", &ValidationError{
			Reason:  ReasonFileTooLarge,
			Message: fmt.Sprintf("file size %d exceeds limit of %d bytes", sizeBytes, c.MaxFileSize),
		}
	}

	normalized := normalizeMimeType(contentType)
	if !c.AllowedMimeTypes[normalized] {
		return "", &ValidationError{
			Reason:  ReasonInvalidFileType,
			Message: fmt.Sprintf("unsupported file type %q", contentType),
		}
	}

	switch {
	case strings.HasPrefix(normalized, "image/"):
		return KindImage, nil
	case strings.HasPrefix(normalized, "video/"):
		return KindVideo, nil
	default:
		return KindOther, nil
	}
}

// normalizeMimeType lowercases and strips parameters such as
// "video/mp4; codecs=avc1" -> "video/mp4".
func normalizeMimeType(mimeType string) string {
	normalized := strings.ToLower(strings.TrimSpace(mimeType))
	if idx := strings.Index(normalized, ";"); idx > 0 {
		normalized = strings.TrimSpace(normalized[:idx])
	}
	return normalized
}
