package validator

import "strings"

// NormalizeTag trims whitespace and lowercases a single tag.
// Returns the normalized tag and a boolean indicating it is non-empty.
func NormalizeTag(tag string) (string, bool) {
	trimmed := strings.ToLower(strings.TrimSpace(tag))
	if trimmed == "" {
		return "", false
	}
	return trimmed, true
}

// NormalizeTags normalizes a tag list: each tag trimmed and lowercased,
// empty entries dropped, duplicates removed. Insertion order of the first
// occurrence is preserved for display.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		normalized, ok := NormalizeTag(tag)
		if !ok || seen[normalized] {
			continue
		}
		seen[normalized] = true
		result = append(result, normalized)
	}
	return result
}

// MergeTags unions extra tags into an existing set, normalizing everything
// and keeping the existing insertion order ahead of the additions.
func MergeTags(existing, extra []string) []string {
	return NormalizeTags(append(append([]string{}, existing...), extra...))
}
