package util

import (
	"strings"
)

// NormalizeEmail trims and lower-cases an address so uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SplitCSV splits a comma-separated list, trimming items and dropping empty and repeated ones.
// Order of first occurrence is kept.
func SplitCSV(raw string) []string {
	return CleanTags(strings.Split(raw, ","))
}

// CleanTags trims tags and drops empty and repeated ones. A nil input yields an empty slice.
func CleanTags(tags []string) []string {
	items := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))

	for _, part := range tags {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		items = append(items, item)
	}

	return items
}
