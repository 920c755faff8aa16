// Package search implements the free-text filter shared by every list screen.
package search

import "strings"

// Fields returns the searchable text of an item
type Fields[T any] func(item T) []string

// Matches reports whether any field contains query, ignoring case
func Matches(query string, fields ...string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// Filter keeps the items whose fields contain query. A blank query keeps everything
// and the original order is preserved.
func Filter[T any](items []T, query string, fields Fields[T]) []T {
	if strings.TrimSpace(query) == "" {
		return items
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if Matches(query, fields(item)...) {
			out = append(out, item)
		}
	}
	return out
}
