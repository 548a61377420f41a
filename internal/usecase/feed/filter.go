package feed

import (
	"strings"

	"github.com/Guyuepp/Go-Clean-Architecture-Feed/domain"
)

// Matches reports whether p passes the filter. The query is trimmed and
// matched case-insensitively as a substring of title or description.
func Matches(p domain.Post, f domain.PostFilter) bool {
	if f.Category != "" && f.Category != domain.CategoryAll && string(p.Category) != f.Category {
		return false
	}

	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Title), q) ||
		strings.Contains(strings.ToLower(p.Description), q)
}

// Apply narrows an already loaded window. It never fetches, so posts on pages
// that have not been loaded yet cannot match.
func Apply[T interface{ GetPost() domain.Post }](items []T, f domain.PostFilter) []T {
	res := make([]T, 0, len(items))
	for _, item := range items {
		if Matches(item.GetPost(), f) {
			res = append(res, item)
		}
	}
	return res
}
