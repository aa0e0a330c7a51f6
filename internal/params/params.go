package params

import (
	"net/url"
	"strings"
)

// DefaultPageSlug is used whenever a request does not name a page.
const DefaultPageSlug = "index"

// URL: /api/feedback?page=blog-1
// → PageSlug() → "blog-1"
// → SQL: SELECT ... WHERE page_slug = $1 ORDER BY created_at DESC LIMIT 100
// PageSlug reads ?page=... and falls back to DefaultPageSlug when it is missing or blank.
func PageSlug(q url.Values) string {
	page := q.Get("page")
	if strings.TrimSpace(page) == "" {
		return DefaultPageSlug
	}
	return page
}
