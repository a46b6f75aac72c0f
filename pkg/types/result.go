package types

import (
	"net/url"
	"strings"
	"time"
)

// SearchResult represents a single result from a web search provider.
// Value type, immutable once produced by an adapter.
type SearchResult struct {
	Title       string
	URL         string
	Snippet     string
	PublishedAt *time.Time // Nullable - news-style results only
	ProviderID  string
}

// Validate checks if the search result is well formed
func (sr *SearchResult) Validate() error {
	if sr.URL == "" {
		return ErrMissingURL
	}
	if sr.ProviderID == "" {
		return ErrMissingProvider
	}
	return nil
}

// NormalizeURL produces the canonical form used for deduplication across
// providers: lowercased scheme and host, no fragment, no trailing slash.
func NormalizeURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return strings.TrimRight(strings.ToLower(strings.TrimSpace(raw)), "/")
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	normalized := u.String()
	return strings.TrimRight(normalized, "/")
}
