package entity

import "time"

const (
	// SourceLocal tags results served from the local symbol index.
	SourceLocal = "local"
	// SourceCache tags results served from a search cache entry.
	SourceCache = "cache"
	// SourceManual tags results produced by the static mapping table.
	SourceManual = "manual"
)

// SearchResult is one resolved symbol.
type SearchResult struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange"`
	Type     string `json:"type"`
}

// SearchCacheEntry stores the result set of one normalized query.
type SearchCacheEntry struct {
	Query       string // lowercased, trimmed
	Results     []SearchResult
	ResultCount int
	Source      string // online endpoint name or SourceManual
	ExpiresAt   time.Time
}

// Resolution is the outcome of a search with the tier that produced it.
type Resolution struct {
	Results []SearchResult
	Source  string
}
