package usecase

import (
	"context"

	"papertrade/internal/feature/search/domain/entity"
)

// SymbolRepository abstracts the local symbol index.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type SymbolRepository interface {
	// Match returns active symbols whose code or name contains query (case-insensitive), unranked.
	Match(ctx context.Context, query string, limit int) ([]entity.Symbol, error)
	ListActive(ctx context.Context) ([]entity.Symbol, error)
	ListActiveCodes(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int64, error)
	UpsertBatch(ctx context.Context, symbols []entity.Symbol) error
}

// SearchCacheRepository stores online result sets per normalized query.
type SearchCacheRepository interface {
	// Get returns the entry for query, or ErrCacheMiss when it is absent or expired.
	Get(ctx context.Context, query string) (*entity.SearchCacheEntry, error)
	// Put overwrites the entry for e.Query.
	Put(ctx context.Context, e *entity.SearchCacheEntry) error
}

// OnlineSearcher is one external search endpoint.
type OnlineSearcher interface {
	Name() string
	Search(ctx context.Context, query string) ([]entity.SearchResult, error)
}
