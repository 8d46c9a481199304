package usecase

import (
	"context"
	"time"

	"papertrade/internal/feature/quotes/domain/entity"
)

const (
	// QuoteFreshness is how long a cached quote is served without refetching.
	QuoteFreshness = 5 * time.Minute
	// HistoricalFreshness is how long cached bars are served without refetching.
	HistoricalFreshness = time.Hour
)

// QuoteCacheStore abstracts the local quote and historical-bar cache.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type QuoteCacheStore interface {
	// GetQuote returns the cached quote of symbol if it was fetched within maxAge.
	// A maxAge <= 0 disables the freshness check. Returns ErrCacheMiss otherwise.
	GetQuote(ctx context.Context, symbol string, maxAge time.Duration) (*entity.Quote, error)

	// PutQuote overwrites the quote row of q.Symbol and refreshes its metadata TTL.
	PutQuote(ctx context.Context, q *entity.Quote) error

	// GetHistoricalBars returns bars ordered by date ascending if the latest write
	// for symbol+period is within maxAge; otherwise it returns an empty slice.
	GetHistoricalBars(ctx context.Context, symbol, period string, maxAge time.Duration) ([]entity.HistoricalBar, error)

	// PutHistoricalBars upserts each bar by (symbol, date, period, interval) and refreshes the metadata TTL.
	PutHistoricalBars(ctx context.Context, symbol, period, interval string, bars []entity.HistoricalBar) error

	// SweepExpired deletes expired metadata rows and returns how many were removed.
	// Quote and bar rows are retained.
	SweepExpired(ctx context.Context) (int64, error)
}

// QuoteEndpoint is one upstream source of quotes.
type QuoteEndpoint interface {
	Name() string
	FetchQuote(ctx context.Context, symbol string) (*entity.Quote, error)
}

// HistoricalEndpoint is one upstream source of historical bars.
type HistoricalEndpoint interface {
	Name() string
	FetchHistorical(ctx context.Context, symbol, period, interval string) ([]entity.HistoricalBar, error)
}
