package entity

import (
	"fmt"
	"time"
)

// CacheMetadata tracks the TTL of a cached quote or bar window independently
// of the data rows themselves.
type CacheMetadata struct {
	CacheKey  string
	ExpiresAt time.Time
	HitCount  int64
}

// QuoteCacheKey returns the metadata key of a symbol's quote.
func QuoteCacheKey(symbol string) string {
	return fmt.Sprintf("quote:%s", symbol)
}

// HistoricalCacheKey returns the metadata key of a symbol's bars for a period.
func HistoricalCacheKey(symbol, period string) string {
	return fmt.Sprintf("historical:%s:%s", symbol, period)
}
