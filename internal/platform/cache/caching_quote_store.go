// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"papertrade/internal/feature/quotes/domain/entity"
	"papertrade/internal/feature/quotes/usecase"
	"papertrade/internal/platform/metrics"
)

// CachingQuoteStore decorates a QuoteCacheStore with a Redis read-through layer.
// Redis entries are written only when fresh data is stored, so an entry is never
// older than its write time plus the TTL.
type CachingQuoteStore struct {
	inner     usecase.QuoteCacheStore
	rdb       *redis.Client
	quoteTTL  time.Duration
	barsTTL   time.Duration
	namespace string
	now       func() time.Time
}

var _ usecase.QuoteCacheStore = (*CachingQuoteStore)(nil)

// cachedBars is the Redis payload of a historical window.
type cachedBars struct {
	WrittenAt time.Time              `json:"written_at"`
	Interval  string                 `json:"interval"`
	Bars      []entity.HistoricalBar `json:"bars"`
}

// NewCachingQuoteStore decorates a QuoteCacheStore with Redis caching.
// Zero TTLs default to the usecase freshness windows. If namespace is empty, it uses "papertrade".
func NewCachingQuoteStore(rdb *redis.Client, inner usecase.QuoteCacheStore, quoteTTL, barsTTL time.Duration, namespace string) *CachingQuoteStore {
	if quoteTTL <= 0 {
		quoteTTL = usecase.QuoteFreshness
	}
	if barsTTL <= 0 {
		barsTTL = usecase.HistoricalFreshness
	}
	if namespace == "" {
		namespace = "papertrade"
	}
	return &CachingQuoteStore{
		inner:     inner,
		rdb:       rdb,
		quoteTTL:  quoteTTL,
		barsTTL:   barsTTL,
		namespace: namespace,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// GetQuote checks Redis first, then falls back to the inner store.
func (c *CachingQuoteStore) GetQuote(ctx context.Context, symbol string, maxAge time.Duration) (*entity.Quote, error) {
	if c.rdb == nil {
		return c.inner.GetQuote(ctx, symbol, maxAge)
	}

	key := c.key(entity.QuoteCacheKey(symbol))
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var q entity.Quote
		if err := json.Unmarshal(b, &q); err == nil {
			if maxAge <= 0 || c.now().Sub(q.FetchedAt) <= maxAge {
				metrics.CacheLookups.WithLabelValues("redis_quote", "hit").Inc()
				return &q, nil
			}
		} else {
			// 破損したエントリは削除
			_ = c.rdb.Del(ctx, key).Err()
		}
	} else if err != nil && !errors.Is(err, redis.Nil) {
		slog.Warn("redis quote read failed", "key", key, "error", err)
	}
	metrics.CacheLookups.WithLabelValues("redis_quote", "miss").Inc()

	return c.inner.GetQuote(ctx, symbol, maxAge)
}

// PutQuote writes to the inner store, then to Redis (best effort).
func (c *CachingQuoteStore) PutQuote(ctx context.Context, q *entity.Quote) error {
	if err := c.inner.PutQuote(ctx, q); err != nil {
		return err
	}
	if c.rdb == nil {
		return nil
	}
	if b, err := json.Marshal(q); err == nil {
		if err := c.rdb.Set(ctx, c.key(entity.QuoteCacheKey(q.Symbol)), b, c.quoteTTL).Err(); err != nil {
			slog.Warn("redis quote write failed", "symbol", q.Symbol, "error", err)
		}
	}
	return nil
}

// GetHistoricalBars checks Redis first, then falls back to the inner store.
func (c *CachingQuoteStore) GetHistoricalBars(ctx context.Context, symbol, period string, maxAge time.Duration) ([]entity.HistoricalBar, error) {
	if c.rdb == nil {
		return c.inner.GetHistoricalBars(ctx, symbol, period, maxAge)
	}

	key := c.key(entity.HistoricalCacheKey(symbol, period))
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var cb cachedBars
		if err := json.Unmarshal(b, &cb); err == nil {
			if maxAge <= 0 || c.now().Sub(cb.WrittenAt) <= maxAge {
				metrics.CacheLookups.WithLabelValues("redis_historical", "hit").Inc()
				return cb.Bars, nil
			}
		} else {
			_ = c.rdb.Del(ctx, key).Err()
		}
	} else if err != nil && !errors.Is(err, redis.Nil) {
		slog.Warn("redis historical read failed", "key", key, "error", err)
	}
	metrics.CacheLookups.WithLabelValues("redis_historical", "miss").Inc()

	return c.inner.GetHistoricalBars(ctx, symbol, period, maxAge)
}

// PutHistoricalBars writes to the inner store, then replaces the Redis entry (best effort).
func (c *CachingQuoteStore) PutHistoricalBars(ctx context.Context, symbol, period, interval string, bars []entity.HistoricalBar) error {
	if err := c.inner.PutHistoricalBars(ctx, symbol, period, interval, bars); err != nil {
		return err
	}
	if c.rdb == nil || len(bars) == 0 {
		return nil
	}
	payload := cachedBars{WrittenAt: c.now(), Interval: interval, Bars: bars}
	if b, err := json.Marshal(payload); err == nil {
		if err := c.rdb.Set(ctx, c.key(entity.HistoricalCacheKey(symbol, period)), b, c.barsTTL).Err(); err != nil {
			slog.Warn("redis historical write failed", "symbol", symbol, "period", period, "error", err)
		}
	}
	return nil
}

// SweepExpired delegates to the inner store; Redis expires its own keys.
func (c *CachingQuoteStore) SweepExpired(ctx context.Context) (int64, error) {
	return c.inner.SweepExpired(ctx)
}

// key prefixes a cache key with the namespace.
func (c *CachingQuoteStore) key(k string) string {
	return fmt.Sprintf("%s:%s", c.namespace, safe(k))
}

// safe escapes spaces that are problematic for Redis keys. Colons are kept as separators.
func safe(s string) string {
	return strings.ReplaceAll(s, " ", "_")
}
