// Package di provides dependency injection factories for creating application components.
package di

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	quoteadapters "papertrade/internal/feature/quotes/adapters"
	"papertrade/internal/feature/quotes/adapters/yahoo"
	quoteusecase "papertrade/internal/feature/quotes/usecase"
	"papertrade/internal/platform/cache"
	infrahttp "papertrade/internal/platform/http"
	"papertrade/internal/shared/ratelimiter"
)

// redisNamespace is the key prefix for every hot-cache entry.
const redisNamespace = "papertrade"

// NewQuoteCacheStore returns the durable gorm cache, wrapped with Redis when rdb is non-nil.
func NewQuoteCacheStore(db *gorm.DB, rdb *redis.Client) quoteusecase.QuoteCacheStore {
	durable := quoteadapters.NewQuoteCacheStore(db)
	if rdb == nil {
		return durable
	}
	return cache.NewCachingQuoteStore(rdb, durable, 0, 0, redisNamespace)
}

// NewMarketData creates a fully configured MarketDataUsecase.
// Quote endpoints are tried as query1, query2, then the HTML quote page.
func NewMarketData(db *gorm.DB, rdb *redis.Client) (*quoteusecase.MarketDataUsecase, yahoo.Config, error) {
	ycfg, err := yahoo.LoadConfig()
	if err != nil {
		return nil, yahoo.Config{}, err
	}
	mcfg, err := quoteusecase.LoadConfig()
	if err != nil {
		return nil, yahoo.Config{}, err
	}

	httpClient := infrahttp.NewHTTPClient(infrahttp.ClientConfig{
		Timeout:   ycfg.Timeout,
		UserAgent: ycfg.UserAgent,
	})
	primary := yahoo.NewChartEndpoint("query1", ycfg.PrimaryURL, ycfg, httpClient)
	secondary := yahoo.NewChartEndpoint("query2", ycfg.SecondaryURL, ycfg, httpClient)
	page := yahoo.NewQuotePageEndpoint(ycfg, httpClient)

	uc := quoteusecase.NewMarketDataUsecase(
		NewQuoteCacheStore(db, rdb),
		[]quoteusecase.QuoteEndpoint{primary, secondary, page},
		primary, secondary,
		ratelimiter.NewIntervalLimiter("compare", mcfg.CompareDelay),
		mcfg,
	)
	return uc, ycfg, nil
}
