package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/sync/singleflight"

	"papertrade/internal/feature/quotes/domain/entity"
	"papertrade/internal/platform/metrics"
	"papertrade/internal/shared/ratelimiter"
)

// Config holds market data options loaded from MARKET_* environment variables.
type Config struct {
	// CompareDelay は銘柄比較時の上流リクエスト間の待機時間です。
	CompareDelay time.Duration `envconfig:"COMPARE_DELAY" default:"200ms"`
	// ServeStale はすべてのエンドポイントが失敗した場合に、期限切れのキャッシュを返すかどうかです。
	ServeStale bool `envconfig:"SERVE_STALE" default:"false"`
}

// LoadConfig は環境変数から設定を読み込みます。
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("MARKET", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// CompareResult is one entry of a Compare batch. Exactly one of Quote and Err is set.
type CompareResult struct {
	Symbol string
	Quote  *entity.Quote
	Err    error
}

// MarketDataUsecase fetches quotes and historical bars, consulting the cache first
// and then the upstream endpoints in fixed priority order.
type MarketDataUsecase struct {
	cache               QuoteCacheStore
	quoteEndpoints      []QuoteEndpoint
	primaryHistorical   HistoricalEndpoint
	secondaryHistorical HistoricalEndpoint
	pacer               ratelimiter.RateLimiterInterface
	serveStale          bool
	group               singleflight.Group
	now                 func() time.Time
}

// NewMarketDataUsecase creates a MarketDataUsecase.
// quoteEndpoints are tried in the given order. secondaryHistorical may be nil.
// cache may be nil, in which case every lookup is a miss.
func NewMarketDataUsecase(
	cache QuoteCacheStore,
	quoteEndpoints []QuoteEndpoint,
	primaryHistorical, secondaryHistorical HistoricalEndpoint,
	pacer ratelimiter.RateLimiterInterface,
	cfg Config,
) *MarketDataUsecase {
	if pacer == nil {
		pacer = ratelimiter.Noop{}
	}
	return &MarketDataUsecase{
		cache:               cache,
		quoteEndpoints:      quoteEndpoints,
		primaryHistorical:   primaryHistorical,
		secondaryHistorical: secondaryHistorical,
		pacer:               pacer,
		serveStale:          cfg.ServeStale,
		now:                 func() time.Time { return time.Now().UTC() },
	}
}

// NormalizeSymbol trims and upper-cases a ticker.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// FetchQuote returns the quote of symbol. With useCache, a cached quote younger
// than QuoteFreshness is returned without contacting any endpoint.
func (u *MarketDataUsecase) FetchQuote(ctx context.Context, symbol string, useCache bool) (*entity.Quote, error) {
	sym := NormalizeSymbol(symbol)
	if sym == "" {
		return nil, ErrInvalidSymbol
	}

	if useCache {
		if q, ok := u.cachedQuote(ctx, sym, QuoteFreshness); ok {
			q.Source = entity.SourceCache
			q.Cached = true
			return q, nil
		}
	}

	// 共有の上流取得は最初の呼び出し元のキャンセルに巻き込まない
	flightCtx := context.WithoutCancel(ctx)
	ch := u.group.DoChan(sym, func() (any, error) {
		return u.fetchQuoteUpstream(flightCtx, sym)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		// singleflightの結果は呼び出し元間で共有されるためコピーを返す
		q := *res.Val.(*entity.Quote)
		return &q, nil
	}
}

// cachedQuote reads from the cache, treating every store failure as a miss.
func (u *MarketDataUsecase) cachedQuote(ctx context.Context, sym string, maxAge time.Duration) (*entity.Quote, bool) {
	if u.cache == nil {
		return nil, false
	}
	q, err := u.cache.GetQuote(ctx, sym, maxAge)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			slog.Warn("quote cache read failed", "symbol", sym, "error", err)
			metrics.CacheLookups.WithLabelValues("quote", "error").Inc()
		} else {
			metrics.CacheLookups.WithLabelValues("quote", "miss").Inc()
		}
		return nil, false
	}
	metrics.CacheLookups.WithLabelValues("quote", "hit").Inc()
	return q, true
}

func (u *MarketDataUsecase) fetchQuoteUpstream(ctx context.Context, sym string) (*entity.Quote, error) {
	var errs []error
	attempted := make([]string, 0, len(u.quoteEndpoints))

	for _, ep := range u.quoteEndpoints {
		attempted = append(attempted, ep.Name())

		q, err := ep.FetchQuote(ctx, sym)
		if err != nil {
			metrics.UpstreamRequests.WithLabelValues(ep.Name(), "error").Inc()
			slog.Warn("quote endpoint failed", "endpoint", ep.Name(), "symbol", sym, "error", err)
			errs = append(errs, err)
			continue
		}
		metrics.UpstreamRequests.WithLabelValues(ep.Name(), "ok").Inc()

		q.Symbol = sym
		q.Source = ep.Name()
		q.Cached = false
		if q.FetchedAt.IsZero() {
			q.FetchedAt = u.now()
		}
		q.ApplyDefaults()

		if u.cache != nil {
			if err := u.cache.PutQuote(ctx, q); err != nil {
				slog.Warn("quote cache write failed", "symbol", sym, "error", err)
			}
		}
		return q, nil
	}

	if u.serveStale {
		if q, ok := u.cachedQuote(ctx, sym, 0); ok {
			slog.Warn("serving stale quote", "symbol", sym, "fetched_at", q.FetchedAt)
			q.Source = entity.SourceStaleCache
			q.Cached = true
			return q, nil
		}
	}

	return nil, ErrAllEndpointsFailed.
		With("symbol", sym, "attempted", attempted).
		Wrap(errors.Join(errs...))
}

// FetchHistorical returns bars for symbol+period at the given interval, ordered by date ascending.
// On a cache miss the primary endpoint is used, then the secondary one.
func (u *MarketDataUsecase) FetchHistorical(ctx context.Context, symbol, period, interval string, useCache bool) (*entity.HistoricalSeries, error) {
	sym := NormalizeSymbol(symbol)
	if sym == "" {
		return nil, ErrInvalidSymbol
	}
	if !entity.ValidPeriods[period] || !entity.ValidIntervals[interval] {
		return nil, ErrInvalidPeriod.With("period", period, "interval", interval)
	}

	series := &entity.HistoricalSeries{Symbol: sym, Period: period, Interval: interval}

	if useCache {
		if bars, ok := u.cachedBars(ctx, sym, period, interval); ok {
			series.Bars = bars
			return series, nil
		}
	}

	bars, err := u.fetchHistoricalUpstream(ctx, sym, period, interval)
	if err != nil {
		return nil, err
	}
	for i := range bars {
		bars[i].Symbol = sym
		bars[i].Period = period
		bars[i].Interval = interval
	}

	if u.cache != nil {
		if err := u.cache.PutHistoricalBars(ctx, sym, period, interval, bars); err != nil {
			slog.Warn("historical cache write failed", "symbol", sym, "period", period, "error", err)
		}
	}

	series.Bars = bars
	return series, nil
}

func (u *MarketDataUsecase) cachedBars(ctx context.Context, sym, period, interval string) ([]entity.HistoricalBar, bool) {
	if u.cache == nil {
		return nil, false
	}
	bars, err := u.cache.GetHistoricalBars(ctx, sym, period, HistoricalFreshness)
	if err != nil {
		slog.Warn("historical cache read failed", "symbol", sym, "period", period, "error", err)
		metrics.CacheLookups.WithLabelValues("historical", "error").Inc()
		return nil, false
	}
	// 同じperiodでも別のintervalで保存されている場合はミス扱い
	if len(bars) == 0 || bars[0].Interval != interval {
		metrics.CacheLookups.WithLabelValues("historical", "miss").Inc()
		return nil, false
	}
	metrics.CacheLookups.WithLabelValues("historical", "hit").Inc()
	return bars, true
}

func (u *MarketDataUsecase) fetchHistoricalUpstream(ctx context.Context, sym, period, interval string) ([]entity.HistoricalBar, error) {
	var errs []error
	var attempted []string

	for _, ep := range []HistoricalEndpoint{u.primaryHistorical, u.secondaryHistorical} {
		if ep == nil {
			continue
		}
		attempted = append(attempted, ep.Name())

		bars, err := ep.FetchHistorical(ctx, sym, period, interval)
		if err != nil {
			metrics.UpstreamRequests.WithLabelValues(ep.Name(), "error").Inc()
			slog.Warn("historical endpoint failed", "endpoint", ep.Name(), "symbol", sym, "period", period, "error", err)
			errs = append(errs, err)
			continue
		}
		metrics.UpstreamRequests.WithLabelValues(ep.Name(), "ok").Inc()
		return bars, nil
	}

	return nil, ErrAllEndpointsFailed.
		With("symbol", sym, "attempted", attempted).
		Wrap(errors.Join(errs...))
}

// FetchWindow fetches a named window. The yearly window also carries the 52-week high and low.
func (u *MarketDataUsecase) FetchWindow(ctx context.Context, symbol string, window entity.Window, useCache bool) (*entity.HistoricalSeries, error) {
	period, interval, ok := window.Range()
	if !ok {
		return nil, ErrInvalidPeriod.With("window", string(window))
	}
	series, err := u.FetchHistorical(ctx, symbol, period, interval, useCache)
	if err != nil {
		return nil, err
	}
	if window == entity.WindowYearly {
		series.FiftyTwoWeekHigh, series.FiftyTwoWeekLow = entity.HighLow(series.Bars)
	}
	return series, nil
}

// Compare fetches the quote of each symbol one after another, pacing the calls.
// A failing symbol yields an error entry; the batch continues.
func (u *MarketDataUsecase) Compare(ctx context.Context, symbols []string, useCache bool) []CompareResult {
	results := make([]CompareResult, 0, len(symbols))
	for _, s := range symbols {
		// the pacer lets the first call through immediately and spaces the rest
		if err := u.pacer.Wait(ctx); err != nil {
			results = append(results, CompareResult{Symbol: NormalizeSymbol(s), Err: err})
			continue
		}
		q, err := u.FetchQuote(ctx, s, useCache)
		if err != nil {
			results = append(results, CompareResult{Symbol: NormalizeSymbol(s), Err: err})
			continue
		}
		results = append(results, CompareResult{Symbol: q.Symbol, Quote: q})
	}
	return results
}

// SweepExpired removes expired cache metadata. It is safe to call with a nil cache.
func (u *MarketDataUsecase) SweepExpired(ctx context.Context) (int64, error) {
	if u.cache == nil {
		return 0, nil
	}
	n, err := u.cache.SweepExpired(ctx)
	if err != nil {
		return 0, err
	}
	metrics.SweptEntries.Add(float64(n))
	return n, nil
}
