package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	quoteentity "papertrade/internal/feature/quotes/domain/entity"
	"papertrade/internal/feature/search/domain/entity"
	"papertrade/internal/platform/metrics"
)

const (
	// DefaultLimit is used when the caller passes a non-positive limit.
	DefaultLimit = 10
	// MaxLimit caps every result set.
	MaxLimit = 50
	// CacheTTL is the lifetime of a persisted online result set.
	CacheTTL = time.Hour
)

// QuoteFetcher is the subset of the market data usecase ResolveAndQuote needs.
type QuoteFetcher interface {
	FetchQuote(ctx context.Context, symbol string, useCache bool) (*quoteentity.Quote, error)
}

// SearchUsecase resolves free-text queries to symbols.
type SearchUsecase struct {
	symbols   SymbolRepository
	cache     SearchCacheRepository
	searchers []OnlineSearcher
	quotes    QuoteFetcher
	now       func() time.Time
}

// NewSearchUsecase creates a SearchUsecase. searchers are tried in the given order.
// cache may be nil.
func NewSearchUsecase(symbols SymbolRepository, cache SearchCacheRepository, searchers []OnlineSearcher, quotes QuoteFetcher) *SearchUsecase {
	return &SearchUsecase{
		symbols:   symbols,
		cache:     cache,
		searchers: searchers,
		quotes:    quotes,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// NormalizeQuery lowercases and trims a query.
func NormalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Resolve returns up to limit symbols for query: local index first, then the
// search cache, then (with allowOnline) the online endpoints and the manual table.
// An empty query yields an empty result.
func (u *SearchUsecase) Resolve(ctx context.Context, query string, limit int, allowOnline bool) (*entity.Resolution, error) {
	q := NormalizeQuery(query)
	limit = clampLimit(limit)
	if q == "" {
		return &entity.Resolution{Results: []entity.SearchResult{}}, nil
	}

	if local := u.searchLocal(ctx, q, limit); len(local) > 0 {
		return &entity.Resolution{Results: dedupe(local, limit), Source: entity.SourceLocal}, nil
	}

	if cached, ok := u.cachedResults(ctx, q); ok {
		return &entity.Resolution{Results: dedupe(cached, limit), Source: entity.SourceCache}, nil
	}

	if !allowOnline {
		return &entity.Resolution{Results: []entity.SearchResult{}}, nil
	}

	results, source := u.searchOnline(ctx, q)
	if len(results) == 0 {
		return &entity.Resolution{Results: []entity.SearchResult{}}, nil
	}
	results = dedupe(results, MaxLimit)
	u.persist(ctx, q, results, source)

	return &entity.Resolution{Results: dedupe(results, limit), Source: source}, nil
}

// ResolveAndQuote resolves query to one symbol and fetches its quote.
func (u *SearchUsecase) ResolveAndQuote(ctx context.Context, query string) (entity.SearchResult, *quoteentity.Quote, error) {
	res, err := u.Resolve(ctx, query, 1, true)
	if err != nil {
		return entity.SearchResult{}, nil, err
	}
	if len(res.Results) == 0 {
		return entity.SearchResult{}, nil, ErrNotFound.With("query", query)
	}
	found := res.Results[0]

	q, err := u.quotes.FetchQuote(ctx, found.Symbol, true)
	if err != nil {
		return found, nil, err
	}
	return found, q, nil
}

// ListActive returns every active index entry in display order.
func (u *SearchUsecase) ListActive(ctx context.Context) ([]entity.Symbol, error) {
	return u.symbols.ListActive(ctx)
}

// ActiveCodes returns the codes of every active index entry in display order.
func (u *SearchUsecase) ActiveCodes(ctx context.Context) ([]string, error) {
	return u.symbols.ListActiveCodes(ctx)
}

// SeedSymbols fills an empty local index from the manual table and returns
// how many entries were written.
func (u *SearchUsecase) SeedSymbols(ctx context.Context) (int, error) {
	n, err := u.symbols.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}
	rows := make([]entity.Symbol, 0, len(manualSymbols))
	for i, m := range manualSymbols {
		rows = append(rows, entity.Symbol{
			Code:     m.Symbol,
			Name:     m.Name,
			Exchange: m.Exchange,
			Type:     m.Type,
			IsActive: true,
			SortKey:  i,
		})
	}
	if err := u.symbols.UpsertBatch(ctx, rows); err != nil {
		return 0, err
	}
	slog.Info("symbol index seeded", "count", len(rows))
	return len(rows), nil
}

func (u *SearchUsecase) searchLocal(ctx context.Context, q string, limit int) []entity.SearchResult {
	// 順位付けのため上限より多めに取得する
	rows, err := u.symbols.Match(ctx, q, MaxLimit)
	if err != nil {
		slog.Warn("local symbol search failed", "query", q, "error", err)
		return nil
	}
	ranked := rank(rows, q)
	out := make([]entity.SearchResult, 0, min(len(ranked), limit))
	for _, s := range ranked {
		out = append(out, s.ToResult())
	}
	return out
}

func (u *SearchUsecase) cachedResults(ctx context.Context, q string) ([]entity.SearchResult, bool) {
	if u.cache == nil {
		return nil, false
	}
	e, err := u.cache.Get(ctx, q)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			slog.Warn("search cache read failed", "query", q, "error", err)
			metrics.CacheLookups.WithLabelValues("search", "error").Inc()
		} else {
			metrics.CacheLookups.WithLabelValues("search", "miss").Inc()
		}
		return nil, false
	}
	if len(e.Results) == 0 {
		metrics.CacheLookups.WithLabelValues("search", "miss").Inc()
		return nil, false
	}
	metrics.CacheLookups.WithLabelValues("search", "hit").Inc()
	return e.Results, true
}

// searchOnline tries each endpoint in order; the first non-empty answer wins.
// When all are empty or failing, the manual table is consulted.
func (u *SearchUsecase) searchOnline(ctx context.Context, q string) ([]entity.SearchResult, string) {
	for _, s := range u.searchers {
		results, err := s.Search(ctx, q)
		if err != nil {
			metrics.UpstreamRequests.WithLabelValues(s.Name(), "error").Inc()
			slog.Warn("online search failed", "endpoint", s.Name(), "query", q, "error", err)
			continue
		}
		metrics.UpstreamRequests.WithLabelValues(s.Name(), "ok").Inc()
		if len(results) > 0 {
			return results, s.Name()
		}
	}
	return matchManual(q), entity.SourceManual
}

func (u *SearchUsecase) persist(ctx context.Context, q string, results []entity.SearchResult, source string) {
	if u.cache == nil {
		return
	}
	e := &entity.SearchCacheEntry{
		Query:       q,
		Results:     results,
		ResultCount: len(results),
		Source:      source,
		ExpiresAt:   u.now().Add(CacheTTL),
	}
	if err := u.cache.Put(ctx, e); err != nil {
		slog.Warn("search cache write failed", "query", q, "error", err)
	}
}

// rank orders rows: exact code > code prefix > name substring > other.
// Ties keep the index display order.
func rank(rows []entity.Symbol, q string) []entity.Symbol {
	score := func(s entity.Symbol) int {
		code := strings.ToLower(s.Code)
		switch {
		case code == q:
			return 0
		case strings.HasPrefix(code, q):
			return 1
		case strings.Contains(strings.ToLower(s.Name), q):
			return 2
		default:
			return 3
		}
	}
	out := append([]entity.Symbol(nil), rows...)
	sort.SliceStable(out, func(i, j int) bool {
		si, sj := score(out[i]), score(out[j])
		if si != sj {
			return si < sj
		}
		return out[i].SortKey < out[j].SortKey
	})
	return out
}

func matchManual(q string) []entity.SearchResult {
	var out []entity.SearchResult
	for _, m := range manualSymbols {
		if strings.Contains(strings.ToLower(m.Symbol), q) || strings.Contains(strings.ToLower(m.Name), q) {
			out = append(out, m)
		}
	}
	return out
}

// dedupe removes repeated symbols keeping the first occurrence, then caps at limit.
func dedupe(results []entity.SearchResult, limit int) []entity.SearchResult {
	seen := make(map[string]struct{}, len(results))
	out := make([]entity.SearchResult, 0, min(len(results), limit))
	for _, r := range results {
		key := strings.ToUpper(r.Symbol)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
		if len(out) == limit {
			break
		}
	}
	return out
}
