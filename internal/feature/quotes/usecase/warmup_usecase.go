package usecase

import (
	"context"
	"log/slog"

	"papertrade/internal/feature/quotes/domain/entity"
	"papertrade/internal/shared/ratelimiter"
)

// warmupWindows はキャッシュを温める対象の期間です。
var warmupWindows = []entity.Window{entity.WindowMonthly, entity.WindowYearly}

// MarketDataFetcher is the subset of MarketDataUsecase the warmup job needs.
type MarketDataFetcher interface {
	FetchQuote(ctx context.Context, symbol string, useCache bool) (*entity.Quote, error)
	FetchWindow(ctx context.Context, symbol string, window entity.Window, useCache bool) (*entity.HistoricalSeries, error)
}

// WarmupUsecase は外部APIからデータを取得し、ローカルキャッシュに書き込むユースケースです。
type WarmupUsecase struct {
	market      MarketDataFetcher
	rateLimiter ratelimiter.RateLimiterInterface
}

// NewWarmupUsecase は新しい WarmupUsecase を作成します。
func NewWarmupUsecase(market MarketDataFetcher, rateLimiter ratelimiter.RateLimiterInterface) *WarmupUsecase {
	return &WarmupUsecase{market: market, rateLimiter: rateLimiter}
}

// WarmAll は指定された全銘柄の相場と時系列データを取得してキャッシュします。
// キャッシュが新しい場合は上流へアクセスしません。失敗した銘柄はログに出力して次へ進みます。
// 戻り値は1件以上の取得に失敗した銘柄の数です。
func (wu *WarmupUsecase) WarmAll(ctx context.Context, symbols []string) (int, error) {
	failed := 0
	for _, s := range symbols {
		ok := true

		if err := wu.rateLimiter.Wait(ctx); err != nil {
			return failed, err
		}
		if _, err := wu.market.FetchQuote(ctx, s, true); err != nil {
			slog.Error("failed to warm quote", "symbol", s, "error", err)
			ok = false
		}

		for _, w := range warmupWindows {
			if err := wu.rateLimiter.Wait(ctx); err != nil {
				return failed, err
			}
			if _, err := wu.market.FetchWindow(ctx, s, w, true); err != nil {
				// 1つの銘柄でエラーが発生しても処理を止めずに次へ進む
				slog.Error("failed to warm window", "symbol", s, "window", w, "error", err)
				ok = false
			}
		}
		if !ok {
			failed++
		}
	}
	return failed, nil
}
