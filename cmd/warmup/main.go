// Command warmup は有効な全銘柄の相場と時系列を取得してキャッシュを温めます。
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"papertrade/internal/app/di"
	quoteusecase "papertrade/internal/feature/quotes/usecase"
	"papertrade/internal/platform/config"
	infradb "papertrade/internal/platform/db"
	infraredis "papertrade/internal/platform/redis"
	"papertrade/internal/shared/ratelimiter"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		slog.Error("failed to load env", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	dbCfg, err := infradb.LoadConfigFromEnv()
	if err != nil {
		slog.Error("failed to load db config", "error", err)
		os.Exit(1)
	}
	db, err := infradb.Open(dbCfg, di.Models()...)
	if err != nil {
		slog.Error("failed to open db", "error", err)
		os.Exit(1)
	}

	redisCfg, err := infraredis.LoadConfig()
	if err != nil {
		slog.Error("failed to load redis config", "error", err)
		os.Exit(1)
	}
	rdb, err := infraredis.NewRedisClient(ctx, redisCfg)
	if err != nil {
		slog.Warn("Redis unavailable. Warming durable cache only.", "error", err)
		rdb = nil
	}

	market, ycfg, err := di.NewMarketData(db, rdb)
	if err != nil {
		slog.Error("failed to build market data", "error", err)
		os.Exit(1)
	}
	search := di.NewSearch(db, ycfg, market)
	if _, err := search.SeedSymbols(ctx); err != nil {
		slog.Warn("failed to seed symbol index", "error", err)
	}

	symbols, err := search.ActiveCodes(ctx)
	if err != nil {
		slog.Error("failed to load symbols", "error", err)
		os.Exit(1)
	}

	// 上流への負荷を抑えるため1分あたり30リクエストに制限
	uc := quoteusecase.NewWarmupUsecase(market, ratelimiter.NewRateLimiter("warmup", 30, time.Minute))
	failed, err := uc.WarmAll(ctx, symbols)
	if err != nil {
		slog.Error("warmup aborted", "error", err, "failed", failed)
		os.Exit(1)
	}
	slog.Info("warmup ok", "symbols", len(symbols), "failed", failed)
}
