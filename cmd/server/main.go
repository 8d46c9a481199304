package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"papertrade/internal/app/di"
	"papertrade/internal/app/router"
	authhandler "papertrade/internal/feature/auth/transport/handler"
	ledgerhandler "papertrade/internal/feature/ledger/transport/handler"
	quoteshandler "papertrade/internal/feature/quotes/transport/handler"
	searchhandler "papertrade/internal/feature/search/transport/handler"
	"papertrade/internal/platform/config"
	infradb "papertrade/internal/platform/db"
	"papertrade/internal/platform/http/handler"
	infraredis "papertrade/internal/platform/redis"
	"papertrade/internal/platform/scheduler"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	srvCfg, err := config.LoadServerConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// db
	dbCfg, err := infradb.LoadConfigFromEnv()
	if err != nil {
		return err
	}
	db, err := infradb.Open(dbCfg, di.Models()...)
	if err != nil {
		return err
	}

	// Redis（任意）
	redisCfg, err := infraredis.LoadConfig()
	if err != nil {
		return err
	}
	rdb, err := infraredis.NewRedisClient(ctx, redisCfg)
	if err != nil {
		slog.Warn("Redis unavailable. Running without hot cache.", "error", err)
		rdb = nil
	}
	if rdb != nil {
		defer func() {
			if err := rdb.Close(); err != nil {
				slog.Error("failed to close Redis client", "error", err)
			}
		}()
	}

	// Usecase
	market, ycfg, err := di.NewMarketData(db, rdb)
	if err != nil {
		return err
	}
	search := di.NewSearch(db, ycfg, market)
	if n, err := search.SeedSymbols(ctx); err != nil {
		slog.Warn("failed to seed symbol index", "error", err)
	} else if n > 0 {
		slog.Info("seeded symbol index", "count", n)
	}
	authUC := di.NewAuth(db, srvCfg.JWTSecret, srvCfg.JWTExpiration)
	trading := di.NewTrading(db, market)

	// Handler
	checks := []handler.Check{{Name: "db", Required: true, Probe: func(context.Context) error { return infradb.Ping(db) }}}
	if rdb != nil {
		checks = append(checks, handler.Check{Name: "redis", Probe: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }})
	}
	r := router.NewRouter(router.Handlers{
		Auth:   authhandler.NewAuthHandler(authUC),
		Quotes: quoteshandler.NewQuotesHandler(market),
		Search: searchhandler.NewSearchHandler(search),
		Ledger: ledgerhandler.NewLedgerHandler(trading),
		Health: handler.Health(checks...),
	}, srvCfg.JWTSecret)

	// 期限切れキャッシュの掃除
	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		scheduler.NewSweeper("quote-cache", srvCfg.SweepInterval, market.SweepExpired).Run(ctx)
	}()

	srv := &http.Server{
		Addr:              srvCfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		stop()
		<-sweepDone
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	<-sweepDone
	slog.Info("server stopped")
	return nil
}
