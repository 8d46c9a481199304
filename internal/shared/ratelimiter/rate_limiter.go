// Package ratelimiter は上流APIへのリクエスト頻度を制限します。
package ratelimiter

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiterInterface は、API呼び出しなどの操作の頻度を制限するインターフェースです。
type RateLimiterInterface interface {
	// Wait は次の呼び出しが許可されるまでブロックします。ctxがキャンセルされた場合はエラーを返します。
	Wait(ctx context.Context) error
}

// RateLimiterは、API呼び出しなどの操作の頻度を制限します。
type RateLimiter struct {
	limiter *rate.Limiter
	name    string
}

// NewRateLimiterは interval あたり limit 回までの呼び出しを許可するRateLimiterを生成します。
func NewRateLimiter(name string, limit int, interval time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = 1
	}
	every := interval / time.Duration(limit)
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Every(every), limit),
		name:    name,
	}
}

// NewIntervalLimiter は連続する呼び出しの間隔を最低 gap 空けるRateLimiterを生成します。
// 最初の呼び出しは待機しません。
func NewIntervalLimiter(name string, gap time.Duration) *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Every(gap), 1),
		name:    name,
	}
}

// Wait は呼び出しが許可されるまで待機します。
func (rl *RateLimiter) Wait(ctx context.Context) error {
	r := rl.limiter.Reserve()
	delay := r.Delay()
	if delay == 0 {
		return nil
	}
	slog.Debug("rate limit wait", "limiter", rl.name, "delay", delay)

	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		r.Cancel()
		return ctx.Err()
	}
}

// Noop never blocks. Useful in tests and for callers that opt out of pacing.
type Noop struct{}

// Wait returns immediately.
func (Noop) Wait(context.Context) error { return nil }
