// Package scheduler はキャッシュ掃除などの定期ジョブを実行します。
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// SweepFunc は1回分の掃除処理です。削除件数を返します。
type SweepFunc func(ctx context.Context) (int64, error)

// Sweeper はintervalごとにSweepFuncを呼び出します。
// 1回の失敗やpanicでループは止まりません。
type Sweeper struct {
	name     string
	interval time.Duration
	timeout  time.Duration
	sweep    SweepFunc
}

// NewSweeper は新しいSweeperを生成します。1回の実行はintervalを上限にタイムアウトします。
func NewSweeper(name string, interval time.Duration, sweep SweepFunc) *Sweeper {
	return &Sweeper{name: name, interval: interval, timeout: interval, sweep: sweep}
}

// Run はctxがキャンセルされるまでブロックします。起動直後に1回実行します。
func (s *Sweeper) Run(ctx context.Context) {
	slog.Info("sweeper started", "job", s.name, "interval", s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			slog.Info("sweeper stopped", "job", s.name)
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

// runOnce は1回分を実行し、エラーとpanicをログに閉じ込めます。
func (s *Sweeper) runOnce(ctx context.Context) (n int64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sweep panicked: %v", r)
			slog.Error("sweep failed", "job", s.name, "error", err)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	n, err = s.sweep(ctx)
	if err != nil {
		slog.Error("sweep failed", "job", s.name, "error", err)
		return 0, err
	}
	slog.Info("sweep completed", "job", s.name, "removed", n, "elapsed", time.Since(start))
	return n, nil
}
