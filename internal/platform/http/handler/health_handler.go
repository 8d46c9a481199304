// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Check は依存先（DB、Redisなど）の疎通確認です。
type Check struct {
	Name string
	// Required がfalseの依存は失敗しても503にしません（Redisなど）。
	Required bool
	Probe    func(ctx context.Context) error
}

// HealthResponse は /healthz のレスポンスです。
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

const probeTimeout = 2 * time.Second

// Health はサービスヘルスチェック用の /healthz エンドポイントを返します。
// GETでは各Checkを実行し、必須の依存が落ちていれば503を返します。
func Health(checks ...Check) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 明示的にキャッシュを防止
		c.Header("Cache-Control", "no-store")

		switch c.Request.Method {
		case http.MethodHead:
			c.Status(http.StatusOK)
			return
		case http.MethodOptions:
			c.Status(http.StatusNoContent)
			return
		}

		res := HealthResponse{Status: "ok"}
		status := http.StatusOK
		if len(checks) > 0 {
			res.Checks = make(map[string]string, len(checks))
		}
		for _, chk := range checks {
			ctx, cancel := context.WithTimeout(c.Request.Context(), probeTimeout)
			err := chk.Probe(ctx)
			cancel()
			if err == nil {
				res.Checks[chk.Name] = "ok"
				continue
			}
			slog.Warn("health check failed", "check", chk.Name, "error", err)
			res.Checks[chk.Name] = "down"
			if chk.Required {
				res.Status = "unavailable"
				status = http.StatusServiceUnavailable
			} else if res.Status == "ok" {
				res.Status = "degraded"
			}
		}
		c.JSON(status, res)
	}
}
