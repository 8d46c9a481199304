// Package metrics はPrometheusのメトリクスを定義します。
package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "papertrade"

var (
	// CacheLookups counts cache lookups by cache name and result (hit, miss, error).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Cache lookups by cache and result.",
	}, []string{"cache", "result"})

	// UpstreamRequests counts upstream endpoint calls by endpoint and outcome (ok, error).
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_requests_total",
		Help:      "Upstream market-data requests by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})

	// Trades counts trade attempts by side (buy, sell) and outcome (ok, rejected, error).
	Trades = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "trades_total",
		Help:      "Trade attempts by side and outcome.",
	}, []string{"side", "outcome"})

	// SweptEntries counts cache metadata rows removed by the sweeper.
	SweptEntries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_swept_entries_total",
		Help:      "Expired cache metadata rows removed by the sweeper.",
	})
)

// Handler exposes the default registry for Gin.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
