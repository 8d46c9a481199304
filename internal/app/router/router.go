// Package router はアプリケーションのHTTPルーティングを定義します。
package router

import (
	"github.com/gin-gonic/gin"

	authhandler "papertrade/internal/feature/auth/transport/handler"
	ledgerhandler "papertrade/internal/feature/ledger/transport/handler"
	quoteshandler "papertrade/internal/feature/quotes/transport/handler"
	searchhandler "papertrade/internal/feature/search/transport/handler"
	jwtmw "papertrade/internal/platform/jwt"
	"papertrade/internal/platform/metrics"
)

// Handlers はルーターに登録するハンドラー一式です。
type Handlers struct {
	Auth   *authhandler.AuthHandler
	Quotes *quoteshandler.QuotesHandler
	Search *searchhandler.SearchHandler
	Ledger *ledgerhandler.LedgerHandler
	Health gin.HandlerFunc
}

func NewRouter(h Handlers, jwtSecret string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// 認証不要
	// 導通確認用
	r.GET("/healthz", h.Health)
	r.HEAD("/healthz", h.Health)
	r.GET("/metrics", metrics.Handler())
	// 新規ユーザー登録
	r.POST("/signup", h.Auth.Signup)
	// ログイン（JWT 発行）
	r.POST("/login", h.Auth.Login)

	// 認証必須のルート
	auth := r.Group("/")
	// → リクエストヘッダーに JWT が必要になる
	auth.Use(jwtmw.AuthRequired(jwtSecret))
	{
		auth.GET("/quotes/:symbol", h.Quotes.GetQuote)
		auth.GET("/quotes/:symbol/history", h.Quotes.GetHistory)
		auth.GET("/quotes/:symbol/window/:window", h.Quotes.GetWindow)
		auth.GET("/compare", h.Quotes.Compare)

		auth.GET("/search", h.Search.Search)
		auth.GET("/search/quote", h.Search.SearchQuote)
		auth.GET("/symbols", h.Search.List)

		auth.GET("/wallet", h.Ledger.GetWallet)
		auth.POST("/wallet/deposit", h.Ledger.Deposit)
		auth.POST("/wallet/withdraw", h.Ledger.Withdraw)
		auth.GET("/portfolio", h.Ledger.GetPortfolio)
		auth.POST("/trade/buy", h.Ledger.Buy)
		auth.POST("/trade/sell", h.Ledger.Sell)
		auth.GET("/transactions", h.Ledger.ListTransactions)
	}

	return r
}
