// Package handler はsearchフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	quoteentity "papertrade/internal/feature/quotes/domain/entity"
	quotehandler "papertrade/internal/feature/quotes/transport/handler"
	"papertrade/internal/feature/search/domain/entity"
	"papertrade/internal/feature/search/transport/http/dto"
	"papertrade/internal/platform/http/respond"
)

// SearchUsecase は銘柄検索のユースケースインターフェースです。
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type SearchUsecase interface {
	Resolve(ctx context.Context, query string, limit int, allowOnline bool) (*entity.Resolution, error)
	ResolveAndQuote(ctx context.Context, query string) (entity.SearchResult, *quoteentity.Quote, error)
	ListActive(ctx context.Context) ([]entity.Symbol, error)
}

// SearchHandler は銘柄検索に関するHTTPリクエストを処理します。
type SearchHandler struct {
	uc SearchUsecase
}

// NewSearchHandler は新しい SearchHandler を作成します。
func NewSearchHandler(uc SearchUsecase) *SearchHandler {
	return &SearchHandler{uc: uc}
}

// Search はクエリに一致する銘柄を返します。結果が0件でも200を返します。
//
// エンドポイント例:
// GET /search?q=reliance&limit=5&online=false
func (h *SearchHandler) Search(c *gin.Context) {
	query := c.Query("q")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	online, err := strconv.ParseBool(c.DefaultQuery("online", "true"))
	if err != nil {
		online = true
	}

	res, err := h.uc.Resolve(c.Request.Context(), query, limit, online)
	if err != nil {
		respond.Error(c, err)
		return
	}

	items := make([]dto.SearchItem, 0, len(res.Results))
	for _, r := range res.Results {
		items = append(items, toItem(r))
	}
	c.JSON(http.StatusOK, dto.SearchResponse{
		Query:   query,
		Source:  res.Source,
		Count:   len(items),
		Results: items,
	})
}

// SearchQuote は最も一致する銘柄を解決し、その相場を返します。
// 一致しない場合は404です。
//
// エンドポイント例:
// GET /search/quote?q=infosys
func (h *SearchHandler) SearchQuote(c *gin.Context) {
	found, q, err := h.uc.ResolveAndQuote(c.Request.Context(), c.Query("q"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SearchQuoteResponse{
		Found: toItem(found),
		Quote: quotehandler.ToQuoteResponse(q),
	})
}

// List は有効な銘柄の一覧を取得するAPIです。
func (h *SearchHandler) List(c *gin.Context) {
	symbols, err := h.uc.ListActive(c.Request.Context())
	if err != nil {
		respond.Error(c, err)
		return
	}
	out := make([]dto.SymbolItem, 0, len(symbols))
	for _, s := range symbols {
		out = append(out, dto.SymbolItem{Code: s.Code, Name: s.Name, Exchange: s.Exchange})
	}
	c.JSON(http.StatusOK, out)
}

func toItem(r entity.SearchResult) dto.SearchItem {
	return dto.SearchItem{Symbol: r.Symbol, Name: r.Name, Exchange: r.Exchange, Type: r.Type}
}
