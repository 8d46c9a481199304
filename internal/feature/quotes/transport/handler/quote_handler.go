// Package handler はquotesフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"papertrade/internal/feature/quotes/domain/entity"
	"papertrade/internal/feature/quotes/transport/http/dto"
	"papertrade/internal/feature/quotes/usecase"
	"papertrade/internal/platform/http/respond"
	"papertrade/internal/shared/apperror"
)

// maxCompareSymbols は1回の比較で指定できる銘柄数の上限です。
const maxCompareSymbols = 10

// QuotesUsecase は相場データ操作のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type QuotesUsecase interface {
	FetchQuote(ctx context.Context, symbol string, useCache bool) (*entity.Quote, error)
	FetchHistorical(ctx context.Context, symbol, period, interval string, useCache bool) (*entity.HistoricalSeries, error)
	FetchWindow(ctx context.Context, symbol string, window entity.Window, useCache bool) (*entity.HistoricalSeries, error)
	Compare(ctx context.Context, symbols []string, useCache bool) []usecase.CompareResult
}

// QuotesHandler は相場データのHTTPリクエストを処理します。
type QuotesHandler struct {
	uc QuotesUsecase
}

// NewQuotesHandler は指定されたusecaseでQuotesHandlerの新しいインスタンスを生成します。
func NewQuotesHandler(uc QuotesUsecase) *QuotesHandler {
	return &QuotesHandler{uc: uc}
}

// GetQuote は銘柄の現在の相場を返します。
//
// エンドポイント例:
// GET /quotes/:symbol?cache=false
func (h *QuotesHandler) GetQuote(c *gin.Context) {
	q, err := h.uc.FetchQuote(c.Request.Context(), c.Param("symbol"), useCache(c))
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, ToQuoteResponse(q))
}

// GetHistory は期間と間隔を指定して時系列データを返します。
//
// エンドポイント例:
// GET /quotes/:symbol/history?period=1mo&interval=1d
func (h *QuotesHandler) GetHistory(c *gin.Context) {
	period := c.DefaultQuery("period", "1mo")
	interval := c.DefaultQuery("interval", "1d")

	series, err := h.uc.FetchHistorical(c.Request.Context(), c.Param("symbol"), period, interval, useCache(c))
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, toHistoricalResponse(series))
}

// GetWindow は名前付きの期間（intraday, weekly, monthly, quarterly, yearly）で時系列データを返します。
//
// エンドポイント例:
// GET /quotes/:symbol/window/yearly
func (h *QuotesHandler) GetWindow(c *gin.Context) {
	window := entity.Window(strings.ToLower(c.Param("window")))

	series, err := h.uc.FetchWindow(c.Request.Context(), c.Param("symbol"), window, useCache(c))
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, toHistoricalResponse(series))
}

// Compare はカンマ区切りの複数銘柄の相場を順番に取得して返します。
// 取得に失敗した銘柄はエラー要素として含まれます。
//
// エンドポイント例:
// GET /compare?symbols=TCS,INFY,WIPRO
func (h *QuotesHandler) Compare(c *gin.Context) {
	var symbols []string
	for _, s := range strings.Split(c.Query("symbols"), ",") {
		if s = strings.TrimSpace(s); s != "" {
			symbols = append(symbols, s)
		}
	}
	if len(symbols) == 0 {
		respond.Error(c, usecase.ErrInvalidSymbol.Withf("symbols query parameter is required"))
		return
	}
	if len(symbols) > maxCompareSymbols {
		respond.Error(c, usecase.ErrInvalidSymbol.
			Withf("at most %d symbols can be compared", maxCompareSymbols).
			With("count", len(symbols)))
		return
	}

	results := h.uc.Compare(c.Request.Context(), symbols, useCache(c))

	out := make([]dto.CompareEntry, 0, len(results))
	for _, r := range results {
		entry := dto.CompareEntry{Symbol: r.Symbol}
		if r.Err != nil {
			entry.Error = r.Err.Error()
			if e, ok := apperror.As(r.Err); ok {
				entry.Error = e.Message
				entry.Code = e.Code
			}
		} else {
			qr := ToQuoteResponse(r.Quote)
			entry.Quote = &qr
		}
		out = append(out, entry)
	}
	c.JSON(http.StatusOK, out)
}

// useCache はcacheクエリを解釈します。未指定や不正値の場合はtrueです。
func useCache(c *gin.Context) bool {
	v, err := strconv.ParseBool(c.DefaultQuery("cache", "true"))
	if err != nil {
		return true
	}
	return v
}

// ToQuoteResponse はエンティティをレスポンスDTOに変換します。searchフィーチャーからも利用します。
func ToQuoteResponse(q *entity.Quote) dto.QuoteResponse {
	return dto.QuoteResponse{
		Symbol:        q.Symbol,
		Name:          q.Name,
		CurrentPrice:  q.CurrentPrice,
		PreviousClose: q.PreviousClose,
		Change:        q.Change(),
		ChangePercent: q.ChangePercent(),
		DayHigh:       q.DayHigh,
		DayLow:        q.DayLow,
		Volume:        q.Volume,
		Currency:      q.Currency,
		Exchange:      q.Exchange,
		FetchedAt:     q.FetchedAt.UTC().Format(time.RFC3339),
		Source:        q.Source,
		Cached:        q.Cached,
	}
}

func toHistoricalResponse(s *entity.HistoricalSeries) dto.HistoricalResponse {
	bars := make([]dto.BarResponse, 0, len(s.Bars))
	// 日足以上は日付のみ、分足は時刻まで出力
	layout := time.RFC3339
	if s.Interval == "1d" || s.Interval == "1wk" {
		layout = "2006-01-02"
	}
	for _, b := range s.Bars {
		bars = append(bars, dto.BarResponse{
			Date:   b.Date.UTC().Format(layout),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		})
	}
	return dto.HistoricalResponse{
		Symbol:           s.Symbol,
		Period:           s.Period,
		Interval:         s.Interval,
		Bars:             bars,
		FiftyTwoWeekHigh: s.FiftyTwoWeekHigh,
		FiftyTwoWeekLow:  s.FiftyTwoWeekLow,
	}
}
