package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"papertrade/internal/feature/quotes/domain/entity"
	"papertrade/internal/feature/quotes/transport/handler"
	"papertrade/internal/feature/quotes/usecase"
)

// mockQuotesUsecase はQuotesUsecaseインターフェースのモック実装です。
type mockQuotesUsecase struct {
	FetchQuoteFunc      func(ctx context.Context, symbol string, useCache bool) (*entity.Quote, error)
	FetchHistoricalFunc func(ctx context.Context, symbol, period, interval string, useCache bool) (*entity.HistoricalSeries, error)
	FetchWindowFunc     func(ctx context.Context, symbol string, window entity.Window, useCache bool) (*entity.HistoricalSeries, error)
	CompareFunc         func(ctx context.Context, symbols []string, useCache bool) []usecase.CompareResult
}

func (m *mockQuotesUsecase) FetchQuote(ctx context.Context, symbol string, useCache bool) (*entity.Quote, error) {
	return m.FetchQuoteFunc(ctx, symbol, useCache)
}

func (m *mockQuotesUsecase) FetchHistorical(ctx context.Context, symbol, period, interval string, useCache bool) (*entity.HistoricalSeries, error) {
	return m.FetchHistoricalFunc(ctx, symbol, period, interval, useCache)
}

func (m *mockQuotesUsecase) FetchWindow(ctx context.Context, symbol string, window entity.Window, useCache bool) (*entity.HistoricalSeries, error) {
	return m.FetchWindowFunc(ctx, symbol, window, useCache)
}

func (m *mockQuotesUsecase) Compare(ctx context.Context, symbols []string, useCache bool) []usecase.CompareResult {
	return m.CompareFunc(ctx, symbols, useCache)
}

var fetchedAt = time.Date(2025, 1, 15, 4, 0, 0, 0, time.UTC)

func newRouter(uc *mockQuotesUsecase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := handler.NewQuotesHandler(uc)
	r := gin.New()
	r.GET("/quotes/:symbol", h.GetQuote)
	r.GET("/quotes/:symbol/history", h.GetHistory)
	r.GET("/quotes/:symbol/window/:window", h.GetWindow)
	r.GET("/compare", h.Compare)
	return r
}

func serve(r *gin.Engine, url string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, url, nil))
	return w
}

func TestQuotesHandler_GetQuote(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		wantCache      bool
		err            error
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "success: cached quote",
			url:            "/quotes/TCS",
			wantCache:      true,
			expectedStatus: http.StatusOK,
			expectedBody: `{"symbol":"TCS","name":"Tata Consultancy","currentPrice":4100,"previousClose":4000,
				"change":100,"changePercent":2.5,"dayHigh":3520,"dayLow":3390,"volume":1000,
				"currency":"INR","exchange":"NSI","fetchedAt":"2025-01-15T04:00:00Z","source":"cache","cached":true}`,
		},
		{
			name:           "error: all endpoints failed maps to 503",
			url:            "/quotes/TCS?cache=false",
			wantCache:      false,
			err:            usecase.ErrAllEndpointsFailed.With("symbol", "TCS"),
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   `{"error":"no market data available, try again later","code":"ALL_ENDPOINTS_FAILED","kind":"transient","details":{"symbol":"TCS"}}`,
		},
		{
			name:           "error: invalid symbol maps to 400",
			url:            "/quotes/%20",
			wantCache:      true,
			err:            usecase.ErrInvalidSymbol,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"symbol is required","code":"INVALID_SYMBOL","kind":"invalid"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockQuotesUsecase{FetchQuoteFunc: func(_ context.Context, symbol string, useCache bool) (*entity.Quote, error) {
				assert.Equal(t, tt.wantCache, useCache)
				if tt.err != nil {
					return nil, tt.err
				}
				return &entity.Quote{
					Symbol: symbol, Name: "Tata Consultancy", CurrentPrice: 4100, PreviousClose: 4000,
					DayHigh: 3520, DayLow: 3390, Volume: 1000, Currency: "INR", Exchange: "NSI",
					FetchedAt: fetchedAt, Source: entity.SourceCache, Cached: true,
				}, nil
			}}

			w := serve(newRouter(uc), tt.url)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}

func TestQuotesHandler_GetHistory(t *testing.T) {
	closePrice := 3500.0
	uc := &mockQuotesUsecase{FetchHistoricalFunc: func(_ context.Context, symbol, period, interval string, _ bool) (*entity.HistoricalSeries, error) {
		if period == "7d" {
			return nil, usecase.ErrInvalidPeriod.With("period", period, "interval", interval)
		}
		return &entity.HistoricalSeries{
			Symbol: symbol, Period: period, Interval: interval,
			Bars: []entity.HistoricalBar{
				{Date: time.Date(2025, 1, 14, 0, 0, 0, 0, time.UTC), Close: &closePrice},
				{Date: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)},
			},
		}, nil
	}}
	r := newRouter(uc)

	t.Run("defaults and nulls", func(t *testing.T) {
		w := serve(r, "/quotes/TCS/history")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"symbol":"TCS","period":"1mo","interval":"1d","bars":[
			{"date":"2025-01-14","open":null,"high":null,"low":null,"close":3500,"volume":null},
			{"date":"2025-01-15","open":null,"high":null,"low":null,"close":null,"volume":null}]}`, w.Body.String())
	})

	t.Run("invalid period", func(t *testing.T) {
		w := serve(r, "/quotes/TCS/history?period=7d")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"code":"INVALID_PERIOD"`)
	})
}

func TestQuotesHandler_GetWindow(t *testing.T) {
	high, low := 4000.0, 3000.0
	var gotWindow entity.Window
	uc := &mockQuotesUsecase{FetchWindowFunc: func(_ context.Context, symbol string, window entity.Window, _ bool) (*entity.HistoricalSeries, error) {
		gotWindow = window
		return &entity.HistoricalSeries{
			Symbol: symbol, Period: "1y", Interval: "1wk",
			Bars:             []entity.HistoricalBar{},
			FiftyTwoWeekHigh: &high, FiftyTwoWeekLow: &low,
		}, nil
	}}

	w := serve(newRouter(uc), "/quotes/TCS/window/Yearly")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, entity.WindowYearly, gotWindow)
	assert.JSONEq(t, `{"symbol":"TCS","period":"1y","interval":"1wk","bars":[],"fiftyTwoWeekHigh":4000,"fiftyTwoWeekLow":3000}`, w.Body.String())
}

func TestQuotesHandler_Compare(t *testing.T) {
	uc := &mockQuotesUsecase{CompareFunc: func(_ context.Context, symbols []string, _ bool) []usecase.CompareResult {
		assert.Equal(t, []string{"TCS", "BAD"}, symbols)
		return []usecase.CompareResult{
			{Symbol: "TCS", Quote: &entity.Quote{Symbol: "TCS", CurrentPrice: 3500, FetchedAt: fetchedAt, Source: "query1"}},
			{Symbol: "BAD", Err: usecase.ErrAllEndpointsFailed},
		}
	}}
	r := newRouter(uc)

	t.Run("mixed results", func(t *testing.T) {
		w := serve(r, "/compare?symbols=TCS,%20BAD,,")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[
			{"symbol":"TCS","quote":{"symbol":"TCS","name":"","currentPrice":3500,"previousClose":0,"change":3500,
				"changePercent":0,"dayHigh":0,"dayLow":0,"volume":0,"currency":"","exchange":"",
				"fetchedAt":"2025-01-15T04:00:00Z","source":"query1","cached":false}},
			{"symbol":"BAD","error":"no market data available, try again later","code":"ALL_ENDPOINTS_FAILED"}
		]`, w.Body.String())
	})

	t.Run("missing symbols", func(t *testing.T) {
		w := serve(r, "/compare")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("too many symbols", func(t *testing.T) {
		w := serve(r, "/compare?symbols=A,B,C,D,E,F,G,H,I,J,K")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"count":11`)
	})
}
