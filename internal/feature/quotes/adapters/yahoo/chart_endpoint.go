package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"papertrade/internal/feature/quotes/adapters/yahoo/dto"
	"papertrade/internal/feature/quotes/domain/entity"
	"papertrade/internal/feature/quotes/usecase"
)

// ChartEndpoint はv8チャートAPIから相場と時系列データを取得します。
// ホストごとに1インスタンスを生成します（query1, query2）。
type ChartEndpoint struct {
	name    string
	baseURL string
	cfg     Config
	client  *http.Client
}

// ChartEndpointがQuoteEndpointとHistoricalEndpointを実装していることをコンパイル時に検証します。
var (
	_ usecase.QuoteEndpoint      = (*ChartEndpoint)(nil)
	_ usecase.HistoricalEndpoint = (*ChartEndpoint)(nil)
)

// NewChartEndpoint は指定されたホストのChartEndpointを生成します。
func NewChartEndpoint(name, baseURL string, cfg Config, client *http.Client) *ChartEndpoint {
	return &ChartEndpoint{name: name, baseURL: baseURL, cfg: cfg, client: client}
}

// Name returns the endpoint name reported as the quote source.
func (e *ChartEndpoint) Name() string {
	return e.name
}

// FetchQuote は当日のチャートのメタ情報から相場を生成します。
func (e *ChartEndpoint) FetchQuote(ctx context.Context, symbol string) (*entity.Quote, error) {
	result, err := e.chart(ctx, symbol, "1d", "1d")
	if err != nil {
		return nil, err
	}
	meta := result.Meta
	if meta.RegularMarketPrice == nil || *meta.RegularMarketPrice <= 0 {
		return nil, usecase.ErrEndpointParse.Withf("%s: regularMarketPrice missing for %s", e.name, symbol)
	}

	q := &entity.Quote{
		Symbol:       symbol,
		Name:         firstNonEmpty(meta.LongName, meta.ShortName),
		CurrentPrice: *meta.RegularMarketPrice,
		DayHigh:      deref(meta.RegularMarketDayHigh),
		DayLow:       deref(meta.RegularMarketDayLow),
		Volume:       int64(deref(meta.RegularMarketVolume)),
		Currency:     meta.Currency,
		Exchange:     meta.ExchangeName,
		FetchedAt:    time.Now().UTC(),
	}
	if meta.PreviousClose != nil {
		q.PreviousClose = *meta.PreviousClose
	} else {
		q.PreviousClose = deref(meta.ChartPreviousClose)
	}
	return q, nil
}

// FetchHistorical はtimestamp配列とOHLCV配列をインデックスで束ねて時系列データを生成します。
// null値はそのまま保持します。
func (e *ChartEndpoint) FetchHistorical(ctx context.Context, symbol, period, interval string) ([]entity.HistoricalBar, error) {
	result, err := e.chart(ctx, symbol, period, interval)
	if err != nil {
		return nil, err
	}
	if len(result.Indicators.Quote) == 0 {
		return nil, usecase.ErrEndpointParse.Withf("%s: no quote indicators for %s", e.name, symbol)
	}
	ind := result.Indicators.Quote[0]

	bars := make([]entity.HistoricalBar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		b := entity.HistoricalBar{
			Symbol:   symbol,
			Date:     time.Unix(ts, 0).UTC(),
			Period:   period,
			Interval: interval,
			Open:     at(ind.Open, i),
			High:     at(ind.High, i),
			Low:      at(ind.Low, i),
			Close:    at(ind.Close, i),
		}
		if v := at(ind.Volume, i); v != nil {
			vol := int64(*v)
			b.Volume = &vol
		}
		bars = append(bars, b)
	}
	return bars, nil
}

// chart はチャートAPIを呼び出し、chart.result[0]を返します。
func (e *ChartEndpoint) chart(ctx context.Context, symbol, period, interval string) (*dto.ChartResult, error) {
	q := url.Values{}
	q.Set("range", period)
	q.Set("interval", interval)
	q.Set("includePrePost", "false")

	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", e.baseURL, url.PathEscape(e.cfg.upstreamSymbol(symbol)), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, usecase.ErrEndpointUnreachable.Wrap(err)
	}
	req.Header.Set("User-Agent", e.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	res, err := e.client.Do(req)
	if err != nil {
		return nil, usecase.ErrEndpointUnreachable.Wrap(err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil, usecase.ErrEndpointUnreachable.Withf("%s http %d", e.name, res.StatusCode)
	}

	var body dto.ChartResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, usecase.ErrEndpointParse.Wrap(err)
	}
	if body.Chart.Error != nil {
		return nil, usecase.ErrEndpointParse.Withf("%s: %s - %s", e.name, body.Chart.Error.Code, body.Chart.Error.Description)
	}
	if len(body.Chart.Result) == 0 {
		return nil, usecase.ErrEndpointParse.Withf("%s: no result for %s", e.name, symbol)
	}
	return &body.Chart.Result[0], nil
}

func at(xs []*float64, i int) *float64 {
	if i >= len(xs) || xs[i] == nil {
		return nil
	}
	v := *xs[i]
	return &v
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func firstNonEmpty(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}
	return ""
}
