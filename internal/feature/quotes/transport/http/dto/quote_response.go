// Package dto defines the HTTP response bodies of the quotes feature.
package dto

// QuoteResponse は相場のレスポンスDTOです。
type QuoteResponse struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	CurrentPrice  float64 `json:"currentPrice"`
	PreviousClose float64 `json:"previousClose"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	DayHigh       float64 `json:"dayHigh"`
	DayLow        float64 `json:"dayLow"`
	Volume        int64   `json:"volume"`
	Currency      string  `json:"currency"`
	Exchange      string  `json:"exchange"`
	FetchedAt     string  `json:"fetchedAt"` // RFC3339
	Source        string  `json:"source"`    // エンドポイント名または "cache"
	Cached        bool    `json:"cached"`
}

// BarResponse は時系列データ1本分のレスポンスDTOです。値がない場合はnullになります。
type BarResponse struct {
	Date   string   `json:"date"`
	Open   *float64 `json:"open"`
	High   *float64 `json:"high"`
	Low    *float64 `json:"low"`
	Close  *float64 `json:"close"`
	Volume *int64   `json:"volume"`
}

// HistoricalResponse は時系列データのレスポンスDTOです。
type HistoricalResponse struct {
	Symbol           string        `json:"symbol"`
	Period           string        `json:"period"`
	Interval         string        `json:"interval"`
	Bars             []BarResponse `json:"bars"`
	FiftyTwoWeekHigh *float64      `json:"fiftyTwoWeekHigh,omitempty"`
	FiftyTwoWeekLow  *float64      `json:"fiftyTwoWeekLow,omitempty"`
}

// CompareEntry は比較結果の1銘柄分です。QuoteとErrorのどちらか一方が設定されます。
type CompareEntry struct {
	Symbol string         `json:"symbol"`
	Quote  *QuoteResponse `json:"quote,omitempty"`
	Error  string         `json:"error,omitempty"`
	Code   string         `json:"code,omitempty"`
}
