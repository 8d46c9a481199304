package entity

import "time"

// HistoricalBar is one OHLCV bar. Price fields are nil when the upstream
// reported null for that index.
type HistoricalBar struct {
	Symbol   string
	Date     time.Time
	Period   string // '1d', '5d', '1mo', '3mo', '1y'
	Interval string // '1m', '5m', '1d', '1wk'
	Open     *float64
	High     *float64
	Low      *float64
	Close    *float64
	Volume   *int64
}

// Window は名前付きの取得期間です。
type Window string

const (
	WindowIntraday  Window = "intraday"
	WindowWeekly    Window = "weekly"
	WindowMonthly   Window = "monthly"
	WindowQuarterly Window = "quarterly"
	WindowYearly    Window = "yearly"
)

// windowRanges maps a named window to its (period, interval) pair.
var windowRanges = map[Window][2]string{
	WindowIntraday:  {"1d", "1m"},
	WindowWeekly:    {"5d", "5m"},
	WindowMonthly:   {"1mo", "1d"},
	WindowQuarterly: {"3mo", "1d"},
	WindowYearly:    {"1y", "1wk"},
}

// Range returns the period and interval of w. ok is false for unknown windows.
func (w Window) Range() (period, interval string, ok bool) {
	r, ok := windowRanges[w]
	if !ok {
		return "", "", false
	}
	return r[0], r[1], true
}

// ValidPeriods and ValidIntervals list the tags accepted for historical fetches.
var (
	ValidPeriods   = map[string]bool{"1d": true, "5d": true, "1mo": true, "3mo": true, "1y": true}
	ValidIntervals = map[string]bool{"1m": true, "5m": true, "1d": true, "1wk": true}
)

// HistoricalSeries is the result of a window fetch.
type HistoricalSeries struct {
	Symbol   string
	Period   string
	Interval string
	Bars     []HistoricalBar

	// Only set for the yearly window. nil when no bar carried a value.
	FiftyTwoWeekHigh *float64
	FiftyTwoWeekLow  *float64
}

// HighLow returns the max of non-null highs and the min of non-null lows.
func HighLow(bars []HistoricalBar) (high, low *float64) {
	for _, b := range bars {
		if b.High != nil && (high == nil || *b.High > *high) {
			v := *b.High
			high = &v
		}
		if b.Low != nil && (low == nil || *b.Low < *low) {
			v := *b.Low
			low = &v
		}
	}
	return high, low
}
