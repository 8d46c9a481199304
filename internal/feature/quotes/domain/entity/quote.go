// Package entity defines the domain models for the quotes feature.
package entity

import "time"

const (
	// DefaultCurrency is used when an upstream payload omits the currency.
	DefaultCurrency = "INR"
	// DefaultExchange is used when an upstream payload omits the exchange name.
	DefaultExchange = "NSI"

	// SourceCache tags a quote served from the local cache.
	SourceCache = "cache"
	// SourceStaleCache tags a quote served from an expired cache row because every endpoint failed.
	SourceStaleCache = "stale-cache"
)

// Quote is the last-known price snapshot of a symbol.
type Quote struct {
	Symbol        string    // Exchange ticker without market suffix (e.g., "RELIANCE")
	Name          string    // Company name when the upstream reports one
	CurrentPrice  float64   // Regular market price
	PreviousClose float64   // Previous session close
	DayHigh       float64   // Session high
	DayLow        float64   // Session low
	Volume        int64     // Session volume
	Currency      string    // ISO currency code
	Exchange      string    // Exchange name as reported upstream
	FetchedAt     time.Time // When the quote was obtained from upstream

	Source string // Endpoint name that produced the quote, or SourceCache
	Cached bool   // True when served from the cache
}

// Change returns the absolute change from the previous close.
func (q *Quote) Change() float64 {
	return q.CurrentPrice - q.PreviousClose
}

// ChangePercent returns the change from the previous close in percent.
// It returns 0 when the previous close is unknown.
func (q *Quote) ChangePercent() float64 {
	if q.PreviousClose == 0 {
		return 0
	}
	return q.Change() / q.PreviousClose * 100
}

// ApplyDefaults fills currency and exchange when the upstream left them empty.
func (q *Quote) ApplyDefaults() {
	if q.Currency == "" {
		q.Currency = DefaultCurrency
	}
	if q.Exchange == "" {
		q.Exchange = DefaultExchange
	}
	if q.Name == "" {
		q.Name = q.Symbol
	}
}
