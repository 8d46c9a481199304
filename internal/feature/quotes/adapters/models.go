// Package adapters はquotesフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"time"

	"papertrade/internal/feature/quotes/domain/entity"
)

// QuoteModel is the GORM model for the quotes table. One row per symbol.
type QuoteModel struct {
	Symbol        string    `gorm:"primaryKey;size:32"`
	Name          string    `gorm:"size:255"`
	CurrentPrice  float64   `gorm:"not null"`
	PreviousClose float64   `gorm:"not null;default:0"`
	DayHigh       float64   `gorm:"not null;default:0"`
	DayLow        float64   `gorm:"not null;default:0"`
	Volume        int64     `gorm:"not null;default:0"`
	Currency      string    `gorm:"size:8;not null"`
	Exchange      string    `gorm:"size:32;not null"`
	FetchedAt     time.Time `gorm:"index;not null"`
}

func (QuoteModel) TableName() string {
	return "quotes"
}

func quoteToModel(q *entity.Quote) QuoteModel {
	return QuoteModel{
		Symbol:        q.Symbol,
		Name:          q.Name,
		CurrentPrice:  q.CurrentPrice,
		PreviousClose: q.PreviousClose,
		DayHigh:       q.DayHigh,
		DayLow:        q.DayLow,
		Volume:        q.Volume,
		Currency:      q.Currency,
		Exchange:      q.Exchange,
		FetchedAt:     q.FetchedAt.UTC(),
	}
}

func (m *QuoteModel) toEntity() *entity.Quote {
	return &entity.Quote{
		Symbol:        m.Symbol,
		Name:          m.Name,
		CurrentPrice:  m.CurrentPrice,
		PreviousClose: m.PreviousClose,
		DayHigh:       m.DayHigh,
		DayLow:        m.DayLow,
		Volume:        m.Volume,
		Currency:      m.Currency,
		Exchange:      m.Exchange,
		FetchedAt:     m.FetchedAt,
	}
}

// HistoricalBarModel is the GORM model for the historical_bars table.
// (symbol, date, period, bar_interval) is unique.
type HistoricalBarModel struct {
	ID        uint      `gorm:"primaryKey"`
	Symbol    string    `gorm:"size:32;not null;uniqueIndex:bar_sym_date_period_int,priority:1;index:bar_sym_period,priority:1"`
	Date      time.Time `gorm:"not null;uniqueIndex:bar_sym_date_period_int,priority:2"`
	Period    string    `gorm:"size:8;not null;uniqueIndex:bar_sym_date_period_int,priority:3;index:bar_sym_period,priority:2"`
	Interval  string    `gorm:"column:bar_interval;size:8;not null;uniqueIndex:bar_sym_date_period_int,priority:4"`
	Open      *float64
	High      *float64
	Low       *float64
	Close     *float64
	Volume    *int64
	FetchedAt time.Time `gorm:"not null;index"`
}

func (HistoricalBarModel) TableName() string {
	return "historical_bars"
}

func barToModel(b entity.HistoricalBar, fetchedAt time.Time) HistoricalBarModel {
	return HistoricalBarModel{
		Symbol:    b.Symbol,
		Date:      b.Date.UTC(),
		Period:    b.Period,
		Interval:  b.Interval,
		Open:      b.Open,
		High:      b.High,
		Low:       b.Low,
		Close:     b.Close,
		Volume:    b.Volume,
		FetchedAt: fetchedAt,
	}
}

func (m *HistoricalBarModel) toEntity() entity.HistoricalBar {
	return entity.HistoricalBar{
		Symbol:   m.Symbol,
		Date:     m.Date,
		Period:   m.Period,
		Interval: m.Interval,
		Open:     m.Open,
		High:     m.High,
		Low:      m.Low,
		Close:    m.Close,
		Volume:   m.Volume,
	}
}

// CacheMetadataModel is the GORM model for the cache_metadata table.
type CacheMetadataModel struct {
	CacheKey  string    `gorm:"primaryKey;size:128"`
	ExpiresAt time.Time `gorm:"index;not null"`
	HitCount  int64     `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CacheMetadataModel) TableName() string {
	return "cache_metadata"
}

func (m *CacheMetadataModel) toEntity() entity.CacheMetadata {
	return entity.CacheMetadata{CacheKey: m.CacheKey, ExpiresAt: m.ExpiresAt, HitCount: m.HitCount}
}

// Models lists every model owned by this package, for migrations.
func Models() []any {
	return []any{&QuoteModel{}, &HistoricalBarModel{}, &CacheMetadataModel{}}
}
