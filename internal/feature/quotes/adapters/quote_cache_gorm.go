package adapters

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"papertrade/internal/feature/quotes/domain/entity"
	"papertrade/internal/feature/quotes/usecase"
)

const (
	quoteTTL      = 5 * time.Minute
	historicalTTL = time.Hour
	batchSize     = 500
)

// quoteCacheGorm はQuoteCacheStoreインターフェースのGORM実装です。
type quoteCacheGorm struct {
	db  *gorm.DB
	now func() time.Time
}

// quoteCacheGormがQuoteCacheStoreを実装していることをコンパイル時に検証します。
var _ usecase.QuoteCacheStore = (*quoteCacheGorm)(nil)

// NewQuoteCacheStore は指定されたDB接続でquoteCacheGormの新しいインスタンスを生成します。
func NewQuoteCacheStore(db *gorm.DB) *quoteCacheGorm {
	return &quoteCacheGorm{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// GetQuote は銘柄の最新の相場を返します。maxAgeより古い場合はusecase.ErrCacheMissを返します。
func (r *quoteCacheGorm) GetQuote(ctx context.Context, symbol string, maxAge time.Duration) (*entity.Quote, error) {
	var m QuoteModel
	if err := r.db.WithContext(ctx).Where("symbol = ?", symbol).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrCacheMiss
		}
		return nil, err
	}
	if maxAge > 0 && r.now().Sub(m.FetchedAt) > maxAge {
		return nil, usecase.ErrCacheMiss
	}

	// ヒット数の更新はベストエフォート
	if err := r.db.WithContext(ctx).
		Model(&CacheMetadataModel{}).
		Where("cache_key = ?", entity.QuoteCacheKey(symbol)).
		UpdateColumn("hit_count", gorm.Expr("hit_count + ?", 1)).Error; err != nil {
		slog.Debug("failed to bump cache hit count", "symbol", symbol, "error", err)
	}

	return m.toEntity(), nil
}

// PutQuote は相場を上書きし、キャッシュのメタデータを5分のTTLで更新します。
func (r *quoteCacheGorm) PutQuote(ctx context.Context, q *entity.Quote) error {
	m := quoteToModel(q)
	now := r.now()
	if m.FetchedAt.IsZero() {
		m.FetchedAt = now
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "symbol"}},
			UpdateAll: true,
		}).Create(&m).Error; err != nil {
			return err
		}
		return upsertMetadata(tx, entity.QuoteCacheKey(q.Symbol), now.Add(quoteTTL))
	})
}

// GetHistoricalBars は直近の書き込みで保存された時系列データを日付昇順で返します。
// 直近の書き込みがmaxAgeより古い場合は空のスライスを返します。
func (r *quoteCacheGorm) GetHistoricalBars(ctx context.Context, symbol, period string, maxAge time.Duration) ([]entity.HistoricalBar, error) {
	var latest HistoricalBarModel
	if err := r.db.WithContext(ctx).
		Where("symbol = ? AND period = ?", symbol, period).
		Order("fetched_at DESC").
		First(&latest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []entity.HistoricalBar{}, nil
		}
		return nil, err
	}
	if maxAge > 0 && r.now().Sub(latest.FetchedAt) > maxAge {
		return []entity.HistoricalBar{}, nil
	}

	var rows []HistoricalBarModel
	if err := r.db.WithContext(ctx).
		Where("symbol = ? AND period = ? AND bar_interval = ? AND fetched_at >= ?",
			symbol, period, latest.Interval, latest.FetchedAt).
		Order("date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.HistoricalBar, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toEntity())
	}
	return out, nil
}

// PutHistoricalBars は(symbol, date, period, interval)を一意キーとしてupsertし、
// キャッシュのメタデータを1時間のTTLで更新します。
func (r *quoteCacheGorm) PutHistoricalBars(ctx context.Context, symbol, period, interval string, bars []entity.HistoricalBar) error {
	if len(bars) == 0 {
		return nil
	}
	now := r.now()
	ms := make([]HistoricalBarModel, 0, len(bars))
	for _, b := range bars {
		b.Symbol, b.Period, b.Interval = symbol, period, interval
		ms = append(ms, barToModel(b, now))
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "symbol"}, {Name: "date"}, {Name: "period"}, {Name: "bar_interval"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"open", "high", "low", "close", "volume", "fetched_at",
			}),
		}).CreateInBatches(&ms, batchSize).Error; err != nil {
			return err
		}
		// 窓から外れた古い行は残さない
		if err := tx.Where("symbol = ? AND period = ? AND bar_interval = ? AND fetched_at < ?",
			symbol, period, interval, now).
			Delete(&HistoricalBarModel{}).Error; err != nil {
			return err
		}
		return upsertMetadata(tx, entity.HistoricalCacheKey(symbol, period), now.Add(historicalTTL))
	})
}

// SweepExpired は期限切れのメタデータを削除し、削除件数を返します。データ行は削除しません。
func (r *quoteCacheGorm) SweepExpired(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", r.now()).
		Delete(&CacheMetadataModel{})
	return result.RowsAffected, result.Error
}

// GetMetadata returns the metadata row of key.
func (r *quoteCacheGorm) GetMetadata(ctx context.Context, key string) (*entity.CacheMetadata, error) {
	var m CacheMetadataModel
	if err := r.db.WithContext(ctx).Where("cache_key = ?", key).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrCacheMiss
		}
		return nil, err
	}
	e := m.toEntity()
	return &e, nil
}

func upsertMetadata(tx *gorm.DB, key string, expiresAt time.Time) error {
	m := CacheMetadataModel{CacheKey: key, ExpiresAt: expiresAt}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cache_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"expires_at", "updated_at"}),
	}).Create(&m).Error
}
