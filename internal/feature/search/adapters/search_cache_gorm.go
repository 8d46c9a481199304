package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"papertrade/internal/feature/search/domain/entity"
	"papertrade/internal/feature/search/usecase"
)

// SearchCacheModel はsearch_cacheテーブルの行です。resultsはJSONで保存します。
type SearchCacheModel struct {
	Query       string    `gorm:"primaryKey;size:255"`
	Results     string    `gorm:"type:text;not null"`
	ResultCount int       `gorm:"not null;default:0"`
	Source      string    `gorm:"size:50;not null"`
	ExpiresAt   time.Time `gorm:"not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName はテーブル名を返します。
func (SearchCacheModel) TableName() string { return "search_cache" }

// Models はマイグレーション対象のモデルを返します。
func Models() []any {
	return []any{&entity.Symbol{}, &SearchCacheModel{}}
}

// searchCacheGorm はSearchCacheRepositoryインターフェースのGORM実装です。
type searchCacheGorm struct {
	db  *gorm.DB
	now func() time.Time
}

var _ usecase.SearchCacheRepository = (*searchCacheGorm)(nil)

// NewSearchCacheRepository は検索キャッシュのリポジトリを生成します。
func NewSearchCacheRepository(db *gorm.DB) *searchCacheGorm {
	return &searchCacheGorm{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Get は期限内のエントリを返します。存在しないか期限切れの場合はErrCacheMissを返します。
func (r *searchCacheGorm) Get(ctx context.Context, query string) (*entity.SearchCacheEntry, error) {
	var m SearchCacheModel
	err := r.db.WithContext(ctx).
		Where("query = ? AND expires_at > ?", query, r.now()).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, usecase.ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}

	var results []entity.SearchResult
	if err := json.Unmarshal([]byte(m.Results), &results); err != nil {
		return nil, fmt.Errorf("decode search cache %q: %w", query, err)
	}
	return &entity.SearchCacheEntry{
		Query:       m.Query,
		Results:     results,
		ResultCount: m.ResultCount,
		Source:      m.Source,
		ExpiresAt:   m.ExpiresAt,
	}, nil
}

// Put はクエリ単位でエントリを上書きします。
func (r *searchCacheGorm) Put(ctx context.Context, e *entity.SearchCacheEntry) error {
	b, err := json.Marshal(e.Results)
	if err != nil {
		return fmt.Errorf("encode search cache %q: %w", e.Query, err)
	}
	m := SearchCacheModel{
		Query:       e.Query,
		Results:     string(b),
		ResultCount: e.ResultCount,
		Source:      e.Source,
		ExpiresAt:   e.ExpiresAt.UTC(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "query"}},
			DoUpdates: clause.AssignmentColumns([]string{"results", "result_count", "source", "expires_at", "updated_at"}),
		}).
		Create(&m).Error
}
