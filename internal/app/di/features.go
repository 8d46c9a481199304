package di

import (
	"time"

	"gorm.io/gorm"

	authadapters "papertrade/internal/feature/auth/adapters"
	authusecase "papertrade/internal/feature/auth/usecase"
	ledgeradapters "papertrade/internal/feature/ledger/adapters"
	ledgerusecase "papertrade/internal/feature/ledger/usecase"
	quoteadapters "papertrade/internal/feature/quotes/adapters"
	"papertrade/internal/feature/quotes/adapters/yahoo"
	quoteusecase "papertrade/internal/feature/quotes/usecase"
	searchadapters "papertrade/internal/feature/search/adapters"
	"papertrade/internal/feature/search/adapters/yahoosearch"
	searchusecase "papertrade/internal/feature/search/usecase"
	jwtmw "papertrade/internal/platform/jwt"
)

// NewAuth wires the user repository and token generator into an AuthUsecase.
func NewAuth(db *gorm.DB, secret string, expiration time.Duration) *authusecase.AuthUsecase {
	return authusecase.NewAuthUsecase(
		authadapters.NewUserRepository(db),
		jwtmw.NewGenerator(secret, expiration),
	)
}

// NewSearch wires the local index, the durable search cache and the two online
// search hosts (query1, then query2).
func NewSearch(db *gorm.DB, ycfg yahoo.Config, market *quoteusecase.MarketDataUsecase) *searchusecase.SearchUsecase {
	searchers := []searchusecase.OnlineSearcher{
		yahoosearch.NewClient("query1", ycfg.PrimaryURL, ycfg.MarketSuffix, ycfg.UserAgent, ycfg.Timeout),
		yahoosearch.NewClient("query2", ycfg.SecondaryURL, ycfg.MarketSuffix, ycfg.UserAgent, ycfg.Timeout),
	}
	return searchusecase.NewSearchUsecase(
		searchadapters.NewSymbolRepository(db),
		searchadapters.NewSearchCacheRepository(db),
		searchers,
		market,
	)
}

// NewTrading wires the ledger store and market data into a TradingUsecase.
func NewTrading(db *gorm.DB, market *quoteusecase.MarketDataUsecase) *ledgerusecase.TradingUsecase {
	return ledgerusecase.NewTradingUsecase(ledgeradapters.NewLedgerStore(db), market)
}

// Models returns every persisted model for AutoMigrate.
func Models() []any {
	var models []any
	models = append(models, authadapters.Models()...)
	models = append(models, quoteadapters.Models()...)
	models = append(models, searchadapters.Models()...)
	models = append(models, ledgeradapters.Models()...)
	return models
}
