package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"papertrade/internal/feature/ledger/domain/entity"
)

// LedgerStore owns the single atomic primitive every ledger mutation runs in.
// fn's LedgerTx is only valid inside fn; returning an error rolls back every
// row fn touched.
type LedgerStore interface {
	WithTransaction(ctx context.Context, fn func(tx LedgerTx) error) error
}

// LedgerTx is the set of ledger operations available inside a transaction.
type LedgerTx interface {
	// GetOrCreateWallet returns the user's wallet, creating a zero wallet if none exists.
	GetOrCreateWallet(ctx context.Context, userID uint) (*entity.Wallet, error)

	// AdjustBalance applies change and appends one WalletTransaction.
	// A debit that would make the balance negative fails with ErrInsufficientBalance
	// and leaves the wallet untouched.
	AdjustBalance(ctx context.Context, change entity.BalanceChange) (decimal.Decimal, error)

	// RecordBuy appends a BUY StockTransaction and creates or grows the holding
	// with a volume-weighted average price.
	RecordBuy(ctx context.Context, order entity.Order) (*entity.StockTransaction, error)

	// RecordSell appends a SELL StockTransaction and shrinks the holding,
	// deleting it when fully sold. Fails with ErrInsufficientShares.
	RecordSell(ctx context.Context, order entity.Order) (*entity.StockTransaction, error)

	// RefreshCurrentPrices revalues every holding whose symbol is in prices.
	RefreshCurrentPrices(ctx context.Context, userID uint, prices map[string]decimal.Decimal) error

	// RecomputeWalletTotals rebuilds the wallet aggregates from all holdings.
	RecomputeWalletTotals(ctx context.Context, userID uint) (*entity.Wallet, error)

	// GetHolding returns the holding for symbol, or nil if the user holds none.
	GetHolding(ctx context.Context, userID uint, symbol string) (*entity.Holding, error)
	ListHoldings(ctx context.Context, userID uint) ([]entity.Holding, error)
	ListStockTransactions(ctx context.Context, userID uint, limit int) ([]entity.StockTransaction, error)
	ListWalletTransactions(ctx context.Context, userID uint, limit int) ([]entity.WalletTransaction, error)
}
