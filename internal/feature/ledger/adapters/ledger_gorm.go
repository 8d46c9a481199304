// Package adapters はledgerフィーチャーのGORM実装を提供します。
package adapters

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"papertrade/internal/feature/ledger/domain/entity"
	"papertrade/internal/feature/ledger/usecase"
)

// ledgerGorm is the GORM-backed LedgerStore.
type ledgerGorm struct {
	db *gorm.DB
}

var _ usecase.LedgerStore = (*ledgerGorm)(nil)

// NewLedgerStore creates a LedgerStore on db.
func NewLedgerStore(db *gorm.DB) *ledgerGorm {
	return &ledgerGorm{db: db}
}

// Models returns the tables owned by the ledger feature for migration.
func Models() []any {
	return []any{
		&entity.Wallet{},
		&entity.Holding{},
		&entity.StockTransaction{},
		&entity.WalletTransaction{},
	}
}

// WithTransaction runs fn inside one database transaction. fn returning an
// error (or panicking) rolls everything back.
func (l *ledgerGorm) WithTransaction(ctx context.Context, fn func(tx usecase.LedgerTx) error) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ledgerTx{db: tx})
	})
}

// ledgerTx implements LedgerTx on an open gorm transaction.
type ledgerTx struct {
	db *gorm.DB
}

var _ usecase.LedgerTx = (*ledgerTx)(nil)

// forUpdate adds SELECT ... FOR UPDATE. SQLite ignores the clause.
func (t *ledgerTx) forUpdate(ctx context.Context) *gorm.DB {
	return t.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
}

func (t *ledgerTx) GetOrCreateWallet(ctx context.Context, userID uint) (*entity.Wallet, error) {
	seed := entity.Wallet{UserID: userID}
	if err := t.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return nil, fmt.Errorf("create wallet: %w", err)
	}
	var w entity.Wallet
	if err := t.forUpdate(ctx).Where("user_id = ?", userID).First(&w).Error; err != nil {
		return nil, fmt.Errorf("load wallet: %w", err)
	}
	return &w, nil
}

func (t *ledgerTx) AdjustBalance(ctx context.Context, change entity.BalanceChange) (decimal.Decimal, error) {
	if !change.Type.Valid() {
		return decimal.Zero, fmt.Errorf("unknown transaction type %q", change.Type)
	}
	if !change.Amount.IsPositive() {
		return decimal.Zero, usecase.ErrInvalidAmount.With("amount", change.Amount.String())
	}

	w, err := t.GetOrCreateWallet(ctx, change.UserID)
	if err != nil {
		return decimal.Zero, err
	}

	next := w.Balance.Sub(change.Amount)
	if change.Type.Credits() {
		next = w.Balance.Add(change.Amount)
	}
	if next.IsNegative() {
		return decimal.Zero, usecase.ErrInsufficientBalance.With(
			"required", change.Amount.String(),
			"available", w.Balance.String(),
		)
	}

	if err := t.db.WithContext(ctx).Model(&entity.Wallet{}).
		Where("user_id = ?", change.UserID).
		Update("balance", next).Error; err != nil {
		return decimal.Zero, fmt.Errorf("update balance: %w", err)
	}

	row := entity.WalletTransaction{
		UserID:       change.UserID,
		Type:         change.Type,
		Amount:       change.Amount,
		BalanceAfter: next,
		Description:  change.Description,
		ReferenceID:  change.ReferenceID,
	}
	if err := t.db.WithContext(ctx).Create(&row).Error; err != nil {
		return decimal.Zero, fmt.Errorf("append wallet transaction: %w", err)
	}
	return next, nil
}

func (t *ledgerTx) RecordBuy(ctx context.Context, order entity.Order) (*entity.StockTransaction, error) {
	if order.Quantity <= 0 {
		return nil, usecase.ErrInvalidQuantity
	}
	st, err := t.appendOrder(ctx, order, entity.SideBuy)
	if err != nil {
		return nil, err
	}

	h, err := t.lockHolding(ctx, order.UserID, order.Symbol)
	if err != nil {
		return nil, err
	}
	if h == nil {
		h = &entity.Holding{
			UserID:         order.UserID,
			Symbol:         order.Symbol,
			CompanyName:    order.CompanyName,
			Quantity:       order.Quantity,
			AveragePrice:   order.Price,
			InvestedAmount: order.Total(),
		}
	} else {
		h.Quantity += order.Quantity
		h.InvestedAmount = h.InvestedAmount.Add(order.Total())
		// 加重平均取得単価
		h.AveragePrice = h.InvestedAmount.DivRound(decimal.NewFromInt(h.Quantity), 4)
		if order.CompanyName != "" && order.CompanyName != order.Symbol {
			h.CompanyName = order.CompanyName
		}
	}
	h.Revalue(order.Price)

	if err := t.db.WithContext(ctx).Save(h).Error; err != nil {
		return nil, fmt.Errorf("save holding: %w", err)
	}
	return st, nil
}

func (t *ledgerTx) RecordSell(ctx context.Context, order entity.Order) (*entity.StockTransaction, error) {
	if order.Quantity <= 0 {
		return nil, usecase.ErrInvalidQuantity
	}
	h, err := t.lockHolding(ctx, order.UserID, order.Symbol)
	if err != nil {
		return nil, err
	}
	var held int64
	if h != nil {
		held = h.Quantity
	}
	if held < order.Quantity {
		return nil, usecase.ErrInsufficientShares.With(
			"symbol", order.Symbol,
			"required", order.Quantity,
			"available", held,
		)
	}
	if order.CompanyName == "" {
		order.CompanyName = h.CompanyName
	}

	st, err := t.appendOrder(ctx, order, entity.SideSell)
	if err != nil {
		return nil, err
	}

	if held == order.Quantity {
		if err := t.db.WithContext(ctx).Delete(h).Error; err != nil {
			return nil, fmt.Errorf("delete holding: %w", err)
		}
		return st, nil
	}

	remaining := held - order.Quantity
	// 残数量に比例して取得原価を減らす。平均単価は変わらない
	h.InvestedAmount = h.InvestedAmount.Mul(decimal.NewFromInt(remaining)).DivRound(decimal.NewFromInt(held), 4)
	h.Quantity = remaining
	h.Revalue(order.Price)

	if err := t.db.WithContext(ctx).Save(h).Error; err != nil {
		return nil, fmt.Errorf("save holding: %w", err)
	}
	return st, nil
}

func (t *ledgerTx) RefreshCurrentPrices(ctx context.Context, userID uint, prices map[string]decimal.Decimal) error {
	if len(prices) == 0 {
		return nil
	}
	var holdings []entity.Holding
	if err := t.forUpdate(ctx).Where("user_id = ?", userID).Find(&holdings).Error; err != nil {
		return fmt.Errorf("load holdings: %w", err)
	}
	for i := range holdings {
		price, ok := prices[holdings[i].Symbol]
		if !ok {
			continue
		}
		holdings[i].Revalue(price)
		if err := t.db.WithContext(ctx).Save(&holdings[i]).Error; err != nil {
			return fmt.Errorf("revalue %s: %w", holdings[i].Symbol, err)
		}
	}
	return nil
}

func (t *ledgerTx) RecomputeWalletTotals(ctx context.Context, userID uint) (*entity.Wallet, error) {
	w, err := t.GetOrCreateWallet(ctx, userID)
	if err != nil {
		return nil, err
	}
	holdings, err := t.ListHoldings(ctx, userID)
	if err != nil {
		return nil, err
	}
	w.ApplyTotals(holdings)

	if err := t.db.WithContext(ctx).Model(&entity.Wallet{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"total_invested":      w.TotalInvested,
			"total_current_value": w.TotalCurrentValue,
			"total_profit_loss":   w.TotalProfitLoss,
		}).Error; err != nil {
		return nil, fmt.Errorf("update wallet totals: %w", err)
	}
	return w, nil
}

func (t *ledgerTx) GetHolding(ctx context.Context, userID uint, symbol string) (*entity.Holding, error) {
	var h entity.Holding
	err := t.db.WithContext(ctx).Where("user_id = ? AND symbol = ?", userID, symbol).First(&h).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load holding: %w", err)
	}
	return &h, nil
}

func (t *ledgerTx) ListHoldings(ctx context.Context, userID uint) ([]entity.Holding, error) {
	var holdings []entity.Holding
	if err := t.db.WithContext(ctx).Where("user_id = ?", userID).Order("symbol ASC").Find(&holdings).Error; err != nil {
		return nil, fmt.Errorf("list holdings: %w", err)
	}
	return holdings, nil
}

// ListStockTransactions returns the newest limit rows first. limit <= 0 means all.
func (t *ledgerTx) ListStockTransactions(ctx context.Context, userID uint, limit int) ([]entity.StockTransaction, error) {
	var rows []entity.StockTransaction
	q := t.db.WithContext(ctx).Where("user_id = ?", userID).Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list stock transactions: %w", err)
	}
	return rows, nil
}

// ListWalletTransactions returns the newest limit rows first. limit <= 0 means all.
func (t *ledgerTx) ListWalletTransactions(ctx context.Context, userID uint, limit int) ([]entity.WalletTransaction, error) {
	var rows []entity.WalletTransaction
	q := t.db.WithContext(ctx).Where("user_id = ?", userID).Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list wallet transactions: %w", err)
	}
	return rows, nil
}

func (t *ledgerTx) appendOrder(ctx context.Context, order entity.Order, side entity.Side) (*entity.StockTransaction, error) {
	st := &entity.StockTransaction{
		OrderID:     order.OrderID,
		UserID:      order.UserID,
		Symbol:      order.Symbol,
		CompanyName: order.CompanyName,
		Side:        side,
		Quantity:    order.Quantity,
		Price:       order.Price,
		TotalAmount: order.Total(),
	}
	if err := t.db.WithContext(ctx).Create(st).Error; err != nil {
		return nil, fmt.Errorf("append stock transaction: %w", err)
	}
	return st, nil
}

func (t *ledgerTx) lockHolding(ctx context.Context, userID uint, symbol string) (*entity.Holding, error) {
	var h entity.Holding
	err := t.forUpdate(ctx).Where("user_id = ? AND symbol = ?", userID, symbol).First(&h).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load holding: %w", err)
	}
	return &h, nil
}
