package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"papertrade/internal/feature/ledger/domain/entity"
	quoteentity "papertrade/internal/feature/quotes/domain/entity"
	"papertrade/internal/platform/metrics"
	"papertrade/internal/shared/apperror"
)

const (
	// DefaultHistoryLimit is used when ListTransactions gets a non-positive limit.
	DefaultHistoryLimit = 50
	// MaxHistoryLimit caps ListTransactions.
	MaxHistoryLimit = 500
)

// QuoteFetcher is the subset of the market data usecase the engine needs.
type QuoteFetcher interface {
	FetchQuote(ctx context.Context, symbol string, useCache bool) (*quoteentity.Quote, error)
}

// TradingUsecase executes orders and cash movements against the ledger.
// Mutations for one user never interleave: they hold a per-user lock and run
// inside a single ledger transaction.
type TradingUsecase struct {
	store      LedgerStore
	quotes     QuoteFetcher
	locks      *userLocks
	newOrderID func() string
}

// NewTradingUsecase creates a TradingUsecase.
func NewTradingUsecase(store LedgerStore, quotes QuoteFetcher) *TradingUsecase {
	return &TradingUsecase{
		store:      store,
		quotes:     quotes,
		locks:      newUserLocks(),
		newOrderID: uuid.NewString,
	}
}

// Buy debits quantity × price from the wallet and adds the shares to the holding.
// Without a caller price the current market price is used.
func (u *TradingUsecase) Buy(ctx context.Context, userID uint, req entity.TradeRequest) (*entity.TradeResult, error) {
	res, err := u.execute(ctx, userID, entity.SideBuy, req)
	recordTrade(entity.SideBuy, err)
	return res, err
}

// Sell removes the shares from the holding and credits the proceeds.
func (u *TradingUsecase) Sell(ctx context.Context, userID uint, req entity.TradeRequest) (*entity.TradeResult, error) {
	res, err := u.execute(ctx, userID, entity.SideSell, req)
	recordTrade(entity.SideSell, err)
	return res, err
}

// Deposit credits amount to the wallet.
func (u *TradingUsecase) Deposit(ctx context.Context, userID uint, amount decimal.Decimal) (*entity.Wallet, error) {
	return u.moveCash(ctx, userID, entity.TxnDeposit, amount)
}

// Withdraw debits amount from the wallet. It never overdraws.
func (u *TradingUsecase) Withdraw(ctx context.Context, userID uint, amount decimal.Decimal) (*entity.Wallet, error) {
	return u.moveCash(ctx, userID, entity.TxnWithdrawal, amount)
}

// GetWallet returns the wallet, creating an empty one on first access.
func (u *TradingUsecase) GetWallet(ctx context.Context, userID uint) (*entity.Wallet, error) {
	unlock := u.locks.lock(userID)
	defer unlock()

	var w *entity.Wallet
	err := u.store.WithTransaction(ctx, func(tx LedgerTx) error {
		var err error
		w, err = tx.GetOrCreateWallet(ctx, userID)
		return err
	})
	if err != nil {
		return nil, classify(err)
	}
	return w, nil
}

// GetPortfolio revalues every holding at the current market price and returns
// the wallet with its holdings. Symbols whose price cannot be fetched keep
// their last known price.
func (u *TradingUsecase) GetPortfolio(ctx context.Context, userID uint) (*entity.Portfolio, error) {
	var held []entity.Holding
	err := u.store.WithTransaction(ctx, func(tx LedgerTx) error {
		var err error
		held, err = tx.ListHoldings(ctx, userID)
		return err
	})
	if err != nil {
		return nil, classify(err)
	}

	// 価格取得はロック外で行う
	prices := make(map[string]decimal.Decimal, len(held))
	for _, h := range held {
		q, err := u.quotes.FetchQuote(ctx, h.Symbol, true)
		if err != nil {
			slog.Warn("portfolio price refresh skipped", "symbol", h.Symbol, "error", err)
			continue
		}
		if q.CurrentPrice <= 0 {
			continue
		}
		prices[h.Symbol] = decimal.NewFromFloat(q.CurrentPrice).Round(4)
	}

	unlock := u.locks.lock(userID)
	defer unlock()

	var p entity.Portfolio
	err = u.store.WithTransaction(ctx, func(tx LedgerTx) error {
		if err := tx.RefreshCurrentPrices(ctx, userID, prices); err != nil {
			return err
		}
		w, err := tx.RecomputeWalletTotals(ctx, userID)
		if err != nil {
			return err
		}
		holdings, err := tx.ListHoldings(ctx, userID)
		if err != nil {
			return err
		}
		p = entity.Portfolio{Wallet: *w, Holdings: holdings}
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}
	return &p, nil
}

// ListTransactions returns the newest stock and wallet transactions.
func (u *TradingUsecase) ListTransactions(ctx context.Context, userID uint, limit int) (*entity.History, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	limit = min(limit, MaxHistoryLimit)

	var h entity.History
	err := u.store.WithTransaction(ctx, func(tx LedgerTx) error {
		var err error
		if h.Stock, err = tx.ListStockTransactions(ctx, userID, limit); err != nil {
			return err
		}
		h.Wallet, err = tx.ListWalletTransactions(ctx, userID, limit)
		return err
	})
	if err != nil {
		return nil, classify(err)
	}
	return &h, nil
}

func (u *TradingUsecase) execute(ctx context.Context, userID uint, side entity.Side, req entity.TradeRequest) (*entity.TradeResult, error) {
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol == "" {
		return nil, ErrInvalidSymbol
	}
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity.With("quantity", req.Quantity)
	}

	price, name, err := u.resolvePrice(ctx, symbol, req.Price)
	if err != nil {
		return nil, err
	}
	if side == entity.SideBuy && name == "" {
		name = symbol
	}
	order := entity.Order{
		OrderID:     u.newOrderID(),
		UserID:      userID,
		Symbol:      symbol,
		CompanyName: name,
		Side:        side,
		Quantity:    req.Quantity,
		Price:       price,
	}

	unlock := u.locks.lock(userID)
	defer unlock()

	var result entity.TradeResult
	err = u.store.WithTransaction(ctx, func(tx LedgerTx) error {
		var st *entity.StockTransaction
		var err error
		if side == entity.SideBuy {
			st, err = u.buy(ctx, tx, order)
		} else {
			st, err = u.sell(ctx, tx, order)
		}
		if err != nil {
			return err
		}

		h, err := tx.GetHolding(ctx, userID, symbol)
		if err != nil {
			return err
		}
		w, err := tx.RecomputeWalletTotals(ctx, userID)
		if err != nil {
			return err
		}
		result = entity.TradeResult{Transaction: *st, Holding: h, Wallet: *w}
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}

	slog.Info("order executed",
		"order_id", order.OrderID,
		"user_id", userID,
		"side", side,
		"symbol", symbol,
		"quantity", order.Quantity,
		"price", price.String(),
	)
	return &result, nil
}

// buy checks the balance, debits the cost and then grows the holding.
func (u *TradingUsecase) buy(ctx context.Context, tx LedgerTx, order entity.Order) (*entity.StockTransaction, error) {
	cost := order.Total()
	w, err := tx.GetOrCreateWallet(ctx, order.UserID)
	if err != nil {
		return nil, err
	}
	if w.Balance.LessThan(cost) {
		return nil, ErrInsufficientBalance.With(
			"symbol", order.Symbol,
			"required", cost.String(),
			"available", w.Balance.String(),
		)
	}

	if _, err := tx.AdjustBalance(ctx, entity.BalanceChange{
		UserID:      order.UserID,
		Type:        entity.TxnStockPurchase,
		Amount:      cost,
		Description: fmt.Sprintf("Bought %d %s @ %s", order.Quantity, order.Symbol, order.Price.StringFixed(2)),
		ReferenceID: order.OrderID,
	}); err != nil {
		return nil, err
	}
	return tx.RecordBuy(ctx, order)
}

// sell checks the held quantity, shrinks the holding and then credits the proceeds.
func (u *TradingUsecase) sell(ctx context.Context, tx LedgerTx, order entity.Order) (*entity.StockTransaction, error) {
	h, err := tx.GetHolding(ctx, order.UserID, order.Symbol)
	if err != nil {
		return nil, err
	}
	var held int64
	if h != nil {
		held = h.Quantity
	}
	if held < order.Quantity {
		return nil, ErrInsufficientShares.With(
			"symbol", order.Symbol,
			"required", order.Quantity,
			"available", held,
		)
	}

	st, err := tx.RecordSell(ctx, order)
	if err != nil {
		return nil, err
	}
	if _, err := tx.AdjustBalance(ctx, entity.BalanceChange{
		UserID:      order.UserID,
		Type:        entity.TxnStockSale,
		Amount:      order.Total(),
		Description: fmt.Sprintf("Sold %d %s @ %s", order.Quantity, order.Symbol, order.Price.StringFixed(2)),
		ReferenceID: order.OrderID,
	}); err != nil {
		return nil, err
	}
	return st, nil
}

func (u *TradingUsecase) moveCash(ctx context.Context, userID uint, kind entity.TransactionType, amount decimal.Decimal) (*entity.Wallet, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount.With("amount", amount.String())
	}

	unlock := u.locks.lock(userID)
	defer unlock()

	var w *entity.Wallet
	err := u.store.WithTransaction(ctx, func(tx LedgerTx) error {
		if _, err := tx.AdjustBalance(ctx, entity.BalanceChange{
			UserID:      userID,
			Type:        kind,
			Amount:      amount,
			Description: strings.ToLower(string(kind)),
		}); err != nil {
			return err
		}
		var err error
		w, err = tx.GetOrCreateWallet(ctx, userID)
		return err
	})
	if err != nil {
		return nil, classify(err)
	}
	slog.Info("wallet updated", "user_id", userID, "type", kind, "amount", amount.String(), "balance", w.Balance.String())
	return w, nil
}

// resolvePrice returns the caller price when given, else the market price and name.
func (u *TradingUsecase) resolvePrice(ctx context.Context, symbol string, price *decimal.Decimal) (decimal.Decimal, string, error) {
	if price != nil {
		if !price.IsPositive() {
			return decimal.Zero, "", ErrInvalidAmount.Withf("price must be positive").With("price", price.String())
		}
		return *price, "", nil
	}

	q, err := u.quotes.FetchQuote(ctx, symbol, true)
	if err != nil {
		return decimal.Zero, "", ErrPriceUnavailable.With("symbol", symbol).Wrap(err)
	}
	if q.CurrentPrice <= 0 {
		return decimal.Zero, "", ErrPriceUnavailable.With("symbol", symbol)
	}
	return decimal.NewFromFloat(q.CurrentPrice).Round(4), q.Name, nil
}

// classify keeps classified errors and reports everything else as TransactionFailed.
func classify(err error) error {
	if _, ok := apperror.As(err); ok {
		return err
	}
	slog.Error("ledger transaction failed", "error", err)
	return ErrTransactionFailed.Wrap(err)
}

func recordTrade(side entity.Side, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "rejected"
		if apperror.KindOf(err) == apperror.KindInternal {
			outcome = "error"
		}
	}
	metrics.Trades.WithLabelValues(strings.ToLower(string(side)), outcome).Inc()
}
