package adapters

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"papertrade/internal/feature/ledger/domain/entity"
	"papertrade/internal/feature/ledger/usecase"
	"papertrade/internal/shared/apperror"
)

// setupTestDB はテスト用のインメモリSQLiteデータベースを準備します。
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err, "failed to initialize test database")
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(Models()...), "failed to migrate tables")
	return db
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// inTx はテスト用にトランザクション内でfnを実行します。
func inTx(t *testing.T, store *ledgerGorm, fn func(tx usecase.LedgerTx) error) error {
	t.Helper()
	return store.WithTransaction(context.Background(), fn)
}

func deposit(t *testing.T, store *ledgerGorm, userID uint, amount string) {
	t.Helper()
	require.NoError(t, inTx(t, store, func(tx usecase.LedgerTx) error {
		_, err := tx.AdjustBalance(context.Background(), entity.BalanceChange{
			UserID: userID, Type: entity.TxnDeposit, Amount: dec(amount), Description: "seed",
		})
		return err
	}))
}

func order(userID uint, id, symbol string, qty int64, price string) entity.Order {
	return entity.Order{OrderID: id, UserID: userID, Symbol: symbol, CompanyName: symbol + " Ltd", Quantity: qty, Price: dec(price)}
}

func TestLedgerTx_GetOrCreateWallet(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	store := NewLedgerStore(db)
	ctx := context.Background()

	require.NoError(t, inTx(t, store, func(tx usecase.LedgerTx) error {
		w, err := tx.GetOrCreateWallet(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, uint(7), w.UserID)
		assert.True(t, w.Balance.IsZero())

		// 2回目は既存を返す
		_, err = tx.GetOrCreateWallet(ctx, 7)
		return err
	}))

	var count int64
	require.NoError(t, db.Model(&entity.Wallet{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestLedgerTx_AdjustBalance(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	store := NewLedgerStore(db)
	ctx := context.Background()

	deposit(t, store, 1, "1000")

	t.Run("debit within balance", func(t *testing.T) {
		require.NoError(t, inTx(t, store, func(tx usecase.LedgerTx) error {
			bal, err := tx.AdjustBalance(ctx, entity.BalanceChange{UserID: 1, Type: entity.TxnWithdrawal, Amount: dec("250.50")})
			require.NoError(t, err)
			assert.True(t, dec("749.50").Equal(bal), bal.String())
			return nil
		}))
	})

	t.Run("overdraft is rejected and leaves wallet untouched", func(t *testing.T) {
		err := inTx(t, store, func(tx usecase.LedgerTx) error {
			_, err := tx.AdjustBalance(ctx, entity.BalanceChange{UserID: 1, Type: entity.TxnStockPurchase, Amount: dec("5000")})
			return err
		})
		require.ErrorIs(t, err, usecase.ErrInsufficientBalance)

		var w entity.Wallet
		require.NoError(t, db.First(&w, "user_id = ?", 1).Error)
		assert.True(t, dec("749.50").Equal(w.Balance), w.Balance.String())
	})

	t.Run("non-positive amount", func(t *testing.T) {
		err := inTx(t, store, func(tx usecase.LedgerTx) error {
			_, err := tx.AdjustBalance(ctx, entity.BalanceChange{UserID: 1, Type: entity.TxnDeposit, Amount: decimal.Zero})
			return err
		})
		assert.ErrorIs(t, err, usecase.ErrInvalidAmount)
	})

	t.Run("unknown type", func(t *testing.T) {
		err := inTx(t, store, func(tx usecase.LedgerTx) error {
			_, err := tx.AdjustBalance(ctx, entity.BalanceChange{UserID: 1, Type: "REFUND", Amount: dec("1")})
			return err
		})
		assert.Error(t, err)
	})

	var rows []entity.WalletTransaction
	require.NoError(t, db.Order("id ASC").Find(&rows).Error)
	require.Len(t, rows, 2, "only successful adjustments are recorded")
	assert.Equal(t, entity.TxnDeposit, rows[0].Type)
	assert.Equal(t, entity.TxnWithdrawal, rows[1].Type)
	assert.True(t, dec("749.50").Equal(rows[1].BalanceAfter))
}

func TestLedgerTx_RecordBuy_WeightedAverage(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	store := NewLedgerStore(db)
	ctx := context.Background()

	require.NoError(t, inTx(t, store, func(tx usecase.LedgerTx) error {
		if _, err := tx.RecordBuy(ctx, order(1, "o-1", "TCS", 10, "3500")); err != nil {
			return err
		}
		_, err := tx.RecordBuy(ctx, order(1, "o-2", "TCS", 5, "3800"))
		return err
	}))

	require.NoError(t, inTx(t, store, func(tx usecase.LedgerTx) error {
		h, err := tx.GetHolding(ctx, 1, "TCS")
		require.NoError(t, err)
		require.NotNil(t, h)
		assert.Equal(t, int64(15), h.Quantity)
		assert.True(t, dec("54000").Equal(h.InvestedAmount), h.InvestedAmount.String())
		assert.True(t, dec("3600").Equal(h.AveragePrice), h.AveragePrice.String())
		assert.True(t, dec("3800").Equal(h.CurrentPrice))
		assert.True(t, dec("57000").Equal(h.CurrentValue))
		assert.Equal(t, "TCS Ltd", h.CompanyName)

		txns, err := tx.ListStockTransactions(ctx, 1, 0)
		require.NoError(t, err)
		require.Len(t, txns, 2)
		assert.Equal(t, "o-2", txns[0].OrderID, "newest first")
		assert.Equal(t, entity.SideBuy, txns[0].Side)
		assert.True(t, dec("19000").Equal(txns[0].TotalAmount))
		return nil
	}))
}

func TestLedgerTx_RecordSell(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	store := NewLedgerStore(db)
	ctx := context.Background()

	require.NoError(t, inTx(t, store, func(tx usecase.LedgerTx) error {
		_, err := tx.RecordBuy(ctx, order(1, "b-1", "TCS", 10, "3500"))
		return err
	}))

	t.Run("partial sell reduces basis proportionally", func(t *testing.T) {
		require.NoError(t, inTx(t, store, func(tx usecase.LedgerTx) error {
			st, err := tx.RecordSell(ctx, entity.Order{OrderID: "s-1", UserID: 1, Symbol: "TCS", Quantity: 4, Price: dec("3600")})
			require.NoError(t, err)
			assert.Equal(t, entity.SideSell, st.Side)
			assert.Equal(t, "TCS Ltd", st.CompanyName, "name comes from the holding")

			h, err := tx.GetHolding(ctx, 1, "TCS")
			require.NoError(t, err)
			require.NotNil(t, h)
			assert.Equal(t, int64(6), h.Quantity)
			assert.True(t, dec("21000").Equal(h.InvestedAmount), h.InvestedAmount.String())
			assert.True(t, dec("3500").Equal(h.AveragePrice))
			assert.True(t, dec("21600").Equal(h.CurrentValue))
			assert.True(t, dec("600").Equal(h.ProfitLoss))
			return nil
		}))
	})

	t.Run("more than held", func(t *testing.T) {
		err := inTx(t, store, func(tx usecase.LedgerTx) error {
			_, err := tx.RecordSell(ctx, entity.Order{OrderID: "s-2", UserID: 1, Symbol: "TCS", Quantity: 7, Price: dec("3600")})
			return err
		})
		require.ErrorIs(t, err, usecase.ErrInsufficientShares)
		ae, ok := apperror.As(err)
		require.True(t, ok)
		assert.Equal(t, int64(7), ae.Details["required"])
		assert.Equal(t, int64(6), ae.Details["available"])
	})

	t.Run("not held", func(t *testing.T) {
		err := inTx(t, store, func(tx usecase.LedgerTx) error {
			_, err := tx.RecordSell(ctx, entity.Order{OrderID: "s-3", UserID: 1, Symbol: "INFY", Quantity: 1, Price: dec("1500")})
			return err
		})
		assert.ErrorIs(t, err, usecase.ErrInsufficientShares)
	})

	t.Run("full sell deletes holding", func(t *testing.T) {
		require.NoError(t, inTx(t, store, func(tx usecase.LedgerTx) error {
			_, err := tx.RecordSell(ctx, entity.Order{OrderID: "s-4", UserID: 1, Symbol: "TCS", Quantity: 6, Price: dec("3700")})
			require.NoError(t, err)

			h, err := tx.GetHolding(ctx, 1, "TCS")
			require.NoError(t, err)
			assert.Nil(t, h)
			return nil
		}))

		var count int64
		require.NoError(t, db.Model(&entity.Holding{}).Count(&count).Error)
		assert.Zero(t, count)
	})

	var sells int64
	require.NoError(t, db.Model(&entity.StockTransaction{}).Where("side = ?", entity.SideSell).Count(&sells).Error)
	assert.Equal(t, int64(2), sells, "rejected sells are not recorded")
}

func TestLedgerTx_RefreshAndRecompute(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	store := NewLedgerStore(db)
	ctx := context.Background()

	deposit(t, store, 1, "500")
	require.NoError(t, inTx(t, store, func(tx usecase.LedgerTx) error {
		if _, err := tx.RecordBuy(ctx, order(1, "b-1", "TCS", 10, "3500")); err != nil {
			return err
		}
		_, err := tx.RecordBuy(ctx, order(1, "b-2", "INFY", 2, "1500"))
		return err
	}))

	require.NoError(t, inTx(t, store, func(tx usecase.LedgerTx) error {
		require.NoError(t, tx.RefreshCurrentPrices(ctx, 1, map[string]decimal.Decimal{
			"TCS":   dec("3850"),
			"WIPRO": dec("300"),
		}))
		w, err := tx.RecomputeWalletTotals(ctx, 1)
		require.NoError(t, err)
		assert.True(t, dec("38000").Equal(w.TotalInvested), w.TotalInvested.String())
		assert.True(t, dec("41500").Equal(w.TotalCurrentValue), w.TotalCurrentValue.String())
		assert.True(t, dec("3500").Equal(w.TotalProfitLoss))
		assert.True(t, dec("500").Equal(w.Balance))
		return nil
	}))

	var w entity.Wallet
	require.NoError(t, db.First(&w, "user_id = ?", 1).Error)
	assert.True(t, dec("41500").Equal(w.TotalCurrentValue), "totals are persisted")

	holdings := []entity.Holding{}
	require.NoError(t, inTx(t, store, func(tx usecase.LedgerTx) error {
		var err error
		holdings, err = tx.ListHoldings(ctx, 1)
		return err
	}))
	require.Len(t, holdings, 2)
	assert.Equal(t, "INFY", holdings[0].Symbol)
	assert.True(t, dec("1500").Equal(holdings[0].CurrentPrice), "symbols missing from the map keep their price")
	assert.True(t, dec("10").Equal(holdings[1].ProfitLossPercent))
}

func TestLedgerGorm_WithTransactionRollsBack(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	store := NewLedgerStore(db)
	ctx := context.Background()

	deposit(t, store, 1, "100000")

	boom := errors.New("boom")
	err := inTx(t, store, func(tx usecase.LedgerTx) error {
		if _, err := tx.AdjustBalance(ctx, entity.BalanceChange{UserID: 1, Type: entity.TxnStockPurchase, Amount: dec("35000")}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var w entity.Wallet
	require.NoError(t, db.First(&w, "user_id = ?", 1).Error)
	assert.True(t, dec("100000").Equal(w.Balance))

	var count int64
	require.NoError(t, db.Model(&entity.WalletTransaction{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "only the seed deposit remains")
}
