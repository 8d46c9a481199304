// Package entity はledgerフィーチャーのドメインエンティティを定義します。
package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the kind of a wallet movement.
type TransactionType string

const (
	TxnDeposit       TransactionType = "DEPOSIT"
	TxnWithdrawal    TransactionType = "WITHDRAWAL"
	TxnStockPurchase TransactionType = "STOCK_PURCHASE"
	TxnStockSale     TransactionType = "STOCK_SALE"
)

// Valid reports whether t is one of the known types.
func (t TransactionType) Valid() bool {
	switch t {
	case TxnDeposit, TxnWithdrawal, TxnStockPurchase, TxnStockSale:
		return true
	}
	return false
}

// Credits reports whether t increases the balance.
func (t TransactionType) Credits() bool {
	return t == TxnDeposit || t == TxnStockSale
}

// Side is the direction of a stock order.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Wallet is a user's cash account plus aggregate holding totals.
// One row per user.
type Wallet struct {
	UserID            uint            `gorm:"primaryKey;autoIncrement:false"`
	Balance           decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	TotalInvested     decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	TotalCurrentValue decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	TotalProfitLoss   decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ApplyTotals recomputes the aggregate totals from the full holdings set.
func (w *Wallet) ApplyTotals(holdings []Holding) {
	invested := decimal.Zero
	current := decimal.Zero
	for _, h := range holdings {
		invested = invested.Add(h.InvestedAmount)
		current = current.Add(h.CurrentValue)
	}
	w.TotalInvested = invested
	w.TotalCurrentValue = current
	w.TotalProfitLoss = current.Sub(invested)
}

// Holding is a user's open position in one symbol. Quantity is always positive;
// a fully sold position has no row.
type Holding struct {
	ID                uint            `gorm:"primaryKey"`
	UserID            uint            `gorm:"not null;uniqueIndex:holding_user_symbol,priority:1"`
	Symbol            string          `gorm:"size:32;not null;uniqueIndex:holding_user_symbol,priority:2"`
	CompanyName       string          `gorm:"size:255"`
	Quantity          int64           `gorm:"not null"`
	AveragePrice      decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	InvestedAmount    decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	CurrentPrice      decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	CurrentValue      decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	ProfitLoss        decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	ProfitLossPercent decimal.Decimal `gorm:"type:decimal(10,4);not null"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

var hundred = decimal.NewFromInt(100)

// Revalue sets the current price and derives value and profit/loss from it.
func (h *Holding) Revalue(price decimal.Decimal) {
	h.CurrentPrice = price
	h.CurrentValue = price.Mul(decimal.NewFromInt(h.Quantity))
	h.ProfitLoss = h.CurrentValue.Sub(h.InvestedAmount)
	if h.InvestedAmount.IsZero() {
		h.ProfitLossPercent = decimal.Zero
		return
	}
	h.ProfitLossPercent = h.ProfitLoss.Div(h.InvestedAmount).Mul(hundred).Round(2)
}

// StockTransaction is an append-only record of an executed order.
type StockTransaction struct {
	ID          uint            `gorm:"primaryKey"`
	OrderID     string          `gorm:"size:36;not null;uniqueIndex"`
	UserID      uint            `gorm:"not null;index"`
	Symbol      string          `gorm:"size:32;not null"`
	CompanyName string          `gorm:"size:255"`
	Side        Side            `gorm:"size:4;not null"`
	Quantity    int64           `gorm:"not null"`
	Price       decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	CreatedAt   time.Time       `gorm:"index"`
}

// WalletTransaction is an append-only record of one balance movement.
// ReferenceID is the order id of the StockTransaction it settles.
type WalletTransaction struct {
	ID           uint            `gorm:"primaryKey"`
	UserID       uint            `gorm:"not null;index"`
	Type         TransactionType `gorm:"size:16;not null"`
	Amount       decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	BalanceAfter decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	Description  string          `gorm:"size:255"`
	ReferenceID  string          `gorm:"size:36;index"`
	CreatedAt    time.Time       `gorm:"index"`
}
