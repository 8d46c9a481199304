// Package dto はledgerフィーチャーのリクエスト/レスポンス型を定義します。
// 金額はshopspring/decimalの文字列表現でやり取りします。
package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeRequest は売買注文のリクエストです。priceを省略すると現在値で約定します。
type TradeRequest struct {
	Symbol   string           `json:"symbol" binding:"required"`
	Quantity int64            `json:"quantity"`
	Price    *decimal.Decimal `json:"price,omitempty"`
}

// AmountRequest は入出金のリクエストです。
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type WalletResponse struct {
	Balance           decimal.Decimal `json:"balance"`
	TotalInvested     decimal.Decimal `json:"totalInvested"`
	TotalCurrentValue decimal.Decimal `json:"totalCurrentValue"`
	TotalProfitLoss   decimal.Decimal `json:"totalProfitLoss"`
	UpdatedAt         string          `json:"updatedAt"`
}

type HoldingResponse struct {
	Symbol            string          `json:"symbol"`
	CompanyName       string          `json:"companyName"`
	Quantity          int64           `json:"quantity"`
	AveragePrice      decimal.Decimal `json:"averagePrice"`
	InvestedAmount    decimal.Decimal `json:"investedAmount"`
	CurrentPrice      decimal.Decimal `json:"currentPrice"`
	CurrentValue      decimal.Decimal `json:"currentValue"`
	ProfitLoss        decimal.Decimal `json:"profitLoss"`
	ProfitLossPercent decimal.Decimal `json:"profitLossPercent"`
}

type StockTransactionResponse struct {
	OrderID     string          `json:"orderId"`
	Symbol      string          `json:"symbol"`
	CompanyName string          `json:"companyName"`
	Side        string          `json:"side"`
	Quantity    int64           `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	CreatedAt   string          `json:"createdAt"`
}

type WalletTransactionResponse struct {
	Type         string          `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balanceAfter"`
	Description  string          `json:"description"`
	ReferenceID  string          `json:"referenceId,omitempty"`
	CreatedAt    string          `json:"createdAt"`
}

// TradeResponse は約定結果です。全数売却後はholdingがnullになります。
type TradeResponse struct {
	Transaction StockTransactionResponse `json:"transaction"`
	Holding     *HoldingResponse         `json:"holding"`
	Wallet      WalletResponse           `json:"wallet"`
}

type PortfolioResponse struct {
	Wallet   WalletResponse    `json:"wallet"`
	Holdings []HoldingResponse `json:"holdings"`
}

type TransactionsResponse struct {
	Stock  []StockTransactionResponse  `json:"stock"`
	Wallet []WalletTransactionResponse `json:"wallet"`
}

// FormatTime はタイムスタンプをRFC3339（UTC）で返します。ゼロ値は空文字です。
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
