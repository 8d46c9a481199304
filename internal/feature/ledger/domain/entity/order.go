package entity

import "github.com/shopspring/decimal"

// Order is an order that has passed validation and has an execution price.
type Order struct {
	OrderID     string
	UserID      uint
	Symbol      string
	CompanyName string
	Side        Side
	Quantity    int64
	Price       decimal.Decimal
}

// Total returns quantity × price.
func (o Order) Total() decimal.Decimal {
	return o.Price.Mul(decimal.NewFromInt(o.Quantity))
}

// BalanceChange describes one wallet movement.
type BalanceChange struct {
	UserID      uint
	Type        TransactionType
	Amount      decimal.Decimal
	Description string
	ReferenceID string
}

// TradeRequest is a caller's buy or sell request. A nil Price means "use the market price".
type TradeRequest struct {
	Symbol   string
	Quantity int64
	Price    *decimal.Decimal
}

// TradeResult is the state after an executed order. Holding is nil when the
// position was fully closed.
type TradeResult struct {
	Transaction StockTransaction
	Holding     *Holding
	Wallet      Wallet
}

// Portfolio is a wallet with its open positions.
type Portfolio struct {
	Wallet   Wallet
	Holdings []Holding
}

// History holds a user's most recent stock and wallet transactions.
type History struct {
	Stock  []StockTransaction
	Wallet []WalletTransaction
}
