// Package handler はledgerフィーチャー（ウォレット・売買）のHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"papertrade/internal/feature/ledger/domain/entity"
	"papertrade/internal/feature/ledger/transport/http/dto"
	"papertrade/internal/platform/http/respond"
	jwtmw "papertrade/internal/platform/jwt"
)

// TradingUsecase は売買・入出金のユースケースインターフェースを定義します。
type TradingUsecase interface {
	Buy(ctx context.Context, userID uint, req entity.TradeRequest) (*entity.TradeResult, error)
	Sell(ctx context.Context, userID uint, req entity.TradeRequest) (*entity.TradeResult, error)
	Deposit(ctx context.Context, userID uint, amount decimal.Decimal) (*entity.Wallet, error)
	Withdraw(ctx context.Context, userID uint, amount decimal.Decimal) (*entity.Wallet, error)
	GetWallet(ctx context.Context, userID uint) (*entity.Wallet, error)
	GetPortfolio(ctx context.Context, userID uint) (*entity.Portfolio, error)
	ListTransactions(ctx context.Context, userID uint, limit int) (*entity.History, error)
}

// LedgerHandler はウォレット・ポートフォリオ・売買のHTTPリクエストを処理します。
// すべてのルートはjwtmw.AuthRequiredの後ろに置く前提です。
type LedgerHandler struct {
	uc TradingUsecase
}

// NewLedgerHandler は新しいLedgerHandlerを生成します。
func NewLedgerHandler(uc TradingUsecase) *LedgerHandler {
	return &LedgerHandler{uc: uc}
}

// GetWallet はログインユーザーのウォレットを返します。
//
// GET /wallet
func (h *LedgerHandler) GetWallet(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	w, err := h.uc.GetWallet(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, toWalletResponse(w))
}

// Deposit は入金します。
//
// POST /wallet/deposit {"amount": "1000"}
func (h *LedgerHandler) Deposit(c *gin.Context) {
	h.moveCash(c, h.uc.Deposit)
}

// Withdraw は出金します。
//
// POST /wallet/withdraw {"amount": "1000"}
func (h *LedgerHandler) Withdraw(c *gin.Context) {
	h.moveCash(c, h.uc.Withdraw)
}

// GetPortfolio は現在値で再評価した保有銘柄一覧を返します。
//
// GET /portfolio
func (h *LedgerHandler) GetPortfolio(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	p, err := h.uc.GetPortfolio(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, err)
		return
	}
	res := dto.PortfolioResponse{
		Wallet:   toWalletResponse(&p.Wallet),
		Holdings: make([]dto.HoldingResponse, 0, len(p.Holdings)),
	}
	for i := range p.Holdings {
		res.Holdings = append(res.Holdings, toHoldingResponse(&p.Holdings[i]))
	}
	c.JSON(http.StatusOK, res)
}

// Buy は買い注文を約定させます。
//
// POST /trade/buy {"symbol": "TCS", "quantity": 10, "price": "3500"}
func (h *LedgerHandler) Buy(c *gin.Context) {
	h.trade(c, h.uc.Buy)
}

// Sell は売り注文を約定させます。
//
// POST /trade/sell {"symbol": "TCS", "quantity": 4}
func (h *LedgerHandler) Sell(c *gin.Context) {
	h.trade(c, h.uc.Sell)
}

// ListTransactions は直近の取引履歴を返します。
//
// GET /transactions?limit=20
func (h *LedgerHandler) ListTransactions(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	limit := 0
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			respond.BadRequest(c, "limit must be an integer")
			return
		}
		limit = n
	}

	hist, err := h.uc.ListTransactions(c.Request.Context(), userID, limit)
	if err != nil {
		respond.Error(c, err)
		return
	}
	res := dto.TransactionsResponse{
		Stock:  make([]dto.StockTransactionResponse, 0, len(hist.Stock)),
		Wallet: make([]dto.WalletTransactionResponse, 0, len(hist.Wallet)),
	}
	for i := range hist.Stock {
		res.Stock = append(res.Stock, toStockTransactionResponse(&hist.Stock[i]))
	}
	for _, wt := range hist.Wallet {
		res.Wallet = append(res.Wallet, dto.WalletTransactionResponse{
			Type:         string(wt.Type),
			Amount:       wt.Amount,
			BalanceAfter: wt.BalanceAfter,
			Description:  wt.Description,
			ReferenceID:  wt.ReferenceID,
			CreatedAt:    dto.FormatTime(wt.CreatedAt),
		})
	}
	c.JSON(http.StatusOK, res)
}

type tradeFunc func(ctx context.Context, userID uint, req entity.TradeRequest) (*entity.TradeResult, error)

func (h *LedgerHandler) trade(c *gin.Context, fn tradeFunc) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "invalid request")
		return
	}

	res, err := fn(c.Request.Context(), userID, entity.TradeRequest{
		Symbol:   req.Symbol,
		Quantity: req.Quantity,
		Price:    req.Price,
	})
	if err != nil {
		respond.Error(c, err)
		return
	}

	out := dto.TradeResponse{
		Transaction: toStockTransactionResponse(&res.Transaction),
		Wallet:      toWalletResponse(&res.Wallet),
	}
	if res.Holding != nil {
		hr := toHoldingResponse(res.Holding)
		out.Holding = &hr
	}
	c.JSON(http.StatusOK, out)
}

type cashFunc func(ctx context.Context, userID uint, amount decimal.Decimal) (*entity.Wallet, error)

func (h *LedgerHandler) moveCash(c *gin.Context, fn cashFunc) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "invalid request")
		return
	}

	w, err := fn(c.Request.Context(), userID, req.Amount)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, toWalletResponse(w))
}

// requireUser はコンテキストからユーザーIDを取り出します。無ければ401を返します。
func requireUser(c *gin.Context) (uint, bool) {
	id, ok := jwtmw.UserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, respond.ErrorResponse{Error: "unauthorized"})
		return 0, false
	}
	return id, true
}

func toWalletResponse(w *entity.Wallet) dto.WalletResponse {
	return dto.WalletResponse{
		Balance:           w.Balance,
		TotalInvested:     w.TotalInvested,
		TotalCurrentValue: w.TotalCurrentValue,
		TotalProfitLoss:   w.TotalProfitLoss,
		UpdatedAt:         dto.FormatTime(w.UpdatedAt),
	}
}

func toHoldingResponse(h *entity.Holding) dto.HoldingResponse {
	return dto.HoldingResponse{
		Symbol:            h.Symbol,
		CompanyName:       h.CompanyName,
		Quantity:          h.Quantity,
		AveragePrice:      h.AveragePrice,
		InvestedAmount:    h.InvestedAmount,
		CurrentPrice:      h.CurrentPrice,
		CurrentValue:      h.CurrentValue,
		ProfitLoss:        h.ProfitLoss,
		ProfitLossPercent: h.ProfitLossPercent,
	}
}

func toStockTransactionResponse(st *entity.StockTransaction) dto.StockTransactionResponse {
	return dto.StockTransactionResponse{
		OrderID:     st.OrderID,
		Symbol:      st.Symbol,
		CompanyName: st.CompanyName,
		Side:        string(st.Side),
		Quantity:    st.Quantity,
		Price:       st.Price,
		TotalAmount: st.TotalAmount,
		CreatedAt:   dto.FormatTime(st.CreatedAt),
	}
}
