// Package usecase はledgerフィーチャーのビジネスロジック（売買エンジン）を実装します。
package usecase

import "papertrade/internal/shared/apperror"

var (
	ErrInvalidQuantity = apperror.New(apperror.KindInvalid, "INVALID_QUANTITY", "quantity must be a positive integer")
	ErrInvalidAmount   = apperror.New(apperror.KindInvalid, "INVALID_AMOUNT", "amount must be positive")
	ErrInvalidSymbol   = apperror.New(apperror.KindInvalid, "INVALID_SYMBOL", "symbol is required")

	// ErrInsufficientBalance carries "required" and "available" details.
	ErrInsufficientBalance = apperror.New(apperror.KindRejected, "INSUFFICIENT_BALANCE", "insufficient balance")
	// ErrInsufficientShares carries "symbol", "required" and "available" details.
	ErrInsufficientShares = apperror.New(apperror.KindRejected, "INSUFFICIENT_SHARES", "insufficient shares")
	ErrPriceUnavailable   = apperror.New(apperror.KindRejected, "PRICE_UNAVAILABLE", "price unavailable")

	// ErrTransactionFailed wraps any unclassified failure inside a ledger transaction.
	ErrTransactionFailed = apperror.New(apperror.KindInternal, "TRANSACTION_FAILED", "transaction failed")
)
