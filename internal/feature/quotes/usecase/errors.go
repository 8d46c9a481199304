// Package usecase implements quote and historical-bar retrieval with a
// cache-first, endpoint-fallback policy.
package usecase

import (
	"errors"

	"papertrade/internal/shared/apperror"
)

var (
	// ErrCacheMiss is returned by a QuoteCacheStore when no fresh row exists.
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidSymbol is returned when the symbol is empty.
	ErrInvalidSymbol = apperror.New(apperror.KindInvalid, "INVALID_SYMBOL", "symbol is required")

	// ErrInvalidPeriod is returned for an unknown period, interval or window.
	ErrInvalidPeriod = apperror.New(apperror.KindInvalid, "INVALID_PERIOD", "unsupported period or interval")

	// ErrEndpointUnreachable is returned by an endpoint when the request itself failed.
	ErrEndpointUnreachable = apperror.New(apperror.KindTransient, "ENDPOINT_UNREACHABLE", "endpoint unreachable")

	// ErrEndpointParse is returned by an endpoint when the payload could not be interpreted.
	ErrEndpointParse = apperror.New(apperror.KindTransient, "ENDPOINT_PARSE_ERROR", "endpoint returned an unparseable payload")

	// ErrAllEndpointsFailed is returned once every configured endpoint has failed for a symbol.
	ErrAllEndpointsFailed = apperror.New(apperror.KindTransient, "ALL_ENDPOINTS_FAILED", "no market data available, try again later")
)
