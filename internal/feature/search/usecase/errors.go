// Package usecase implements symbol resolution over the local index, the
// search cache and the online endpoints.
package usecase

import (
	"errors"

	"papertrade/internal/shared/apperror"
)

var (
	// ErrCacheMiss is returned by a SearchCacheRepository when no live entry exists.
	ErrCacheMiss = errors.New("search cache miss")

	// ErrNotFound is returned by ResolveAndQuote when the query resolves to nothing.
	ErrNotFound = apperror.New(apperror.KindRejected, "NOT_FOUND", "no symbol matches the query")
)
