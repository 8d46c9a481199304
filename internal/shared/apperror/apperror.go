// Package apperror classifies domain errors so the transport layer can tell
// "try again later" apart from "rejected" and "invalid input".
package apperror

import (
	"errors"
	"fmt"
	"maps"
)

// Kind はエラーの分類です。
type Kind int

const (
	// KindInternal は想定外の内部エラーです（トランザクション失敗など）。
	KindInternal Kind = iota
	// KindInvalid は呼び出し側の入力が不正なことを表します。
	KindInvalid
	// KindRejected はビジネスルールにより操作が拒否されたことを表します。
	KindRejected
	// KindTransient はデータが一時的に取得できないことを表します。再試行で解決する可能性があります。
	KindTransient
)

// String returns the lowercase name used in API responses.
func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindRejected:
		return "rejected"
	case KindTransient:
		return "transient"
	default:
		return "internal"
	}
}

// Error is a classified error. Two errors with the same Code match under errors.Is,
// so a copy carrying details still matches its sentinel.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Details map[string]any
	cause   error
}

// New creates a sentinel error.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// With returns a copy of e with the given key/value pairs merged into Details.
// Odd trailing keys are ignored.
func (e *Error) With(kv ...any) *Error {
	cp := *e
	cp.Details = make(map[string]any, len(e.Details)+len(kv)/2)
	maps.Copy(cp.Details, e.Details)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		cp.Details[key] = kv[i+1]
	}
	return &cp
}

// Wrap returns a copy of e that records cause. errors.Is matches both e and cause.
func (e *Error) Wrap(cause error) *Error {
	cp := *e
	cp.cause = cause
	return &cp
}

// Withf returns a copy of e with a formatted message.
func (e *Error) Withf(format string, args ...any) *Error {
	cp := *e
	cp.Message = fmt.Sprintf(format, args...)
	return &cp
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// As is a convenience wrapper around errors.As for *Error.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
