package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesByCode(t *testing.T) {
	t.Parallel()

	sentinel := New(KindRejected, "INSUFFICIENT_BALANCE", "insufficient balance")
	detailed := sentinel.With("required", "100", "available", "50")

	assert.ErrorIs(t, detailed, sentinel)
	assert.ErrorIs(t, fmt.Errorf("buy: %w", detailed), sentinel)
	assert.Equal(t, "100", detailed.Details["required"])
	assert.Nil(t, sentinel.Details, "sentinel must not be mutated")

	other := New(KindRejected, "INSUFFICIENT_SHARES", "insufficient shares")
	assert.NotErrorIs(t, detailed, other)
}

func TestError_WrapKeepsCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	sentinel := New(KindTransient, "ENDPOINT_UNREACHABLE", "endpoint unreachable")
	err := sentinel.Wrap(cause)

	assert.ErrorIs(t, err, sentinel)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "endpoint unreachable: connection reset", err.Error())
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"invalid", New(KindInvalid, "INVALID_QUANTITY", "bad"), KindInvalid},
		{"wrapped transient", fmt.Errorf("x: %w", New(KindTransient, "T", "t")), KindTransient},
		{"plain error", errors.New("boom"), KindInternal},
		{"nil", nil, KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestKind_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "invalid", KindInvalid.String())
	assert.Equal(t, "rejected", KindRejected.String())
	assert.Equal(t, "transient", KindTransient.String())
	assert.Equal(t, "internal", KindInternal.String())
}
