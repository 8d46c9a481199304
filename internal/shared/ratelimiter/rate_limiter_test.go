package ratelimiter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntervalLimiter_SpacesCalls(t *testing.T) {
	t.Parallel()

	rl := NewIntervalLimiter("test", 50*time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, rl.Wait(ctx))
	}
	elapsed := time.Since(start)

	// first call is free, the next two wait ~50ms each
	assert.GreaterOrEqual(t, elapsed, 90*time.Millisecond)
}

func TestIntervalLimiter_FirstCallDoesNotWait(t *testing.T) {
	t.Parallel()

	rl := NewIntervalLimiter("test", time.Hour)

	start := time.Now()
	require.NoError(t, rl.Wait(context.Background()))
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestRateLimiter_ContextCancel(t *testing.T) {
	t.Parallel()

	rl := NewIntervalLimiter("test", time.Hour)
	require.NoError(t, rl.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := rl.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewRateLimiter_BurstUpToLimit(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter("test", 3, time.Hour)
	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, rl.Wait(context.Background()))
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestNoop(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Noop{}.Wait(context.Background()))
}
