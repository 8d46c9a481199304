package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweeper_RunOnce(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		s := NewSweeper("test", time.Hour, func(context.Context) (int64, error) { return 3, nil })

		n, err := s.runOnce(context.Background())

		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
	})

	t.Run("error is returned", func(t *testing.T) {
		s := NewSweeper("test", time.Hour, func(context.Context) (int64, error) { return 5, errors.New("db locked") })

		n, err := s.runOnce(context.Background())

		assert.EqualError(t, err, "db locked")
		assert.Zero(t, n)
	})

	t.Run("panic is contained", func(t *testing.T) {
		s := NewSweeper("test", time.Hour, func(context.Context) (int64, error) { panic("boom") })

		var err error
		assert.NotPanics(t, func() { _, err = s.runOnce(context.Background()) })
		assert.ErrorContains(t, err, "boom")
	})
}

func TestSweeper_RunKeepsGoingAndStopsOnCancel(t *testing.T) {
	var calls atomic.Int32
	s := NewSweeper("test", 10*time.Millisecond, func(context.Context) (int64, error) {
		switch calls.Add(1) {
		case 1:
			return 0, errors.New("first run fails")
		case 2:
			panic("second run panics")
		}
		return 1, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}
