package sora

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPollExhaustsAfterLimit(t *testing.T) {
	clock := newFakeClock()
	var attempts []int

	err := Poll(context.Background(), clock, 3, func(_ context.Context, attempt int) (Verdict, error) {
		attempts = append(attempts, attempt)
		return Verdict{Wait: time.Second}, nil
	})

	assert.ErrorIs(t, err, ErrPollExhausted)
	assert.Equal(t, []int{1, 2, 3}, attempts)
	assert.Len(t, clock.sleeps, 3)
}

func TestPollFreeCyclesRepeatTheAttempt(t *testing.T) {
	clock := newFakeClock()
	var attempts []int

	err := Poll(context.Background(), clock, 2, func(_ context.Context, attempt int) (Verdict, error) {
		attempts = append(attempts, attempt)
		if len(attempts) <= 2 {
			return Verdict{Wait: time.Second, Free: true}, nil
		}
		return Verdict{}, nil
	})

	assert.ErrorIs(t, err, ErrPollExhausted)
	assert.Equal(t, []int{1, 1, 1, 2}, attempts)
	assert.Len(t, clock.sleeps, 2, "zero waits are not slept")
}

func TestPollUnboundedUntilDone(t *testing.T) {
	clock := newFakeClock()
	calls := 0

	err := Poll(context.Background(), clock, 0, func(context.Context, int) (Verdict, error) {
		calls++
		return Verdict{Done: calls == 50, Wait: time.Millisecond}, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 50, calls)
	assert.Len(t, clock.sleeps, 49)
}

func TestPollReturnsCheckError(t *testing.T) {
	boom := errors.New("boom")
	err := Poll(context.Background(), newFakeClock(), 5, func(context.Context, int) (Verdict, error) {
		return Verdict{}, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestPollCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false

	err := Poll(ctx, newFakeClock(), 5, func(context.Context, int) (Verdict, error) {
		called = true
		return Verdict{Done: true}, nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestSystemClockSleep(t *testing.T) {
	var c SystemClock
	start := c.Now()
	require.NoError(t, c.Sleep(context.Background(), 5*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.Sleep(ctx, time.Hour), context.Canceled)
}
