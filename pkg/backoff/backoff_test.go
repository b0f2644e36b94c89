package backoff

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDoSucceedsOnThirdAttemptWithDoublingDelays(t *testing.T) {
	var waits []time.Duration
	sleeper := WithSleeper(func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	})

	calls := 0
	op := func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}

	err := Do(context.Background(), op, 3, time.Second, sleeper)
	require.NoError(t, err)
	require.Equal(t, 3, calls)
	require.Equal(t, []time.Duration{time.Second, 2 * time.Second}, waits)
}

func TestDoReturnsLastErrorAfterExhaustion(t *testing.T) {
	sleeper := WithSleeper(func(ctx context.Context, d time.Duration) error { return nil })

	final := errors.New("still down")
	calls := 0
	op := func(ctx context.Context) error {
		calls++
		return final
	}

	err := Do(context.Background(), op, 3, 10*time.Millisecond, sleeper)
	require.ErrorIs(t, err, final)
	require.Equal(t, 3, calls)
}

func TestDoDoesNotSleepAfterFinalAttempt(t *testing.T) {
	var waits int
	sleeper := WithSleeper(func(ctx context.Context, d time.Duration) error {
		waits++
		return nil
	})

	op := func(ctx context.Context) error { return errors.New("nope") }

	_ = Do(context.Background(), op, 2, time.Millisecond, sleeper)
	require.Equal(t, 1, waits)
}

func TestDoStopsOnContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	op := func(ctx context.Context) error { return errors.New("transient") }

	err := Do(ctx, op, 3, time.Second)
	require.ErrorIs(t, err, context.Canceled)
}

func TestDoStopsOnPermanentError(t *testing.T) {
	var waits int
	sleeper := WithSleeper(func(ctx context.Context, d time.Duration) error {
		waits++
		return nil
	})

	notFound := errors.New("not found")
	calls := 0
	op := func(ctx context.Context) error {
		calls++
		return Permanent(notFound)
	}

	err := Do(context.Background(), op, 3, time.Second, sleeper)
	require.ErrorIs(t, err, notFound)
	require.Equal(t, 1, calls)
	require.Zero(t, waits)
}

func TestPermanentNil(t *testing.T) {
	require.NoError(t, Permanent(nil))
}

func TestDoRequiresOperation(t *testing.T) {
	require.Error(t, Do(context.Background(), nil, 3, time.Second))
}

func TestDoAppliesDefaults(t *testing.T) {
	calls := 0
	sleeper := WithSleeper(func(ctx context.Context, d time.Duration) error { return nil })

	op := func(ctx context.Context) error {
		calls++
		return errors.New("transient")
	}

	_ = Do(context.Background(), op, 0, 0, sleeper)
	require.Equal(t, DefaultAttempts, calls)
}
