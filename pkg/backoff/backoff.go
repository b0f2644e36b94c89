package backoff

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultAttempts matches the startup read policy: three tries before surfacing.
const DefaultAttempts = 3

// DefaultBaseDelay is the initial wait between attempts.
const DefaultBaseDelay = time.Second

// Operation is a retryable unit of work. Only idempotent reads belong here;
// writes must never be wrapped because a duplicate insert is not idempotent.
type Operation func(ctx context.Context) error

// Option customises retry behaviour.
type Option func(*retrier)

// WithSleeper injects the wait function, primarily for tests.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(r *retrier) {
		if sleep != nil {
			r.sleep = sleep
		}
	}
}

type retrier struct {
	attempts  int
	baseDelay time.Duration
	sleep     func(ctx context.Context, d time.Duration) error
}

type permanentError struct {
	err error
}

func (p *permanentError) Error() string { return p.err.Error() }

func (p *permanentError) Unwrap() error { return p.err }

// Permanent marks an error as non-retryable. Do stops immediately and returns
// the wrapped error as-is.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do runs op up to maxAttempts times, doubling the delay after each failure
// (baseDelay, 2×baseDelay, 4×baseDelay, ...). The last error is returned when
// every attempt fails. Context cancellation aborts the wait immediately.
func Do(ctx context.Context, op Operation, maxAttempts int, baseDelay time.Duration, opts ...Option) error {
	if op == nil {
		return errors.New("backoff: operation is required")
	}

	r := &retrier{
		attempts:  maxAttempts,
		baseDelay: baseDelay,
		sleep:     sleepWithContext,
	}
	if r.attempts <= 0 {
		r.attempts = DefaultAttempts
	}
	if r.baseDelay <= 0 {
		r.baseDelay = DefaultBaseDelay
	}
	for _, opt := range opts {
		opt(r)
	}

	var lastErr error
	for attempt := 0; attempt < r.attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		if lastErr = op(ctx); lastErr == nil {
			return nil
		}

		var permanent *permanentError
		if errors.As(lastErr, &permanent) {
			return permanent.err
		}

		if attempt == r.attempts-1 {
			break
		}

		delay := r.baseDelay << attempt
		if err := r.sleep(ctx, delay); err != nil {
			return err
		}
	}

	return fmt.Errorf("backoff: %d attempts exhausted: %w", r.attempts, lastErr)
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
