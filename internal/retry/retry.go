// Package retry runs an operation under a bounded attempt budget.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrExhausted is returned (wrapping the last attempt error) when every attempt failed.
var ErrExhausted = errors.New("retry budget exhausted")

// Policy bounds an operation's retries.
type Policy struct {
	// MaxAttempts is the total number of calls, including the first. Values < 1 mean 1.
	MaxAttempts int
	// AttemptTimeout bounds each call. Zero means no per-attempt deadline.
	AttemptTimeout time.Duration
	// Backoff returns the delay before the next attempt, given the failed attempt
	// number (1-based) and its error. Nil means no delay.
	Backoff func(attempt int, err error) time.Duration
	// OnRetry is called before waiting for the next attempt.
	OnRetry func(attempt int, err error)
}

// Fixed returns a constant backoff.
func Fixed(d time.Duration) func(int, error) time.Duration {
	return func(int, error) time.Duration { return d }
}

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying; Do stops and returns it unwrapped.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do calls op until it succeeds, the budget is spent, or ctx is done.
// It returns the result, the number of attempts made, and the terminal error.
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context, attempt int) (T, error)) (T, int, error) {
	var zero T
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		v, err := call(ctx, p.AttemptTimeout, attempt, op)
		if err == nil {
			return v, attempt, nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return zero, attempt, perm.err
		}
		lastErr = err

		if attempt == maxAttempts {
			break
		}
		if p.OnRetry != nil {
			p.OnRetry(attempt, err)
		}

		var delay time.Duration
		if p.Backoff != nil {
			delay = p.Backoff(attempt, err)
		}
		if err := sleep(ctx, delay); err != nil {
			return zero, attempt, fmt.Errorf("%w after %d attempts: %w (last: %w)", ErrExhausted, attempt, err, lastErr)
		}
	}

	return zero, maxAttempts, fmt.Errorf("%w after %d attempts: %w", ErrExhausted, maxAttempts, lastErr)
}

func call[T any](
	ctx context.Context, timeout time.Duration, attempt int,
	op func(ctx context.Context, attempt int) (T, error),
) (T, error) {
	if timeout <= 0 {
		return op(ctx, attempt)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return op(attemptCtx, attempt)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
