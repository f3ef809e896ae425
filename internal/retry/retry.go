package retry

import (
	"context"
	"time"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 1 * time.Second
)

type options struct {
	maxAttempts int
	baseDelay   time.Duration
	retryIf     func(error) bool
	sleep       func(ctx context.Context, d time.Duration) error
}

type Option func(*options)

// WithMaxAttempts sets the total number of attempts, including the first one.
func WithMaxAttempts(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxAttempts = n
		}
	}
}

// WithBaseDelay sets the wait before the second attempt. Each later wait doubles.
func WithBaseDelay(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.baseDelay = d
		}
	}
}

// WithRetryIf stops retrying as soon as the predicate returns false for a failure.
func WithRetryIf(fn func(error) bool) Option {
	return func(o *options) {
		o.retryIf = fn
	}
}

// WithSleep replaces the timer used between attempts.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(o *options) {
		if fn != nil {
			o.sleep = fn
		}
	}
}

// Do executes op with exponential backoff retry logic.
// Delays are base, 2*base, 4*base, ... with no jitter. The error of the final
// attempt is returned as is.
func Do[T any](ctx context.Context, op func(ctx context.Context) (T, error), opts ...Option) (T, error) {
	o := options{
		maxAttempts: DefaultMaxAttempts,
		baseDelay:   DefaultBaseDelay,
		sleep:       sleepContext,
	}
	for _, opt := range opts {
		opt(&o)
	}

	var zero T
	var lastErr error
	for attempt := 0; attempt < o.maxAttempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if o.retryIf != nil && !o.retryIf(err) {
			return zero, err
		}
		if attempt == o.maxAttempts-1 {
			break
		}
		if err := o.sleep(ctx, Delay(o.baseDelay, attempt)); err != nil {
			return zero, err
		}
	}

	return zero, lastErr
}

// Run is Do for operations that only report success or failure.
func Run(ctx context.Context, fn func(ctx context.Context) error, opts ...Option) error {
	_, err := Do(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	}, opts...)
	return err
}

// Delay returns the wait that follows the failed attempt with the given 0-based index.
func Delay(base time.Duration, attempt int) time.Duration {
	return base * time.Duration(1<<uint(attempt))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
