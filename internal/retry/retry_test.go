package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kbr-silks-backend/internal/retry"
)

func recordSleeps(waits *[]time.Duration) retry.Option {
	return retry.WithSleep(func(ctx context.Context, d time.Duration) error {
		*waits = append(*waits, d)
		return nil
	})
}

func TestDo_SucceedsAfterFailures(t *testing.T) {
	var waits []time.Duration
	calls := 0

	result, err := retry.Do(context.Background(), func(ctx context.Context) (string, error) {
		calls++
		if calls <= 2 {
			return "", assert.AnError
		}
		return "ok", nil
	}, retry.WithMaxAttempts(3), retry.WithBaseDelay(time.Second), recordSleeps(&waits))

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, waits)

	var total time.Duration
	for _, w := range waits {
		total += w
	}
	assert.Equal(t, 3*time.Second, total)
}

func TestDo_ExhaustedReturnsLastErrorUnchanged(t *testing.T) {
	var waits []time.Duration
	calls := 0
	errs := []error{errors.New("first"), errors.New("second"), errors.New("third"), errors.New("fourth")}

	_, err := retry.Do(context.Background(), func(ctx context.Context) (int, error) {
		e := errs[calls]
		calls++
		return 0, e
	}, retry.WithMaxAttempts(4), retry.WithBaseDelay(10*time.Millisecond), recordSleeps(&waits))

	assert.Same(t, errs[3], err)
	assert.Equal(t, 4, calls)
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 40 * time.Millisecond}, waits)
}

func TestDo_FirstAttemptSuccessDoesNotWait(t *testing.T) {
	var waits []time.Duration

	v, err := retry.Do(context.Background(), func(ctx context.Context) (int, error) {
		return 7, nil
	}, recordSleeps(&waits))

	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Empty(t, waits)
}

func TestDo_RetryIfStopsEarly(t *testing.T) {
	var waits []time.Duration
	terminal := errors.New("Unauthorized: only admins can update")
	calls := 0

	err := retry.Run(context.Background(), func(ctx context.Context) error {
		calls++
		return terminal
	}, retry.WithRetryIf(func(err error) bool { return false }), recordSleeps(&waits))

	assert.Same(t, terminal, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, waits)
}

func TestDo_DefaultsToThreeAttempts(t *testing.T) {
	var waits []time.Duration
	calls := 0

	err := retry.Run(context.Background(), func(ctx context.Context) error {
		calls++
		return assert.AnError
	}, recordSleeps(&waits))

	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{retry.DefaultBaseDelay, 2 * retry.DefaultBaseDelay}, waits)
}

func TestDo_ContextCancelledDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0

	err := retry.Run(ctx, func(ctx context.Context) error {
		calls++
		return assert.AnError
	}, retry.WithBaseDelay(time.Hour))

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDo_RealTimerWaits(t *testing.T) {
	calls := 0
	start := time.Now()

	err := retry.Run(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return assert.AnError
		}
		return nil
	}, retry.WithBaseDelay(5*time.Millisecond))

	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}

func TestDelay(t *testing.T) {
	assert.Equal(t, time.Second, retry.Delay(time.Second, 0))
	assert.Equal(t, 2*time.Second, retry.Delay(time.Second, 1))
	assert.Equal(t, 4*time.Second, retry.Delay(time.Second, 2))
}
