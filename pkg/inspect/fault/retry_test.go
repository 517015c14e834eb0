package fault

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastRetry keeps test backoff negligible.
var fastRetry = RetryConfig{
	MaxAttempts:    3,
	InitialBackoff: time.Millisecond,
	MaxBackoff:     5 * time.Millisecond,
	BackoffFactor:  2.0,
}

func TestWithRetryContext_SucceedsFirstAttempt(t *testing.T) {
	res := WithRetryContext(context.Background(), fastRetry,
		func(context.Context) (string, error) {
			return "ok", nil
		})

	require.NoError(t, res.Err)
	assert.Equal(t, "ok", res.Value)
	assert.Equal(t, 1, res.Attempts)
}

func TestWithRetryContext_RetriesTransient(t *testing.T) {
	calls := 0
	res := WithRetryContext(context.Background(), fastRetry,
		func(context.Context) (int, error) {
			calls++
			if calls < 3 {
				return 0, errors.New("temporarily unavailable")
			}
			return 42, nil
		})

	require.NoError(t, res.Err)
	assert.Equal(t, 42, res.Value)
	assert.Equal(t, 3, res.Attempts)
}

func TestWithRetryContext_PermanentFailsImmediately(t *testing.T) {
	calls := 0
	boom := errors.New("invalid credentials")
	res := WithRetryContext(context.Background(), fastRetry,
		func(context.Context) (int, error) {
			calls++
			return 0, boom
		})

	require.Error(t, res.Err)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, res.Err, boom)

	var catErr *CategorizedError
	require.ErrorAs(t, res.Err, &catErr)
	assert.Equal(t, CategoryPermanent, catErr.Category)
}

func TestWithRetryContext_ExhaustsAttempts(t *testing.T) {
	calls := 0
	res := WithRetryContext(context.Background(), fastRetry,
		func(context.Context) (int, error) {
			calls++
			return 0, errors.New("timeout")
		})

	require.Error(t, res.Err)
	assert.Equal(t, fastRetry.MaxAttempts, calls)
	assert.Equal(t, fastRetry.MaxAttempts, res.Attempts)

	var catErr *CategorizedError
	require.ErrorAs(t, res.Err, &catErr)
	assert.Equal(t, "max retries exceeded", catErr.Context)
}

func TestWithRetryContext_NoRetry(t *testing.T) {
	calls := 0
	res := WithRetryContext(context.Background(), NoRetry,
		func(context.Context) (int, error) {
			calls++
			return 0, errors.New("timeout")
		})

	require.Error(t, res.Err)
	assert.Equal(t, 1, calls)
}

func TestWithRetryContext_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := WithRetryContext(ctx, fastRetry,
		func(context.Context) (int, error) {
			t.Fatal("fn should not be called")
			return 0, nil
		})

	require.Error(t, res.Err)
	assert.ErrorIs(t, res.Err, context.Canceled)
	assert.Zero(t, res.Attempts)
}

func TestWithRetryContext_CancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	cfg := fastRetry
	cfg.InitialBackoff = time.Minute

	calls := 0
	done := make(chan RetryResult[int])
	go func() {
		done <- WithRetryContext(ctx, cfg,
			func(context.Context) (int, error) {
				calls++
				return 0, errors.New("timeout")
			})
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	res := <-done
	require.Error(t, res.Err)
	assert.ErrorIs(t, res.Err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestWithRetryContext_CustomRetryableFunc(t *testing.T) {
	sticky := errors.New("sticky")
	cfg := fastRetry
	cfg.RetryableFunc = func(err error) bool {
		return !errors.Is(err, sticky)
	}

	calls := 0
	res := WithRetryContext(context.Background(), cfg,
		func(context.Context) (int, error) {
			calls++
			return 0, sticky
		})

	require.Error(t, res.Err)
	assert.Equal(t, 1, calls)
}

func TestCalculateBackoff(t *testing.T) {
	assert.Equal(t, time.Second, calculateBackoff(time.Second, 0))

	// Jitter stays within the configured band.
	for i := 0; i < 100; i++ {
		d := calculateBackoff(time.Second, 0.1)
		assert.GreaterOrEqual(t, d, 900*time.Millisecond)
		assert.LessOrEqual(t, d, 1100*time.Millisecond)
	}
}
