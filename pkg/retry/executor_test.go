package retry

import (
	"context"
	"testing"
	"time"

	"github.com/spawn-mcp/deep-research/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(maxAttempts int) Config {
	return Config{
		MaxAttempts: maxAttempts,
		Strategy: &LinearBackoff{
			Delay:       time.Millisecond,
			MaxAttempts: maxAttempts,
		},
	}
}

func TestExecuteWithRetrySucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	result, err := ExecuteWithRetry(context.Background(), func() (string, error) {
		attempts++
		if attempts < 3 {
			return "", errors.New(errors.ErrProviderNetwork, "transient")
		}
		return "ok", nil
	}, fastConfig(5))

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, attempts)
}

func TestExecuteWithRetryStopsOnNonRetryable(t *testing.T) {
	attempts := 0
	_, err := ExecuteWithRetry(context.Background(), func() (int, error) {
		attempts++
		return 0, errors.New(errors.ErrCredentialMissing, "no credential")
	}, fastConfig(5))

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, errors.ErrCredentialMissing, errors.CodeOf(err))
}

func TestExecuteWithRetryExhaustsAttempts(t *testing.T) {
	attempts := 0
	_, err := ExecuteWithRetry(context.Background(), func() (int, error) {
		attempts++
		return 0, errors.New(errors.ErrProviderStatus, "still failing")
	}, fastConfig(3))

	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.Contains(t, err.Error(), "max retries")
	assert.Equal(t, errors.ErrProviderStatus, errors.CodeOf(err))
}

func TestExecuteWithRetryHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ExecuteWithRetry(ctx, func() (int, error) {
		return 0, errors.New(errors.ErrProviderNetwork, "transient")
	}, Config{
		MaxAttempts: 5,
		Strategy: &LinearBackoff{
			Delay:       time.Hour,
			MaxAttempts: 5,
		},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExecuteWithRetryInvokesOnRetry(t *testing.T) {
	var seen []int
	cfg := fastConfig(3)
	cfg.OnRetry = func(attempt int, err error) { seen = append(seen, attempt) }

	_, _ = ExecuteWithRetry(context.Background(), func() (int, error) {
		return 0, errors.New(errors.ErrProviderStatus, "fail")
	}, cfg)

	assert.Equal(t, []int{0, 1, 2}, seen)
}

func TestExponentialBackoffDelays(t *testing.T) {
	b := &ExponentialBackoff{
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2,
	}

	assert.Equal(t, 100*time.Millisecond, b.NextDelay(0))
	assert.Equal(t, 200*time.Millisecond, b.NextDelay(1))
	assert.Equal(t, 400*time.Millisecond, b.NextDelay(2))
	assert.Equal(t, time.Second, b.NextDelay(10))
}

func TestLinearBackoffGivesUpAtMaxAttempts(t *testing.T) {
	b := &LinearBackoff{Delay: time.Millisecond, MaxAttempts: 2}
	transient := errors.New(errors.ErrProviderNetwork, "transient")

	assert.True(t, b.ShouldRetry(0, transient))
	assert.True(t, b.ShouldRetry(1, transient))
	assert.False(t, b.ShouldRetry(2, transient))
}

func TestApplyJitterStaysNonNegative(t *testing.T) {
	for i := 0; i < 100; i++ {
		d := applyJitter(10*time.Millisecond, 0.5)
		assert.GreaterOrEqual(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, 20*time.Millisecond)
	}
}
