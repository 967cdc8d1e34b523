// Package retry provides a generic retry executor with pluggable
// backoff strategies. Retryability of coded pipeline errors is decided
// by the errors package; everything else defaults to retryable.
package retry

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/spawn-mcp/deep-research/pkg/errors"
)

// Strategy decides whether and when the next attempt happens.
type Strategy interface {
	NextDelay(attempt int) time.Duration
	ShouldRetry(attempt int, err error) bool
}

// Config configures one retried operation.
type Config struct {
	MaxAttempts int
	Strategy    Strategy
	Jitter      float64
	OnRetry     func(attempt int, err error)
}

// ExponentialBackoff grows the delay by Multiplier per attempt, capped
// at MaxDelay.
type ExponentialBackoff struct {
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

func (e *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	delay := float64(e.InitialDelay) * math.Pow(e.Multiplier, float64(attempt))
	if delay > float64(e.MaxDelay) {
		return e.MaxDelay
	}
	return time.Duration(delay)
}

func (e *ExponentialBackoff) ShouldRetry(attempt int, err error) bool {
	return errors.IsRetryable(err)
}

// LinearBackoff waits a constant delay between attempts.
type LinearBackoff struct {
	Delay       time.Duration
	MaxAttempts int
}

func (l *LinearBackoff) NextDelay(attempt int) time.Duration { return l.Delay }

func (l *LinearBackoff) ShouldRetry(attempt int, err error) bool {
	if attempt >= l.MaxAttempts {
		return false
	}
	return errors.IsRetryable(err)
}

// ExecuteWithRetry runs operation until it succeeds, the strategy gives
// up, or the context is done. The last error is wrapped when attempts
// are exhausted.
func ExecuteWithRetry[T any](ctx context.Context, operation func() (T, error), config Config) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt < config.MaxAttempts; attempt++ {
		result, err := operation()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !config.Strategy.ShouldRetry(attempt, err) {
			return zero, err
		}

		delay := config.Strategy.NextDelay(attempt)
		if config.Jitter > 0 {
			delay = applyJitter(delay, config.Jitter)
		}
		if config.OnRetry != nil {
			config.OnRetry(attempt, err)
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return zero, fmt.Errorf("retry canceled: %w", ctx.Err())
		}
	}

	return zero, fmt.Errorf("max retries (%d) exceeded: %w", config.MaxAttempts, lastErr)
}

func applyJitter(delay time.Duration, factor float64) time.Duration {
	jitter := float64(delay) * factor
	adjusted := float64(delay) + (rand.Float64()-0.5)*2*jitter
	if adjusted < 0 {
		return 0
	}
	return time.Duration(adjusted)
}

// DefaultConfigs provides pre-tuned retry configurations.
var DefaultConfigs = struct {
	Fast     Config
	Standard Config
}{
	Fast: Config{
		MaxAttempts: 3,
		Strategy: &LinearBackoff{
			Delay:       100 * time.Millisecond,
			MaxAttempts: 3,
		},
		Jitter: 0.1,
	},
	Standard: Config{
		MaxAttempts: 5,
		Strategy: &ExponentialBackoff{
			InitialDelay: 100 * time.Millisecond,
			MaxDelay:     10 * time.Second,
			Multiplier:   2,
		},
		Jitter: 0.2,
	},
}
