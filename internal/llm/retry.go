package llm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// RetryConfig configures bounded retry with exponential backoff.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryConfig returns the standard backoff schedule: 1s doubling per
// attempt, capped at 5s.
func DefaultRetryConfig(maxAttempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts: maxAttempts,
		BaseDelay:   time.Second,
		MaxDelay:    5 * time.Second,
	}
}

// Retryer executes operations with bounded retry and exponential backoff.
// It is the sole resilience mechanism against a slow or flaky provider;
// every stage that talks to the completion client goes through it.
type Retryer struct {
	cfg    RetryConfig
	logger *zap.Logger
}

// NewRetryer creates a retryer
func NewRetryer(cfg RetryConfig, logger *zap.Logger) *Retryer {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Retryer{cfg: cfg, logger: logger}
}

// Do executes op up to the configured attempt count, waiting
// min(base * 2^(attempt-1), max) between failed attempts. The last error is
// propagated annotated with the context label. Backoff waits respect ctx.
func Do[T any](ctx context.Context, r *Retryer, label string, op func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		r.logger.Warn("operation attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", r.cfg.MaxAttempts),
			zap.String("context", label),
			zap.Error(err),
		)

		if attempt == r.cfg.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("%s: %w (last error: %v)", label, ctx.Err(), lastErr)
		case <-time.After(r.backoff(attempt)):
		}
	}

	return zero, fmt.Errorf("all %d attempts failed for %s: %w", r.cfg.MaxAttempts, label, lastErr)
}

// backoff returns the wait duration after the given 1-based attempt.
func (r *Retryer) backoff(attempt int) time.Duration {
	delay := r.cfg.BaseDelay << (attempt - 1)
	if delay > r.cfg.MaxDelay || delay <= 0 {
		return r.cfg.MaxDelay
	}
	return delay
}
