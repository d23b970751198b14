package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fastRetryConfig keeps tests quick while preserving the schedule's shape
func fastRetryConfig(maxAttempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts: maxAttempts,
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
	}
}

func TestRetryer_SucceedsAfterFailures(t *testing.T) {
	r := NewRetryer(fastRetryConfig(3), zap.NewNop())

	calls := 0
	result, err := Do(context.Background(), r, "test op", func(ctx context.Context) (string, error) {
		calls++
		if calls <= 2 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, calls)
}

func TestRetryer_FirstAttemptSucceeds(t *testing.T) {
	r := NewRetryer(fastRetryConfig(3), zap.NewNop())

	calls := 0
	result, err := Do(context.Background(), r, "test op", func(ctx context.Context) (int, error) {
		calls++
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, 1, calls)
}

func TestRetryer_ExhaustsAttempts(t *testing.T) {
	r := NewRetryer(fastRetryConfig(3), zap.NewNop())

	calls := 0
	opErr := errors.New("provider down")
	_, err := Do(context.Background(), r, "plan generation", func(ctx context.Context) (string, error) {
		calls++
		return "", opErr
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, opErr)
	assert.Contains(t, err.Error(), "plan generation")
	assert.Contains(t, err.Error(), "all 3 attempts failed")
}

func TestRetryer_ContextCancelledDuringBackoff(t *testing.T) {
	r := NewRetryer(RetryConfig{MaxAttempts: 3, BaseDelay: time.Minute, MaxDelay: time.Minute}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := Do(ctx, r, "section generation", func(ctx context.Context) (string, error) {
		calls++
		return "", errors.New("transient")
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
	assert.Contains(t, err.Error(), "section generation")
	assert.Contains(t, err.Error(), "transient")
}

func TestRetryer_BackoffSchedule(t *testing.T) {
	r := NewRetryer(DefaultRetryConfig(10), zap.NewNop())

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{attempt: 1, expected: time.Second},
		{attempt: 2, expected: 2 * time.Second},
		{attempt: 3, expected: 4 * time.Second},
		{attempt: 4, expected: 5 * time.Second}, // capped
		{attempt: 5, expected: 5 * time.Second},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, r.backoff(tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestNewRetryer_ClampsAttempts(t *testing.T) {
	r := NewRetryer(RetryConfig{MaxAttempts: 0}, zap.NewNop())

	calls := 0
	_, err := Do(context.Background(), r, "test op", func(ctx context.Context) (string, error) {
		calls++
		return "", errors.New("boom")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
