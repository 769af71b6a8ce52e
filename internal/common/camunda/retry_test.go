package camunda

import (
	"context"
	"errors"
	"testing"
	"time"

	"quest-workers/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var fastRetry = RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

func TestRetryWithBackoff_EventuallySucceeds(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), fastRetry, logger.NewTestLogger(t), "postgres", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoff_GivesUp(t *testing.T) {
	calls := 0
	cause := errors.New("connection refused")
	err := RetryWithBackoff(context.Background(), fastRetry, logger.NewNoOpLogger(), "redis", func(context.Context) error {
		calls++
		return cause
	})

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "redis failed after 3 attempts")
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoff_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	slow := RetryConfig{MaxAttempts: 5, BaseDelay: time.Hour}

	calls := 0
	err := RetryWithBackoff(ctx, slow, logger.NewNoOpLogger(), "zeebe", func(context.Context) error {
		calls++
		cancel()
		return errors.New("unavailable")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestRetryWithBackoff_ZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	_ = RetryWithBackoff(context.Background(), RetryConfig{}, logger.NewNoOpLogger(), "x", func(context.Context) error {
		calls++
		return errors.New("nope")
	})

	assert.Equal(t, 1, calls)
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil", nil, false},
		{"deadline", context.DeadlineExceeded, true},
		{"grpc unavailable", status.Error(codes.Unavailable, "gateway down"), true},
		{"grpc not found", status.Error(codes.NotFound, "job not found"), false},
		{"grpc invalid argument", status.Error(codes.InvalidArgument, "timeout must be positive"), false},
		{"plain connection refused", errors.New("dial tcp: connection refused"), true},
		{"plain business error", errors.New("invalid answers"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsTransient(tt.err))
		})
	}
}

func TestRetryWithBackoff_PermanentErrorStopsEarly(t *testing.T) {
	cfg := fastRetry
	cfg.Retryable = IsTransient

	calls := 0
	err := RetryWithBackoff(context.Background(), cfg, logger.NewNoOpLogger(), "zeebe", func(context.Context) error {
		calls++
		return status.Error(codes.PermissionDenied, "bad credentials")
	})

	assert.ErrorContains(t, err, "failed permanently")
	assert.Equal(t, 1, calls)
}
