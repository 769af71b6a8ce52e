package camunda

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"quest-workers/internal/common/logger"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// RetryConfig controls exponential backoff for startup connections.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration

	// Retryable, when set, stops retrying on errors it rejects.
	Retryable func(error) bool
}

var DefaultRetryConfig = RetryConfig{
	MaxAttempts: 10,
	BaseDelay:   2 * time.Second,
	MaxDelay:    30 * time.Second,
}

// RetryWithBackoff runs op until it succeeds, attempts run out or ctx is done.
// The delay doubles after every failure, capped at MaxDelay.
func RetryWithBackoff(ctx context.Context, cfg RetryConfig, log logger.Logger, name string, op func(context.Context) error) error {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}

	delay := cfg.BaseDelay
	var err error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err = op(ctx); err == nil {
			return nil
		}
		if attempt == cfg.MaxAttempts {
			break
		}
		if cfg.Retryable != nil && !cfg.Retryable(err) {
			return fmt.Errorf("%s failed permanently: %w", name, err)
		}

		log.Warn(name+" failed, retrying", map[string]interface{}{
			"error":       err.Error(),
			"attempt":     attempt,
			"maxAttempts": cfg.MaxAttempts,
			"nextRetryIn": delay.String(),
		})

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("%s cancelled after %d attempts: %w", name, attempt, ctx.Err())
		}

		delay *= 2
		if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}
	return fmt.Errorf("%s failed after %d attempts: %w", name, cfg.MaxAttempts, err)
}

// IsTransient reports whether a gateway error is worth retrying.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted:
			return true
		case codes.Unknown:
		default:
			return false
		}
	}

	msg := strings.ToLower(err.Error())
	for _, phrase := range []string{"connection refused", "connection reset", "broken pipe", "timeout"} {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}
