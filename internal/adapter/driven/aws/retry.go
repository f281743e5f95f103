package aws

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hydernasirr/aws-finops-2/internal/shared/types"
)

// RetryConfig configures the bounded backoff applied to retryable upstream
// failures. Retries live here, at the gateway boundary, and nowhere else.
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// DefaultRetryConfig keeps retries small: transient throttling recovers in
// seconds, anything longer should surface to the caller.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
	}
}

// retryWithBackoff runs operation up to cfg.MaxAttempts times, backing off
// exponentially between attempts. Only errors classified as retryable are
// retried; caller errors return immediately. Cancellation interrupts the
// wait.
func retryWithBackoff(ctx context.Context, cfg RetryConfig, log *zap.Logger, op string, operation func() error) error {
	delay := cfg.InitialDelay

	for attempt := 1; ; attempt++ {
		err := operation()
		if err == nil {
			if attempt > 1 {
				log.Info("upstream call succeeded after retries",
					zap.String("operation", op),
					zap.Int("attempts", attempt))
			}
			return nil
		}

		if !types.IsRetryable(err) || attempt == cfg.MaxAttempts {
			if types.IsRetryable(err) {
				return fmt.Errorf("%s failed after %d attempts: %w", op, attempt, err)
			}
			return err
		}

		log.Warn("upstream call failed, retrying",
			zap.String("operation", op),
			zap.Int("attempt", attempt),
			zap.Duration("next_retry_delay", delay),
			zap.Error(err))

		select {
		case <-time.After(delay):
			delay = time.Duration(float64(delay) * cfg.Multiplier)
			if delay > cfg.MaxDelay {
				delay = cfg.MaxDelay
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
