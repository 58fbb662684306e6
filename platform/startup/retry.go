// Package startup holds helpers shared by the binaries' composition roots.
package startup

import (
	"context"
	"fmt"
	"time"

	"cadence_sync_backend/platform/logger"

	"github.com/sethvargo/go-retry"
)

// Retry runs fn up to attempts times with exponential backoff starting at
// baseDelay. Used for dependencies that may come up after the process.
func Retry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	attempt := 0
	backoff := retry.WithMaxRetries(uint64(attempts-1), retry.NewExponential(baseDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := fn(); err != nil {
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Must logs and panics when err is set.
func Must(log *logger.Logger, what string, err error) {
	if err == nil {
		return
	}
	log.Error("failed to "+what, "error", err)
	panic("failed to " + what + ": " + err.Error())
}
