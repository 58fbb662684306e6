package startup

import (
	"context"
	"errors"
	"testing"
	"time"

	"cadence_sync_backend/platform/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetrySucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), logger.Nop(), "db", 3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryGivesUp(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), logger.Nop(), "db", 2, time.Millisecond, func() error {
		calls++
		return errors.New("refused")
	})

	require.Error(t, err)
	assert.Equal(t, 2, calls)
	assert.Contains(t, err.Error(), "db: refused")
}

func TestRetryRejectsZeroAttempts(t *testing.T) {
	assert.Error(t, Retry(context.Background(), logger.Nop(), "db", 0, time.Millisecond, func() error { return nil }))
}

func TestMustPanicsOnError(t *testing.T) {
	assert.NotPanics(t, func() { Must(logger.Nop(), "connect", nil) })
	assert.PanicsWithValue(t, "failed to connect: boom", func() { Must(logger.Nop(), "connect", errors.New("boom")) })
}
