package scheduler

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type schedulerCfg struct {
	url   string
	queue string
}

func (c schedulerCfg) GetRedisURL() string       { return c.url }
func (c schedulerCfg) GetRedisTLSInsecure() bool { return false }
func (c schedulerCfg) GetAsynqQueueName() string { return c.queue }
func (c schedulerCfg) GetAsynqConcurrency() int  { return 1 }

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewClient(schedulerCfg{url: "redis://" + mr.Addr(), queue: "sync"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestNewClientRequiresRedisURL(t *testing.T) {
	_, err := NewClient(schedulerCfg{})
	assert.Error(t, err)
}

func TestEnqueueRecalculationPushesPendingTask(t *testing.T) {
	c, mr := newTestClient(t)

	require.NoError(t, c.EnqueueRecalculation(context.Background(), []uuid.UUID{uuid.New()}))
	require.NoError(t, c.EnqueueRecalculation(context.Background(), nil))

	pending, err := mr.List("asynq:{sync}:pending")
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestEnqueueActivityDeduplicatesByActivityID(t *testing.T) {
	c, mr := newTestClient(t)
	payload := ActivityPayload{
		ActivityID: uuid.NewString(),
		LeadID:     uuid.NewString(),
		UserID:     uuid.NewString(),
		Kind:       "lead_enrolled",
	}

	require.NoError(t, c.EnqueueActivity(context.Background(), payload))
	require.NoError(t, c.EnqueueActivity(context.Background(), payload))

	pending, err := mr.List("asynq:{sync}:pending")
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestNilClientIsNoop(t *testing.T) {
	var c *Client
	assert.NoError(t, c.EnqueueRecalculation(context.Background(), []uuid.UUID{uuid.New()}))
	assert.NoError(t, c.EnqueueActivity(context.Background(), ActivityPayload{}))
	assert.NoError(t, c.Close())
}

func TestRedisClientOptParsesURL(t *testing.T) {
	opt, err := redisClientOpt("rediss://:pw@cache.internal:6380/2", true)
	require.NoError(t, err)

	assert.Equal(t, "cache.internal:6380", opt.Addr)
	assert.Equal(t, "pw", opt.Password)
	assert.Equal(t, 2, opt.DB)
	require.NotNil(t, opt.TLSConfig)
	assert.True(t, opt.TLSConfig.InsecureSkipVerify)
}
