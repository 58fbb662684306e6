package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type redisCfg struct{ url string }

func (c redisCfg) GetRedisURL() string       { return c.url }
func (c redisCfg) GetRedisTLSInsecure() bool { return false }
func (c redisCfg) GetAsynqQueueName() string { return "default" }
func (c redisCfg) GetAsynqConcurrency() int  { return 1 }

func TestNewRedisDisabledWithoutURL(t *testing.T) {
	client, err := NewRedis(context.Background(), redisCfg{})
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestNewRedisAndHealth(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := NewRedis(context.Background(), redisCfg{url: "redis://" + mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	h := NewHealth(client)
	require.NoError(t, h.Ping(context.Background()))

	mr.Close()
	assert.Error(t, h.Ping(context.Background()))
}

func TestNewRedisRejectsBadURL(t *testing.T) {
	_, err := NewRedis(context.Background(), redisCfg{url: "not a url"})
	assert.Error(t, err)
}
