// Package cache provides the shared Redis connection.
// This is part of the platform layer and contains no business logic.
package cache

import (
	"context"
	"crypto/tls"
	"time"

	"cadence_sync_backend/platform/config"

	"github.com/redis/go-redis/v9"
)

// NewRedis connects to REDIS_URL. It returns nil without error when Redis is
// not configured.
func NewRedis(ctx context.Context, cfg config.SchedulerConfig) (*redis.Client, error) {
	if cfg.GetRedisURL() == "" {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		return nil, err
	}
	if cfg.GetRedisTLSInsecure() {
		if opt.TLSConfig == nil {
			opt.TLSConfig = &tls.Config{}
		}
		opt.TLSConfig.InsecureSkipVerify = true
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// Health exposes a Redis client as a readiness probe.
type Health struct {
	client *redis.Client
}

// NewHealth wraps client for readiness checks.
func NewHealth(client *redis.Client) *Health {
	return &Health{client: client}
}

// Ping checks that Redis answers.
func (h *Health) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return h.client.Ping(ctx).Err()
}
