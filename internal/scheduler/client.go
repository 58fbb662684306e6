package scheduler

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"

	"cadence_sync_backend/platform/config"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// Client enqueues background jobs onto the asynq queue.
type Client struct {
	client *asynq.Client
	queue  string
}

// Enqueuer is what the enrollment engine and the activity recorder need.
type Enqueuer interface {
	EnqueueRecalculation(ctx context.Context, userIDs []uuid.UUID) error
	EnqueueActivity(ctx context.Context, payload ActivityPayload) error
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queueName(cfg),
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueRecalculation schedules one daily-task rebuild for userIDs.
func (c *Client) EnqueueRecalculation(ctx context.Context, userIDs []uuid.UUID) error {
	if c == nil || c.client == nil || len(userIDs) == 0 {
		return nil
	}

	task, err := NewRecalculateDailyTasksTask(userIDs)
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(c.queue), asynq.MaxRetry(5))
	return err
}

// EnqueueActivity schedules the write of one activity row. The activity id
// doubles as the task id so a re-published event is not recorded twice.
func (c *Client) EnqueueActivity(ctx context.Context, payload ActivityPayload) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewRecordActivityTask(payload)
	if err != nil {
		return err
	}

	opts := []asynq.Option{asynq.Queue(c.queue)}
	if payload.ActivityID != "" {
		opts = append(opts, asynq.TaskID("activity:"+payload.ActivityID))
	}
	_, err = c.client.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	return err
}

func queueName(cfg config.SchedulerConfig) string {
	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}
	return queue
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
