package scheduler

import (
	"context"
	"fmt"

	"cadence_sync_backend/internal/enrollment/ports"
	"cadence_sync_backend/internal/enrollment/repository"
	"cadence_sync_backend/platform/config"
	"cadence_sync_backend/platform/logger"
	"cadence_sync_backend/platform/metrics"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// ActivityWriter persists lead activity rows.
type ActivityWriter interface {
	InsertActivity(ctx context.Context, a repository.Activity) error
}

type Worker struct {
	server     *asynq.Server
	mux        *asynq.ServeMux
	tasks      ports.TaskService
	activities ActivityWriter
	log        *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, tasks ports.TaskService, activities ActivityWriter, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	w := newHandlers(tasks, activities, log)
	w.server = server
	return w, nil
}

func newHandlers(tasks ports.TaskService, activities ActivityWriter, log *logger.Logger) *Worker {
	mux := asynq.NewServeMux()
	w := &Worker{
		mux:        mux,
		tasks:      tasks,
		activities: activities,
		log:        log,
	}

	mux.HandleFunc(TaskRecordActivity, w.handleRecordActivity)
	mux.HandleFunc(TaskRecalculateDailyTasks, w.handleRecalculateDailyTasks)
	return w
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleRecalculateDailyTasks(ctx context.Context, task *asynq.Task) error {
	userIDs, err := ParseRecalculateDailyTasksPayload(task)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	if len(userIDs) == 0 {
		return nil
	}

	if err := w.tasks.RecalculateDailyTasks(ctx, userIDs); err != nil {
		metrics.RecordIntegrationError("task_service")
		w.log.Warn("daily task recalculation failed", "users", len(userIDs), "error", err)
		return err
	}
	return nil
}

func (w *Worker) handleRecordActivity(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseRecordActivityPayload(task)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	activity, err := payload.toActivity()
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	return w.activities.InsertActivity(ctx, activity)
}

func (p ActivityPayload) toActivity() (repository.Activity, error) {
	leadID, err := uuid.Parse(p.LeadID)
	if err != nil {
		return repository.Activity{}, fmt.Errorf("invalid lead id: %w", err)
	}
	userID, err := uuid.Parse(p.UserID)
	if err != nil {
		return repository.Activity{}, fmt.Errorf("invalid user id: %w", err)
	}

	a := repository.Activity{
		LeadID:    leadID,
		UserID:    userID,
		Kind:      p.Kind,
		Name:      p.Name,
		Status:    p.Status,
		Meta:      p.Meta,
		CreatedAt: p.OccurredAt,
	}
	if p.ActivityID != "" {
		id, err := uuid.Parse(p.ActivityID)
		if err != nil {
			return repository.Activity{}, fmt.Errorf("invalid activity id: %w", err)
		}
		a.ID = id
	}
	if p.CadenceID != nil {
		id, err := uuid.Parse(*p.CadenceID)
		if err != nil {
			return repository.Activity{}, fmt.Errorf("invalid cadence id: %w", err)
		}
		a.CadenceID = &id
	}
	return a, nil
}
