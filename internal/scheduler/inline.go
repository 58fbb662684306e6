package scheduler

import (
	"context"

	"cadence_sync_backend/internal/enrollment/ports"
	"cadence_sync_backend/platform/logger"

	"github.com/google/uuid"
)

// Inline runs jobs on the caller's goroutine. It stands in for the queue when
// no Redis is configured, e.g. in local development.
type Inline struct {
	handlers *Worker
}

func NewInline(tasks ports.TaskService, activities ActivityWriter, log *logger.Logger) *Inline {
	return &Inline{handlers: newHandlers(tasks, activities, log)}
}

func (i *Inline) EnqueueRecalculation(ctx context.Context, userIDs []uuid.UUID) error {
	if len(userIDs) == 0 {
		return nil
	}
	task, err := NewRecalculateDailyTasksTask(userIDs)
	if err != nil {
		return err
	}
	return i.handlers.handleRecalculateDailyTasks(ctx, task)
}

func (i *Inline) EnqueueActivity(ctx context.Context, payload ActivityPayload) error {
	task, err := NewRecordActivityTask(payload)
	if err != nil {
		return err
	}
	return i.handlers.handleRecordActivity(ctx, task)
}
