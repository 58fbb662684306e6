// Package tasks connects link and lead status changes to the outreach task
// lifecycle: first-task creation, open-task lookup and daily recalculation.
package tasks

import (
	"context"
	"log/slog"

	"cadence_sync_backend/internal/enrollment/domain"
	"cadence_sync_backend/internal/enrollment/ports"
	"cadence_sync_backend/platform/logger"
	"cadence_sync_backend/platform/metrics"

	"github.com/google/uuid"
)

// TaskReader finds the lead's open task.
type TaskReader interface {
	LatestOpenTask(ctx context.Context, leadID uuid.UUID, cadenceID *uuid.UUID) (*domain.Task, error)
}

// Bridge invokes the task service and the recalculation scheduler.
type Bridge struct {
	tasks     ports.TaskService
	scheduler ports.RecalculationScheduler
	log       *logger.Logger
}

// NewBridge creates a Bridge.
func NewBridge(tasks ports.TaskService, scheduler ports.RecalculationScheduler, log *logger.Logger) *Bridge {
	return &Bridge{tasks: tasks, scheduler: scheduler, log: log}
}

// EnsureFirstTask asks the task service to create the task for the cadence's
// first node. A cadence without steps has nothing to create.
func (b *Bridge) EnsureFirstTask(ctx context.Context, lead domain.Lead, cadence domain.Cadence, firstNode *domain.Node) error {
	if firstNode == nil {
		b.log.WithContext(ctx).Warn("cadence has no first node, skipping first task",
			slog.String("cadence_id", cadence.ID.String()),
			slog.String("lead_id", lead.ID.String()),
		)
		return nil
	}
	if err := b.tasks.CreateFirstTask(ctx, lead, cadence, *firstNode); err != nil {
		metrics.RecordIntegrationError("task_service")
		return err
	}
	return nil
}

// StopOutstandingTask returns the node of the lead's latest open task so the
// stopped links remember where the lead left off. Nil means no open task.
func (b *Bridge) StopOutstandingTask(ctx context.Context, q TaskReader, leadID uuid.UUID, cadenceID *uuid.UUID) (*uuid.UUID, error) {
	task, err := q.LatestOpenTask(ctx, leadID, cadenceID)
	if err != nil || task == nil {
		return nil, err
	}
	return task.NodeID, nil
}

// ScheduleRecalculation enqueues one recalculation for the given users.
// Failures are logged; the records that caused them are already committed.
func (b *Bridge) ScheduleRecalculation(ctx context.Context, userIDs []uuid.UUID) {
	if len(userIDs) == 0 {
		return
	}
	if err := b.scheduler.EnqueueRecalculation(ctx, userIDs); err != nil {
		metrics.RecordIntegrationError("recalculation_queue")
		b.log.WithContext(ctx).Error("failed to schedule task recalculation",
			slog.Int("users", len(userIDs)),
			slog.String("error", err.Error()),
		)
	}
}

// Recalculation collects the users whose daily tasks must be rebuilt after a
// batch, keeping first-seen order and dropping duplicates.
type Recalculation struct {
	seen map[uuid.UUID]struct{}
	ids  []uuid.UUID
}

// NewRecalculation creates an empty set.
func NewRecalculation() *Recalculation {
	return &Recalculation{seen: make(map[uuid.UUID]struct{})}
}

// Add records users. uuid.Nil is ignored.
func (r *Recalculation) Add(userIDs ...uuid.UUID) {
	for _, id := range userIDs {
		if id == uuid.Nil {
			continue
		}
		if _, ok := r.seen[id]; ok {
			continue
		}
		r.seen[id] = struct{}{}
		r.ids = append(r.ids, id)
	}
}

// UserIDs returns the collected users.
func (r *Recalculation) UserIDs() []uuid.UUID {
	out := make([]uuid.UUID, len(r.ids))
	copy(out, r.ids)
	return out
}

// Len returns the number of distinct users.
func (r *Recalculation) Len() int { return len(r.ids) }
