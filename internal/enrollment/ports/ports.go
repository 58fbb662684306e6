// Package ports defines the interfaces the enrollment domain requires from
// external systems. Implementations are wired in the composition root.
package ports

import (
	"context"

	"cadence_sync_backend/internal/enrollment/domain"

	"github.com/google/uuid"
)

// FieldMapProvider returns the CRM markers used to classify integration_status.
type FieldMapProvider interface {
	GetFieldMap(ctx context.Context, companyID uuid.UUID, it domain.IntegrationType) (domain.FieldMap, error)
}

// TaskService is the external service that owns outreach tasks.
type TaskService interface {
	// CreateFirstTask creates the task for the first step of a cadence.
	CreateFirstTask(ctx context.Context, lead domain.Lead, cadence domain.Cadence, node domain.Node) error
	// RecalculateDailyTasks rebuilds the daily task lists of the given users.
	RecalculateDailyTasks(ctx context.Context, userIDs []uuid.UUID) error
}

// RecalculationScheduler enqueues a background daily-task recalculation.
type RecalculationScheduler interface {
	EnqueueRecalculation(ctx context.Context, userIDs []uuid.UUID) error
}

// ReportArchiver stores batch reports for operators to inspect and retry.
type ReportArchiver interface {
	Archive(ctx context.Context, companyID uuid.UUID, operation string, report any) error
}
