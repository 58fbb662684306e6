package repository

import (
	"context"
	"errors"

	"cadence_sync_backend/internal/enrollment/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// LatestOpenTask returns the most recently started task of the lead that is
// neither completed nor skipped, optionally restricted to one cadence.
// Returns nil when there is none.
func (r *Repository) LatestOpenTask(ctx context.Context, leadID uuid.UUID, cadenceID *uuid.UUID) (*domain.Task, error) {
	var t domain.Task
	err := r.q.QueryRow(ctx, `
		SELECT id, lead_id, cadence_id, node_id, user_id, completed, is_skipped, complete_time, start_time
		FROM tasks
		WHERE lead_id = $1
		  AND ($2::uuid IS NULL OR cadence_id = $2)
		  AND NOT completed AND NOT is_skipped
		ORDER BY start_time DESC
		LIMIT 1
	`, leadID, cadenceID).Scan(&t.ID, &t.LeadID, &t.CadenceID, &t.NodeID, &t.UserID, &t.Completed, &t.IsSkipped, &t.CompleteTime, &t.StartTime)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *Repository) HasTask(ctx context.Context, leadID, cadenceID uuid.UUID) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM tasks WHERE lead_id = $1 AND cadence_id = $2)
	`, leadID, cadenceID).Scan(&exists)
	return exists, err
}
