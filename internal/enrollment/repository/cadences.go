package repository

import (
	"context"
	"errors"

	"cadence_sync_backend/internal/enrollment/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func (r *Repository) GetCadence(ctx context.Context, companyID, cadenceID uuid.UUID) (domain.Cadence, error) {
	var c domain.Cadence
	err := r.q.QueryRow(ctx, `
		SELECT id, company_id, user_id, sub_department_id, name, status, type
		FROM cadences
		WHERE id = $1 AND company_id = $2
	`, cadenceID, companyID).Scan(&c.ID, &c.CompanyID, &c.UserID, &c.SubDepartmentID, &c.Name, &c.Status, &c.Type)
	return c, notFound(err)
}

// GetFirstNode returns the first step of a cadence, or nil when the cadence has no steps.
func (r *Repository) GetFirstNode(ctx context.Context, cadenceID uuid.UUID) (*domain.Node, error) {
	var n domain.Node
	err := r.q.QueryRow(ctx, `
		SELECT id, cadence_id, step_number, is_first
		FROM nodes
		WHERE cadence_id = $1 AND is_first
		LIMIT 1
	`, cadenceID).Scan(&n.ID, &n.CadenceID, &n.StepNumber, &n.IsFirst)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}
