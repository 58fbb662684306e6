package repository

import (
	"context"

	"cadence_sync_backend/internal/enrollment/domain"

	"github.com/google/uuid"
)

const linkColumns = `id, lead_id, cadence_id, user_id, status, unsubscribed, lead_cadence_order, status_node_id, created_at, updated_at`

func (r *Repository) GetLink(ctx context.Context, leadID, cadenceID uuid.UUID) (domain.Link, error) {
	var l domain.Link
	err := r.q.QueryRow(ctx, `
		SELECT `+linkColumns+`
		FROM lead_to_cadence
		WHERE lead_id = $1 AND cadence_id = $2
	`, leadID, cadenceID).Scan(&l.ID, &l.LeadID, &l.CadenceID, &l.UserID, &l.Status, &l.Unsubscribed, &l.Order, &l.StatusNodeID, &l.CreatedAt, &l.UpdatedAt)
	return l, notFound(err)
}

// CreateLink inserts a link. A second link for the same pair yields
// ErrLinkExists; an order taken by a concurrent insert yields ErrOrderTaken.
func (r *Repository) CreateLink(ctx context.Context, l domain.Link) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO lead_to_cadence (id, lead_id, cadence_id, user_id, status, unsubscribed, lead_cadence_order, status_node_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, l.ID, l.LeadID, l.CadenceID, l.UserID, l.Status, l.Unsubscribed, l.Order, l.StatusNodeID)
	return mapUniqueViolation(err)
}

func (r *Repository) UpdateLinkStatus(ctx context.Context, linkID uuid.UUID, status domain.LinkStatus, statusNodeID *uuid.UUID) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE lead_to_cadence
		SET status = $2, status_node_id = COALESCE($3, status_node_id), updated_at = now()
		WHERE id = $1
	`, linkID, status, statusNodeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// StopLeadLinks stops every link of the lead that is not already stopped and
// returns the links it changed.
func (r *Repository) StopLeadLinks(ctx context.Context, leadID uuid.UUID, statusNodeID *uuid.UUID) ([]domain.Link, error) {
	rows, err := r.q.Query(ctx, `
		UPDATE lead_to_cadence
		SET status = 'stopped', status_node_id = $2, updated_at = now()
		WHERE lead_id = $1 AND status <> 'stopped'
		RETURNING `+linkColumns, leadID, statusNodeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []domain.Link
	for rows.Next() {
		var l domain.Link
		if err := rows.Scan(&l.ID, &l.LeadID, &l.CadenceID, &l.UserID, &l.Status, &l.Unsubscribed, &l.Order, &l.StatusNodeID, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

// MaxLeadCadenceOrder returns the highest order below ceiling used by the
// user's links in the cadence, or 0 when there is none.
func (r *Repository) MaxLeadCadenceOrder(ctx context.Context, cadenceID, userID uuid.UUID, ceiling int) (int, error) {
	var last int
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(MAX(lead_cadence_order), 0)
		FROM lead_to_cadence
		WHERE cadence_id = $1 AND user_id = $2 AND lead_cadence_order < $3
	`, cadenceID, userID, ceiling).Scan(&last)
	return last, err
}
