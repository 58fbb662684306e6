package repository

import (
	"context"
	"time"

	"cadence_sync_backend/internal/enrollment/domain"

	"github.com/google/uuid"
)

const leadColumns = `
	id, company_id, user_id, account_id, first_name, last_name, email, phone_number,
	job_position, linkedin_url, status, status_update_timestamp, unsubscribed,
	integration_id, integration_type, integration_status, created_at, updated_at`

func (r *Repository) GetLeadByIntegration(ctx context.Context, companyID uuid.UUID, it domain.IntegrationType, integrationID string) (domain.Lead, error) {
	var l domain.Lead
	err := r.q.QueryRow(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE company_id = $1 AND integration_type = $2 AND integration_id = $3
	`, companyID, it, integrationID).Scan(
		&l.ID, &l.CompanyID, &l.UserID, &l.AccountID, &l.FirstName, &l.LastName, &l.Email, &l.PhoneNumber,
		&l.JobPosition, &l.LinkedinURL, &l.Status, &l.StatusUpdateTimestamp, &l.Unsubscribed,
		&l.IntegrationID, &l.IntegrationType, &l.IntegrationStatus, &l.CreatedAt, &l.UpdatedAt,
	)
	return l, notFound(err)
}

func (r *Repository) CreateLead(ctx context.Context, l domain.Lead) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO leads (
			id, company_id, user_id, account_id, first_name, last_name, email, phone_number,
			job_position, linkedin_url, status, status_update_timestamp, unsubscribed,
			integration_id, integration_type, integration_status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`, l.ID, l.CompanyID, l.UserID, l.AccountID, l.FirstName, l.LastName, l.Email, l.PhoneNumber,
		l.JobPosition, l.LinkedinURL, l.Status, l.StatusUpdateTimestamp, l.Unsubscribed,
		l.IntegrationID, l.IntegrationType, l.IntegrationStatus)
	return mapUniqueViolation(err)
}

func (r *Repository) UpdateLeadProfile(ctx context.Context, leadID uuid.UUID, p LeadProfile) error {
	_, err := r.q.Exec(ctx, `
		UPDATE leads SET
			first_name = COALESCE($2, first_name),
			last_name = COALESCE($3, last_name),
			email = COALESCE($4, email),
			phone_number = COALESCE($5, phone_number),
			job_position = COALESCE($6, job_position),
			linkedin_url = COALESCE($7, linkedin_url),
			integration_status = COALESCE($8, integration_status),
			account_id = COALESCE($9, account_id),
			unsubscribed = COALESCE($10, unsubscribed),
			updated_at = now()
		WHERE id = $1
	`, leadID, p.FirstName, p.LastName, p.Email, p.PhoneNumber, p.JobPosition, p.LinkedinURL, p.IntegrationStatus, p.AccountID,
		p.Unsubscribed)
	return err
}

func (r *Repository) SetLeadStatus(ctx context.Context, leadID uuid.UUID, status domain.LeadStatus, at time.Time) error {
	_, err := r.q.Exec(ctx, `
		UPDATE leads SET status = $2, status_update_timestamp = $3, updated_at = now()
		WHERE id = $1
	`, leadID, status, at)
	return err
}

func (r *Repository) SetLeadOwner(ctx context.Context, leadID, userID uuid.UUID) error {
	_, err := r.q.Exec(ctx, `UPDATE leads SET user_id = $2, updated_at = now() WHERE id = $1`, leadID, userID)
	return err
}

// RekeyLead points the lead at a different CRM record, e.g. the contact a lead
// was converted into.
func (r *Repository) RekeyLead(ctx context.Context, leadID uuid.UUID, integrationID string, it domain.IntegrationType) error {
	_, err := r.q.Exec(ctx, `
		UPDATE leads SET integration_id = $2, integration_type = $3, updated_at = now()
		WHERE id = $1
	`, leadID, integrationID, it)
	return mapUniqueViolation(err)
}

// DeleteLeadsByIntegration removes leads by CRM id. Links, tasks, status
// history and activities cascade.
func (r *Repository) DeleteLeadsByIntegration(ctx context.Context, companyID uuid.UUID, it domain.IntegrationType, integrationIDs []string) ([]DeletedLead, error) {
	rows, err := r.q.Query(ctx, `
		DELETE FROM leads
		WHERE company_id = $1 AND integration_type = $2 AND integration_id = ANY($3)
		RETURNING id, user_id, integration_id
	`, companyID, it, integrationIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	deleted := make([]DeletedLead, 0, len(integrationIDs))
	for rows.Next() {
		var d DeletedLead
		if err := rows.Scan(&d.ID, &d.UserID, &d.IntegrationID); err != nil {
			return nil, err
		}
		deleted = append(deleted, d)
	}
	return deleted, rows.Err()
}

func (r *Repository) AddStatusHistory(ctx context.Context, leadID uuid.UUID, status domain.LeadStatus, message string) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO status (id, lead_id, status, message) VALUES ($1, $2, $3, $4)
	`, uuid.New(), leadID, status, message)
	return err
}
