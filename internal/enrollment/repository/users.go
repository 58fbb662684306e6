package repository

import (
	"context"

	"cadence_sync_backend/internal/enrollment/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, company_id, sub_department_id, first_name, last_name, email, integration_id, integration_type`

func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.CompanyID, &u.SubDepartmentID, &u.FirstName, &u.LastName, &u.Email, &u.IntegrationID, &u.IntegrationType)
	return u, notFound(err)
}

func (r *Repository) GetUser(ctx context.Context, id uuid.UUID) (domain.User, error) {
	return scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetUserByIntegration resolves a CRM owner id to a user of the company.
func (r *Repository) GetUserByIntegration(ctx context.Context, companyID uuid.UUID, vendor, ownerID string) (domain.User, error) {
	return scanUser(r.q.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE company_id = $1 AND integration_type = $2 AND integration_id = $3
		LIMIT 1
	`, companyID, vendor, ownerID))
}
