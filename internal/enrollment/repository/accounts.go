package repository

import (
	"context"

	"cadence_sync_backend/internal/enrollment/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const accountColumns = `id, company_id, user_id, name, size, url, country, zip_code, phone_number, integration_id, integration_type`

func scanAccount(row pgx.Row) (domain.Account, error) {
	var a domain.Account
	err := row.Scan(&a.ID, &a.CompanyID, &a.UserID, &a.Name, &a.Size, &a.URL, &a.Country, &a.ZipCode, &a.PhoneNumber, &a.IntegrationID, &a.IntegrationType)
	return a, notFound(err)
}

func (r *Repository) GetAccount(ctx context.Context, id uuid.UUID) (domain.Account, error) {
	return scanAccount(r.q.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id))
}

func (r *Repository) GetAccountByIntegration(ctx context.Context, companyID uuid.UUID, accountType, integrationID string) (domain.Account, error) {
	return scanAccount(r.q.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE company_id = $1 AND integration_type = $2 AND integration_id = $3
	`, companyID, accountType, integrationID))
}

func (r *Repository) CreateAccount(ctx context.Context, a domain.Account) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO accounts (id, company_id, user_id, name, size, url, country, zip_code, phone_number, integration_id, integration_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, a.ID, a.CompanyID, a.UserID, a.Name, a.Size, a.URL, a.Country, a.ZipCode, a.PhoneNumber, a.IntegrationID, a.IntegrationType)
	return mapUniqueViolation(err)
}

func (r *Repository) UpdateAccountProfile(ctx context.Context, id uuid.UUID, p AccountProfile) error {
	_, err := r.q.Exec(ctx, `
		UPDATE accounts SET
			name = COALESCE($2, name),
			size = COALESCE($3, size),
			url = COALESCE($4, url),
			country = COALESCE($5, country),
			zip_code = COALESCE($6, zip_code),
			phone_number = COALESCE($7, phone_number),
			updated_at = now()
		WHERE id = $1
	`, id, p.Name, p.Size, p.URL, p.Country, p.ZipCode, p.PhoneNumber)
	return err
}

func (r *Repository) SetAccountOwner(ctx context.Context, id, userID uuid.UUID) error {
	_, err := r.q.Exec(ctx, `UPDATE accounts SET user_id = $2, updated_at = now() WHERE id = $1`, id, userID)
	return err
}

func (r *Repository) RekeyAccount(ctx context.Context, id uuid.UUID, integrationID string) error {
	_, err := r.q.Exec(ctx, `UPDATE accounts SET integration_id = $2, updated_at = now() WHERE id = $1`, id, integrationID)
	return mapUniqueViolation(err)
}
