package repository

import (
	"context"

	"cadence_sync_backend/internal/enrollment/domain"

	"github.com/google/uuid"
)

// GetFieldMap loads the company's markers for one CRM object type.
func (r *Repository) GetFieldMap(ctx context.Context, companyID uuid.UUID, it domain.IntegrationType, objectType string) (domain.FieldMap, error) {
	var fm domain.FieldMap
	err := r.q.QueryRow(ctx, `
		SELECT status_field, disqualified_value, converted_value
		FROM crm_field_maps
		WHERE company_id = $1 AND integration_type = $2 AND object_type = $3
	`, companyID, it, objectType).Scan(&fm.StatusField, &fm.DisqualifiedValue, &fm.ConvertedValue)
	return fm, notFound(err)
}
