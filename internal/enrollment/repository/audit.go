package repository

import (
	"context"

	"github.com/google/uuid"
)

// OrderAuditRow summarises the queue of one user in one cadence.
type OrderAuditRow struct {
	CompanyID uuid.UUID
	CadenceID uuid.UUID
	UserID    uuid.UUID
	Links     int
	MaxOrder  int
}

// OrderAudit reports the (cadence, user) queues whose highest order is at or
// above warnAt. Orders are unique per queue (uq_lead_to_cadence_order), so
// the ceiling is the only way a queue can run out. A nil companyID audits
// every company.
func (r *Repository) OrderAudit(ctx context.Context, companyID *uuid.UUID, warnAt int) ([]OrderAuditRow, error) {
	rows, err := r.q.Query(ctx, `
		SELECT c.company_id, l.cadence_id, l.user_id,
		       COUNT(*)::int AS links,
		       MAX(l.lead_cadence_order) AS max_order
		FROM lead_to_cadence l
		JOIN cadences c ON c.id = l.cadence_id
		WHERE ($1::uuid IS NULL OR c.company_id = $1)
		GROUP BY c.company_id, l.cadence_id, l.user_id
		HAVING MAX(l.lead_cadence_order) >= $2
		ORDER BY c.company_id, l.cadence_id, l.user_id
	`, companyID, warnAt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []OrderAuditRow
	for rows.Next() {
		var row OrderAuditRow
		if err := rows.Scan(&row.CompanyID, &row.CadenceID, &row.UserID, &row.Links, &row.MaxOrder); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
