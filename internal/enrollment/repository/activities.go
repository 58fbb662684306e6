package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Activity is one row of a lead's audit feed.
type Activity struct {
	ID        uuid.UUID
	LeadID    uuid.UUID
	UserID    uuid.UUID
	CadenceID *uuid.UUID
	Kind      string
	Name      string
	Status    *string
	Meta      map[string]any
	CreatedAt time.Time
}

// InsertActivity appends an activity. Activities for leads deleted in the
// meantime are dropped silently.
func (r *Repository) InsertActivity(ctx context.Context, a Activity) error {
	meta, err := json.Marshal(a.Meta)
	if err != nil {
		return err
	}
	if a.Meta == nil {
		meta = []byte("{}")
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	_, err = r.q.Exec(ctx, `
		INSERT INTO activities (id, lead_id, user_id, cadence_id, kind, name, status, meta, created_at)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9
		WHERE EXISTS (SELECT 1 FROM leads WHERE id = $2)
		ON CONFLICT (id) DO NOTHING
	`, a.ID, a.LeadID, a.UserID, a.CadenceID, a.Kind, a.Name, a.Status, meta, a.CreatedAt)
	return err
}
