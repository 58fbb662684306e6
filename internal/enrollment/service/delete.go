package service

import (
	"context"
	"strings"

	"cadence_sync_backend/internal/enrollment/domain"
	"cadence_sync_backend/internal/enrollment/repository"
	"cadence_sync_backend/internal/enrollment/transport"
	"cadence_sync_backend/internal/events"
	"cadence_sync_backend/platform/apperr"

	"github.com/google/uuid"
)

// DeleteLeads removes leads deleted in the CRM. Links, tasks and history
// cascade in the store.
func (c *Coordinator) DeleteLeads(ctx context.Context, actor Actor, it domain.IntegrationType, req transport.DeleteLeadsRequest) (transport.BatchResponse, error) {
	st, err := c.begin(ctx, OpDelete, actor, it, false)
	if err != nil {
		return transport.BatchResponse{}, err
	}

	var (
		leadIDs []uuid.UUID
		owners  = make(map[uuid.UUID]struct{})
		userIDs []uuid.UUID
	)
	for _, record := range req.Leads {
		if err := c.aborted(ctx, st); err != nil {
			return transport.BatchResponse{}, err
		}
		deleted, err := c.deleteOne(ctx, st, record)
		if err != nil {
			c.fail(ctx, st, record.LeadID, "", err)
			continue
		}
		leadIDs = append(leadIDs, deleted.ID)
		if _, ok := owners[deleted.UserID]; !ok {
			owners[deleted.UserID] = struct{}{}
			userIDs = append(userIDs, deleted.UserID)
		}
		c.succeed(st, transport.ElementSuccess{
			LeadID:     record.LeadID,
			Identifier: deleted.ID.String(),
			Status:     "deleted",
		})
	}

	if len(leadIDs) > 0 {
		c.bus.Publish(ctx, events.LeadsDeleted{
			BaseEvent: events.NewBaseEvent(),
			CompanyID: st.actor.CompanyID,
			LeadIDs:   leadIDs,
			UserIDs:   userIDs,
		})
	}
	return c.finish(ctx, st), nil
}

func (c *Coordinator) deleteOne(ctx context.Context, st *batchState, record transport.DeleteLeadRecord) (repository.DeletedLead, error) {
	if err := c.validate(record); err != nil {
		return repository.DeletedLead{}, err
	}
	var deleted repository.DeletedLead
	_, err := c.runRecord(ctx, st, func(ctx context.Context, tx repository.Store, eff *effects) (transport.ElementSuccess, error) {
		rows, err := tx.DeleteLeadsByIntegration(ctx, st.actor.CompanyID, st.it, []string{strings.TrimSpace(record.LeadID)})
		if err != nil {
			return transport.ElementSuccess{}, err
		}
		if len(rows) == 0 {
			return transport.ElementSuccess{}, apperr.NotFound("lead not found")
		}
		deleted = rows[0]
		eff.recalculate(deleted.UserID)
		return transport.ElementSuccess{}, nil
	})
	return deleted, err
}
