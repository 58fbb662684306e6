package service

import (
	"context"
	"errors"
	"strings"

	"cadence_sync_backend/internal/enrollment/domain"
	"cadence_sync_backend/internal/enrollment/repository"
	"cadence_sync_backend/internal/enrollment/transport"
	"cadence_sync_backend/platform/apperr"
)

// UpdateLeads reconciles CRM changes into existing leads: profile, account,
// owner and status.
func (c *Coordinator) UpdateLeads(ctx context.Context, actor Actor, it domain.IntegrationType, req transport.UpdateLeadsRequest) (transport.BatchResponse, error) {
	st, err := c.begin(ctx, OpUpdate, actor, it, true)
	if err != nil {
		return transport.BatchResponse{}, err
	}

	for _, record := range req.Leads {
		if err := c.aborted(ctx, st); err != nil {
			return transport.BatchResponse{}, err
		}
		success, err := c.updateOne(ctx, st, record)
		if err != nil {
			c.fail(ctx, st, record.LeadID, "", err)
			continue
		}
		c.succeed(st, success)
	}
	return c.finish(ctx, st), nil
}

func (c *Coordinator) updateOne(ctx context.Context, st *batchState, record transport.UpdateLeadRecord) (transport.ElementSuccess, error) {
	if err := c.validate(record); err != nil {
		return transport.ElementSuccess{}, err
	}
	var newOwner *domain.User
	if record.OwnerID != nil && strings.TrimSpace(*record.OwnerID) != "" {
		owner, err := c.owner(ctx, st, strings.TrimSpace(*record.OwnerID))
		if err != nil {
			return transport.ElementSuccess{}, err
		}
		newOwner = &owner
	}

	return c.runRecord(ctx, st, func(ctx context.Context, tx repository.Store, eff *effects) (transport.ElementSuccess, error) {
		lead, err := tx.GetLeadByIntegration(ctx, st.actor.CompanyID, st.it, strings.TrimSpace(record.LeadID))
		if errors.Is(err, repository.ErrNotFound) {
			return transport.ElementSuccess{}, apperr.NotFound("lead not found")
		}
		if err != nil {
			return transport.ElementSuccess{}, err
		}
		if _, err := c.reconcile(ctx, tx, st, &lead, record.LeadPayload, newOwner, eff); err != nil {
			return transport.ElementSuccess{}, err
		}
		return transport.ElementSuccess{
			LeadID:     record.LeadID,
			Identifier: lead.ID.String(),
			Status:     string(lead.Status),
		}, nil
	})
}
