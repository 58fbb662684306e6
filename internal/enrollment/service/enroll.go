package service

import (
	"context"
	"errors"
	"strings"

	"cadence_sync_backend/internal/enrollment/domain"
	"cadence_sync_backend/internal/enrollment/repository"
	"cadence_sync_backend/internal/enrollment/transport"
	"cadence_sync_backend/internal/events"
	"cadence_sync_backend/platform/apperr"

	"github.com/google/uuid"
)

// EnrollLeads creates or finds each CRM lead and links it to the requested cadence.
func (c *Coordinator) EnrollLeads(ctx context.Context, actor Actor, it domain.IntegrationType, req transport.EnrollLeadsRequest) (transport.BatchResponse, error) {
	st, err := c.begin(ctx, OpEnroll, actor, it, true)
	if err != nil {
		return transport.BatchResponse{}, err
	}

	for _, record := range req.Leads {
		if err := c.aborted(ctx, st); err != nil {
			return transport.BatchResponse{}, err
		}
		success, err := c.enrollOne(ctx, st, record)
		if err != nil {
			c.fail(ctx, st, record.LeadID, record.CadenceID, err)
			continue
		}
		c.succeed(st, success)
	}
	return c.finish(ctx, st), nil
}

func (c *Coordinator) enrollOne(ctx context.Context, st *batchState, record transport.EnrollLeadRecord) (transport.ElementSuccess, error) {
	if err := c.validate(record); err != nil {
		return transport.ElementSuccess{}, err
	}
	cadence, err := c.cadence(ctx, st, record.CadenceID)
	if err != nil {
		return transport.ElementSuccess{}, err
	}
	owner, err := c.owner(ctx, st, strings.TrimSpace(record.OwnerID))
	if err != nil {
		return transport.ElementSuccess{}, err
	}
	guard := domain.CanEnroll(domain.EnrollContext{
		Cadence:           cadence,
		User:              owner,
		EnforceTeamAccess: c.opts.EnforceTeamAccess,
	})
	if !guard.Allowed {
		return transport.ElementSuccess{}, guard.Error()
	}
	node, err := c.firstNode(ctx, st, cadence.ID)
	if err != nil {
		return transport.ElementSuccess{}, err
	}

	return c.runRecord(ctx, st, func(ctx context.Context, tx repository.Store, eff *effects) (transport.ElementSuccess, error) {
		lead, err := tx.GetLeadByIntegration(ctx, st.actor.CompanyID, st.it, strings.TrimSpace(record.LeadID))
		switch {
		case err == nil:
			if _, err := c.reconcile(ctx, tx, st, &lead, record.LeadPayload, &owner, eff); err != nil {
				return transport.ElementSuccess{}, err
			}
		case errors.Is(err, repository.ErrNotFound):
			lead, err = c.createLead(ctx, tx, st, record.LeadPayload, owner)
			if err != nil {
				return transport.ElementSuccess{}, err
			}
		default:
			return transport.ElementSuccess{}, err
		}

		link, err := c.link(ctx, tx, st, lead, cadence)
		if err != nil {
			return transport.ElementSuccess{}, err
		}
		if link.Status == domain.LinkInProgress {
			eff.firstTask = &firstTask{lead: lead, cadence: cadence, node: node}
		}
		eff.publish(events.LeadEnrolled{
			BaseEvent: events.NewBaseEvent(),
			CompanyID: st.actor.CompanyID,
			LeadID:    lead.ID,
			UserID:    lead.UserID,
			CadenceID: cadence.ID,
			Status:    string(link.Status),
			Order:     link.Order,
		})
		eff.recalculate(lead.UserID)

		return transport.ElementSuccess{
			LeadID:     record.LeadID,
			CadenceID:  cadence.ID.String(),
			Identifier: lead.ID.String(),
			Status:     string(link.Status),
		}, nil
	})
}

// link creates the lead's membership in cadence with the next free order.
func (c *Coordinator) link(ctx context.Context, tx repository.Store, st *batchState, lead domain.Lead, cadence domain.Cadence) (domain.Link, error) {
	_, err := tx.GetLink(ctx, lead.ID, cadence.ID)
	if err == nil {
		return domain.Link{}, apperr.Conflict("lead already present in cadence")
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return domain.Link{}, err
	}

	order, err := st.orders.Next(ctx, tx, cadence.ID, lead.UserID)
	if err != nil {
		return domain.Link{}, err
	}

	now := c.now()
	link := domain.Link{
		ID:           uuid.New(),
		LeadID:       lead.ID,
		CadenceID:    cadence.ID,
		UserID:       lead.UserID,
		Status:       domain.SeedLinkStatus(lead.Status, cadence.Status),
		Unsubscribed: lead.Unsubscribed,
		Order:        order,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := tx.CreateLink(ctx, link); err != nil {
		switch {
		case errors.Is(err, repository.ErrOrderTaken):
			st.orders.Invalidate(cadence.ID, lead.UserID)
			return domain.Link{}, errRecordRace
		case errors.Is(err, repository.ErrLinkExists):
			return domain.Link{}, apperr.Conflict("lead already present in cadence")
		}
		return domain.Link{}, err
	}
	return link, nil
}
