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
)

// UpdateLinkStatus moves leads between not_started, in_progress and stopped
// inside a cadence. Re-applying the current status is reported as a noop.
func (c *Coordinator) UpdateLinkStatus(ctx context.Context, actor Actor, it domain.IntegrationType, req transport.UpdateLinkStatusRequest) (transport.BatchResponse, error) {
	st, err := c.begin(ctx, OpLinkStatus, actor, it, false)
	if err != nil {
		return transport.BatchResponse{}, err
	}

	for _, record := range req.Leads {
		if err := c.aborted(ctx, st); err != nil {
			return transport.BatchResponse{}, err
		}
		success, err := c.linkStatusOne(ctx, st, record)
		if err != nil {
			c.fail(ctx, st, record.LeadID, record.CadenceID, err)
			continue
		}
		c.succeed(st, success)
	}
	return c.finish(ctx, st), nil
}

func (c *Coordinator) linkStatusOne(ctx context.Context, st *batchState, record transport.LinkStatusRecord) (transport.ElementSuccess, error) {
	if err := c.validate(record); err != nil {
		return transport.ElementSuccess{}, err
	}
	cadence, err := c.cadence(ctx, st, record.CadenceID)
	if err != nil {
		return transport.ElementSuccess{}, err
	}
	requested := domain.LinkStatus(record.Status)

	return c.runRecord(ctx, st, func(ctx context.Context, tx repository.Store, eff *effects) (transport.ElementSuccess, error) {
		lead, err := tx.GetLeadByIntegration(ctx, st.actor.CompanyID, st.it, strings.TrimSpace(record.LeadID))
		if errors.Is(err, repository.ErrNotFound) {
			return transport.ElementSuccess{}, apperr.NotFound("lead not found")
		}
		if err != nil {
			return transport.ElementSuccess{}, err
		}
		link, err := tx.GetLink(ctx, lead.ID, cadence.ID)
		if errors.Is(err, repository.ErrNotFound) {
			return transport.ElementSuccess{}, apperr.NotFound("lead is not in cadence")
		}
		if err != nil {
			return transport.ElementSuccess{}, err
		}

		guard := domain.CanChangeLinkStatus(domain.LinkChangeContext{
			Current:   link.Status,
			Requested: requested,
			Cadence:   cadence.Status,
		})
		if !guard.Allowed {
			return transport.ElementSuccess{}, guard.Error()
		}

		nodeID := link.StatusNodeID
		switch requested {
		case domain.LinkInProgress:
			hasTask, err := tx.HasTask(ctx, lead.ID, cadence.ID)
			if err != nil {
				return transport.ElementSuccess{}, err
			}
			if !hasTask {
				node, err := c.firstNode(ctx, st, cadence.ID)
				if err != nil {
					return transport.ElementSuccess{}, err
				}
				eff.firstTask = &firstTask{lead: lead, cadence: cadence, node: node}
			}
		case domain.LinkStopped:
			nodeID, err = c.bridge.StopOutstandingTask(ctx, tx, lead.ID, &cadence.ID)
			if err != nil {
				return transport.ElementSuccess{}, err
			}
		}

		if err := tx.UpdateLinkStatus(ctx, link.ID, requested, nodeID); err != nil {
			return transport.ElementSuccess{}, err
		}
		eff.publish(events.LinkStatusChanged{
			BaseEvent:  events.NewBaseEvent(),
			CompanyID:  st.actor.CompanyID,
			LeadID:     lead.ID,
			UserID:     lead.UserID,
			CadenceID:  cadence.ID,
			FromStatus: string(link.Status),
			ToStatus:   string(requested),
		})
		eff.recalculate(lead.UserID)

		return transport.ElementSuccess{
			LeadID:     record.LeadID,
			CadenceID:  cadence.ID.String(),
			Identifier: link.ID.String(),
			Status:     string(requested),
		}, nil
	})
}
