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
	"cadence_sync_backend/platform/metrics"
	"cadence_sync_backend/platform/phone"
	"cadence_sync_backend/platform/sanitize"

	"github.com/google/uuid"
)

// createLead inserts a lead from a CRM record. Its status is seeded from the
// reported integration_status.
func (c *Coordinator) createLead(ctx context.Context, tx repository.Store, st *batchState, p transport.LeadPayload, owner domain.User) (domain.Lead, error) {
	var accountID *uuid.UUID
	if p.Account != nil {
		account, err := c.ensureAccount(ctx, tx, st, p.Account, owner.ID)
		if err != nil {
			return domain.Lead{}, err
		}
		accountID = &account.ID
	}

	profile := leadProfile(p)
	now := c.now()
	lead := domain.Lead{
		ID:                    uuid.New(),
		CompanyID:             st.actor.CompanyID,
		UserID:                owner.ID,
		AccountID:             accountID,
		FirstName:             deref(profile.FirstName),
		LastName:              deref(profile.LastName),
		Email:                 profile.Email,
		PhoneNumber:           profile.PhoneNumber,
		JobPosition:           profile.JobPosition,
		LinkedinURL:           profile.LinkedinURL,
		Status:                domain.InitialLeadStatus(p.IntegrationStatus, st.markers),
		StatusUpdateTimestamp: &now,
		Unsubscribed:          p.Unsubscribed != nil && *p.Unsubscribed,
		IntegrationID:         strings.TrimSpace(p.LeadID),
		IntegrationType:       st.it,
		IntegrationStatus:     profile.IntegrationStatus,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := tx.CreateLead(ctx, lead); err != nil {
		if errors.Is(err, repository.ErrDuplicateIntegration) {
			// created by a concurrent batch; the retry finds it
			return domain.Lead{}, errRecordRace
		}
		return domain.Lead{}, err
	}
	if lead.Status != domain.LeadOngoing {
		if err := tx.AddStatusHistory(ctx, lead.ID, lead.Status, "created "+string(lead.Status)+" from CRM"); err != nil {
			return domain.Lead{}, err
		}
	}
	return lead, nil
}

// ensureAccount finds the CRM account of a lead or creates it.
func (c *Coordinator) ensureAccount(ctx context.Context, tx repository.Store, st *batchState, p *transport.AccountPayload, ownerID uuid.UUID) (domain.Account, error) {
	integrationID := strings.TrimSpace(p.IntegrationID)
	account, err := tx.GetAccountByIntegration(ctx, st.actor.CompanyID, st.it.AccountType(), integrationID)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return domain.Account{}, err
	}

	profile := accountProfile(p)
	account = domain.Account{
		ID:              uuid.New(),
		CompanyID:       st.actor.CompanyID,
		UserID:          ownerID,
		Name:            deref(profile.Name),
		Size:            profile.Size,
		URL:             profile.URL,
		Country:         profile.Country,
		ZipCode:         profile.ZipCode,
		PhoneNumber:     profile.PhoneNumber,
		IntegrationID:   integrationID,
		IntegrationType: st.it.AccountType(),
	}
	if err := tx.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateIntegration) {
			return domain.Account{}, errRecordRace
		}
		return domain.Account{}, err
	}
	return account, nil
}

// reconcile applies a CRM update to an existing lead: profile and account
// fields, owner reassignment and at most one status transition. lead is
// updated in place.
func (c *Coordinator) reconcile(ctx context.Context, tx repository.Store, st *batchState, lead *domain.Lead, p transport.LeadPayload, newOwner *domain.User, eff *effects) (domain.LeadTransition, error) {
	profile := leadProfile(p)

	var account *domain.Account
	switch {
	case lead.AccountID != nil:
		a, err := tx.GetAccount(ctx, *lead.AccountID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return domain.TransitionNone, err
		}
		if err == nil {
			account = &a
			if p.Account != nil {
				if ap := accountProfile(p.Account); !ap.Empty() {
					if err := tx.UpdateAccountProfile(ctx, a.ID, ap); err != nil {
						return domain.TransitionNone, err
					}
				}
			}
		}
	case p.Account != nil:
		a, err := c.ensureAccount(ctx, tx, st, p.Account, lead.UserID)
		if err != nil {
			return domain.TransitionNone, err
		}
		account = &a
		profile.AccountID = &a.ID
		lead.AccountID = &a.ID
	}

	if err := tx.UpdateLeadProfile(ctx, lead.ID, profile); err != nil {
		return domain.TransitionNone, err
	}
	if profile.IntegrationStatus != nil {
		lead.IntegrationStatus = profile.IntegrationStatus
	}
	if profile.Unsubscribed != nil {
		lead.Unsubscribed = *profile.Unsubscribed
	}

	if newOwner != nil && newOwner.ID != lead.UserID {
		if err := c.changeOwner(ctx, tx, st, lead, account, *newOwner, eff); err != nil {
			return domain.TransitionNone, err
		}
	}

	transition := domain.DecideLeadTransition(lead.Status, p.IntegrationStatus, st.markers)
	if transition == domain.TransitionNone {
		return transition, nil
	}
	if err := c.applyTransition(ctx, tx, st, lead, account, transition, p, eff); err != nil {
		return domain.TransitionNone, err
	}
	return transition, nil
}

func (c *Coordinator) changeOwner(ctx context.Context, tx repository.Store, st *batchState, lead *domain.Lead, account *domain.Account, owner domain.User, eff *effects) error {
	previous := lead.UserID
	if err := tx.SetLeadOwner(ctx, lead.ID, owner.ID); err != nil {
		return err
	}
	if account != nil && account.UserID != owner.ID {
		if err := tx.SetAccountOwner(ctx, account.ID, owner.ID); err != nil {
			return err
		}
		account.UserID = owner.ID
	}
	lead.UserID = owner.ID

	eff.publish(events.LeadOwnerChanged{
		BaseEvent:     events.NewBaseEvent(),
		CompanyID:     st.actor.CompanyID,
		LeadID:        lead.ID,
		PreviousOwner: previous,
		NewOwner:      owner.ID,
	})
	eff.recalculate(previous, owner.ID)
	return nil
}

func (c *Coordinator) applyTransition(ctx context.Context, tx repository.Store, st *batchState, lead *domain.Lead, account *domain.Account, t domain.LeadTransition, p transport.LeadPayload, eff *effects) error {
	from := lead.Status
	target := t.Target()
	if err := tx.SetLeadStatus(ctx, lead.ID, target, c.now()); err != nil {
		return err
	}
	if err := tx.AddStatusHistory(ctx, lead.ID, target, t.HistoryMessage()); err != nil {
		return err
	}
	lead.Status = target

	var (
		stopped []uuid.UUID
		nodeID  *uuid.UUID
	)
	if t.StopsLinks() {
		var err error
		nodeID, err = c.bridge.StopOutstandingTask(ctx, tx, lead.ID, nil)
		if err != nil {
			return err
		}
		links, err := tx.StopLeadLinks(ctx, lead.ID, nodeID)
		if err != nil {
			return err
		}
		for _, l := range links {
			stopped = append(stopped, l.CadenceID)
		}
	}

	switch t {
	case domain.TransitionDisqualify:
		eff.publish(events.LeadDisqualified{
			BaseEvent:         events.NewBaseEvent(),
			CompanyID:         st.actor.CompanyID,
			LeadID:            lead.ID,
			UserID:            lead.UserID,
			StoppedLinks:      stopped,
			StatusNodeID:      nodeID,
			IntegrationStatus: deref(p.IntegrationStatus),
		})
	case domain.TransitionConvert:
		ev := events.LeadConverted{
			BaseEvent:    events.NewBaseEvent(),
			CompanyID:    st.actor.CompanyID,
			LeadID:       lead.ID,
			UserID:       lead.UserID,
			StoppedLinks: stopped,
			StatusNodeID: nodeID,
		}
		if err := c.rekeyConverted(ctx, tx, lead, account, p, &ev); err != nil {
			return err
		}
		eff.publish(ev)
	case domain.TransitionRequalify, domain.TransitionUnconvert:
		eff.publish(events.LeadRequalified{
			BaseEvent:  events.NewBaseEvent(),
			CompanyID:  st.actor.CompanyID,
			LeadID:     lead.ID,
			UserID:     lead.UserID,
			FromStatus: string(from),
		})
	}

	eff.recalculate(lead.UserID)
	metrics.RecordLeadTransition(string(t))
	return nil
}

// rekeyConverted points a converted lead (and its account) at the CRM records
// it was converted into.
func (c *Coordinator) rekeyConverted(ctx context.Context, tx repository.Store, lead *domain.Lead, account *domain.Account, p transport.LeadPayload, ev *events.LeadConverted) error {
	convertedType := lead.IntegrationType.ConvertedType()
	if convertedType != "" && p.ConvertedContactID != nil && strings.TrimSpace(*p.ConvertedContactID) != "" {
		contactID := strings.TrimSpace(*p.ConvertedContactID)
		if err := tx.RekeyLead(ctx, lead.ID, contactID, convertedType); err != nil {
			if errors.Is(err, repository.ErrDuplicateIntegration) {
				return apperr.Conflict("converted contact is already synced as another lead")
			}
			return err
		}
		lead.IntegrationID = contactID
		lead.IntegrationType = convertedType
		ev.NewIntegrationID = contactID
		ev.NewIntegrationType = string(convertedType)
	}
	if account != nil && p.ConvertedAccountID != nil && strings.TrimSpace(*p.ConvertedAccountID) != "" {
		accountID := strings.TrimSpace(*p.ConvertedAccountID)
		if accountID != account.IntegrationID {
			if err := tx.RekeyAccount(ctx, account.ID, accountID); err != nil {
				if errors.Is(err, repository.ErrDuplicateIntegration) {
					return apperr.Conflict("converted account is already synced")
				}
				return err
			}
			account.IntegrationID = accountID
		}
	}
	return nil
}

func leadProfile(p transport.LeadPayload) repository.LeadProfile {
	region := ""
	if p.Account != nil && p.Account.Country != nil {
		region = *p.Account.Country
	}
	profile := repository.LeadProfile{
		FirstName:    sanitize.FieldPtr(p.FirstName),
		LastName:     sanitize.FieldPtr(p.LastName),
		Email:        normalizeEmail(p.Email),
		PhoneNumber:  phone.NormalizePtr(sanitize.FieldPtr(p.PhoneNumber), region),
		JobPosition:  sanitize.FieldPtr(p.JobPosition),
		LinkedinURL:  sanitize.FieldPtr(p.LinkedinURL),
		Unsubscribed: p.Unsubscribed,
	}
	if p.IntegrationStatus != nil {
		status := strings.TrimSpace(*p.IntegrationStatus)
		profile.IntegrationStatus = &status
	}
	return profile
}

func accountProfile(p *transport.AccountPayload) repository.AccountProfile {
	region := deref(p.Country)
	return repository.AccountProfile{
		Name:        sanitize.FieldPtr(p.Name),
		Size:        sanitize.FieldPtr(p.Size),
		URL:         sanitize.FieldPtr(p.URL),
		Country:     sanitize.FieldPtr(p.Country),
		ZipCode:     sanitize.FieldPtr(p.ZipCode),
		PhoneNumber: phone.NormalizePtr(sanitize.FieldPtr(p.PhoneNumber), region),
	}
}

func normalizeEmail(s *string) *string {
	v := sanitize.FieldPtr(s)
	if v == nil {
		return nil
	}
	lower := strings.ToLower(*v)
	return &lower
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
