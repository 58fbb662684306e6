package domain

import (
	"fmt"

	"cadence_sync_backend/platform/apperr"

	"github.com/google/uuid"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
	Kind    apperr.Kind
}

// Error converts the guard result to a typed error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return apperr.New(r.Kind, r.Reason)
}

func allow() GuardResult { return GuardResult{Allowed: true} }

func deny(kind apperr.Kind, format string, args ...any) GuardResult {
	return GuardResult{Allowed: false, Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// EnrollContext provides context for the cadence access guard.
type EnrollContext struct {
	Cadence Cadence
	User    User
	// EnforceTeamAccess restricts team cadences to the owner's sub-department.
	EnforceTeamAccess bool
}

// CanEnroll evaluates whether a lead owned by ctx.User may join ctx.Cadence.
// Rules:
//   - personal: the cadence must belong to the user
//   - company: the cadence must belong to the user's company
//   - team: always allowed, unless EnforceTeamAccess is set, in which case
//     the cadence's sub-department must match the user's
func CanEnroll(ctx EnrollContext) GuardResult {
	switch ctx.Cadence.Type {
	case CadencePersonal:
		if ctx.Cadence.UserID != ctx.User.ID {
			return deny(apperr.KindForbidden, "user %s cannot enroll into personal cadence %s", ctx.User.ID, ctx.Cadence.ID)
		}
	case CadenceCompany:
		if ctx.Cadence.CompanyID != ctx.User.CompanyID {
			return deny(apperr.KindForbidden, "user %s cannot enroll into company cadence %s", ctx.User.ID, ctx.Cadence.ID)
		}
	case CadenceTeam:
		if ctx.EnforceTeamAccess && !sameSubDepartment(ctx.Cadence.SubDepartmentID, ctx.User.SubDepartmentID) {
			return deny(apperr.KindForbidden, "user %s is not in the sub-department of team cadence %s", ctx.User.ID, ctx.Cadence.ID)
		}
	default:
		return deny(apperr.KindValidation, "cadence %s has unknown type %q", ctx.Cadence.ID, ctx.Cadence.Type)
	}
	return allow()
}

func sameSubDepartment(a, b *uuid.UUID) bool {
	return a != nil && b != nil && *a == *b
}

// SeedLinkStatus returns the status of a new link.
// Closed leads are enrolled stopped; otherwise the link follows the cadence.
func SeedLinkStatus(lead LeadStatus, cadence CadenceStatus) LinkStatus {
	switch {
	case lead.Closed():
		return LinkStopped
	case cadence == CadenceInProgress:
		return LinkInProgress
	default:
		return LinkNotStarted
	}
}

// LinkChangeContext provides context for link status change guards.
type LinkChangeContext struct {
	Current   LinkStatus
	Requested LinkStatus
	Cadence   CadenceStatus
}

// CanChangeLinkStatus evaluates whether a link may move to ctx.Requested.
// Rules, in order:
//   - the requested status must differ from the current one (noop)
//   - the cadence must have been started (noop)
//   - a link cannot go back to not_started
//   - in_progress requires the cadence to be in_progress (noop)
func CanChangeLinkStatus(ctx LinkChangeContext) GuardResult {
	if !ctx.Requested.Valid() {
		return deny(apperr.KindValidation, "unknown link status %q", ctx.Requested)
	}
	if ctx.Requested == ctx.Current {
		return deny(apperr.KindNoop, "lead is already %s in this cadence", ctx.Current)
	}
	if ctx.Cadence == CadenceNotStarted {
		return deny(apperr.KindNoop, "cannot change lead status while cadence is not started")
	}
	if ctx.Requested == LinkNotStarted {
		return deny(apperr.KindValidation, "cannot move lead back to not_started")
	}
	if ctx.Requested == LinkInProgress && ctx.Cadence != CadenceInProgress {
		return deny(apperr.KindNoop, "cannot resume lead while cadence is %s", ctx.Cadence)
	}
	return allow()
}
