// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"cadence_sync_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// LeadActivity is implemented by events that end up as a row in the lead's
// activity feed.
type LeadActivity interface {
	Event
	EventID() uuid.UUID
	ActivityKind() string
	ActivityLeadID() uuid.UUID
	ActivityUserID() uuid.UUID
	ActivityCadenceID() *uuid.UUID
}

// =============================================================================
// Enrollment Domain Events
// =============================================================================

// LeadEnrolled is published after a lead is linked to a cadence.
type LeadEnrolled struct {
	BaseEvent
	CompanyID uuid.UUID `json:"companyId"`
	LeadID    uuid.UUID `json:"leadId"`
	UserID    uuid.UUID `json:"userId"`
	CadenceID uuid.UUID `json:"cadenceId"`
	Status    string    `json:"status"`
	Order     int       `json:"order"`
}

func (e LeadEnrolled) EventName() string             { return "enrollment.lead.enrolled" }
func (e LeadEnrolled) ActivityKind() string          { return "lead_enrolled" }
func (e LeadEnrolled) ActivityLeadID() uuid.UUID     { return e.LeadID }
func (e LeadEnrolled) ActivityUserID() uuid.UUID     { return e.UserID }
func (e LeadEnrolled) ActivityCadenceID() *uuid.UUID { return &e.CadenceID }

// LeadDisqualified is published when the CRM marks a lead as disqualified.
type LeadDisqualified struct {
	BaseEvent
	CompanyID         uuid.UUID   `json:"companyId"`
	LeadID            uuid.UUID   `json:"leadId"`
	UserID            uuid.UUID   `json:"userId"`
	StoppedLinks      []uuid.UUID `json:"stoppedLinks"`
	StatusNodeID      *uuid.UUID  `json:"statusNodeId,omitempty"`
	IntegrationStatus string      `json:"integrationStatus"`
}

func (e LeadDisqualified) EventName() string             { return "enrollment.lead.disqualified" }
func (e LeadDisqualified) ActivityKind() string          { return "lead_disqualified" }
func (e LeadDisqualified) ActivityLeadID() uuid.UUID     { return e.LeadID }
func (e LeadDisqualified) ActivityUserID() uuid.UUID     { return e.UserID }
func (e LeadDisqualified) ActivityCadenceID() *uuid.UUID { return nil }

// LeadConverted is published when the CRM converts a lead into a contact.
type LeadConverted struct {
	BaseEvent
	CompanyID          uuid.UUID   `json:"companyId"`
	LeadID             uuid.UUID   `json:"leadId"`
	UserID             uuid.UUID   `json:"userId"`
	StoppedLinks       []uuid.UUID `json:"stoppedLinks"`
	StatusNodeID       *uuid.UUID  `json:"statusNodeId,omitempty"`
	NewIntegrationID   string      `json:"newIntegrationId,omitempty"`
	NewIntegrationType string      `json:"newIntegrationType,omitempty"`
}

func (e LeadConverted) EventName() string             { return "enrollment.lead.converted" }
func (e LeadConverted) ActivityKind() string          { return "lead_converted" }
func (e LeadConverted) ActivityLeadID() uuid.UUID     { return e.LeadID }
func (e LeadConverted) ActivityUserID() uuid.UUID     { return e.UserID }
func (e LeadConverted) ActivityCadenceID() *uuid.UUID { return nil }

// LeadRequalified is published when a trashed or converted lead returns to ongoing.
type LeadRequalified struct {
	BaseEvent
	CompanyID  uuid.UUID `json:"companyId"`
	LeadID     uuid.UUID `json:"leadId"`
	UserID     uuid.UUID `json:"userId"`
	FromStatus string    `json:"fromStatus"`
}

func (e LeadRequalified) EventName() string             { return "enrollment.lead.requalified" }
func (e LeadRequalified) ActivityKind() string          { return "lead_requalified" }
func (e LeadRequalified) ActivityLeadID() uuid.UUID     { return e.LeadID }
func (e LeadRequalified) ActivityUserID() uuid.UUID     { return e.UserID }
func (e LeadRequalified) ActivityCadenceID() *uuid.UUID { return nil }

// LeadOwnerChanged is published when the CRM reassigns a lead to another user.
type LeadOwnerChanged struct {
	BaseEvent
	CompanyID     uuid.UUID `json:"companyId"`
	LeadID        uuid.UUID `json:"leadId"`
	PreviousOwner uuid.UUID `json:"previousOwner"`
	NewOwner      uuid.UUID `json:"newOwner"`
}

func (e LeadOwnerChanged) EventName() string             { return "enrollment.lead.owner_changed" }
func (e LeadOwnerChanged) ActivityKind() string          { return "owner_changed" }
func (e LeadOwnerChanged) ActivityLeadID() uuid.UUID     { return e.LeadID }
func (e LeadOwnerChanged) ActivityUserID() uuid.UUID     { return e.NewOwner }
func (e LeadOwnerChanged) ActivityCadenceID() *uuid.UUID { return nil }

// LinkStatusChanged is published when a lead's status inside one cadence changes.
type LinkStatusChanged struct {
	BaseEvent
	CompanyID  uuid.UUID `json:"companyId"`
	LeadID     uuid.UUID `json:"leadId"`
	UserID     uuid.UUID `json:"userId"`
	CadenceID  uuid.UUID `json:"cadenceId"`
	FromStatus string    `json:"fromStatus"`
	ToStatus   string    `json:"toStatus"`
}

func (e LinkStatusChanged) EventName() string             { return "enrollment.link.status_changed" }
func (e LinkStatusChanged) ActivityKind() string          { return "cadence_" + e.ToStatus }
func (e LinkStatusChanged) ActivityLeadID() uuid.UUID     { return e.LeadID }
func (e LinkStatusChanged) ActivityUserID() uuid.UUID     { return e.UserID }
func (e LinkStatusChanged) ActivityCadenceID() *uuid.UUID { return &e.CadenceID }

// LeadsDeleted is published after a CRM delete removed leads. It carries no
// activity since the lead rows (and their feed) are gone.
type LeadsDeleted struct {
	BaseEvent
	CompanyID uuid.UUID   `json:"companyId"`
	LeadIDs   []uuid.UUID `json:"leadIds"`
	UserIDs   []uuid.UUID `json:"userIds"`
}

func (e LeadsDeleted) EventName() string { return "enrollment.leads.deleted" }
