// Package domain provides the core business rules for enrolling CRM leads into
// cadences and reconciling their status. Everything here is pure: no I/O.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// LeadStatus is the qualification status of a lead.
type LeadStatus string

const (
	LeadOngoing   LeadStatus = "ongoing"
	LeadTrash     LeadStatus = "trash"
	LeadConverted LeadStatus = "converted"
)

// Valid reports whether s is a known lead status.
func (s LeadStatus) Valid() bool {
	switch s {
	case LeadOngoing, LeadTrash, LeadConverted:
		return true
	}
	return false
}

// Closed reports whether the lead left the active funnel.
func (s LeadStatus) Closed() bool {
	return s == LeadTrash || s == LeadConverted
}

// LinkStatus is the status of a lead inside one cadence.
type LinkStatus string

const (
	LinkNotStarted LinkStatus = "not_started"
	LinkInProgress LinkStatus = "in_progress"
	LinkStopped    LinkStatus = "stopped"
)

// Valid reports whether s is a known link status.
func (s LinkStatus) Valid() bool {
	switch s {
	case LinkNotStarted, LinkInProgress, LinkStopped:
		return true
	}
	return false
}

// CadenceStatus is the lifecycle status of a cadence.
type CadenceStatus string

const (
	CadenceNotStarted CadenceStatus = "not_started"
	CadenceInProgress CadenceStatus = "in_progress"
	CadencePaused     CadenceStatus = "paused"
	CadenceStopped    CadenceStatus = "stopped"
	CadenceCompleted  CadenceStatus = "completed"
)

// Valid reports whether s is a known cadence status.
func (s CadenceStatus) Valid() bool {
	switch s {
	case CadenceNotStarted, CadenceInProgress, CadencePaused, CadenceStopped, CadenceCompleted:
		return true
	}
	return false
}

// CadenceType controls who may enroll leads into a cadence.
type CadenceType string

const (
	CadencePersonal CadenceType = "personal"
	CadenceTeam     CadenceType = "team"
	CadenceCompany  CadenceType = "company"
)

// Valid reports whether t is a known cadence type.
func (t CadenceType) Valid() bool {
	switch t {
	case CadencePersonal, CadenceTeam, CadenceCompany:
		return true
	}
	return false
}

// User is a sales rep. Leads are owned by users and CRM owner ids resolve to users.
type User struct {
	ID              uuid.UUID
	CompanyID       uuid.UUID
	SubDepartmentID *uuid.UUID
	FirstName       string
	LastName        string
	Email           string
	IntegrationID   *string
	IntegrationType *string
}

// Lead is a prospect synchronised from a CRM.
type Lead struct {
	ID                    uuid.UUID
	CompanyID             uuid.UUID
	UserID                uuid.UUID
	AccountID             *uuid.UUID
	FirstName             string
	LastName              string
	Email                 *string
	PhoneNumber           *string
	JobPosition           *string
	LinkedinURL           *string
	Status                LeadStatus
	StatusUpdateTimestamp *time.Time
	Unsubscribed          bool
	IntegrationID         string
	IntegrationType       IntegrationType
	IntegrationStatus     *string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Account is the company a lead works for.
type Account struct {
	ID              uuid.UUID
	CompanyID       uuid.UUID
	UserID          uuid.UUID
	Name            string
	Size            *string
	URL             *string
	Country         *string
	ZipCode         *string
	PhoneNumber     *string
	IntegrationID   string
	IntegrationType string
}

// Cadence is a multi-step outreach sequence.
type Cadence struct {
	ID              uuid.UUID
	CompanyID       uuid.UUID
	UserID          uuid.UUID
	SubDepartmentID *uuid.UUID
	Name            string
	Status          CadenceStatus
	Type            CadenceType
}

// Node is one step of a cadence.
type Node struct {
	ID         uuid.UUID
	CadenceID  uuid.UUID
	StepNumber int
	IsFirst    bool
}

// Link is a lead's membership in a cadence.
type Link struct {
	ID           uuid.UUID
	LeadID       uuid.UUID
	CadenceID    uuid.UUID
	UserID       uuid.UUID
	Status       LinkStatus
	Unsubscribed bool
	Order        int
	StatusNodeID *uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Task is an outreach task created by the task service. Read-only here.
type Task struct {
	ID           uuid.UUID
	LeadID       uuid.UUID
	CadenceID    uuid.UUID
	NodeID       *uuid.UUID
	UserID       uuid.UUID
	Completed    bool
	IsSkipped    bool
	CompleteTime *time.Time
	StartTime    time.Time
}

// FieldMap holds the per-company CRM markers used to classify a lead's
// integration_status.
type FieldMap struct {
	StatusField       string `json:"status_field" yaml:"status_field"`
	DisqualifiedValue string `json:"disqualified_value" yaml:"disqualified_value"`
	ConvertedValue    string `json:"converted_value" yaml:"converted_value"`
}
