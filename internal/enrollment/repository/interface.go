package repository

import (
	"context"
	"time"

	"cadence_sync_backend/internal/enrollment/domain"

	"github.com/google/uuid"
)

// =====================================
// Segregated Interfaces (Interface Segregation Principle)
// =====================================

// UserReader resolves users for ownership and access checks.
type UserReader interface {
	GetUser(ctx context.Context, id uuid.UUID) (domain.User, error)
	GetUserByIntegration(ctx context.Context, companyID uuid.UUID, vendor, ownerID string) (domain.User, error)
}

// CadenceReader reads cadences and their steps.
type CadenceReader interface {
	GetCadence(ctx context.Context, companyID, cadenceID uuid.UUID) (domain.Cadence, error)
	GetFirstNode(ctx context.Context, cadenceID uuid.UUID) (*domain.Node, error)
}

// LeadStore manages CRM-synchronised leads.
type LeadStore interface {
	GetLeadByIntegration(ctx context.Context, companyID uuid.UUID, it domain.IntegrationType, integrationID string) (domain.Lead, error)
	CreateLead(ctx context.Context, lead domain.Lead) error
	UpdateLeadProfile(ctx context.Context, leadID uuid.UUID, p LeadProfile) error
	SetLeadStatus(ctx context.Context, leadID uuid.UUID, status domain.LeadStatus, at time.Time) error
	SetLeadOwner(ctx context.Context, leadID, userID uuid.UUID) error
	RekeyLead(ctx context.Context, leadID uuid.UUID, integrationID string, it domain.IntegrationType) error
	DeleteLeadsByIntegration(ctx context.Context, companyID uuid.UUID, it domain.IntegrationType, integrationIDs []string) ([]DeletedLead, error)
}

// AccountStore manages the accounts leads belong to.
type AccountStore interface {
	GetAccount(ctx context.Context, id uuid.UUID) (domain.Account, error)
	GetAccountByIntegration(ctx context.Context, companyID uuid.UUID, accountType, integrationID string) (domain.Account, error)
	CreateAccount(ctx context.Context, account domain.Account) error
	UpdateAccountProfile(ctx context.Context, id uuid.UUID, p AccountProfile) error
	SetAccountOwner(ctx context.Context, id, userID uuid.UUID) error
	RekeyAccount(ctx context.Context, id uuid.UUID, integrationID string) error
}

// LinkStore manages lead-to-cadence links.
type LinkStore interface {
	GetLink(ctx context.Context, leadID, cadenceID uuid.UUID) (domain.Link, error)
	CreateLink(ctx context.Context, link domain.Link) error
	UpdateLinkStatus(ctx context.Context, linkID uuid.UUID, status domain.LinkStatus, statusNodeID *uuid.UUID) error
	StopLeadLinks(ctx context.Context, leadID uuid.UUID, statusNodeID *uuid.UUID) ([]domain.Link, error)
	MaxLeadCadenceOrder(ctx context.Context, cadenceID, userID uuid.UUID, ceiling int) (int, error)
}

// TaskReader reads outreach tasks owned by the task service.
type TaskReader interface {
	LatestOpenTask(ctx context.Context, leadID uuid.UUID, cadenceID *uuid.UUID) (*domain.Task, error)
	HasTask(ctx context.Context, leadID, cadenceID uuid.UUID) (bool, error)
}

// StatusHistory appends lead status history rows.
type StatusHistory interface {
	AddStatusHistory(ctx context.Context, leadID uuid.UUID, status domain.LeadStatus, message string) error
}

// Store is everything one CRM record's transaction may touch.
type Store interface {
	UserReader
	CadenceReader
	LeadStore
	AccountStore
	LinkStore
	TaskReader
	StatusHistory
}

// TxStore is a Store that can open per-record transactions.
type TxStore interface {
	Store
	InTx(ctx context.Context, fn func(Store) error) error
}

var _ TxStore = (*Repository)(nil)

// LeadProfile holds the CRM-reported lead fields. Nil fields are left unchanged.
type LeadProfile struct {
	FirstName         *string
	LastName          *string
	Email             *string
	PhoneNumber       *string
	JobPosition       *string
	LinkedinURL       *string
	IntegrationStatus *string
	AccountID         *uuid.UUID
	Unsubscribed      *bool
}

// AccountProfile holds the CRM-reported account fields. Nil fields are left unchanged.
type AccountProfile struct {
	Name        *string
	Size        *string
	URL         *string
	Country     *string
	ZipCode     *string
	PhoneNumber *string
}

// Empty reports whether no field was reported.
func (p AccountProfile) Empty() bool {
	return p.Name == nil && p.Size == nil && p.URL == nil && p.Country == nil && p.ZipCode == nil && p.PhoneNumber == nil
}

// DeletedLead identifies a removed lead and its owner.
type DeletedLead struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	IntegrationID string
}
