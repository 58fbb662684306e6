package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"cadence_sync_backend/internal/enrollment/domain"
	"cadence_sync_backend/internal/enrollment/repository"
	"cadence_sync_backend/internal/events"

	"github.com/google/uuid"
)

type historyRow struct {
	leadID  uuid.UUID
	status  domain.LeadStatus
	message string
}

// memStore is an in-memory repository.TxStore. InTx restores a snapshot when
// fn fails so a rejected record leaves no trace, like a rolled back transaction.
type memStore struct {
	users    map[uuid.UUID]domain.User
	cadences map[uuid.UUID]domain.Cadence
	nodes    map[uuid.UUID]*domain.Node
	leads    map[uuid.UUID]domain.Lead
	accounts map[uuid.UUID]domain.Account
	links    map[uuid.UUID]domain.Link
	tasks    []domain.Task
	history  []historyRow

	// staleOrderReads makes the next MaxLeadCadenceOrder calls miss the
	// newest link, as if a concurrent batch committed in between.
	staleOrderReads int
	txCount         int
}

var _ repository.TxStore = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[uuid.UUID]domain.User),
		cadences: make(map[uuid.UUID]domain.Cadence),
		nodes:    make(map[uuid.UUID]*domain.Node),
		leads:    make(map[uuid.UUID]domain.Lead),
		accounts: make(map[uuid.UUID]domain.Account),
		links:    make(map[uuid.UUID]domain.Link),
	}
}

type memSnapshot struct {
	leads    map[uuid.UUID]domain.Lead
	accounts map[uuid.UUID]domain.Account
	links    map[uuid.UUID]domain.Link
	history  []historyRow
}

func (s *memStore) InTx(_ context.Context, fn func(repository.Store) error) error {
	s.txCount++
	snap := memSnapshot{
		leads:    cloneMap(s.leads),
		accounts: cloneMap(s.accounts),
		links:    cloneMap(s.links),
		history:  append([]historyRow(nil), s.history...),
	}
	if err := fn(s); err != nil {
		s.leads, s.accounts, s.links, s.history = snap.leads, snap.accounts, snap.links, snap.history
		return err
	}
	return nil
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *memStore) GetUser(_ context.Context, id uuid.UUID) (domain.User, error) {
	u, ok := s.users[id]
	if !ok {
		return domain.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (s *memStore) GetUserByIntegration(_ context.Context, companyID uuid.UUID, vendor, ownerID string) (domain.User, error) {
	for _, u := range s.users {
		if u.CompanyID == companyID && u.IntegrationType != nil && *u.IntegrationType == vendor &&
			u.IntegrationID != nil && *u.IntegrationID == ownerID {
			return u, nil
		}
	}
	return domain.User{}, repository.ErrNotFound
}

func (s *memStore) GetCadence(_ context.Context, companyID, cadenceID uuid.UUID) (domain.Cadence, error) {
	c, ok := s.cadences[cadenceID]
	if !ok || c.CompanyID != companyID {
		return domain.Cadence{}, repository.ErrNotFound
	}
	return c, nil
}

func (s *memStore) GetFirstNode(_ context.Context, cadenceID uuid.UUID) (*domain.Node, error) {
	return s.nodes[cadenceID], nil
}

func (s *memStore) GetLeadByIntegration(_ context.Context, companyID uuid.UUID, it domain.IntegrationType, integrationID string) (domain.Lead, error) {
	for _, l := range s.leads {
		if l.CompanyID == companyID && l.IntegrationType == it && l.IntegrationID == integrationID {
			return l, nil
		}
	}
	return domain.Lead{}, repository.ErrNotFound
}

func (s *memStore) CreateLead(ctx context.Context, lead domain.Lead) error {
	if _, err := s.GetLeadByIntegration(ctx, lead.CompanyID, lead.IntegrationType, lead.IntegrationID); err == nil {
		return repository.ErrDuplicateIntegration
	}
	s.leads[lead.ID] = lead
	return nil
}

func (s *memStore) UpdateLeadProfile(_ context.Context, leadID uuid.UUID, p repository.LeadProfile) error {
	l, ok := s.leads[leadID]
	if !ok {
		return repository.ErrNotFound
	}
	if p.FirstName != nil {
		l.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		l.LastName = *p.LastName
	}
	if p.Email != nil {
		l.Email = p.Email
	}
	if p.PhoneNumber != nil {
		l.PhoneNumber = p.PhoneNumber
	}
	if p.JobPosition != nil {
		l.JobPosition = p.JobPosition
	}
	if p.LinkedinURL != nil {
		l.LinkedinURL = p.LinkedinURL
	}
	if p.IntegrationStatus != nil {
		l.IntegrationStatus = p.IntegrationStatus
	}
	if p.AccountID != nil {
		l.AccountID = p.AccountID
	}
	if p.Unsubscribed != nil {
		l.Unsubscribed = *p.Unsubscribed
	}
	s.leads[leadID] = l
	return nil
}

func (s *memStore) SetLeadStatus(_ context.Context, leadID uuid.UUID, status domain.LeadStatus, at time.Time) error {
	l, ok := s.leads[leadID]
	if !ok {
		return repository.ErrNotFound
	}
	l.Status = status
	l.StatusUpdateTimestamp = &at
	s.leads[leadID] = l
	return nil
}

func (s *memStore) SetLeadOwner(_ context.Context, leadID, userID uuid.UUID) error {
	l, ok := s.leads[leadID]
	if !ok {
		return repository.ErrNotFound
	}
	l.UserID = userID
	s.leads[leadID] = l
	return nil
}

func (s *memStore) RekeyLead(ctx context.Context, leadID uuid.UUID, integrationID string, it domain.IntegrationType) error {
	l, ok := s.leads[leadID]
	if !ok {
		return repository.ErrNotFound
	}
	if other, err := s.GetLeadByIntegration(ctx, l.CompanyID, it, integrationID); err == nil && other.ID != leadID {
		return repository.ErrDuplicateIntegration
	}
	l.IntegrationID = integrationID
	l.IntegrationType = it
	s.leads[leadID] = l
	return nil
}

func (s *memStore) DeleteLeadsByIntegration(_ context.Context, companyID uuid.UUID, it domain.IntegrationType, integrationIDs []string) ([]repository.DeletedLead, error) {
	wanted := make(map[string]bool, len(integrationIDs))
	for _, id := range integrationIDs {
		wanted[id] = true
	}
	var out []repository.DeletedLead
	for id, l := range s.leads {
		if l.CompanyID != companyID || l.IntegrationType != it || !wanted[l.IntegrationID] {
			continue
		}
		delete(s.leads, id)
		for linkID, link := range s.links {
			if link.LeadID == id {
				delete(s.links, linkID)
			}
		}
		out = append(out, repository.DeletedLead{ID: id, UserID: l.UserID, IntegrationID: l.IntegrationID})
	}
	return out, nil
}

func (s *memStore) GetAccount(_ context.Context, id uuid.UUID) (domain.Account, error) {
	a, ok := s.accounts[id]
	if !ok {
		return domain.Account{}, repository.ErrNotFound
	}
	return a, nil
}

func (s *memStore) GetAccountByIntegration(_ context.Context, companyID uuid.UUID, accountType, integrationID string) (domain.Account, error) {
	for _, a := range s.accounts {
		if a.CompanyID == companyID && a.IntegrationType == accountType && a.IntegrationID == integrationID {
			return a, nil
		}
	}
	return domain.Account{}, repository.ErrNotFound
}

func (s *memStore) CreateAccount(ctx context.Context, account domain.Account) error {
	if _, err := s.GetAccountByIntegration(ctx, account.CompanyID, account.IntegrationType, account.IntegrationID); err == nil {
		return repository.ErrDuplicateIntegration
	}
	s.accounts[account.ID] = account
	return nil
}

func (s *memStore) UpdateAccountProfile(_ context.Context, id uuid.UUID, p repository.AccountProfile) error {
	a, ok := s.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.Size != nil {
		a.Size = p.Size
	}
	if p.URL != nil {
		a.URL = p.URL
	}
	if p.Country != nil {
		a.Country = p.Country
	}
	if p.ZipCode != nil {
		a.ZipCode = p.ZipCode
	}
	if p.PhoneNumber != nil {
		a.PhoneNumber = p.PhoneNumber
	}
	s.accounts[id] = a
	return nil
}

func (s *memStore) SetAccountOwner(_ context.Context, id, userID uuid.UUID) error {
	a, ok := s.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.UserID = userID
	s.accounts[id] = a
	return nil
}

func (s *memStore) RekeyAccount(_ context.Context, id uuid.UUID, integrationID string) error {
	a, ok := s.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.IntegrationID = integrationID
	s.accounts[id] = a
	return nil
}

func (s *memStore) GetLink(_ context.Context, leadID, cadenceID uuid.UUID) (domain.Link, error) {
	for _, l := range s.links {
		if l.LeadID == leadID && l.CadenceID == cadenceID {
			return l, nil
		}
	}
	return domain.Link{}, repository.ErrNotFound
}

func (s *memStore) CreateLink(_ context.Context, link domain.Link) error {
	for _, l := range s.links {
		if l.LeadID == link.LeadID && l.CadenceID == link.CadenceID {
			return repository.ErrLinkExists
		}
		if l.CadenceID == link.CadenceID && l.UserID == link.UserID && l.Order == link.Order {
			return repository.ErrOrderTaken
		}
	}
	s.links[link.ID] = link
	return nil
}

func (s *memStore) UpdateLinkStatus(_ context.Context, linkID uuid.UUID, status domain.LinkStatus, statusNodeID *uuid.UUID) error {
	l, ok := s.links[linkID]
	if !ok {
		return repository.ErrNotFound
	}
	l.Status = status
	if statusNodeID != nil {
		l.StatusNodeID = statusNodeID
	}
	s.links[linkID] = l
	return nil
}

func (s *memStore) StopLeadLinks(_ context.Context, leadID uuid.UUID, statusNodeID *uuid.UUID) ([]domain.Link, error) {
	var out []domain.Link
	for id, l := range s.links {
		if l.LeadID != leadID || l.Status == domain.LinkStopped {
			continue
		}
		l.Status = domain.LinkStopped
		l.StatusNodeID = statusNodeID
		s.links[id] = l
		out = append(out, l)
	}
	return out, nil
}

func (s *memStore) MaxLeadCadenceOrder(_ context.Context, cadenceID, userID uuid.UUID, ceiling int) (int, error) {
	var orders []int
	for _, l := range s.links {
		if l.CadenceID == cadenceID && l.UserID == userID && l.Order < ceiling {
			orders = append(orders, l.Order)
		}
	}
	sort.Ints(orders)
	if s.staleOrderReads > 0 && len(orders) > 0 {
		s.staleOrderReads--
		orders = orders[:len(orders)-1]
	}
	if len(orders) == 0 {
		return 0, nil
	}
	return orders[len(orders)-1], nil
}

func (s *memStore) LatestOpenTask(_ context.Context, leadID uuid.UUID, cadenceID *uuid.UUID) (*domain.Task, error) {
	var latest *domain.Task
	for i := range s.tasks {
		t := s.tasks[i]
		if t.LeadID != leadID || t.Completed || t.IsSkipped {
			continue
		}
		if cadenceID != nil && t.CadenceID != *cadenceID {
			continue
		}
		if latest == nil || t.StartTime.After(latest.StartTime) {
			latest = &t
		}
	}
	return latest, nil
}

func (s *memStore) HasTask(_ context.Context, leadID, cadenceID uuid.UUID) (bool, error) {
	for _, t := range s.tasks {
		if t.LeadID == leadID && t.CadenceID == cadenceID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) AddStatusHistory(_ context.Context, leadID uuid.UUID, status domain.LeadStatus, message string) error {
	s.history = append(s.history, historyRow{leadID: leadID, status: status, message: message})
	return nil
}

type staticFieldMaps struct {
	markers domain.FieldMap
	err     error
}

func (f staticFieldMaps) GetFieldMap(context.Context, uuid.UUID, domain.IntegrationType) (domain.FieldMap, error) {
	return f.markers, f.err
}

type firstTaskCall struct {
	leadID    uuid.UUID
	cadenceID uuid.UUID
	nodeID    uuid.UUID
}

type recordingTaskService struct {
	created []firstTaskCall
}

func (r *recordingTaskService) CreateFirstTask(_ context.Context, lead domain.Lead, cadence domain.Cadence, node domain.Node) error {
	r.created = append(r.created, firstTaskCall{leadID: lead.ID, cadenceID: cadence.ID, nodeID: node.ID})
	return nil
}

func (r *recordingTaskService) RecalculateDailyTasks(context.Context, []uuid.UUID) error { return nil }

type recordingScheduler struct {
	calls [][]uuid.UUID
}

func (r *recordingScheduler) EnqueueRecalculation(_ context.Context, ids []uuid.UUID) error {
	r.calls = append(r.calls, ids)
	return nil
}

// recordingBus collects published events synchronously.
type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(_ context.Context, ev events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
}

func (b *recordingBus) PublishSync(ctx context.Context, ev events.Event) error {
	b.Publish(ctx, ev)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func (b *recordingBus) named(name string) []events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []events.Event
	for _, ev := range b.events {
		if ev.EventName() == name {
			out = append(out, ev)
		}
	}
	return out
}

type recordingArchive struct {
	operations []string
}

func (r *recordingArchive) Archive(_ context.Context, _ uuid.UUID, operation string, _ any) error {
	r.operations = append(r.operations, operation)
	return nil
}
