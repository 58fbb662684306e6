// Package ordering assigns each enrolled lead its position in the owning
// user's queue for a cadence.
package ordering

import (
	"context"
	"sync"

	"cadence_sync_backend/platform/apperr"

	"github.com/google/uuid"
)

// DefaultCeiling bounds lead_cadence_order when none is configured.
const DefaultCeiling = 100000000

// ErrCeilingReached is returned when the next order would reach the ceiling.
var ErrCeilingReached = apperr.Conflict("cadence order ceiling reached")

// Store reads the highest order already used in a queue.
type Store interface {
	MaxLeadCadenceOrder(ctx context.Context, cadenceID, userID uuid.UUID, ceiling int) (int, error)
}

// Allocator hands out per-batch sessions.
type Allocator struct {
	ceiling int
}

// NewAllocator creates an allocator. A ceiling <= 1 falls back to DefaultCeiling.
func NewAllocator(ceiling int) *Allocator {
	if ceiling <= 1 {
		ceiling = DefaultCeiling
	}
	return &Allocator{ceiling: ceiling}
}

// Ceiling returns the exclusive upper bound for orders.
func (a *Allocator) Ceiling() int { return a.ceiling }

// NewSession starts the memo for one batch.
func (a *Allocator) NewSession() *Session {
	return &Session{ceiling: a.ceiling, last: make(map[queueKey]int)}
}

type queueKey struct {
	cadenceID uuid.UUID
	userID    uuid.UUID
}

// Session memoises the last order handed out per (cadence, user) within one
// batch so only the first allocation for a queue reads the store.
type Session struct {
	mu      sync.Mutex
	ceiling int
	last    map[queueKey]int
}

// Next returns the next free order in the queue of userID in cadenceID.
func (s *Session) Next(ctx context.Context, q Store, cadenceID, userID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := queueKey{cadenceID: cadenceID, userID: userID}
	last, ok := s.last[key]
	if !ok {
		var err error
		last, err = q.MaxLeadCadenceOrder(ctx, cadenceID, userID, s.ceiling)
		if err != nil {
			return 0, err
		}
	}

	next := last + 1
	if next >= s.ceiling {
		return 0, ErrCeilingReached
	}
	s.last[key] = next
	return next, nil
}

// Invalidate drops the memo for a queue so the next allocation re-reads the
// store. Used after another writer took the order this session handed out.
func (s *Session) Invalidate(cadenceID, userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.last, queueKey{cadenceID: cadenceID, userID: userID})
}
