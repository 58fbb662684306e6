package ordering

import (
	"context"
	"errors"
	"testing"

	"cadence_sync_backend/platform/apperr"

	"github.com/google/uuid"
)

type fakeStore struct {
	max   map[[2]uuid.UUID]int
	calls int
	err   error
}

func (f *fakeStore) MaxLeadCadenceOrder(_ context.Context, cadenceID, userID uuid.UUID, _ int) (int, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	return f.max[[2]uuid.UUID{cadenceID, userID}], nil
}

func TestSessionAllocatesIncreasingOrdersWithOneQuery(t *testing.T) {
	cadence, user := uuid.New(), uuid.New()
	store := &fakeStore{max: map[[2]uuid.UUID]int{{cadence, user}: 7}}
	session := NewAllocator(100).NewSession()

	var got []int
	for i := 0; i < 3; i++ {
		n, err := session.Next(context.Background(), store, cadence, user)
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		got = append(got, n)
	}

	if got[0] != 8 || got[1] != 9 || got[2] != 10 {
		t.Fatalf("expected [8 9 10], got %v", got)
	}
	if store.calls != 1 {
		t.Fatalf("expected 1 store query, got %d", store.calls)
	}
}

func TestSessionKeysByCadenceAndUser(t *testing.T) {
	cadence, userA, userB := uuid.New(), uuid.New(), uuid.New()
	store := &fakeStore{max: map[[2]uuid.UUID]int{}}
	session := NewAllocator(100).NewSession()

	a, _ := session.Next(context.Background(), store, cadence, userA)
	b, _ := session.Next(context.Background(), store, cadence, userB)
	if a != 1 || b != 1 {
		t.Fatalf("each user queue starts at 1, got %d and %d", a, b)
	}
	if store.calls != 2 {
		t.Fatalf("expected one query per queue, got %d", store.calls)
	}
}

func TestSessionInvalidateRereadsStore(t *testing.T) {
	cadence, user := uuid.New(), uuid.New()
	key := [2]uuid.UUID{cadence, user}
	store := &fakeStore{max: map[[2]uuid.UUID]int{key: 0}}
	session := NewAllocator(100).NewSession()

	first, _ := session.Next(context.Background(), store, cadence, user)
	// a concurrent batch committed orders 1 and 2
	store.max[key] = 2
	session.Invalidate(cadence, user)
	second, _ := session.Next(context.Background(), store, cadence, user)

	if first != 1 || second != 3 {
		t.Fatalf("expected 1 then 3, got %d then %d", first, second)
	}
}

func TestSessionCeiling(t *testing.T) {
	cadence, user := uuid.New(), uuid.New()
	store := &fakeStore{max: map[[2]uuid.UUID]int{{cadence, user}: 8}}
	session := NewAllocator(10).NewSession()

	if n, err := session.Next(context.Background(), store, cadence, user); err != nil || n != 9 {
		t.Fatalf("expected 9, got %d %v", n, err)
	}
	_, err := session.Next(context.Background(), store, cadence, user)
	if !errors.Is(err, ErrCeilingReached) || !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected ceiling conflict, got %v", err)
	}
}

func TestSessionPropagatesStoreErrors(t *testing.T) {
	boom := errors.New("db down")
	session := NewAllocator(0).NewSession()
	if _, err := session.Next(context.Background(), &fakeStore{err: boom}, uuid.New(), uuid.New()); !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestNewAllocatorDefaultsCeiling(t *testing.T) {
	if NewAllocator(0).Ceiling() != DefaultCeiling {
		t.Fatalf("expected default ceiling")
	}
}
