package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"link pair", &pgconn.PgError{Code: "23505", ConstraintName: constraintLinkPair}, ErrLinkExists},
		{"link order", &pgconn.PgError{Code: "23505", ConstraintName: constraintLinkOrder}, ErrOrderTaken},
		{"wrapped order", fmt.Errorf("exec: %w", &pgconn.PgError{Code: "23505", ConstraintName: constraintLinkOrder}), ErrOrderTaken},
		{"lead identity", &pgconn.PgError{Code: "23505", ConstraintName: constraintLeadIdentity}, ErrDuplicateIntegration},
		{"account identity", &pgconn.PgError{Code: "23505", ConstraintName: constraintAccountIdentity}, ErrDuplicateIntegration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapUniqueViolation(tt.err); !errors.Is(got, tt.want) {
				t.Fatalf("mapUniqueViolation() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMapUniqueViolationPassesThrough(t *testing.T) {
	fk := &pgconn.PgError{Code: "23503", ConstraintName: "lead_to_cadence_lead_id_fkey"}
	if got := mapUniqueViolation(fk); got != error(fk) {
		t.Fatalf("expected foreign key error unchanged, got %v", got)
	}
	other := &pgconn.PgError{Code: "23505", ConstraintName: "something_else"}
	if got := mapUniqueViolation(other); got != error(other) {
		t.Fatalf("expected unknown constraint unchanged, got %v", got)
	}
	if mapUniqueViolation(nil) != nil {
		t.Fatalf("nil must stay nil")
	}
}

func TestNotFound(t *testing.T) {
	if !errors.Is(notFound(pgx.ErrNoRows), ErrNotFound) {
		t.Fatalf("expected ErrNoRows to map to ErrNotFound")
	}
	if notFound(nil) != nil {
		t.Fatalf("nil must stay nil")
	}
}
