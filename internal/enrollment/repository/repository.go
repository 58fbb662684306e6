// Package repository persists leads, accounts and cadence links in Postgres.
package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrLinkExists           = errors.New("lead already present in cadence")
	ErrOrderTaken           = errors.New("lead cadence order already taken")
	ErrDuplicateIntegration = errors.New("integration id already in use")
)

const (
	pgUniqueViolation = "23505"

	constraintLinkPair        = "uq_lead_to_cadence_pair"
	constraintLinkOrder       = "uq_lead_to_cadence_order"
	constraintLeadIdentity    = "uq_leads_integration"
	constraintAccountIdentity = "uq_accounts_integration"
)

type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Repository runs queries either on the pool or, inside InTx, on one transaction.
type Repository struct {
	pool *pgxpool.Pool
	q    DBTX
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool, q: pool}
}

// InTx runs fn against a repository bound to a new transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
// Calling InTx on a transaction-bound repository opens a savepoint.
func (r *Repository) InTx(ctx context.Context, fn func(Store) error) error {
	var (
		tx  pgx.Tx
		err error
	)
	if outer, ok := r.q.(pgx.Tx); ok {
		tx, err = outer.Begin(ctx)
	} else {
		tx, err = r.pool.BeginTx(ctx, pgx.TxOptions{})
	}
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&Repository{pool: r.pool, q: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// mapUniqueViolation turns unique index violations into the sentinel errors
// callers branch on.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return err
	}
	switch pgErr.ConstraintName {
	case constraintLinkPair:
		return ErrLinkExists
	case constraintLinkOrder:
		return ErrOrderTaken
	case constraintLeadIdentity, constraintAccountIdentity:
		return ErrDuplicateIntegration
	default:
		return err
	}
}
