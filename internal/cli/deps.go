// Package cli implements cadencectl, the operator tool for the CRM sync engine.
package cli

import (
	"context"
	"fmt"

	"cadence_sync_backend/internal/archive"
	"cadence_sync_backend/internal/enrollment/domain"
	"cadence_sync_backend/internal/enrollment/repository"
	"cadence_sync_backend/internal/fieldmap"
	"cadence_sync_backend/internal/scheduler"
	"cadence_sync_backend/internal/taskservice"
	"cadence_sync_backend/migrations"
	"cadence_sync_backend/platform/cache"
	"cadence_sync_backend/platform/config"
	"cadence_sync_backend/platform/db"
	"cadence_sync_backend/platform/logger"

	"github.com/google/uuid"
)

// ReportLister lists archived batch reports.
type ReportLister interface {
	List(ctx context.Context, companyID uuid.UUID, operation string) ([]archive.Entry, error)
}

// FieldMapReader resolves the CRM markers of a company.
type FieldMapReader interface {
	GetFieldMap(ctx context.Context, companyID uuid.UUID, it domain.IntegrationType) (domain.FieldMap, error)
	Invalidate(ctx context.Context, companyID uuid.UUID, it domain.IntegrationType) error
}

// Deps are the collaborators the commands use. Reports is nil when no
// archive is configured.
type Deps struct {
	Audit      scheduler.OrderAuditSource
	Jobs       scheduler.Enqueuer
	Reports    ReportLister
	FieldMaps  FieldMapReader
	Migrate    func(ctx context.Context) error
	OrderLimit int
	Close      func()
}

// Opener builds Deps on demand so --help never touches the database.
type Opener func(ctx context.Context) (*Deps, error)

// Open connects to Postgres, Redis and MinIO using the service configuration.
func Open(ctx context.Context) (*Deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.New(cfg.Env)

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	closers := []func(){pool.Close}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	rdb, err := cache.NewRedis(ctx, cfg)
	if err != nil {
		closeAll()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	if rdb != nil {
		closers = append(closers, func() { _ = rdb.Close() })
	}

	repo := repository.New(pool)
	fieldMaps, err := fieldmap.NewProvider(repo, rdb, cfg.GetFieldMapCacheTTL(), log)
	if err != nil {
		closeAll()
		return nil, err
	}

	deps := &Deps{
		Audit:      repo,
		FieldMaps:  fieldMaps,
		OrderLimit: cfg.GetLeadCadenceOrderMax(),
		Migrate: func(ctx context.Context) error {
			return db.RunMigrations(ctx, pool, migrations.FS)
		},
	}

	if cfg.GetRedisURL() != "" {
		client, err := scheduler.NewClient(cfg)
		if err != nil {
			closeAll()
			return nil, err
		}
		closers = append(closers, func() { _ = client.Close() })
		deps.Jobs = client
	} else {
		deps.Jobs = scheduler.NewInline(taskservice.New(cfg, log), repo, log)
	}

	if cfg.IsArchiveEnabled() {
		a, err := archive.NewMinIOArchive(cfg)
		if err != nil {
			closeAll()
			return nil, err
		}
		deps.Reports = a
	}

	deps.Close = closeAll
	return deps, nil
}

func withDeps(ctx context.Context, open Opener, fn func(*Deps) error) error {
	deps, err := open(ctx)
	if err != nil {
		return err
	}
	if deps.Close != nil {
		defer deps.Close()
	}
	return fn(deps)
}

func parseCompany(raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid --company %q: %w", raw, err)
	}
	return &id, nil
}
