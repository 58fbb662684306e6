// Package enrollment provides the CRM lead-cadence sync module.
package enrollment

import (
	"cadence_sync_backend/internal/enrollment/handler"
	"cadence_sync_backend/internal/enrollment/ordering"
	"cadence_sync_backend/internal/enrollment/ports"
	"cadence_sync_backend/internal/enrollment/repository"
	"cadence_sync_backend/internal/enrollment/service"
	"cadence_sync_backend/internal/enrollment/tasks"
	"cadence_sync_backend/internal/events"
	"cadence_sync_backend/internal/fieldmap"
	apphttp "cadence_sync_backend/internal/http"
	"cadence_sync_backend/platform/config"
	"cadence_sync_backend/platform/logger"
	"cadence_sync_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// ModuleConfig combines the config interfaces the module reads.
type ModuleConfig interface {
	config.EnrollmentConfig
	config.FieldMapCacheConfig
}

// Deps are the collaborators wired in the composition root. Redis and
// Archive may be nil.
type Deps struct {
	Bus       events.Bus
	Redis     *redis.Client
	Tasks     ports.TaskService
	Scheduler ports.RecalculationScheduler
	Archive   ports.ReportArchiver
	Validator *validator.Validator
	Log       *logger.Logger
}

// Module represents the enrollment domain module
type Module struct {
	handler *handler.Handler
}

// NewModule creates a new enrollment module with all dependencies wired
func NewModule(pool *pgxpool.Pool, cfg ModuleConfig, deps Deps) (*Module, error) {
	repo := repository.New(pool)

	fieldMaps, err := fieldmap.NewProvider(repo, deps.Redis, cfg.GetFieldMapCacheTTL(), deps.Log)
	if err != nil {
		return nil, err
	}

	bridge := tasks.NewBridge(deps.Tasks, deps.Scheduler, deps.Log)
	allocator := ordering.NewAllocator(cfg.GetLeadCadenceOrderMax())

	coordinator := service.New(repo, fieldMaps, bridge, allocator, deps.Bus, deps.Archive, deps.Validator, deps.Log, service.Options{
		EnforceTeamAccess: cfg.GetEnforceTeamCadenceAccess(),
		MaxOrderRetries:   cfg.GetOrderConflictMaxRetries(),
	})

	return &Module{handler: handler.New(coordinator, deps.Validator)}, nil
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "enrollment"
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	crm := ctx.Protected.Group("/crm/:integration")
	if ctx.SyncRateLimiter != nil {
		crm.Use(ctx.SyncRateLimiter.RateLimit())
	}
	m.handler.RegisterRoutes(crm)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
