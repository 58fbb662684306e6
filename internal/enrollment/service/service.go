// Package service coordinates CRM sync batches: every record runs in its own
// transaction and failures are reported per record.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"cadence_sync_backend/internal/enrollment/domain"
	"cadence_sync_backend/internal/enrollment/ordering"
	"cadence_sync_backend/internal/enrollment/ports"
	"cadence_sync_backend/internal/enrollment/repository"
	"cadence_sync_backend/internal/enrollment/tasks"
	"cadence_sync_backend/internal/enrollment/transport"
	"cadence_sync_backend/internal/events"
	"cadence_sync_backend/platform/apperr"
	"cadence_sync_backend/platform/logger"
	"cadence_sync_backend/platform/metrics"
	"cadence_sync_backend/platform/validator"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
)

// Operation names used in logs, metrics and archived reports.
const (
	OpEnroll     = "enroll"
	OpUpdate     = "update"
	OpLinkStatus = "link_status"
	OpDelete     = "delete"
)

const defaultOrderRetryDelay = 15 * time.Millisecond

// errRecordRace marks a record whose transaction lost a race against a
// concurrent writer (order slot or lead identity) and can be retried as a whole.
var errRecordRace = apperr.Conflict("record changed concurrently, retry later")

// Options tunes the coordinator.
type Options struct {
	EnforceTeamAccess bool
	MaxOrderRetries   int
	OrderRetryDelay   time.Duration
}

// Actor is the authenticated caller of a sync operation.
type Actor struct {
	CompanyID uuid.UUID
	UserID    uuid.UUID
}

// Coordinator runs the enroll, update, link status and delete batches.
type Coordinator struct {
	repo      repository.TxStore
	fieldMaps ports.FieldMapProvider
	bridge    *tasks.Bridge
	allocator *ordering.Allocator
	bus       events.Bus
	archive   ports.ReportArchiver
	val       *validator.Validator
	log       *logger.Logger
	opts      Options
	now       func() time.Time
}

// New creates a Coordinator. archive may be nil.
func New(
	repo repository.TxStore,
	fieldMaps ports.FieldMapProvider,
	bridge *tasks.Bridge,
	allocator *ordering.Allocator,
	bus events.Bus,
	archive ports.ReportArchiver,
	val *validator.Validator,
	log *logger.Logger,
	opts Options,
) *Coordinator {
	if opts.MaxOrderRetries < 0 {
		opts.MaxOrderRetries = 0
	}
	if opts.OrderRetryDelay <= 0 {
		opts.OrderRetryDelay = defaultOrderRetryDelay
	}
	return &Coordinator{
		repo:      repo,
		fieldMaps: fieldMaps,
		bridge:    bridge,
		allocator: allocator,
		bus:       bus,
		archive:   archive,
		val:       val,
		log:       log,
		opts:      opts,
		now:       time.Now,
	}
}

// batchState is the per-call memo shared by the records of one batch.
type batchState struct {
	operation  string
	actor      Actor
	it         domain.IntegrationType
	markers    domain.FieldMap
	orders     *ordering.Session
	cadences   map[uuid.UUID]domain.Cadence
	firstNodes map[uuid.UUID]*domain.Node
	owners     map[string]domain.User
	recalc     *tasks.Recalculation
	result     transport.BatchResponse
}

func (c *Coordinator) newBatch(operation string, actor Actor, it domain.IntegrationType) *batchState {
	return &batchState{
		operation:  operation,
		actor:      actor,
		it:         it,
		orders:     c.allocator.NewSession(),
		cadences:   make(map[uuid.UUID]domain.Cadence),
		firstNodes: make(map[uuid.UUID]*domain.Node),
		owners:     make(map[string]domain.User),
		recalc:     tasks.NewRecalculation(),
		result:     transport.NewBatchResponse(),
	}
}

// effects are applied only after a record's transaction committed.
type effects struct {
	firstTask *firstTask
	events    []events.Event
	recalc    []uuid.UUID
}

type firstTask struct {
	lead    domain.Lead
	cadence domain.Cadence
	node    *domain.Node
}

func (e *effects) publish(ev events.Event) { e.events = append(e.events, ev) }

func (e *effects) recalculate(userIDs ...uuid.UUID) { e.recalc = append(e.recalc, userIDs...) }

func (c *Coordinator) begin(ctx context.Context, operation string, actor Actor, it domain.IntegrationType, needsMarkers bool) (*batchState, error) {
	if !it.Valid() {
		return nil, apperr.Validation("unsupported integration type").WithOp(operation)
	}
	if actor.CompanyID == uuid.Nil {
		return nil, apperr.Forbidden("company context required").WithOp(operation)
	}
	st := c.newBatch(operation, actor, it)
	if needsMarkers {
		markers, err := c.fieldMaps.GetFieldMap(ctx, actor.CompanyID, it)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "field map unavailable", err).WithOp(operation)
		}
		st.markers = markers
	}
	return st, nil
}

// runRecord executes fn in its own transaction, retrying it as a whole when
// it lost a race against a concurrent writer. Effects of the last attempt
// are applied once the transaction committed.
func (c *Coordinator) runRecord(ctx context.Context, st *batchState, fn func(ctx context.Context, tx repository.Store, eff *effects) (transport.ElementSuccess, error)) (transport.ElementSuccess, error) {
	var (
		success transport.ElementSuccess
		eff     *effects
	)
	backoff := retry.WithMaxRetries(uint64(c.opts.MaxOrderRetries), retry.NewConstant(c.opts.OrderRetryDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		eff = &effects{}
		err := c.repo.InTx(ctx, func(tx repository.Store) error {
			var err error
			success, err = fn(ctx, tx, eff)
			return err
		})
		if errors.Is(err, errRecordRace) {
			metrics.RecordOrderConflict()
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return success, err
	}
	c.applyEffects(ctx, st, eff)
	return success, nil
}

func (c *Coordinator) applyEffects(ctx context.Context, st *batchState, eff *effects) {
	if ft := eff.firstTask; ft != nil {
		if err := c.bridge.EnsureFirstTask(ctx, ft.lead, ft.cadence, ft.node); err != nil {
			c.log.WithContext(ctx).Error("first task creation failed",
				slog.String("lead_id", ft.lead.ID.String()),
				slog.String("cadence_id", ft.cadence.ID.String()),
				slog.String("error", err.Error()),
			)
		}
	}
	for _, ev := range eff.events {
		c.bus.Publish(ctx, ev)
	}
	st.recalc.Add(eff.recalc...)
}

// finish schedules the batch's single recalculation and archives reports with errors.
func (c *Coordinator) finish(ctx context.Context, st *batchState) transport.BatchResponse {
	c.bridge.ScheduleRecalculation(ctx, st.recalc.UserIDs())

	if c.archive != nil && st.result.TotalError > 0 {
		if err := c.archive.Archive(ctx, st.actor.CompanyID, st.operation, st.result); err != nil {
			c.log.WithContext(ctx).Warn("failed to archive batch report",
				slog.String("operation", st.operation),
				slog.String("error", err.Error()),
			)
		}
	}
	return st.result
}

func (c *Coordinator) succeed(st *batchState, s transport.ElementSuccess) {
	st.result.TotalSuccess++
	st.result.ElementSuccess = append(st.result.ElementSuccess, s)
	metrics.RecordSyncRecord(st.operation, "success")
}

// fail records a per-item error. Untyped errors are logged and reported as
// internal errors without their details.
func (c *Coordinator) fail(ctx context.Context, st *batchState, leadID, cadenceID string, err error) {
	err = translate(err)
	kind := apperr.GetKind(err)
	if kind == apperr.KindUnknown {
		kind = apperr.KindInternal
	}
	msg := apperr.Message(err, "internal error")

	st.result.TotalError++
	st.result.ElementError = append(st.result.ElementError, transport.ElementError{
		LeadID:    leadID,
		CadenceID: cadenceID,
		Msg:       msg,
		Kind:      kind.String(),
	})
	metrics.RecordSyncRecord(st.operation, kind.String())
	c.log.WithContext(ctx).BatchItemFailed(st.operation, leadID, cadenceID, kind.String(), err)
}

// translate maps repository sentinels that escape record handling to typed errors.
func translate(err error) error {
	switch {
	case errors.Is(err, repository.ErrLinkExists):
		return apperr.Wrap(apperr.KindConflict, "lead already present in cadence", err)
	case errors.Is(err, repository.ErrDuplicateIntegration):
		return apperr.Wrap(apperr.KindConflict, "integration id already used by another record", err)
	case errors.Is(err, repository.ErrOrderTaken):
		return apperr.Wrap(apperr.KindConflict, "cadence order already taken", err)
	default:
		return err
	}
}

func (c *Coordinator) validate(record any) error {
	if err := c.val.Struct(record); err != nil {
		return apperr.Validation(validator.Describe(err))
	}
	return nil
}

func (c *Coordinator) cadence(ctx context.Context, st *batchState, rawID string) (domain.Cadence, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return domain.Cadence{}, apperr.Validation("cadence_id must be a uuid")
	}
	if cached, ok := st.cadences[id]; ok {
		return cached, nil
	}
	cad, err := c.repo.GetCadence(ctx, st.actor.CompanyID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.Cadence{}, apperr.NotFound("cadence not found")
	}
	if err != nil {
		return domain.Cadence{}, err
	}
	st.cadences[id] = cad
	return cad, nil
}

func (c *Coordinator) firstNode(ctx context.Context, st *batchState, cadenceID uuid.UUID) (*domain.Node, error) {
	if node, ok := st.firstNodes[cadenceID]; ok {
		return node, nil
	}
	node, err := c.repo.GetFirstNode(ctx, cadenceID)
	if err != nil {
		return nil, err
	}
	st.firstNodes[cadenceID] = node
	return node, nil
}

// owner resolves a CRM owner id to a user of the caller's company.
func (c *Coordinator) owner(ctx context.Context, st *batchState, crmOwnerID string) (domain.User, error) {
	if cached, ok := st.owners[crmOwnerID]; ok {
		return cached, nil
	}
	user, err := c.repo.GetUserByIntegration(ctx, st.actor.CompanyID, st.it.Vendor(), crmOwnerID)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.User{}, apperr.NotFound("owner not found for CRM user " + crmOwnerID)
	}
	if err != nil {
		return domain.User{}, err
	}
	st.owners[crmOwnerID] = user
	return user, nil
}

func (c *Coordinator) aborted(ctx context.Context, st *batchState) error {
	if err := ctx.Err(); err != nil {
		c.log.WithContext(ctx).Warn("sync batch aborted",
			slog.String("operation", st.operation),
			slog.Int("processed", st.result.TotalSuccess+st.result.TotalError),
		)
		return err
	}
	return nil
}
