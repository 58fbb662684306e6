package scheduler

import (
	"context"
	"time"

	"cadence_sync_backend/internal/enrollment/repository"
	"cadence_sync_backend/platform/logger"

	"github.com/google/uuid"
)

const defaultOrderAuditInterval = time.Hour

// OrderAuditSource lists queues with near-ceiling orders.
type OrderAuditSource interface {
	OrderAudit(ctx context.Context, companyID *uuid.UUID, warnAt int) ([]repository.OrderAuditRow, error)
}

// OrderAuditor periodically reports lead-cadence queues whose orders approach
// the configured ceiling.
type OrderAuditor struct {
	repo     OrderAuditSource
	log      *logger.Logger
	interval time.Duration
	warnAt   int
}

// NewOrderAuditor warns once a queue reaches 90% of ceiling.
func NewOrderAuditor(repo OrderAuditSource, log *logger.Logger, interval time.Duration, ceiling int) *OrderAuditor {
	if interval <= 0 {
		interval = defaultOrderAuditInterval
	}
	warnAt := ceiling - ceiling/10
	if warnAt < 1 {
		warnAt = 1
	}

	return &OrderAuditor{
		repo:     repo,
		log:      log,
		interval: interval,
		warnAt:   warnAt,
	}
}

func (a *OrderAuditor) Run(ctx context.Context) {
	if a == nil || a.repo == nil {
		return
	}

	a.audit(ctx)

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.audit(ctx)
		}
	}
}

func (a *OrderAuditor) audit(ctx context.Context) int {
	rows, err := a.repo.OrderAudit(ctx, nil, a.warnAt)
	if err != nil {
		a.log.Warn("lead cadence order audit failed", "error", err)
		return 0
	}

	for _, row := range rows {
		a.log.Warn("lead cadence order near ceiling",
			"company_id", row.CompanyID.String(),
			"cadence_id", row.CadenceID.String(),
			"user_id", row.UserID.String(),
			"links", row.Links,
			"max_order", row.MaxOrder,
			"warn_at", a.warnAt,
		)
	}
	return len(rows)
}
