package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cadence_sync_backend/internal/enrollment/repository"
	"cadence_sync_backend/internal/scheduler"
	"cadence_sync_backend/internal/taskservice"
	"cadence_sync_backend/platform/config"
	"cadence_sync_backend/platform/db"
	"cadence_sync_backend/platform/logger"
	"cadence_sync_backend/platform/startup"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	startup.Must(log, "connect to database", startup.Retry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}))
	defer pool.Close()

	repo := repository.New(pool)

	auditor := scheduler.NewOrderAuditor(repo, log, cfg.GetOrderAuditInterval(), cfg.GetLeadCadenceOrderMax())
	go auditor.Run(ctx)

	worker, err := scheduler.NewWorker(cfg, taskservice.New(cfg, log), repo, log)
	startup.Must(log, "initialize scheduler worker", err)

	worker.Run(ctx)
}
