package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cadence_sync_backend/internal/adapters"
	"cadence_sync_backend/internal/archive"
	"cadence_sync_backend/internal/enrollment"
	"cadence_sync_backend/internal/enrollment/ports"
	"cadence_sync_backend/internal/enrollment/repository"
	apphttp "cadence_sync_backend/internal/http"
	"cadence_sync_backend/internal/http/router"
	"cadence_sync_backend/internal/scheduler"
	"cadence_sync_backend/internal/taskservice"
	"cadence_sync_backend/migrations"
	"cadence_sync_backend/platform/cache"
	"cadence_sync_backend/platform/config"
	"cadence_sync_backend/platform/db"
	"cadence_sync_backend/platform/events"
	"cadence_sync_backend/platform/logger"
	"cadence_sync_backend/platform/startup"
	"cadence_sync_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

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
	log.Info("database connection established")

	startup.Must(log, "run database migrations", startup.Retry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, pool, migrations.FS)
	}))
	log.Info("database migrations complete")

	var rdb *redis.Client
	startup.Must(log, "connect to redis", startup.Retry(ctx, log, "redis connection", 5, time.Second, func() error {
		c, err := cache.NewRedis(ctx, cfg)
		if err != nil {
			return err
		}
		rdb = c
		return nil
	}))
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()
	taskSvc := taskservice.New(cfg, log)
	enrollmentRepo := repository.New(pool)

	jobs, closeJobs := initJobs(cfg, taskSvc, enrollmentRepo, log)
	defer closeJobs()

	reports := initArchive(ctx, cfg, log)

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	adapters.NewActivityRecorder(jobs, log).Subscribe(eventBus)

	enrollmentModule, err := enrollment.NewModule(pool, cfg, enrollment.Deps{
		Bus:       eventBus,
		Redis:     rdb,
		Tasks:     taskSvc,
		Scheduler: jobs,
		Archive:   reports,
		Validator: val,
		Log:       log,
	})
	startup.Must(log, "initialize enrollment module", err)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	health := []apphttp.HealthChecker{db.NewPoolAdapter(pool)}
	if rdb != nil {
		health = append(health, cache.NewHealth(rdb))
	}

	app := &apphttp.App{
		Config: cfg,
		Logger: log,
		Health: health,
		Modules: []apphttp.Module{
			enrollmentModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		eventBus.Wait()
		return err
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initJobs returns the asynq client when Redis is configured, or runs the
// jobs inline otherwise.
func initJobs(cfg *config.Config, tasks ports.TaskService, repo *repository.Repository, log *logger.Logger) (scheduler.Enqueuer, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; running background jobs inline")
		return scheduler.NewInline(tasks, repo, log), func() {}
	}

	client, err := scheduler.NewClient(cfg)
	startup.Must(log, "initialize scheduler client", err)
	return client, func() { _ = client.Close() }
}

func initArchive(ctx context.Context, cfg *config.Config, log *logger.Logger) ports.ReportArchiver {
	if !cfg.IsArchiveEnabled() {
		log.Warn("MINIO_ENDPOINT not configured; batch reports are not archived")
		return nil
	}

	a, err := archive.NewMinIOArchive(cfg)
	startup.Must(log, "initialize report archive", err)
	startup.Must(log, "ensure report bucket exists", startup.Retry(ctx, log, "ensure report bucket", 5, 2*time.Second, func() error {
		return a.EnsureBucketExists(ctx)
	}))
	log.Info("report archive initialized", "bucket", cfg.GetArchiveBucket())
	return a
}
