package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/vb-entreprise/rrsa-server/internal/app"
	"github.com/vb-entreprise/rrsa-server/internal/docstore"
	jobmetrics "github.com/vb-entreprise/rrsa-server/internal/jobs"
	"github.com/vb-entreprise/rrsa-server/internal/observability"
	"github.com/vb-entreprise/rrsa-server/internal/platform/db"
	"github.com/vb-entreprise/rrsa-server/internal/roles"
	"github.com/vb-entreprise/rrsa-server/internal/users"
	"github.com/vb-entreprise/rrsa-server/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	store := docstore.NewPGStore(pool)
	metrics := observability.NewMetrics()
	jobMetrics := jobmetrics.NewMetrics(metrics.Registerer())

	repairJob := &jobs.PermissionsRepairJob{
		Profiles:   users.NewRepository(store, logger),
		Metrics:    metrics,
		JobMetrics: jobMetrics,
		Logger:     logger,
	}
	seedJob := &jobs.RolesSeedJob{
		Catalog:    roles.NewCatalog(store, logger),
		JobMetrics: jobMetrics,
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Concurrency: cfg.WorkerConcurrency,
		Logger:      logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskPermissionsRepair, Handler: repairJob.Handle},
			{Type: jobs.TaskRolesSeed, Handler: seedJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			// Nightly re-seed repairs a catalog that lost its built-ins.
			{Spec: "0 3 * * *", Task: jobs.NewRolesSeedTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
