package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/vb-entreprise/rrsa-server/internal/animalcare"
	"github.com/vb-entreprise/rrsa-server/internal/app"
	"github.com/vb-entreprise/rrsa-server/internal/auth"
	"github.com/vb-entreprise/rrsa-server/internal/authz"
	"github.com/vb-entreprise/rrsa-server/internal/casefiles"
	"github.com/vb-entreprise/rrsa-server/internal/docstore"
	"github.com/vb-entreprise/rrsa-server/internal/identity"
	"github.com/vb-entreprise/rrsa-server/internal/inventory"
	"github.com/vb-entreprise/rrsa-server/internal/observability"
	"github.com/vb-entreprise/rrsa-server/internal/platform/cache"
	"github.com/vb-entreprise/rrsa-server/internal/platform/db"
	"github.com/vb-entreprise/rrsa-server/internal/roles"
	"github.com/vb-entreprise/rrsa-server/internal/session"
	"github.com/vb-entreprise/rrsa-server/internal/shared"
	"github.com/vb-entreprise/rrsa-server/internal/users"
	"github.com/vb-entreprise/rrsa-server/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "rrsa_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	metrics := observability.NewMetrics()

	store := docstore.NewPGStore(pool)

	provider := identity.NewLocalProvider(store, logger)
	profiles := users.NewRepository(store, logger)
	usersService := users.NewService(provider, profiles)
	catalog := roles.NewCatalog(store, logger)
	catalog.EnsureBuiltInRoles(ctx)

	var repairQueue session.RepairQueue
	var asynqClient *asynq.Client
	if cfg.RepairQueueEnabled {
		asynqClient = asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
		defer func() {
			if err := asynqClient.Close(); err != nil {
				logger.Warn("asynq client close", slog.Any("error", err))
			}
		}()
		repairQueue = jobs.NewEnqueuer(asynqClient)
	}

	bootstrapper := session.NewBootstrapper(
		profiles,
		catalog,
		session.StaticRolePolicy{Role: cfg.DefaultRoleValue()},
		repairQueue,
		metrics,
		logger,
	)

	gate := authz.Middleware{Logger: logger}

	authHandler := auth.NewHandler(logger, provider, bootstrapper, sessionManager, csrfManager)
	usersHandler := users.NewHandler(logger, usersService, gate)
	rolesHandler := roles.NewHandler(logger, catalog, gate)
	casesHandler := casefiles.NewHandler(logger, casefiles.NewServiceFromStore(store, logger), gate)
	inventoryHandler := inventory.NewHandler(logger, store, gate)
	careHandler := animalcare.NewHandler(logger, store, gate)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		SessionManager:    sessionManager,
		CSRFManager:       csrfManager,
		AuthHandler:       authHandler,
		UsersHandler:      usersHandler,
		RolesHandler:      rolesHandler,
		CasesHandler:      casesHandler,
		InventoryHandler:  inventoryHandler,
		AnimalCareHandler: careHandler,
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
