package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/rhino-platform/rhino-access/internal/app"
	"github.com/rhino-platform/rhino-access/internal/audit"
	"github.com/rhino-platform/rhino-access/internal/auth"
	"github.com/rhino-platform/rhino-access/internal/catalog"
	"github.com/rhino-platform/rhino-access/internal/observability"
	"github.com/rhino-platform/rhino-access/internal/platform/cache"
	"github.com/rhino-platform/rhino-access/internal/platform/db"
	"github.com/rhino-platform/rhino-access/internal/rbac"
	"github.com/rhino-platform/rhino-access/internal/shared"
	"github.com/rhino-platform/rhino-access/internal/users"
	"github.com/rhino-platform/rhino-access/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping server startup")
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
		logger.Error("connect database", slog.Any("error", err))
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

	// The role and permission catalog is fixed at deploy time; load it once
	// and share the immutable snapshot everywhere.
	catalogRepo := catalog.NewRepository(pool)
	snapshot, err := catalogRepo.LoadSnapshot(ctx)
	if err != nil {
		logger.Error("load catalog snapshot", slog.Any("error", err))
		os.Exit(1)
	}

	sessions := shared.NewSessionManager(redisClient, "rhino_session", cfg.SessionTTL, cfg.IsProduction())
	metrics := observability.NewMetrics()

	recorder := audit.NewRecorder(pool)
	rbacStore := rbac.NewPGStore(pool, recorder)
	resolveCache := rbac.NewCache(redisClient, cfg.ResolveCacheTTL)
	resolver := rbac.NewResolver(snapshot, rbacStore, resolveCache, logger)
	guard := rbac.NewGuard(cfg.DeletionFloor)
	rbacService := rbac.NewService(snapshot, rbacStore, resolver, guard, logger)
	rbacMW := rbac.Middleware{Resolver: resolver, Logger: logger, Observer: metrics}

	queueClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init queue client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := queueClient.Close(); err != nil {
			logger.Warn("queue client close", slog.Any("error", err))
		}
	}()
	notifier := jobs.NewNotifier(queueClient, logger)

	usersRepo := users.NewRepository(pool, recorder)
	usersService := users.NewService(usersRepo, snapshot, resolver, guard, notifier, logger)

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo)

	catalogService := catalog.NewService(snapshot, usersRepo)
	auditService := audit.NewService(audit.NewRepository(pool))

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessions,
		AuthHandler:    auth.NewHandler(logger, authService, sessions, resolver, snapshot),
		CatalogHandler: catalog.NewHandler(logger, catalogService, rbacMW.RequireAuthenticated, rbacMW.RequirePermission(catalog.AppAccess, "manage_users")),
		UsersHandler:   users.NewHandler(logger, usersService, rbacService, rbacMW),
		RBACHandler:    rbac.NewHandler(logger, resolver, rbacMW),
		AuditHandler:   audit.NewHandler(logger, auditService, rbacMW.RequirePermission(catalog.AppAccess, "view_audit_logs")),
		Pool:           pool,
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", slog.Any("error", err))
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server run", slog.Any("error", err))
			os.Exit(1)
		}
	}
}
