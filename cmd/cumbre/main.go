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

	"github.com/cumbre-erp/cumbre/internal/app"
	"github.com/cumbre-erp/cumbre/internal/ledger/accounts"
	"github.com/cumbre-erp/cumbre/internal/ledger/integration"
	"github.com/cumbre-erp/cumbre/internal/ledger/periods"
	"github.com/cumbre-erp/cumbre/internal/ledger/reports"
	"github.com/cumbre-erp/cumbre/internal/ledger/shared"
	"github.com/cumbre-erp/cumbre/internal/ledger/vouchers"
	"github.com/cumbre-erp/cumbre/internal/observability"
	"github.com/cumbre-erp/cumbre/internal/platform/cache"
	"github.com/cumbre-erp/cumbre/internal/platform/db"
	"github.com/cumbre-erp/cumbre/jobs"
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

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	// Redis only backs the integration document lock; the lock degrades to a
	// no-op without it, so startup continues on failure.
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	accountsRepo := accounts.NewRepository(dbpool)
	accountsService := accounts.NewService(accountsRepo)
	accountsHandler := accounts.NewHandler(logger, accountsService)

	periodsRepo := periods.NewRepository(dbpool)
	periodsService := periods.NewService(periodsRepo)
	periodsHandler := periods.NewHandler(logger, periodsService)

	vouchersRepo := vouchers.NewRepository(dbpool)
	vouchersService := vouchers.NewService(vouchersRepo, accountsService, periodsService)
	vouchersHandler := vouchers.NewHandler(logger, vouchersService)

	reportsRepo := reports.NewRepository(dbpool)
	reportsService := reports.NewService(reportsRepo, accountsService)
	reportsHandler := reports.NewHandler(logger, reportsService)

	integrationRepo := integration.NewRepository(dbpool)
	if err := integrationRepo.SeedMappings(ctx, shared.DefaultTenantID); err != nil {
		logger.Warn("seed account mappings", slog.Any("error", err))
	}
	documentLock := integration.NewDocumentLock(redisClient, cfg.IntegrationLockTTL)
	integrationService := integration.NewService(integrationRepo, vouchersService, documentLock, logger)
	integrationBuilder := integration.NewBuilder(integrationRepo)
	integrationHandler := integration.NewHandler(logger, integrationService, integrationBuilder, integrationRepo)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, jobsClient, logger)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		Metrics:            metrics,
		AccountsHandler:    accountsHandler,
		VouchersHandler:    vouchersHandler,
		PeriodsHandler:     periodsHandler,
		ReportsHandler:     reportsHandler,
		IntegrationHandler: integrationHandler,
		JobsHandler:        jobsHandler,
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
