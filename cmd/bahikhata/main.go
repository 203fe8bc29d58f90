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

	"github.com/bahikhata-erp/bahikhata/internal/app"
	"github.com/bahikhata-erp/bahikhata/internal/auth"
	"github.com/bahikhata-erp/bahikhata/internal/billing"
	"github.com/bahikhata-erp/bahikhata/internal/inventory"
	"github.com/bahikhata-erp/bahikhata/internal/masterdata/firms"
	"github.com/bahikhata-erp/bahikhata/internal/masterdata/parties"
	"github.com/bahikhata-erp/bahikhata/internal/platform/cache"
	"github.com/bahikhata-erp/bahikhata/internal/platform/db"
	"github.com/bahikhata-erp/bahikhata/internal/shared"
	"github.com/bahikhata-erp/bahikhata/jobs"
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

	redisClient, err := cache.NewRedis(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, redisClient, cfg.TokenTTL)
	authHandler := auth.NewHandler(logger, authService)
	authMiddleware := auth.Middleware{Service: authService, Logger: logger}

	auditLogger := shared.NewAuditLogger(pool)

	stockService := inventory.NewService()
	inventoryRepo := inventory.NewRepository(pool)
	inventoryHandler := inventory.NewHandler(logger, inventoryRepo)

	partiesRepo := parties.NewRepository(pool)
	partiesHandler := parties.NewHandler(logger, partiesRepo)

	firmsRepo := firms.NewRepository(pool)
	firmsHandler := firms.NewHandler(logger, firmsRepo)

	billingRepo := billing.NewRepository(pool)
	billingService := billing.NewService(billingRepo, stockService, auditLogger)
	billingHandler := billing.NewHandler(logger, billingService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		AuthHandler:      authHandler,
		AuthMiddleware:   authMiddleware,
		BillingHandler:   billingHandler,
		InventoryHandler: inventoryHandler,
		PartiesHandler:   partiesHandler,
		FirmsHandler:     firmsHandler,
		JobHandler:       jobHandler,
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
