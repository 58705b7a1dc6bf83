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
	"github.com/joho/godotenv"

	"github.com/ssth/ssth-inventory/internal/ai"
	"github.com/ssth/ssth-inventory/internal/app"
	"github.com/ssth/ssth-inventory/internal/auth"
	"github.com/ssth/ssth-inventory/internal/imports"
	"github.com/ssth/ssth-inventory/internal/masterdata/categories"
	"github.com/ssth/ssth-inventory/internal/masterdata/items"
	"github.com/ssth/ssth-inventory/internal/masterdata/suppliers"
	"github.com/ssth/ssth-inventory/internal/observability"
	"github.com/ssth/ssth-inventory/internal/platform/cache"
	"github.com/ssth/ssth-inventory/internal/platform/db"
	"github.com/ssth/ssth-inventory/internal/procurement"
	"github.com/ssth/ssth-inventory/internal/shared"
	"github.com/ssth/ssth-inventory/internal/storage"
	"github.com/ssth/ssth-inventory/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN, db.PoolOptions{MaxConns: cfg.PGMaxConns})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	store, err := storage.Open(ctx, storage.Options{
		Provider:           cfg.StorageProvider,
		Bucket:             cfg.StorageBucket,
		PublicURL:          cfg.StoragePublicURL,
		S3Endpoint:         cfg.S3Endpoint,
		S3Region:           cfg.S3Region,
		S3AccessKeyID:      cfg.S3AccessKeyID,
		S3SecretAccessKey:  cfg.S3SecretAccessKey,
		GCSCredentialsJSON: cfg.GCSCredentialsJSON,
	})
	if err != nil {
		logger.Error("open storage", slog.Any("error", err))
		os.Exit(1)
	}

	jobClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	auditLogger := shared.NewAuditLogger(dbpool)
	authMiddleware := auth.Middleware{
		Verifier: auth.NewVerifier(cfg.AuthJWTSecret, cfg.AuthJWTIssuer, cfg.AuthJWTAudience),
		Logger:   logger,
	}

	itemService := items.NewService(items.NewRepository(dbpool))
	categoryService := categories.NewService(categories.NewRepository(dbpool))
	supplierService := suppliers.NewService(suppliers.NewRepository(dbpool))
	procurementService := procurement.NewService(procurement.NewRepository(dbpool))

	importsHandler := imports.NewHandler(
		logger,
		imports.NewItemImporter(itemService, categoryService, store, jobClient, logger),
		imports.NewPOImporter(itemService, supplierService, procurementService, logger),
		imports.NewImportLock(redisClient, cfg.ImportLockTTL, logger),
		auditLogger,
		metrics,
		authMiddleware.RequireUser,
		cfg.AppMaxUploadBytes,
	)

	aiClient := ai.NewClient(ai.NewSettingsLoader(dbpool, cfg.AISettingsKey), cfg.AITimeout, logger)
	aiHandler := ai.NewHandler(aiClient, logger, authMiddleware.RequireUser)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		Metrics:        metrics,
		Database:       dbpool,
		ImportsHandler: importsHandler,
		AIHandler:      aiHandler,
		JobHandler:     jobs.NewHandler(inspector, logger),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
