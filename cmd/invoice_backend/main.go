package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/SscSPs/invoice_pipeline/internal/core/services"
	"github.com/SscSPs/invoice_pipeline/internal/handlers"
	"github.com/SscSPs/invoice_pipeline/internal/middleware"
	"github.com/SscSPs/invoice_pipeline/internal/platform/config"
	"github.com/SscSPs/invoice_pipeline/internal/platform/logging"
	"github.com/SscSPs/invoice_pipeline/internal/platform/metrics"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// @title Invoice Pipeline API
// @version 1.0
// @description Invoice approval and posting pipeline.

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger, zapLogger, err := logging.New(logging.Options{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Development: !cfg.IsProduction,
	})
	if err != nil {
		slog.Error("Failed to build logger", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = zapLogger.Sync() }()
	slog.SetDefault(logger)

	ctx := context.Background()

	repos, closeStore, err := setupRepositories(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize invoice store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeStore()

	adapters, closeAdapters, err := setupAdapters(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize adapters", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeAdapters()

	m := metrics.New()
	container, err := services.NewServiceContainer(cfg, repos, adapters, m)
	if err != nil {
		logger.Error("Failed to build services", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := middleware.SetupValidator(); err != nil {
		logger.Error("Failed to register validations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	rateLimiter, err := middleware.NewMemoryLimiter(cfg.RateLimit)
	if err != nil {
		logger.Error("Invalid rate limit", slog.String("rate", cfg.RateLimit), slog.String("error", err.Error()))
		os.Exit(1)
	}

	r := gin.New()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")

	r.Use(
		middleware.StructuredLoggingMiddleware(logger),
		gin.Recovery(),
		cors.New(corsConfig),
		middleware.RequestMetrics(m),
		middleware.RateLimit(rateLimiter),
	)

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, container, m)

	logger.Info("Server starting",
		slog.String("port", cfg.Port),
		slog.String("store", cfg.StoreMode),
		slog.String("extractor", cfg.ExtractorMode),
		slog.String("ledger", cfg.LedgerMode),
		slog.String("storage", cfg.StorageMode))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
