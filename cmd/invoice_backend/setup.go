package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/SscSPs/invoice_pipeline/internal/adapters/extraction"
	"github.com/SscSPs/invoice_pipeline/internal/adapters/ledger"
	"github.com/SscSPs/invoice_pipeline/internal/adapters/lock"
	"github.com/SscSPs/invoice_pipeline/internal/adapters/storage"
	"github.com/SscSPs/invoice_pipeline/internal/adapters/workbook"
	portsrepo "github.com/SscSPs/invoice_pipeline/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/invoice_pipeline/internal/core/ports/services"
	"github.com/SscSPs/invoice_pipeline/internal/core/services"
	"github.com/SscSPs/invoice_pipeline/internal/platform/config"
	"github.com/SscSPs/invoice_pipeline/internal/repositories/database/pgsql"
	"github.com/SscSPs/invoice_pipeline/internal/repositories/memory"
	"github.com/SscSPs/invoice_pipeline/pkg/database"
	goredis "github.com/redis/go-redis/v9"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func setupRepositories(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, func(), error) {
	if cfg.StoreMode == config.ModeMemory {
		logger.Warn("Using in-memory invoice store; records are lost on restart")
		return memory.NewRepositoryProvider(), func() {}, nil
	}

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return portsrepo.RepositoryProvider{}, nil, err
	}
	logger.Info("Database connection pool established.")

	if err := runMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
		dbPool.Close()
		return portsrepo.RepositoryProvider{}, nil, err
	}

	return pgsql.NewRepositoryProvider(dbPool), func() { database.ClosePgxPool(dbPool) }, nil
}

// runMigrations applies every pending "up" migration over a temporary database/sql connection.
func runMigrations(databaseURL, migrationsPath string, logger *slog.Logger) error {
	logger.Info("Running database migrations...", slog.String("path", migrationsPath))

	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database connection for migrations: %w", err)
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return fmt.Errorf("failed to ping database for migrations: %w", err)
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create postgres driver instance for migrations: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(migrationsPath, "postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	upErr := m.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", upErr)
	}

	// Closing the source also surfaces a dirty state left by Up.
	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return fmt.Errorf("migration source error: %w", sourceErr)
	}
	if dbErr != nil {
		return fmt.Errorf("migration database error: %w", dbErr)
	}

	if errors.Is(upErr, migrate.ErrNoChange) {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}

func setupAdapters(ctx context.Context, cfg *config.Config, logger *slog.Logger) (services.Adapters, func(), error) {
	var adapters services.Adapters
	cleanup := func() {}

	switch cfg.ExtractorMode {
	case config.ModeJSON:
		adapters.Extractor = extraction.NewJSONDocumentExtractor()
	default:
		extractor, err := extraction.NewOpenAIExtractor(extraction.OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
		})
		if err != nil {
			return adapters, cleanup, fmt.Errorf("extractor: %w", err)
		}
		adapters.Extractor = extractor
	}

	switch cfg.LedgerMode {
	case config.ModeMemory:
		logger.Warn("Using in-process ledger; entries are lost on restart")
		adapters.Ledger = ledger.NewMemoryLedger(ledger.WithChartOfAccounts(cfg.ExpenseAccount, cfg.PayableAccount))
	default:
		client, err := ledger.NewHTTPLedgerClient(ledger.HTTPClientConfig{
			BaseURL:        cfg.LedgerBaseURL,
			APIKey:         cfg.LedgerAPIKey,
			Timeout:        cfg.LedgerTimeout,
			MaxAttempts:    cfg.LedgerMaxAttempts,
			RetryBaseDelay: cfg.LedgerRetryBaseDelay,
		}, &http.Client{})
		if err != nil {
			return adapters, cleanup, fmt.Errorf("ledger client: %w", err)
		}
		adapters.Ledger = client
	}

	objectStorage, err := setupObjectStorage(ctx, cfg)
	if err != nil {
		return adapters, cleanup, err
	}
	adapters.Storage = objectStorage

	exporter, err := workbook.NewExcelWorkbookExporter(objectStorage)
	if err != nil {
		return adapters, cleanup, fmt.Errorf("workbook exporter: %w", err)
	}
	adapters.Exporter = exporter

	if cfg.RedisURL == "" {
		logger.Info("REDIS_URL not set; invoice claims are serialized within this process only")
		adapters.Locker = lock.NewLocalClaimLocker()
		return adapters, cleanup, nil
	}

	redisOpts, err := goredis.ParseURL(cfg.RedisURL)
	if err != nil {
		return adapters, cleanup, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	redisClient := goredis.NewClient(redisOpts)
	lockOpts := lock.DefaultRedisOptions()
	lockOpts.Expiry = cfg.ClaimLockExpiry
	locker, err := lock.NewRedisClaimLocker(ctx, redisClient, lockOpts)
	if err != nil {
		_ = redisClient.Close()
		return adapters, cleanup, err
	}
	adapters.Locker = locker
	cleanup = func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("Error closing redis client", slog.String("error", err.Error()))
		}
	}
	return adapters, cleanup, nil
}

func setupObjectStorage(ctx context.Context, cfg *config.Config) (portssvc.ObjectStorage, error) {
	if cfg.StorageMode == config.ModeMemory {
		return storage.NewMemoryObjectStorage(), nil
	}
	s3Storage, err := storage.NewS3ObjectStorage(ctx, storage.S3Config{
		Endpoint:     cfg.S3Endpoint,
		Region:       cfg.S3Region,
		Bucket:       cfg.S3Bucket,
		AccessKey:    cfg.S3AccessKey,
		SecretKey:    cfg.S3SecretKey,
		UsePathStyle: cfg.S3UsePathStyle,
	})
	if err != nil {
		return nil, fmt.Errorf("object storage: %w", err)
	}
	if err := s3Storage.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("object storage: %w", err)
	}
	return s3Storage, nil
}
