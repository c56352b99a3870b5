// Command mock_ledger serves an in-memory ledger over the Ledger API for local runs.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/SscSPs/invoice_pipeline/internal/adapters/ledger"
	"github.com/SscSPs/invoice_pipeline/internal/platform/logging"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func main() {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("MOCK_LEDGER_PORT", "8090")
	v.SetDefault("LEDGER_API_KEY", "")
	v.SetDefault("MOCK_LEDGER_ACCOUNTS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.AutomaticEnv()

	logger, zapLogger, err := logging.New(logging.Options{Level: v.GetString("LOG_LEVEL"), Format: v.GetString("LOG_FORMAT")})
	if err != nil {
		slog.Error("Failed to build logger", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = zapLogger.Sync() }()

	gin.SetMode(gin.ReleaseMode)

	var opts []ledger.MemoryLedgerOption
	if accounts := v.GetString("MOCK_LEDGER_ACCOUNTS"); accounts != "" {
		opts = append(opts, ledger.WithChartOfAccounts(strings.Split(accounts, ",")...))
	}

	srv := &http.Server{
		Addr:              ":" + v.GetString("MOCK_LEDGER_PORT"),
		Handler:           ledger.NewAPIHandler(ledger.NewMemoryLedger(opts...), v.GetString("LEDGER_API_KEY"), logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Mock ledger starting", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Mock ledger failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Mock ledger shutdown failed", slog.String("error", err.Error()))
	}
	logger.Info("Mock ledger stopped")
}
