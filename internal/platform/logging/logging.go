// Package logging builds the process logger: zap underneath, log/slog on top.
package logging

import (
	"log/slog"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

// Options selects the level and the encoding of the process logger.
type Options struct {
	Level       string // debug, info, warn or error
	Format      string // json or console
	Development bool
}

// ParseLevel maps a level name onto a zap level, defaulting to info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// NewZap builds the zap logger for the given options.
func NewZap(opts Options) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if opts.Development {
		config = zap.NewDevelopmentConfig()
	}
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.Level = zap.NewAtomicLevelAt(ParseLevel(opts.Level))

	switch strings.ToLower(opts.Format) {
	case "console":
		config.Encoding = "console"
	case "json":
		config.Encoding = "json"
	}

	return config.Build()
}

// New returns a slog logger writing through zap. The zap logger is returned as well so
// the caller can Sync it on shutdown.
func New(opts Options) (*slog.Logger, *zap.Logger, error) {
	zapLogger, err := NewZap(opts)
	if err != nil {
		return nil, nil, err
	}
	return FromZap(zapLogger), zapLogger, nil
}

// FromZap bridges an existing zap logger into slog.
func FromZap(zapLogger *zap.Logger) *slog.Logger {
	return slog.New(zapslog.NewHandler(zapLogger.Core(), zapslog.WithCaller(true)))
}

// NewNop returns a logger that discards everything.
func NewNop() *slog.Logger {
	return FromZap(zap.NewNop())
}
