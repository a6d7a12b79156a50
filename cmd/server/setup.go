package main

import (
	"context"
	"log/slog"
	"os"
	"strings"

	grpc_logging "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"

	"github.com/KirkDiggler/endguard/internal/config"
	"github.com/KirkDiggler/endguard/internal/errors"
)

var (
	configPath     string
	definitionsDir string
	logLevel       string
)

// loadConfig reads the config file and applies flag overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if definitionsDir != "" {
		cfg.DefinitionsDir = definitionsDir
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if grpcPort != 0 {
		cfg.Server.GRPCPort = grpcPort
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid flags")
	}
	return cfg, nil
}

// setupLogger installs a JSON handler at the configured level as the default logger
func setupLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return logger
}

// interceptorLogger adapts slog to the grpc logging middleware
func interceptorLogger(l *slog.Logger) grpc_logging.Logger {
	return grpc_logging.LoggerFunc(func(ctx context.Context, level grpc_logging.Level, msg string, fields ...any) {
		l.Log(ctx, slog.Level(level), msg, fields...)
	})
}
