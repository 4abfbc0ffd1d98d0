package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
)

type loggerCtxKeyType struct{}

var loggerCtxKey = loggerCtxKeyType{}

// createLogger builds the CLI logger. Logs always go to stderr because stdout
// may carry archive bytes. They are human readable on a terminal and JSON
// otherwise.
func createLogger(debug bool, logLevel string) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %s: %w", logLevel, err)
	}

	cfg := zap.NewProductionConfig()
	switch {
	case debug:
		cfg = zap.NewDevelopmentConfig()
		level.SetLevel(zap.DebugLevel)
	case isTerminal(os.Stderr):
		cfg.Encoding = "console"
		cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	cfg.Level = level
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger.Named("cra"), nil
}

func withLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey, logger)
}

// loggerFrom returns the logger stored by withLogger, or nil before the root
// command's Before hook has run.
func loggerFrom(ctx context.Context) *zap.Logger {
	logger, _ := ctx.Value(loggerCtxKey).(*zap.Logger)
	return logger
}

func getLogger(ctx context.Context) *zap.Logger {
	logger := loggerFrom(ctx)
	if logger == nil {
		panic("logger not found in context")
	}
	return logger
}
