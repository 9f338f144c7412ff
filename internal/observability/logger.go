package observability

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/davidbz/pricelab/internal/config"
)

// Process-wide base logger. Loggers are not stored in context; FromContext
// derives one per call.
//
//nolint:gochecknoglobals // Singleton logger is a standard pattern
var (
	globalLogger *zap.Logger
	loggerMu     sync.RWMutex
)

// InitLogger builds the base logger from the log settings (called once at
// startup). Format "console" selects the human-readable encoder.
func InitLogger(cfg *config.LogConfig) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if cfg != nil {
		level, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		zapCfg.Level = level
		if cfg.Format == "console" {
			zapCfg.Encoding = "console"
			zapCfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
		}
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	SetLogger(logger)
	return logger, nil
}

// SetLogger replaces the base logger, e.g. with zap.NewNop() for CLI runs.
func SetLogger(logger *zap.Logger) {
	loggerMu.Lock()
	globalLogger = logger
	loggerMu.Unlock()
}

func baseLogger() *zap.Logger {
	loggerMu.RLock()
	logger := globalLogger
	loggerMu.RUnlock()

	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	return logger
}

// FromContext returns the base logger with the context's IDs attached.
func FromContext(ctx context.Context) *zap.Logger {
	fields := make([]zap.Field, 0, len(logFieldKeys))
	for _, key := range logFieldKeys {
		if v := value(ctx, key); v != "" {
			fields = append(fields, zap.String(string(key), v))
		}
	}
	return baseLogger().With(fields...)
}
