// Package logger holds the process-wide zap logger.
package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
)

var (
	sugar *zap.SugaredLogger
	once  sync.Once
)

// Init builds the global logger once. "production" logs JSON at info,
// "test" discards everything, and any other environment logs to the console
// at debug. LOG_LEVEL overrides the level when it parses.
func Init(env string) {
	once.Do(func() {
		sugar = build(env, os.Getenv("LOG_LEVEL"))
	})
}

func build(env, level string) *zap.SugaredLogger {
	var cfg zap.Config
	switch env {
	case "test":
		return zap.NewNop().Sugar()
	case "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}

	if level != "" {
		if lvl, err := zap.ParseAtomicLevel(level); err == nil {
			cfg.Level = lvl
		}
	}

	base, err := cfg.Build(zap.Fields(
		zap.String("service", "vestora"),
		zap.String("env", env),
	))
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return base.Sugar()
}

// Get returns the global sugared logger, initializing a development logger
// if Init was never called.
func Get() *zap.SugaredLogger {
	if sugar == nil {
		Init("development")
	}
	return sugar
}

// Named returns a child logger tagged with the given component name.
func Named(component string) *zap.SugaredLogger {
	return Get().Named(component)
}

// ForOwner returns a component logger that tags every entry with the owner
// whose records are being worked on.
func ForOwner(component, ownerID string) *zap.SugaredLogger {
	return Named(component).With("owner_id", ownerID)
}

// Sync flushes any buffered log entries. Call this before application exit.
func Sync() {
	if sugar != nil {
		_ = sugar.Sync()
	}
}
