// Package logging provides categorised structured logging for scrumtool.
// Every subsystem asks for its own named logger with Get; until Initialize
// (or Use) is called all loggers are no-ops, so library code can log freely
// in tests.
package logging

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/subsystem.
type Category string

const (
	CategoryBoot    Category = "boot"    // CLI startup, config loading
	CategoryBoard   Category = "board"   // Snapshot parsing
	CategoryStyle   Category = "style"   // Styling applier
	CategoryReport  Category = "report"  // Report builder and diagnostics
	CategoryBrowser Category = "browser" // Live board capture
	CategoryWatch   Category = "watch"   // Snapshot file watcher
	CategoryArchive Category = "archive" // Report history store
)

// Config controls the root logger.
type Config struct {
	Level string `yaml:"level" env:"SCRUM_LOG_LEVEL"` // debug, info, warn, error
	JSON  bool   `yaml:"json" env:"SCRUM_LOG_JSON"`
}

var (
	mu      sync.RWMutex
	root    = zap.NewNop()
	loggers = make(map[Category]*zap.SugaredLogger)
)

// Initialize builds the root logger from cfg. Output goes to stderr so it
// never mixes with rendered reports on stdout.
func Initialize(cfg Config) error {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		lvl, err := zapcore.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = lvl
	}

	var zc zap.Config
	if cfg.JSON {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zc.DisableStacktrace = true
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}

	l, err := zc.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	Use(l)
	return nil
}

// Use installs l as the root logger. Category loggers are rebuilt lazily.
func Use(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	mu.Lock()
	defer mu.Unlock()
	root = l
	loggers = make(map[Category]*zap.SugaredLogger)
}

// L returns the root logger.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root
}

// Get returns the logger for a category.
func Get(category Category) *zap.SugaredLogger {
	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}
	l := root.Named(string(category)).Sugar()
	loggers[category] = l
	return l
}

// Sync flushes buffered entries.
func Sync() error {
	return L().Sync()
}

// Boot logs a startup message.
func Boot(format string, args ...interface{}) {
	Get(CategoryBoot).Infof(format, args...)
}

// BootWarn logs a non-fatal startup problem.
func BootWarn(format string, args ...interface{}) {
	Get(CategoryBoot).Warnf(format, args...)
}
