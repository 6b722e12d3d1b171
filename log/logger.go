// Package log provides the category aware logger used across the module.
package log

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Logger wraps a logrus logger and adds a category to each log line, an
// optional category filter and a debug override that forces debug lines
// through regardless of the configured level.
type Logger struct {
	*logrus.Logger

	mu             sync.Mutex
	lastLogCall    int64
	debugOverride  bool
	categoryFilter *regexp.Regexp
}

// New creates a Logger around an existing logrus logger. A nil logger gets
// a fresh logrus instance configured from the environment (see NewFromEnv).
func New(logger *logrus.Logger, debugOverride bool, categoryFilter *regexp.Regexp) *Logger {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(os.Stderr)
		logger.SetFormatter(&ConsoleFormatter{})
	}
	return &Logger{
		Logger:         logger,
		debugOverride:  debugOverride,
		categoryFilter: categoryFilter,
	}
}

// NewNullLogger returns a logger that discards everything. Useful in tests.
func NewNullLogger() *Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return New(logger, false, nil)
}

// NewFromEnv configures a logger from the BROWSER_BRIDGE_LOG and
// BROWSER_BRIDGE_LOG_CATEGORY_FILTER environment variables. Unparsable
// values are reported on the logger itself and otherwise ignored, leaving
// the logrus defaults in place.
func NewFromEnv() *Logger {
	l := New(nil, false, nil)
	if lvl, ok := os.LookupEnv("BROWSER_BRIDGE_LOG"); ok {
		if err := l.SetLevel(lvl); err != nil {
			l.Errorf("log", "BROWSER_BRIDGE_LOG: %v", err)
		}
	}
	if filter, ok := os.LookupEnv("BROWSER_BRIDGE_LOG_CATEGORY_FILTER"); ok {
		if err := l.SetCategoryFilter(filter); err != nil {
			l.Errorf("log", "BROWSER_BRIDGE_LOG_CATEGORY_FILTER: %v", err)
		}
	}
	return l
}

// Tracef logs at trace level with a category.
func (l *Logger) Tracef(category string, msg string, args ...interface{}) {
	l.Logf(logrus.TraceLevel, category, msg, args...)
}

// Debugf logs at debug level with a category.
func (l *Logger) Debugf(category string, msg string, args ...interface{}) {
	l.Logf(logrus.DebugLevel, category, msg, args...)
}

// Infof logs at info level with a category.
func (l *Logger) Infof(category string, msg string, args ...interface{}) {
	l.Logf(logrus.InfoLevel, category, msg, args...)
}

// Warnf logs at warning level with a category.
func (l *Logger) Warnf(category string, msg string, args ...interface{}) {
	l.Logf(logrus.WarnLevel, category, msg, args...)
}

// Errorf logs at error level with a category.
func (l *Logger) Errorf(category string, msg string, args ...interface{}) {
	l.Logf(logrus.ErrorLevel, category, msg, args...)
}

// Logf logs a message with the given level and category, tracking the
// elapsed time since the previous log call.
func (l *Logger) Logf(level logrus.Level, category string, msg string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.categoryFilter != nil && !l.categoryFilter.MatchString(category) {
		return
	}

	now := time.Now().UnixMilli()
	elapsed := now - l.lastLogCall
	if l.lastLogCall == 0 {
		elapsed = 0
	}
	l.lastLogCall = now

	entry := l.WithFields(logrus.Fields{
		"category": category,
		"elapsed":  fmt.Sprintf("%d ms", elapsed),
	})
	if l.GetLevel() < level && l.debugOverride {
		entry.Printf(msg, args...)
		return
	}
	entry.Logf(level, msg, args...)
}

// SetLevel sets the logger level from a level string ("debug", "info", ...).
func (l *Logger) SetLevel(level string) error {
	pl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parsing log level %q: %w", level, err)
	}
	l.Logger.SetLevel(pl)
	return nil
}

// SetCategoryFilter compiles and installs a category filter regexp. Only
// log lines whose category matches the filter are emitted.
func (l *Logger) SetCategoryFilter(filter string) error {
	re, err := regexp.Compile(filter)
	if err != nil {
		return fmt.Errorf("invalid category filter %q: %w", filter, err)
	}
	l.mu.Lock()
	l.categoryFilter = re
	l.mu.Unlock()
	return nil
}

// DebugMode returns true if the logger level is set to debug or higher.
func (l *Logger) DebugMode() bool {
	return l.GetLevel() >= logrus.DebugLevel
}
