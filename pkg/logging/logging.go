// Package logging holds the process-wide structured logger used by the
// tabula CLI, the loader generator and the HTTP server.
//
// The logger is lazily created with text output at INFO level on stderr;
// Init replaces it with a configured one.
//
//	logging.Init(logging.Config{Level: logging.LevelDebug, Format: "json"})
//	logging.WithFrame(id).Info("frame saved", "rows", df.Height())
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	logger   *slog.Logger
	loggerMu sync.RWMutex
	logFile  *os.File
	isInited bool
)

// LogLevel represents logging verbosity.
type LogLevel string

const (
	LevelDebug LogLevel = "DEBUG"
	LevelInfo  LogLevel = "INFO"
	LevelWarn  LogLevel = "WARN"
	LevelError LogLevel = "ERROR"
)

// Config holds logger configuration.
type Config struct {
	Level LogLevel
	// OutputPath is a file to append to. Empty means Writer, or stderr.
	OutputPath string
	Writer     io.Writer
	// Format is "json" or "text".
	Format string
}

// ParseLevel maps a case-insensitive level name to a LogLevel. Unknown
// names map to LevelInfo.
func ParseLevel(s string) LogLevel {
	switch LogLevel(strings.ToUpper(strings.TrimSpace(s))) {
	case LevelDebug:
		return LevelDebug
	case LevelWarn, "WARNING":
		return LevelWarn
	case LevelError:
		return LevelError
	default:
		return LevelInfo
	}
}

func (l LogLevel) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Init installs a logger built from config. Calling Init again replaces
// the previous logger and closes its log file, if any.
func Init(config Config) error {
	var writer io.Writer = os.Stderr
	var file *os.File

	switch {
	case config.OutputPath != "":
		if err := os.MkdirAll(filepath.Dir(config.OutputPath), 0o750); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(config.OutputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		writer, file = f, f
	case config.Writer != nil:
		writer = config.Writer
	}

	opts := &slog.HandlerOptions{Level: config.Level.slogLevel()}
	var handler slog.Handler
	if config.Format == "json" {
		handler = slog.NewJSONHandler(writer, opts)
	} else {
		handler = slog.NewTextHandler(writer, opts)
	}

	loggerMu.Lock()
	defer loggerMu.Unlock()
	if logFile != nil {
		_ = logFile.Close()
	}
	logger, logFile, isInited = slog.New(handler), file, true
	return nil
}

// Close releases the log file, if any, and resets to the lazy default.
func Close() error {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	var err error
	if logFile != nil {
		err = logFile.Close()
		logFile = nil
	}
	logger, isInited = nil, false
	return err
}

// GetLogger returns the current logger, creating the default one on
// first use.
func GetLogger() *slog.Logger {
	loggerMu.RLock()
	if isInited {
		l := logger
		loggerMu.RUnlock()
		return l
	}
	loggerMu.RUnlock()

	loggerMu.Lock()
	defer loggerMu.Unlock()
	if !isInited {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
		isInited = true
	}
	return logger
}

// Debug logs at debug level.
func Debug(msg string, args ...any) { GetLogger().Debug(msg, args...) }

// Info logs at info level.
func Info(msg string, args ...any) { GetLogger().Info(msg, args...) }

// Warn logs at warn level.
func Warn(msg string, args ...any) { GetLogger().Warn(msg, args...) }

// Error logs at error level.
func Error(msg string, args ...any) { GetLogger().Error(msg, args...) }

// WithFrame returns a logger carrying a catalog frame id.
func WithFrame(id string) *slog.Logger {
	return GetLogger().With("frame", id)
}

// WithColumn returns a logger carrying a column name.
func WithColumn(name string) *slog.Logger {
	return GetLogger().With("column", name)
}

// WithType returns a logger carrying a Go type name, for the generator.
func WithType(name string) *slog.Logger {
	return GetLogger().With("type", name)
}
