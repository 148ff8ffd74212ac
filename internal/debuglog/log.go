// Package debuglog is the file logger for the terminal client. The TUI owns
// the terminal, so log output only ever goes to a file.
package debuglog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// LogLevel represents the severity level of a log message
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelOff // Disables all logging
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelOff:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

func (l LogLevel) zerolog() zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelInfo:
		return zerolog.InfoLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.Disabled
	}
}

// ParseLogLevel parses a string into a LogLevel
func ParseLogLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	case "OFF", "DISABLED":
		return LevelOff
	default:
		return LevelInfo
	}
}

var (
	mu           sync.RWMutex
	currentLevel = LevelOff
	logger       = zerolog.Nop()
	logFile      *os.File
)

// DefaultPath is ~/.cinematch/cinematch.log.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".cinematch", "cinematch.log"), nil
}

// Setup configures the logging system with the specified level and optional
// file path. Without a path the log goes to DefaultPath.
func Setup(level LogLevel, filePath ...string) error {
	mu.Lock()
	defer mu.Unlock()

	currentLevel = level
	closeLocked()

	if level == LevelOff {
		return nil
	}

	var logPath string
	if len(filePath) > 0 && filePath[0] != "" {
		logPath = filePath[0]
	} else {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		logPath = p
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", logPath, err)
	}

	logFile = f
	out := zerolog.ConsoleWriter{
		Out:        f,
		NoColor:    true,
		TimeFormat: time.RFC3339Nano,
	}
	logger = zerolog.New(out).
		Level(level.zerolog()).
		With().
		Timestamp().
		Str("app", "cinematch").
		Logger()
	return nil
}

// SetLevel changes the current logging level
func SetLevel(level LogLevel) {
	mu.Lock()
	defer mu.Unlock()
	currentLevel = level
	logger = logger.Level(level.zerolog())
}

// GetLevel returns the current logging level
func GetLevel() LogLevel {
	mu.RLock()
	defer mu.RUnlock()
	return currentLevel
}

// Close closes the log file if open
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	return closeLocked()
}

func closeLocked() error {
	logger = zerolog.Nop()
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

func current() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func Debugf(format string, args ...any) {
	l := current()
	l.Debug().Msgf(format, args...)
}

func Infof(format string, args ...any) {
	l := current()
	l.Info().Msgf(format, args...)
}

func Warnf(format string, args ...any) {
	l := current()
	l.Warn().Msgf(format, args...)
}

func Errorf(format string, args ...any) {
	l := current()
	l.Error().Msgf(format, args...)
}

// FieldLogger attaches key-value fields to every message it writes.
type FieldLogger struct {
	fields map[string]any
}

// WithFields returns a logger with the specified fields. The fields are
// bound when a message is written, so a FieldLogger created before Setup
// still logs to the configured file.
func WithFields(fields map[string]any) *FieldLogger {
	return &FieldLogger{fields: fields}
}

func (fl *FieldLogger) logger() zerolog.Logger {
	return current().With().Fields(fl.fields).Logger()
}

func (fl *FieldLogger) Debugf(format string, args ...any) {
	l := fl.logger()
	l.Debug().Msgf(format, args...)
}

func (fl *FieldLogger) Infof(format string, args ...any) {
	l := fl.logger()
	l.Info().Msgf(format, args...)
}

func (fl *FieldLogger) Warnf(format string, args ...any) {
	l := fl.logger()
	l.Warn().Msgf(format, args...)
}

func (fl *FieldLogger) Errorf(format string, args ...any) {
	l := fl.logger()
	l.Error().Msgf(format, args...)
}
