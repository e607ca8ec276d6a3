// Package logger is the leveled logger shared by the wizard, its stores and the CLI.
// Output is discarded unless RENTALWIZARD_LOG_FILE is set or SetOutput is called.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// Level represents a log level
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

const (
	envLevel = "RENTALWIZARD_LOG_LEVEL"
	envFile  = "RENTALWIZARD_LOG_FILE"
)

// String returns the string representation of a log level
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a log level string
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("invalid log level: %s", s)
	}
}

// sink is the state shared between a logger and the children returned by Named.
type sink struct {
	mu    sync.Mutex
	level Level
	out   *log.Logger
	file  *os.File
}

// Logger writes "[LEVEL] component: message" lines to a shared sink.
type Logger struct {
	sink *sink
	name string
}

// Default is the process-wide logger used by the package-level helpers.
var Default = New()

// New creates a logger configured from RENTALWIZARD_LOG_LEVEL and RENTALWIZARD_LOG_FILE.
func New() *Logger {
	s := &sink{
		level: LevelInfo,
		out:   log.New(io.Discard, "", log.LstdFlags),
	}

	if levelStr := os.Getenv(envLevel); levelStr != "" {
		if level, err := ParseLevel(levelStr); err == nil {
			s.level = level
		}
	}

	if path := os.Getenv(envFile); path != "" {
		if f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err == nil {
			s.file = f
			s.out = log.New(f, "", log.LstdFlags)
		}
	}

	return &Logger{sink: s}
}

// Named returns a child logger that prefixes messages with the component name.
// Children share level, output and file handle with their parent.
func (l *Logger) Named(component string) *Logger {
	name := component
	if l.name != "" {
		name = l.name + "." + component
	}
	return &Logger{sink: l.sink, name: name}
}

// Configure applies a level string and log file path, typically from config.
// An empty path leaves the current output untouched.
func (l *Logger) Configure(level, path string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	l.SetLevel(lvl)

	if path == "" {
		return nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	if l.sink.file != nil {
		_ = l.sink.file.Close()
	}
	l.sink.file = f
	l.sink.out.SetOutput(f)
	return nil
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	if l.sink.file == nil {
		return nil
	}
	err := l.sink.file.Close()
	l.sink.file = nil
	l.sink.out.SetOutput(io.Discard)
	return err
}

// SetLevel sets the minimum level written.
func (l *Logger) SetLevel(level Level) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.level = level
}

// SetOutput redirects output, mostly useful in tests.
func (l *Logger) SetOutput(w io.Writer) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.out.SetOutput(w)
}

func (l *Logger) Debug(format string, v ...any) { l.log(LevelDebug, format, v...) }
func (l *Logger) Info(format string, v ...any)  { l.log(LevelInfo, format, v...) }
func (l *Logger) Warn(format string, v ...any)  { l.log(LevelWarn, format, v...) }
func (l *Logger) Error(format string, v ...any) { l.log(LevelError, format, v...) }

func (l *Logger) log(level Level, format string, v ...any) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	if level < l.sink.level {
		return
	}

	msg := fmt.Sprintf(format, v...)
	if l.name != "" {
		l.sink.out.Printf("[%s] %s: %s", level, l.name, msg)
		return
	}
	l.sink.out.Printf("[%s] %s", level, msg)
}

// Debug logs a debug message using the default logger
func Debug(format string, v ...any) { Default.Debug(format, v...) }

// Info logs an info message using the default logger
func Info(format string, v ...any) { Default.Info(format, v...) }

// Warn logs a warning message using the default logger
func Warn(format string, v ...any) { Default.Warn(format, v...) }

// Error logs an error message using the default logger
func Error(format string, v ...any) { Default.Error(format, v...) }

// Named returns a component logger derived from the default logger.
func Named(component string) *Logger { return Default.Named(component) }

// Close closes the default logger
func Close() error { return Default.Close() }
