// ============================================================================
// RetroScribe - Interview Up-Sot Extraction Client
// ============================================================================
//
// Package:     logging
// Description: Factory functions for creating component loggers
// Author:      Mike Stoffels
// Created:     2026-08-14
// License:     MIT
// ============================================================================

package logging

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// LoggerConfig holds configuration for creating loggers
type LoggerConfig struct {
	// Component name, attached to every entry
	ServiceName string

	// Log level (debug, info, warn, error)
	Level string

	// Output format
	Format string // "json" or "text" (default: text)

	// Output destination (default: stderr, keeps stdout free for the TUI)
	Output io.Writer
}

// DefaultLoggerConfig returns a default configuration
func DefaultLoggerConfig(serviceName string) LoggerConfig {
	return LoggerConfig{
		ServiceName: serviceName,
		Level:       "info",
		Format:      "text",
	}
}

// Logger is a component-scoped structured logger
type Logger struct {
	entry *logrus.Entry
	name  string
}

// NewLogger creates a new logger from the given configuration
func NewLogger(cfg LoggerConfig) *Logger {
	base := logrus.New()
	base.SetLevel(parseLevel(cfg.Level))

	if cfg.Format == "json" {
		base.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	base.SetOutput(output)

	return &Logger{
		entry: base.WithField("component", cfg.ServiceName),
		name:  cfg.ServiceName,
	}
}

// New creates a new logger with default configuration
func New(name string) *Logger {
	return NewLogger(DefaultLoggerConfig(name))
}

// WithLevel returns a new logger with the specified level
func (l *Logger) WithLevel(level Level) *Logger {
	cfg := DefaultLoggerConfig(l.name)
	cfg.Level = level.String()
	cfg.Output = l.entry.Logger.Out
	return NewLogger(cfg)
}

// SetOutput redirects all output of this logger
func (l *Logger) SetOutput(w io.Writer) {
	l.entry.Logger.SetOutput(w)
}

// Debug logs a debug message with key-value pairs
func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(toFields(keysAndValues...)).Debug(msg)
}

// Info logs an info message with key-value pairs
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(toFields(keysAndValues...)).Info(msg)
}

// Warn logs a warning message with key-value pairs
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(toFields(keysAndValues...)).Warn(msg)
}

// Error logs an error message with key-value pairs
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(toFields(keysAndValues...)).Error(msg)
}

// parseLevel converts a string level to logrus.Level
func parseLevel(level string) logrus.Level {
	switch level {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// toFields converts key-value pairs to logrus.Fields
func toFields(keysAndValues ...interface{}) logrus.Fields {
	if len(keysAndValues) == 0 {
		return nil
	}

	fields := make(logrus.Fields)
	for i := 0; i < len(keysAndValues)-1; i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields[key] = keysAndValues[i+1]
	}
	return fields
}
