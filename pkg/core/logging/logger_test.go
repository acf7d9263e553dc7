package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{Level(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.level.String(); got != tt.expected {
				t.Errorf("Level.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestNew(t *testing.T) {
	logger := New("test-component")

	if logger == nil {
		t.Fatal("New() returned nil")
	}
	if logger.name != "test-component" {
		t.Errorf("name = %v, want test-component", logger.name)
	}
}

func TestDefaultLoggerConfig(t *testing.T) {
	cfg := DefaultLoggerConfig("deck")

	if cfg.ServiceName != "deck" {
		t.Errorf("ServiceName = %v, want deck", cfg.ServiceName)
	}
	if cfg.Level != "info" {
		t.Errorf("Level = %v, want info", cfg.Level)
	}
	if cfg.Format != "text" {
		t.Errorf("Format = %v, want text", cfg.Format)
	}
}

func TestLogger_Output(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{
		ServiceName: "gateway",
		Level:       "debug",
		Output:      &buf,
	})

	logger.Info("upload complete", "session", "abc-123")

	out := buf.String()
	if !strings.Contains(out, "upload complete") {
		t.Errorf("output missing message: %q", out)
	}
	if !strings.Contains(out, "abc-123") {
		t.Errorf("output missing field value: %q", out)
	}
	if !strings.Contains(out, "gateway") {
		t.Errorf("output missing component name: %q", out)
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{
		ServiceName: "test",
		Level:       "warn",
		Output:      &buf,
	})

	logger.Debug("hidden")
	logger.Info("also hidden")
	logger.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug/info output should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("warn output missing: %q", out)
	}
}

func TestLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{
		ServiceName: "test",
		Level:       "info",
		Format:      "json",
		Output:      &buf,
	})

	logger.Info("message", "key", "value")

	out := buf.String()
	if !strings.Contains(out, `"key":"value"`) {
		t.Errorf("JSON output missing field: %q", out)
	}
}

func TestLogger_OddKeyValues(t *testing.T) {
	logger := New("test")

	// Should not panic with odd number of key-values
	logger.Info("message", "key1", "value1", "orphan")
}

func TestToFields(t *testing.T) {
	// Empty input
	fields := toFields()
	if fields != nil {
		t.Error("toFields() with no args should return nil")
	}

	// Valid key-value pairs
	fields = toFields("key1", "value1", "key2", 42)
	if fields == nil {
		t.Fatal("toFields() returned nil")
	}
	if fields["key1"] != "value1" {
		t.Errorf("fields[key1] = %v, want value1", fields["key1"])
	}
	if fields["key2"] != 42 {
		t.Errorf("fields[key2] = %v, want 42", fields["key2"])
	}

	// Non-string key (should be skipped)
	fields = toFields(123, "value")
	if len(fields) != 0 {
		t.Errorf("Non-string key should be skipped, got %v fields", len(fields))
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"debug", "debug"},
		{"info", "info"},
		{"warn", "warning"},
		{"warning", "warning"},
		{"error", "error"},
		{"invalid", "info"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input).String(); got != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}
