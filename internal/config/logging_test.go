package config

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
)

// TestInitLoggingReturnsLogger verifies that InitLogging returns a
// non-nil *slog.Logger for valid level strings.
func TestInitLoggingReturnsLogger(t *testing.T) {
	levels := []string{"debug", "info", "warn", "error", "INFO", "Debug", "unknown", ""}
	for _, level := range levels {
		t.Run(level, func(t *testing.T) {
			logger := InitLogging(level, io.Discard)
			if logger == nil {
				t.Fatal("InitLogging returned nil")
			}
		})
	}
}

// TestLevelParsing verifies that the returned logger respects the
// configured level by checking which messages are enabled.
func TestLevelParsing(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		wantLevel slog.Level
	}{
		{"debug", "debug", slog.LevelDebug},
		{"info", "info", slog.LevelInfo},
		{"warn", "warn", slog.LevelWarn},
		{"error", "error", slog.LevelError},
		{"default for unknown", "bogus", slog.LevelInfo},
		{"default for empty", "", slog.LevelInfo},
		{"case insensitive", "DEBUG", slog.LevelDebug},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := InitLogging(tt.level, io.Discard)
			if !logger.Enabled(context.Background(), tt.wantLevel) {
				t.Errorf("level %s should be enabled for input %q", tt.wantLevel, tt.level)
			}
			// A level below the configured one should be disabled
			// (except debug, which is the lowest).
			if tt.wantLevel > slog.LevelDebug {
				belowLevel := tt.wantLevel - 4 // slog levels are spaced by 4
				if logger.Enabled(context.Background(), belowLevel) {
					t.Errorf("level %s should be disabled for input %q", belowLevel, tt.level)
				}
			}
		})
	}
}

// TestNonTTYUsesJSONHandler verifies that newHandler with isTTY=false
// produces JSON output.
func TestNonTTYUsesJSONHandler(t *testing.T) {
	var buf bytes.Buffer
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	h := newHandler(&buf, false, opts)
	logger := slog.New(h)
	logger.Info("processing file", "key", "value")

	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("expected JSON output, got: %s", buf.String())
	}
	if msg, ok := m["msg"].(string); !ok || msg != "processing file" {
		t.Errorf("msg = %v, want %q", m["msg"], "processing file")
	}
}

// TestTTYUsesTextHandler verifies that newHandler with isTTY=true
// produces non-JSON key=value output.
func TestTTYUsesTextHandler(t *testing.T) {
	var buf bytes.Buffer
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	h := newHandler(&buf, true, opts)
	logger := slog.New(h)
	logger.Info("processing file", "key", "value")

	output := buf.String()
	// Text handler output contains key=value pairs, not JSON braces.
	if strings.Contains(output, "{") {
		t.Errorf("text handler produced JSON-like output: %s", output)
	}
	if !strings.Contains(output, "key=value") {
		t.Errorf("expected key=value in text output, got: %s", output)
	}
}

// TestComponentAttribute verifies that logger.With adds structured
// component attributes to log output.
func TestComponentAttribute(t *testing.T) {
	var buf bytes.Buffer
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	h := newHandler(&buf, false, opts)
	logger := slog.New(h)

	compLogger := logger.With("component", "loader")
	compLogger.Info("configuration loaded", "file", "site.zcml")

	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("expected JSON output, got: %s", buf.String())
	}
	if comp, ok := m["component"].(string); !ok || comp != "loader" {
		t.Errorf("component = %v, want %q", m["component"], "loader")
	}
	if file, ok := m["file"].(string); !ok || file != "site.zcml" {
		t.Errorf("file = %v, want %q", m["file"], "site.zcml")
	}
}

// TestNoGlobalLoggerState verifies that InitLogging does not set the
// default slog logger.
func TestNoGlobalLoggerState(t *testing.T) {
	defaultBefore := slog.Default()
	_ = InitLogging("info", io.Discard)
	defaultAfter := slog.Default()
	if defaultBefore != defaultAfter {
		t.Error("InitLogging must not call slog.SetDefault")
	}
}

// TestNonFileWriterIsNotTTY verifies that writers other than *os.File never
// select the text handler.
func TestNonFileWriterIsNotTTY(t *testing.T) {
	var buf bytes.Buffer
	if isTerminal(&buf) {
		t.Error("isTerminal(*bytes.Buffer) = true, want false")
	}
	logger := InitLogging("info", &buf)
	logger.Info("configuration loaded")

	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("expected JSON output for a buffer, got: %s", buf.String())
	}
}
