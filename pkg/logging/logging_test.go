package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LogLevel(999), "UNKNOWN"},
	}

	for _, test := range tests {
		result := test.level.String()
		if result != test.expected {
			t.Errorf("LogLevel(%d).String() = %s, expected %s", test.level, result, test.expected)
		}
	}
}

func TestLogLevel_SlogLevel(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected slog.Level
	}{
		{LevelDebug, slog.LevelDebug},
		{LevelInfo, slog.LevelInfo},
		{LevelWarn, slog.LevelWarn},
		{LevelError, slog.LevelError},
		{LogLevel(999), slog.LevelInfo}, // Default for unknown
	}

	for _, test := range tests {
		result := test.level.SlogLevel()
		if result != test.expected {
			t.Errorf("LogLevel(%d).SlogLevel() = %v, expected %v", test.level, result, test.expected)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"":        LevelInfo,
		"INFO":    LevelInfo,
		"debug":   LevelDebug,
		"Warn":    LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
		"ERR":     LevelError,
	}

	for input, want := range tests {
		got, err := ParseLevel(input)
		if err != nil {
			t.Fatalf("ParseLevel(%q) returned error: %v", input, err)
		}
		if got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}

	if _, err := ParseLevel("trace"); err == nil {
		t.Fatalf("expected error for unsupported level")
	}
}

func TestInitForCLI(t *testing.T) {
	var buf bytes.Buffer

	InitForCLI(LevelInfo, &buf)

	Info("test-subsystem", "test message %d", 42)

	output := buf.String()
	if !strings.Contains(output, "test message 42") {
		t.Error("Expected log message to appear in CLI output")
	}
	if !strings.Contains(output, "test-subsystem") {
		t.Error("Expected subsystem to appear in CLI output")
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	InitForCLI(LevelWarn, &buf)

	Debug("sub", "debug line")
	Info("sub", "info line")
	Warn("sub", "warn line")
	Error("sub", errors.New("boom"), "error line")

	output := buf.String()
	if strings.Contains(output, "debug line") || strings.Contains(output, "info line") {
		t.Errorf("expected debug/info to be filtered, got: %s", output)
	}
	if !strings.Contains(output, "warn line") {
		t.Error("expected warn line in output")
	}
	if !strings.Contains(output, "error=boom") {
		t.Errorf("expected error attribute in output, got: %s", output)
	}
}

func TestInitForFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log", "app.log")

	if err := InitForFile(LevelInfo, path); err != nil {
		t.Fatalf("InitForFile returned error: %v", err)
	}
	Info("file", "written to disk")
	Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "written to disk") {
		t.Errorf("expected message in log file, got: %s", data)
	}

	// Restore a writer so later tests don't log to a closed file.
	InitForCLI(LevelInfo, &bytes.Buffer{})
}

func TestAudit(t *testing.T) {
	var buf bytes.Buffer
	InitForCLI(LevelInfo, &buf)

	Audit(AuditEvent{Action: "token_stored", Outcome: "success", Target: "/tmp/token.json"})

	output := buf.String()
	if !strings.Contains(output, "SECURITY_AUDIT: token_stored") {
		t.Errorf("expected audit prefix, got: %s", output)
	}
	if !strings.Contains(output, "outcome=success") {
		t.Errorf("expected outcome attribute, got: %s", output)
	}
}

func TestUninitializedLoggerFormatsArgs(t *testing.T) {
	mu.Lock()
	saved := defaultLogger
	defaultLogger = nil
	mu.Unlock()
	var buf bytes.Buffer
	savedOut := uninitializedOut
	uninitializedOut = &buf
	t.Cleanup(func() {
		mu.Lock()
		defaultLogger = saved
		mu.Unlock()
		uninitializedOut = savedOut
	})

	Error("GameSession", errors.New("rejected"), "Giving up on move %d of game %s", 7, "abc123")

	output := buf.String()
	if !strings.Contains(output, "GameSession: Giving up on move 7 of game abc123: rejected") {
		t.Errorf("expected formatted message in fallback output, got: %s", output)
	}
	if strings.Contains(output, "%d") || strings.Contains(output, "%s") {
		t.Errorf("fallback output still carries format verbs: %s", output)
	}
}
