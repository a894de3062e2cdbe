package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewConsoleFormat(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "overdub.log")

	logger, err := New(Options{Level: "debug", Format: "console", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	component := NewComponentLogger(logger, "store")
	component.Info("project saved", String(FieldProjectID, "abc123def456"), Int("segments", 8))

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(data)

	if !strings.Contains(line, "INFO store: project saved") {
		t.Errorf("unexpected log line: %q", line)
	}
	if !strings.Contains(line, "project_id=abc123def456") {
		t.Errorf("missing project_id attr: %q", line)
	}
	if !strings.Contains(line, "segments=8") {
		t.Errorf("missing segments attr: %q", line)
	}
}

func TestNewJSONFormat(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "overdub.log")

	logger, err := New(Options{Level: "info", Format: "json", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Info("repair complete", Int("orphaned_entries", 2))

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(data)

	if !strings.Contains(line, `"msg":"repair complete"`) {
		t.Errorf("unexpected json log line: %q", line)
	}
	if !strings.Contains(line, `"orphaned_entries":2`) {
		t.Errorf("missing attr in json log line: %q", line)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestLevelFiltering(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "overdub.log")

	logger, err := New(Options{Level: "warn", Format: "console", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Info("should be dropped")
	logger.Warn("should be kept")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	out := string(data)
	if strings.Contains(out, "should be dropped") {
		t.Error("info record should have been filtered")
	}
	if !strings.Contains(out, "should be kept") {
		t.Error("warn record missing")
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := NewNop()
	// Must not panic or emit.
	logger.Error("discarded", Error(nil))
}
