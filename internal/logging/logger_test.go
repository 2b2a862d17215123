package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter(&buf, "info", "json")
	if err != nil {
		t.Fatalf("NewWithWriter returned error: %v", err)
	}
	logger.Debug("hidden")
	logger.Info("Photo categorized", "photo_id", "p1")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("Expected one line above debug level, got %d", len(lines))
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("Expected JSON log line, got %q", lines[0])
	}
	if entry["photo_id"] != "p1" {
		t.Errorf("Expected photo_id attribute, got %v", entry)
	}
}

func TestUnsupportedFormat(t *testing.T) {
	if _, err := New("info", "xml"); err == nil {
		t.Error("Expected error for unsupported format")
	}
}

func TestAutoFormatOffTerminal(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter(&buf, "info", "auto")
	if err != nil {
		t.Fatalf("NewWithWriter returned error: %v", err)
	}
	logger.Info("Server started")
	if !json.Valid(bytes.TrimSpace(buf.Bytes())) {
		t.Errorf("Expected JSON output when not on a terminal, got %q", buf.String())
	}
	if IsTerminal(&buf) {
		t.Error("A buffer is never a terminal")
	}
}
