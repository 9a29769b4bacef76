package logx

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatConsole, false},
		{"Console", FormatConsole, false},
		{"json", FormatJSON, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseFormat(%q) err = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	if lvl, err := ParseLevel(""); err != nil || lvl != zapcore.InfoLevel {
		t.Errorf("empty = %v, %v", lvl, err)
	}
	if lvl, err := ParseLevel("WARN"); err != nil || lvl != zapcore.WarnLevel {
		t.Errorf("WARN = %v, %v", lvl, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, FormatJSON, zapcore.WarnLevel)
	log.Info("hidden")
	log.Error("schema error", zap.Int("ordinal", 1))
	_ = log.Sync()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatal(err)
	}
	if entry["msg"] != "schema error" || entry["level"] != "error" || entry["ordinal"] != float64(1) {
		t.Errorf("entry = %v", entry)
	}
}

func TestConsoleLoggerHasNoTimestamp(t *testing.T) {
	var buf bytes.Buffer
	log, err := FromFlags(&buf, "console", "debug")
	if err != nil {
		t.Fatal(err)
	}
	log.Debug("probe")
	_ = log.Sync()
	if !strings.HasPrefix(buf.String(), "DEBUG\tprobe") {
		t.Errorf("output = %q", buf.String())
	}
}
