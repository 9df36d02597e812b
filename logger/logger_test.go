// SPDX-License-Identifier: EPL-2.0

package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v, err %v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestNewHandler_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h, err := NewHandler(&buf, "warn", "json")
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}

	log := slog.New(h)
	log.Info("dropped")
	log.Warn("kept", slog.String("deck", "left"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}

	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if rec["msg"] != "kept" || rec["deck"] != "left" {
		t.Errorf("record = %v", rec)
	}
}

func TestNewHandler_Text(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h, err := NewHandler(&buf, "debug", "text")
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}

	slog.New(h).Debug("loaded", slog.String("uri", "a.wav"))

	if out := buf.String(); !strings.Contains(out, "msg=loaded") || !strings.Contains(out, "uri=a.wav") {
		t.Errorf("output = %q", out)
	}
}

func TestNewHandler_BadFormat(t *testing.T) {
	t.Parallel()

	if _, err := NewHandler(&bytes.Buffer{}, "info", "xml"); err == nil {
		t.Error("NewHandler(xml) succeeded, want error")
	}
}
