package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
		err  bool
	}{
		{"", slog.LevelInfo, false},
		{"info", slog.LevelInfo, false},
		{"DEBUG", slog.LevelDebug, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}
	for _, tc := range cases {
		got, err := ParseLevel(tc.in)
		if tc.err != (err != nil) {
			t.Fatalf("ParseLevel(%q) err = %v, want err=%v", tc.in, err, tc.err)
		}
		if !tc.err && got != tc.want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestNewWritesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logs", "session.log")

	lg, closer, err := New(Options{Level: "debug", FilePath: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	lg.Info("session started", "target", "main.py")
	if closer == nil {
		t.Fatalf("expected a file closer")
	}
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(b), "session started") {
		t.Fatalf("log file missing record: %q", string(b))
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	if _, _, err := New(Options{Level: "loud"}); err == nil {
		t.Fatalf("expected error for invalid level")
	}
}
