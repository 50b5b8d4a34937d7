package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"info", zapcore.InfoLevel},
		{"bogus", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}
	for _, tc := range cases {
		if got := parseLevel(tc.in); got != tc.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewer.log")
	if err := InitWithFileConfig("debug", DefaultFileConfig(path), false); err != nil {
		t.Fatalf("init: %v", err)
	}

	Info("model loaded", zap.String("format", "stl"))
	Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "model loaded") {
		t.Errorf("log file missing entry: %q", string(data))
	}
}

func TestNopBeforeInit(t *testing.T) {
	// The package-level logger must be usable before Init.
	if Log == nil || Sugar == nil {
		t.Fatal("logger not usable before Init")
	}
	Debug("no-op")
}
