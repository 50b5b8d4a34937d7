package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Viewer.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Viewer.Width)
	}
	if cfg.Viewer.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Viewer.Height)
	}
	if cfg.Viewer.Fullscreen {
		t.Error("expected fullscreen to be false by default")
	}
	if !cfg.Viewer.VSync {
		t.Error("expected vsync to be true by default")
	}
	if cfg.Viewer.TargetSize != 4 {
		t.Errorf("expected target size 4, got %f", cfg.Viewer.TargetSize)
	}
	if cfg.Viewer.DistanceFactor != 1.8 {
		t.Errorf("expected distance factor 1.8, got %f", cfg.Viewer.DistanceFactor)
	}
	if cfg.Viewer.FOVDegrees != 45 {
		t.Errorf("expected fov 45, got %f", cfg.Viewer.FOVDegrees)
	}

	if cfg.Transcode.Endpoint != "" {
		t.Errorf("expected empty transcode endpoint, got %s", cfg.Transcode.Endpoint)
	}
	if cfg.Transcode.Timeout != 30*time.Second {
		t.Errorf("expected timeout 30s, got %v", cfg.Transcode.Timeout)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
viewer:
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false
  fov_degrees: 60
  target_size: 2.5
  distance_factor: 2.0

transcode:
  endpoint: "https://cdn.example.com/transcode"
  timeout: 5s

logging:
  level: "debug"
  log_file: "viewer.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Viewer.Width != 1920 {
		t.Errorf("expected width 1920, got %d", cfg.Viewer.Width)
	}
	if cfg.Viewer.Height != 1080 {
		t.Errorf("expected height 1080, got %d", cfg.Viewer.Height)
	}
	if !cfg.Viewer.Fullscreen {
		t.Error("expected fullscreen to be true")
	}
	if cfg.Viewer.VSync {
		t.Error("expected vsync to be false")
	}
	if cfg.Viewer.FOVDegrees != 60 {
		t.Errorf("expected fov 60, got %f", cfg.Viewer.FOVDegrees)
	}
	if cfg.Viewer.TargetSize != 2.5 {
		t.Errorf("expected target size 2.5, got %f", cfg.Viewer.TargetSize)
	}
	if cfg.Transcode.Endpoint != "https://cdn.example.com/transcode" {
		t.Errorf("unexpected transcode endpoint %s", cfg.Transcode.Endpoint)
	}
	if cfg.Transcode.Timeout != 5*time.Second {
		t.Errorf("expected timeout 5s, got %v", cfg.Transcode.Timeout)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected level debug, got %s", cfg.Logging.Level)
	}

	// Values absent from the file keep their defaults.
	if cfg.Viewer.Background != [3]float32{0.15, 0.15, 0.2} {
		t.Errorf("background changed unexpectedly: %v", cfg.Viewer.Background)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Viewer.Width = 800
	cfg.Logging.Level = "warn"

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Viewer.Width != 800 {
		t.Errorf("expected width 800, got %d", loaded.Viewer.Width)
	}
	if loaded.Logging.Level != "warn" {
		t.Errorf("expected level warn, got %s", loaded.Logging.Level)
	}
}
