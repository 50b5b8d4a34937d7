// Package config handles viewer configuration loading and management.
package config

import "time"

// Config holds all viewer settings.
type Config struct {
	Viewer    ViewerConfig    `yaml:"viewer"`
	Transcode TranscodeConfig `yaml:"transcode"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ViewerConfig holds display and framing settings.
type ViewerConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`

	// FOVDegrees is the perspective field of view.
	FOVDegrees float32 `yaml:"fov_degrees"`

	// TargetSize is the world-space size models are normalized to, so
	// millimeter prints and meter-scale scans are visually comparable.
	TargetSize float32 `yaml:"target_size"`

	// DistanceFactor multiplies the model's max dimension to place the camera.
	DistanceFactor float32 `yaml:"distance_factor"`

	Background [3]float32 `yaml:"background"`
}

// TranscodeConfig holds the GLB transcode fallback endpoint.
type TranscodeConfig struct {
	// Endpoint returns a GLB rendition of a source file; empty disables the
	// decode-failure retry.
	Endpoint string        `yaml:"endpoint"`
	Timeout  time.Duration `yaml:"timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Viewer: ViewerConfig{
			Width:          1280,
			Height:         720,
			Fullscreen:     false,
			VSync:          true,
			FOVDegrees:     45,
			TargetSize:     4,
			DistanceFactor: 1.8,
			Background:     [3]float32{0.15, 0.15, 0.2},
		},
		Transcode: TranscodeConfig{
			Endpoint: "",
			Timeout:  30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
