// Package config loads the companion's runtime settings from the
// environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DefaultModel is the live model used when none is configured.
const DefaultModel = "gemini-2.5-flash-native-audio-preview-12-2025"

// DefaultVoice is the synthesis voice used when none is configured.
const DefaultVoice = "Zephyr"

// Config is the companion's runtime configuration.
type Config struct {
	// APIKey authenticates the live connection.
	APIKey string

	// Model is the live model identifier.
	Model string

	// Voice selects the prebuilt synthesis voice.
	Voice string

	// Endpoint overrides the live endpoint URL (empty = public endpoint).
	Endpoint string

	// DataPath is where memory persists between runs.
	DataPath string

	// CameraDevice is the video capture device path.
	CameraDevice string

	// FrameRate is the camera grab rate in frames per second.
	FrameRate float64

	// FrameQuality maps to the grabber's quality scale, 2 (best) to
	// 31 (worst).
	FrameQuality int

	ConnectTimeout time.Duration

	// MetricsAddr serves the metrics endpoint when non-empty.
	MetricsAddr string

	LogLevel string
}

// LoadFromEnv reads AURA_* variables, applying defaults for everything
// but the API key.
func LoadFromEnv() (Config, error) {
	cfg := Config{
		APIKey:         strings.TrimSpace(os.Getenv("AURA_API_KEY")),
		Model:          envOr("AURA_MODEL", DefaultModel),
		Voice:          envOr("AURA_VOICE", DefaultVoice),
		Endpoint:       envOr("AURA_ENDPOINT", ""),
		DataPath:       envOr("AURA_DATA_PATH", defaultDataPath()),
		CameraDevice:   envOr("AURA_CAMERA_DEVICE", "/dev/video0"),
		FrameRate:      envFloat64Or("AURA_FRAME_RATE", 1),
		FrameQuality:   envIntOr("AURA_FRAME_QUALITY", 16),
		ConnectTimeout: envDurationOr("AURA_CONNECT_TIMEOUT", 15*time.Second),
		MetricsAddr:    envOr("AURA_METRICS_ADDR", ""),
		LogLevel:       envOr("AURA_LOG_LEVEL", "info"),
	}

	if cfg.FrameRate <= 0 {
		return Config{}, fmt.Errorf("AURA_FRAME_RATE must be > 0")
	}
	if cfg.FrameQuality < 2 || cfg.FrameQuality > 31 {
		return Config{}, fmt.Errorf("AURA_FRAME_QUALITY must be between 2 and 31")
	}
	if cfg.ConnectTimeout <= 0 {
		return Config{}, fmt.Errorf("AURA_CONNECT_TIMEOUT must be > 0")
	}
	if cfg.DataPath == "" {
		return Config{}, fmt.Errorf("AURA_DATA_PATH must not be empty")
	}

	return cfg, nil
}

// FrameInterval converts the configured frame rate into a tick interval.
func (cfg Config) FrameInterval() time.Duration {
	return time.Duration(float64(time.Second) / cfg.FrameRate)
}

func defaultDataPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "aura-memory.json"
	}
	return filepath.Join(home, ".aura", "memory.json")
}

func envOr(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envIntOr(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func envFloat64Or(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return n
}

func envDurationOr(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return d
}
