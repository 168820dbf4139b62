// Package config loads service settings from an optional YAML file with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the service settings.
type Config struct {
	HTTPPort    string
	ReportsDir  string
	PresetDB    string
	MaxUploadMB int64
}

type fileConfig struct {
	HTTPPort    string `yaml:"http_port"`
	ReportsDir  string `yaml:"reports_dir"`
	PresetDB    string `yaml:"preset_db"`
	MaxUploadMB int64  `yaml:"max_upload_mb"`
}

const (
	defaultPort     = ":8080"
	defaultReports  = "reports"
	defaultPresetDB = "presets.db"
	defaultUploadMB = 50
)

// Load reads .env, then the YAML config file (CONFIG_PATH, default
// config/config.yaml), then environment overrides. A missing file falls
// back to defaults; a malformed one is an error.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{MaxUploadMB: defaultUploadMB}

	var fc fileConfig
	path := getEnv("CONFIG_PATH", filepath.Join("config", "config.yaml"))
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return cfg, fmt.Errorf("config parse failed (%s): %w", path, err)
		}
	}

	cfg.HTTPPort = firstNonEmpty(os.Getenv("HTTP_PORT"), fc.HTTPPort, defaultPort)
	if !strings.HasPrefix(cfg.HTTPPort, ":") {
		cfg.HTTPPort = ":" + cfg.HTTPPort
	}
	cfg.ReportsDir = firstNonEmpty(os.Getenv("REPORTS_DIR"), fc.ReportsDir, defaultReports)
	cfg.PresetDB = firstNonEmpty(os.Getenv("PRESET_DB"), fc.PresetDB, defaultPresetDB)

	if fc.MaxUploadMB > 0 {
		cfg.MaxUploadMB = fc.MaxUploadMB
	}
	if v := os.Getenv("MAX_UPLOAD_MB"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return cfg, fmt.Errorf("invalid MAX_UPLOAD_MB %q", v)
		}
		cfg.MaxUploadMB = n
	}
	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
