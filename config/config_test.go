package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"HTTP_PORT", "REPORTS_DIR", "PRESET_DB", "MAX_UPLOAD_MB"} {
		t.Setenv(key, "")
	}
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPPort != ":8080" {
		t.Errorf("HTTPPort = %q", cfg.HTTPPort)
	}
	if cfg.ReportsDir != "reports" || cfg.PresetDB != "presets.db" {
		t.Errorf("paths = %q / %q", cfg.ReportsDir, cfg.PresetDB)
	}
	if cfg.MaxUploadMB != 50 {
		t.Errorf("MaxUploadMB = %d", cfg.MaxUploadMB)
	}
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "http_port: \"9000\"\nreports_dir: out\npreset_db: data/presets.db\nmax_upload_mb: 10\n"
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPPort != ":9000" {
		t.Errorf("HTTPPort = %q, want :9000 (prefix added)", cfg.HTTPPort)
	}
	if cfg.ReportsDir != "out" || cfg.PresetDB != "data/presets.db" {
		t.Errorf("paths = %q / %q", cfg.ReportsDir, cfg.PresetDB)
	}
	if cfg.MaxUploadMB != 10 {
		t.Errorf("MaxUploadMB = %d", cfg.MaxUploadMB)
	}
}

func TestEnvBeatsFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("http_port: \"9000\"\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("HTTP_PORT", "7000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPPort != ":7000" {
		t.Errorf("HTTPPort = %q, want env override :7000", cfg.HTTPPort)
	}
}

func TestInvalidUploadCap(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAX_UPLOAD_MB", "zero")
	if _, err := Load(); err == nil {
		t.Error("invalid MAX_UPLOAD_MB accepted")
	}
}

func TestMalformedFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("{not yaml"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)
	if _, err := Load(); err == nil {
		t.Error("malformed config accepted")
	}
}
