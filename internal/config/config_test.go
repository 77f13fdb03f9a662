package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if cfg.API.URL != nil || cfg.Practice.StartSign != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigDecodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `[practice]
start-sign = "hello"
history-cap = 5

[api]
url = "http://example.test:8001"

[speech]
rate = 1.25
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Practice.StartSign == nil || *cfg.Practice.StartSign != "hello" {
		t.Fatalf("unexpected start sign: %v", cfg.Practice.StartSign)
	}
	if cfg.Practice.HistoryCap == nil || *cfg.Practice.HistoryCap != 5 {
		t.Fatalf("unexpected history cap: %v", cfg.Practice.HistoryCap)
	}
	if cfg.API.URL == nil || *cfg.API.URL != "http://example.test:8001" {
		t.Fatalf("unexpected api url: %v", cfg.API.URL)
	}
	if cfg.Speech.Rate == nil || *cfg.Speech.Rate != 1.25 {
		t.Fatalf("unexpected speech rate: %v", cfg.Speech.Rate)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("SIGNTUTOR_STUDENT_ID=student_9\n"), 0o644); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv(EnvAPIURL, "http://from-env:9000")
	t.Setenv(EnvStudentID, "")
	os.Unsetenv(EnvStudentID)

	env, err := LoadEnv(envPath)
	if err != nil {
		t.Fatalf("load env: %v", err)
	}
	if env.StudentID != "student_9" {
		t.Fatalf("expected student id from .env, got %q", env.StudentID)
	}
	url := "http://from-file"
	cfg := FileConfig{API: APIConfig{URL: &url}}
	env.Apply(&cfg)
	if *cfg.API.URL != "http://from-env:9000" {
		t.Fatalf("expected env url to win, got %q", *cfg.API.URL)
	}
	if cfg.Practice.StudentID == nil || *cfg.Practice.StudentID != "student_9" {
		t.Fatalf("expected student id applied")
	}
}

func TestLoadEnvMissingFile(t *testing.T) {
	if _, err := LoadEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Fatalf("expected missing .env to be ignored, got %v", err)
	}
}
