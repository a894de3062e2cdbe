package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaultsWhenMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.toml")

	cfg, resolved, exists, err := Load(missing)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Error("exists should be false for a missing config file")
	}
	if resolved == "" {
		t.Error("resolved path should not be empty")
	}
	if cfg.Retention.MaxAgeDays != defaultRetentionMaxAgeDays {
		t.Errorf("MaxAgeDays = %d, want %d", cfg.Retention.MaxAgeDays, defaultRetentionMaxAgeDays)
	}
	if cfg.Export.AudioFormat != "wav" {
		t.Errorf("AudioFormat = %q, want wav", cfg.Export.AudioFormat)
	}
	if !filepath.IsAbs(cfg.Paths.ProjectsDir) {
		t.Errorf("ProjectsDir should be absolute, got %q", cfg.Paths.ProjectsDir)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
projects_dir = "` + filepath.Join(dir, "projects") + `"

[retention]
max_age_days = 7
max_count = 5

[logging]
format = "JSON"
level = "Debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists {
		t.Fatal("exists should be true")
	}
	if cfg.Retention.MaxAgeDays != 7 || cfg.Retention.MaxCount != 5 {
		t.Errorf("retention = %+v, want 7/5", cfg.Retention)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Errorf("logging not lowercased: %+v", cfg.Logging)
	}
	// Unset sections keep defaults.
	if cfg.Export.MinAudioBytes != defaultExportMinAudioBytes {
		t.Errorf("MinAudioBytes = %d, want default %d", cfg.Export.MinAudioBytes, defaultExportMinAudioBytes)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative age", func(c *Config) { c.Retention.MaxAgeDays = -1 }},
		{"negative count", func(c *Config) { c.Retention.MaxCount = -1 }},
		{"bad audio format", func(c *Config) { c.Export.AudioFormat = "mp3" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			if err := cfg.normalize(); err != nil {
				t.Fatalf("normalize: %v", err)
			}
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := Default()
	cfg.Paths.ProjectsDir = filepath.Join(base, "projects")
	cfg.Paths.ExportDir = filepath.Join(base, "exports")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.ProjectsDir, cfg.Paths.ExportDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("directory %q not created", dir)
		}
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[paths]") {
		t.Error("sample config missing [paths] section")
	}
}
