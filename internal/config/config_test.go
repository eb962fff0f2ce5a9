package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clipcheck/internal/config"
)

func TestDefaultValidatesWithAPIKey(t *testing.T) {
	cfg := config.Default()
	cfg.Transcription.APIKey = "test"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestValidateRequiresTranscriptionKey(t *testing.T) {
	cfg := config.Default()
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error without transcription api key")
	}
	if !strings.Contains(err.Error(), "transcription.api_key") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"zero sessions", func(c *config.Config) { c.Browser.MaxSessions = 0 }},
		{"negative session retry", func(c *config.Config) { c.Browser.RetryLimit = -1 }},
		{"missing ffmpeg", func(c *config.Config) { c.Extraction.FFmpegCommand = "" }},
		{"zero workers", func(c *config.Config) { c.Workflow.Workers = 0 }},
		{"bad log format", func(c *config.Config) { c.Logging.Format = "xml" }},
		{"bad log level", func(c *config.Config) { c.Logging.Level = "verbose" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Transcription.APIKey = "test"
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("ELEVENLABS_API_KEY", "env-key")
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected missing config file")
	}
	if resolved != path {
		t.Fatalf("resolved path = %q, want %q", resolved, path)
	}
	if cfg.Browser.MaxSessions != 2 {
		t.Fatalf("expected default max_sessions 2, got %d", cfg.Browser.MaxSessions)
	}
	if cfg.Transcription.APIKey != "env-key" {
		t.Fatalf("expected api key from environment, got %q", cfg.Transcription.APIKey)
	}
}

func TestLoadParsesFileAndDerivesPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
data_dir = "` + dir + `"

[transcription]
api_key = "file-key"

[browser]
max_sessions = 4
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if cfg.Browser.MaxSessions != 4 {
		t.Fatalf("browser.max_sessions = %d, want 4", cfg.Browser.MaxSessions)
	}
	if cfg.Transcription.APIKey != "file-key" {
		t.Fatalf("transcription.api_key = %q", cfg.Transcription.APIKey)
	}
	if cfg.Paths.ResultsDir != filepath.Join(dir, "results") {
		t.Fatalf("results dir = %q", cfg.Paths.ResultsDir)
	}
	if cfg.Paths.ScreenshotDir != filepath.Join(dir, "screenshots") {
		t.Fatalf("screenshot dir = %q", cfg.Paths.ScreenshotDir)
	}
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = dir
	cfg.Paths.ResultsDir = filepath.Join(dir, "results")
	cfg.Paths.ScreenshotDir = filepath.Join(dir, "screenshots")
	cfg.Paths.AudioDir = filepath.Join(dir, "audio")
	cfg.Paths.LogDir = filepath.Join(dir, "logs")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, sub := range []string{"results", "screenshots", "audio", "logs"} {
		if _, err := os.Stat(filepath.Join(dir, sub)); err != nil {
			t.Fatalf("expected %s to exist: %v", sub, err)
		}
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[transcription]") {
		t.Fatal("sample config missing transcription section")
	}
	if err := config.CreateSample(path); err == nil {
		t.Fatal("expected error when sample already exists")
	}
}
