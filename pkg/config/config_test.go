package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Scrape.PageSize != 500 {
		t.Errorf("Expected page size 500, got %d", cfg.Scrape.PageSize)
	}
	if cfg.Scrape.Concurrency != 10 {
		t.Errorf("Expected concurrency 10, got %d", cfg.Scrape.Concurrency)
	}
	if cfg.Scrape.RequestTimeout != 90*time.Second {
		t.Errorf("Expected request timeout 90s, got %v", cfg.Scrape.RequestTimeout)
	}
	if cfg.Output.Directory != "scraped_data" {
		t.Errorf("Expected output directory scraped_data, got %s", cfg.Output.Directory)
	}
	if cfg.Retry.MaxAttempts != 3 {
		t.Errorf("Expected 3 retry attempts, got %d", cfg.Retry.MaxAttempts)
	}
	if cfg.Retry.Delay != 5*time.Second {
		t.Errorf("Expected 5s retry delay, got %v", cfg.Retry.Delay)
	}
	if cfg.RateLimit.RequestsPerMinute != 0 {
		t.Errorf("Expected pacing disabled by default, got %d", cfg.RateLimit.RequestsPerMinute)
	}

	want := []string{"cc-by", "cc-zero", "odc-odbl", "odc-pddl"}
	if len(cfg.Scrape.Licenses) != len(want) {
		t.Fatalf("Expected %d default licenses, got %d", len(want), len(cfg.Scrape.Licenses))
	}
	for i, license := range want {
		if cfg.Scrape.Licenses[i] != license {
			t.Errorf("License %d: expected %s, got %s", i, license, cfg.Scrape.Licenses[i])
		}
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DADOSCRAPER_PAGE_SIZE", "250")
	t.Setenv("DADOSCRAPER_CONCURRENCY", "4")
	t.Setenv("DADOSCRAPER_TIMEOUT_SECONDS", "30")
	t.Setenv("DADOSCRAPER_LICENSES", "cc-by, cc-zero")
	t.Setenv("DADOSCRAPER_OUTPUT_DIR", "/tmp/catalog")
	t.Setenv("DADOSCRAPER_RETRIES", "5")
	t.Setenv("DADOSCRAPER_RETRY_DELAY_SECONDS", "2")
	t.Setenv("DADOSCRAPER_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	if err := cfg.LoadFromEnv(); err != nil {
		t.Fatalf("LoadFromEnv failed: %v", err)
	}

	if cfg.Scrape.PageSize != 250 {
		t.Errorf("Expected page size 250, got %d", cfg.Scrape.PageSize)
	}
	if cfg.Scrape.Concurrency != 4 {
		t.Errorf("Expected concurrency 4, got %d", cfg.Scrape.Concurrency)
	}
	if cfg.Scrape.RequestTimeout != 30*time.Second {
		t.Errorf("Expected timeout 30s, got %v", cfg.Scrape.RequestTimeout)
	}
	if len(cfg.Scrape.Licenses) != 2 || cfg.Scrape.Licenses[1] != "cc-zero" {
		t.Errorf("Expected trimmed license list [cc-by cc-zero], got %v", cfg.Scrape.Licenses)
	}
	if cfg.Output.Directory != "/tmp/catalog" {
		t.Errorf("Expected output dir /tmp/catalog, got %s", cfg.Output.Directory)
	}
	if cfg.Retry.MaxAttempts != 5 {
		t.Errorf("Expected 5 attempts, got %d", cfg.Retry.MaxAttempts)
	}
	if cfg.Retry.Delay != 2*time.Second {
		t.Errorf("Expected 2s delay, got %v", cfg.Retry.Delay)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Expected log level debug, got %s", cfg.Logging.Level)
	}
}

func TestLoadFromEnvIgnoresInvalidValues(t *testing.T) {
	t.Setenv("DADOSCRAPER_PAGE_SIZE", "not-a-number")
	t.Setenv("DADOSCRAPER_CONCURRENCY", "-3")

	cfg := DefaultConfig()
	if err := cfg.LoadFromEnv(); err != nil {
		t.Fatalf("LoadFromEnv failed: %v", err)
	}

	if cfg.Scrape.PageSize != 500 {
		t.Errorf("Invalid page size should keep the default, got %d", cfg.Scrape.PageSize)
	}
	if cfg.Scrape.Concurrency != 10 {
		t.Errorf("Negative concurrency should keep the default, got %d", cfg.Scrape.Concurrency)
	}
}

func TestLoadFromFile(t *testing.T) {
	content := `
scrape:
  page_size: 100
  concurrency: 2
  licenses:
    - cc-by
output:
  directory: out
retry:
  max_attempts: 7
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg := DefaultConfig()
	if err := cfg.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if cfg.Scrape.PageSize != 100 {
		t.Errorf("Expected page size 100, got %d", cfg.Scrape.PageSize)
	}
	if cfg.Scrape.Concurrency != 2 {
		t.Errorf("Expected concurrency 2, got %d", cfg.Scrape.Concurrency)
	}
	if len(cfg.Scrape.Licenses) != 1 || cfg.Scrape.Licenses[0] != "cc-by" {
		t.Errorf("Expected licenses [cc-by], got %v", cfg.Scrape.Licenses)
	}
	if cfg.Output.Directory != "out" {
		t.Errorf("Expected output dir out, got %s", cfg.Output.Directory)
	}
	if cfg.Retry.MaxAttempts != 7 {
		t.Errorf("Expected 7 attempts, got %d", cfg.Retry.MaxAttempts)
	}

	// Settings the file omits keep their defaults
	if cfg.Scrape.RequestTimeout != 90*time.Second {
		t.Errorf("Expected default timeout to survive, got %v", cfg.Scrape.RequestTimeout)
	}
}

func TestLoadFromFileMissingPathIsNotAnError(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.LoadFromFile(""); err != nil {
		t.Errorf("Empty path with no config file should not fail: %v", err)
	}
}

func TestLoadFromFileInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("{not yaml"), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg := DefaultConfig()
	if err := cfg.LoadFromFile(path); err == nil {
		t.Error("Expected error for malformed YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"zero page size", func(c *Config) { c.Scrape.PageSize = 0 }, true},
		{"negative concurrency", func(c *Config) { c.Scrape.Concurrency = -1 }, true},
		{"zero timeout", func(c *Config) { c.Scrape.RequestTimeout = 0 }, true},
		{"no licenses", func(c *Config) { c.Scrape.Licenses = nil }, true},
		{"zero attempts", func(c *Config) { c.Retry.MaxAttempts = 0 }, true},
		{"negative delay", func(c *Config) { c.Retry.Delay = -time.Second }, true},
		{"zero delay", func(c *Config) { c.Retry.Delay = 0 }, false},
		{"negative rate limit", func(c *Config) { c.RateLimit.RequestsPerMinute = -1 }, true},
		{"empty output dir", func(c *Config) { c.Output.Directory = "" }, true},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := DefaultConfig()
			test.mutate(cfg)

			err := cfg.Validate()
			if test.wantErr && err == nil {
				t.Error("Expected validation error")
			}
			if !test.wantErr && err != nil {
				t.Errorf("Unexpected validation error: %v", err)
			}
		})
	}
}

func TestMergeCommandLineFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MergeCommandLineFlags(map[string]interface{}{
		"page-size":   200,
		"concurrency": 3,
		"timeout":     15,
		"licenses":    []string{"odc-pddl"},
		"output":      "custom_out",
		"retries":     6,
		"retry-delay": 0,
		"rate-limit":  120,
		"log-level":   "warn",
	})

	if cfg.Scrape.PageSize != 200 {
		t.Errorf("Expected page size 200, got %d", cfg.Scrape.PageSize)
	}
	if cfg.Scrape.Concurrency != 3 {
		t.Errorf("Expected concurrency 3, got %d", cfg.Scrape.Concurrency)
	}
	if cfg.Scrape.RequestTimeout != 15*time.Second {
		t.Errorf("Expected timeout 15s, got %v", cfg.Scrape.RequestTimeout)
	}
	if len(cfg.Scrape.Licenses) != 1 || cfg.Scrape.Licenses[0] != "odc-pddl" {
		t.Errorf("Expected licenses [odc-pddl], got %v", cfg.Scrape.Licenses)
	}
	if cfg.Output.Directory != "custom_out" {
		t.Errorf("Expected output dir custom_out, got %s", cfg.Output.Directory)
	}
	if cfg.Retry.MaxAttempts != 6 {
		t.Errorf("Expected 6 attempts, got %d", cfg.Retry.MaxAttempts)
	}
	if cfg.Retry.Delay != 0 {
		t.Errorf("Expected zero retry delay, got %v", cfg.Retry.Delay)
	}
	if cfg.RateLimit.RequestsPerMinute != 120 {
		t.Errorf("Expected rate limit 120, got %d", cfg.RateLimit.RequestsPerMinute)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Expected log level warn, got %s", cfg.Logging.Level)
	}
}

func TestLoadPrecedence(t *testing.T) {
	// File says 100, env says 250, flag says 50: the flag wins
	content := "scrape:\n  page_size: 100\n"
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	t.Setenv("DADOSCRAPER_PAGE_SIZE", "250")
	t.Setenv("DADOSCRAPER_CONCURRENCY", "7")

	cfg, err := Load(path, map[string]interface{}{"page-size": 50})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Scrape.PageSize != 50 {
		t.Errorf("Flag should win over env and file, got page size %d", cfg.Scrape.PageSize)
	}
	if cfg.Scrape.Concurrency != 7 {
		t.Errorf("Env should win over defaults, got concurrency %d", cfg.Scrape.Concurrency)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	original := DefaultConfig()
	original.Scrape.PageSize = 123
	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded := DefaultConfig()
	if err := loaded.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if loaded.Scrape.PageSize != 123 {
		t.Errorf("Expected page size 123 after round trip, got %d", loaded.Scrape.PageSize)
	}
}
