package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the catalog scraper
type Config struct {
	// Scrape settings (page size, concurrency, licenses)
	Scrape ScrapeConfig `yaml:"scrape" json:"scrape"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Retry behavior for page downloads
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Rate limiting configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// ScrapeConfig holds the pagination and concurrency settings
type ScrapeConfig struct {
	// PageSize is the number of records requested per page
	PageSize int `yaml:"page_size" json:"page_size"`
	// Concurrency bounds the number of in-flight page downloads
	Concurrency int `yaml:"concurrency" json:"concurrency"`
	// RequestTimeout is the per-request timeout
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`
	// Licenses is the ordered list of license filters to scrape.
	// An empty string entry means "no license filter".
	Licenses []string `yaml:"licenses" json:"licenses"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	Directory string `yaml:"directory" json:"directory"`
}

// RetryConfig holds the bounded-retry settings for page downloads
type RetryConfig struct {
	// MaxAttempts is the total number of attempts per page (not extra retries)
	MaxAttempts int `yaml:"max_attempts" json:"max_attempts"`
	// Delay is the fixed wait between failed attempts
	Delay time.Duration `yaml:"delay" json:"delay"`
}

// RateLimitConfig holds optional request pacing configuration.
// RequestsPerMinute of 0 disables pacing entirely.
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" json:"requests_per_minute"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultLicenses is the fixed set of known license partitions,
// processed in this order.
var DefaultLicenses = []string{"cc-by", "cc-zero", "odc-odbl", "odc-pddl"}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Scrape: ScrapeConfig{
			PageSize:       500,
			Concurrency:    10,
			RequestTimeout: 90 * time.Second,
			Licenses:       append([]string(nil), DefaultLicenses...),
		},
		Output: OutputConfig{
			Directory: "scraped_data",
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			Delay:       5 * time.Second,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 0,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if pageSize := os.Getenv("DADOSCRAPER_PAGE_SIZE"); pageSize != "" {
		var val int
		fmt.Sscanf(pageSize, "%d", &val)
		if val > 0 {
			c.Scrape.PageSize = val
		}
	}

	if concurrency := os.Getenv("DADOSCRAPER_CONCURRENCY"); concurrency != "" {
		var val int
		fmt.Sscanf(concurrency, "%d", &val)
		if val > 0 {
			c.Scrape.Concurrency = val
		}
	}

	if timeout := os.Getenv("DADOSCRAPER_TIMEOUT_SECONDS"); timeout != "" {
		var val int
		fmt.Sscanf(timeout, "%d", &val)
		if val > 0 {
			c.Scrape.RequestTimeout = time.Duration(val) * time.Second
		}
	}

	if licenses := os.Getenv("DADOSCRAPER_LICENSES"); licenses != "" {
		parts := strings.Split(licenses, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		c.Scrape.Licenses = parts
	}

	if outputDir := os.Getenv("DADOSCRAPER_OUTPUT_DIR"); outputDir != "" {
		c.Output.Directory = outputDir
	}

	if retries := os.Getenv("DADOSCRAPER_RETRIES"); retries != "" {
		var val int
		fmt.Sscanf(retries, "%d", &val)
		if val > 0 {
			c.Retry.MaxAttempts = val
		}
	}

	if delay := os.Getenv("DADOSCRAPER_RETRY_DELAY_SECONDS"); delay != "" {
		var val int
		fmt.Sscanf(delay, "%d", &val)
		if val >= 0 {
			c.Retry.Delay = time.Duration(val) * time.Second
		}
	}

	if rpm := os.Getenv("DADOSCRAPER_REQUESTS_PER_MINUTE"); rpm != "" {
		var val int
		fmt.Sscanf(rpm, "%d", &val)
		if val >= 0 {
			c.RateLimit.RequestsPerMinute = val
		}
	}

	if logLevel := os.Getenv("DADOSCRAPER_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	// Check in order of precedence
	locations := []string{
		".dadoscraper.yaml",
		".dadoscraper.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "dadoscraper", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "dadoscraper", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".dadoscraper.yaml"),
		filepath.Join(os.Getenv("HOME"), ".dadoscraper.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	// Validate scrape settings
	if c.Scrape.PageSize <= 0 {
		errs = append(errs, errors.New("page size must be positive"))
	}
	if c.Scrape.Concurrency <= 0 {
		errs = append(errs, errors.New("concurrency must be positive"))
	}
	if c.Scrape.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}
	if len(c.Scrape.Licenses) == 0 {
		errs = append(errs, errors.New("at least one license filter is required"))
	}

	// Validate retry settings
	if c.Retry.MaxAttempts <= 0 {
		errs = append(errs, errors.New("retry max attempts must be positive"))
	}
	if c.Retry.Delay < 0 {
		errs = append(errs, errors.New("retry delay cannot be negative"))
	}

	// Validate rate limiting
	if c.RateLimit.RequestsPerMinute < 0 {
		errs = append(errs, errors.New("requests per minute cannot be negative"))
	}

	// Validate output settings
	if c.Output.Directory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}

	// Validate logging
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if pageSize, ok := flags["page-size"].(int); ok && pageSize > 0 {
		c.Scrape.PageSize = pageSize
	}
	if concurrency, ok := flags["concurrency"].(int); ok && concurrency > 0 {
		c.Scrape.Concurrency = concurrency
	}
	if timeout, ok := flags["timeout"].(int); ok && timeout > 0 {
		c.Scrape.RequestTimeout = time.Duration(timeout) * time.Second
	}
	if licenses, ok := flags["licenses"].([]string); ok && len(licenses) > 0 {
		c.Scrape.Licenses = licenses
	}
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.Directory = outputDir
	}
	if retries, ok := flags["retries"].(int); ok && retries > 0 {
		c.Retry.MaxAttempts = retries
	}
	if delay, ok := flags["retry-delay"].(int); ok && delay >= 0 {
		c.Retry.Delay = time.Duration(delay) * time.Second
	}
	if rpm, ok := flags["rate-limit"].(int); ok && rpm >= 0 {
		c.RateLimit.RequestsPerMinute = rpm
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".dadoscraper.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
