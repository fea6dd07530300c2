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

// Config holds all configuration options for the scraper
type Config struct {
	// HTTP transport settings
	HTTP HTTPConfig `yaml:"http" json:"http"`

	// Inter-request pacing and rate limiting
	Pacing PacingConfig `yaml:"pacing" json:"pacing"`

	// Retry behavior for profile and feed fetches
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Scrape settings
	Scrape ScrapeConfig `yaml:"scrape" json:"scrape"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// HTTPConfig holds transport configuration
type HTTPConfig struct {
	Timeout  time.Duration `yaml:"timeout" json:"timeout"`
	ProxyURL string        `yaml:"proxy_url" json:"proxy_url"`
}

// PacingConfig holds the mandatory randomized delay applied before every
// network operation, plus an overall requests-per-minute cap.
type PacingConfig struct {
	MinDelay          time.Duration `yaml:"min_delay" json:"min_delay"`
	MaxDelay          time.Duration `yaml:"max_delay" json:"max_delay"`
	RequestsPerMinute int           `yaml:"requests_per_minute" json:"requests_per_minute"`
}

// RetryConfig holds retry configuration
type RetryConfig struct {
	MaxAttempts          int           `yaml:"max_attempts" json:"max_attempts"`
	BaseDelay            time.Duration `yaml:"base_delay" json:"base_delay"`
	MaxDelay             time.Duration `yaml:"max_delay" json:"max_delay"`
	ExponentialBase      float64       `yaml:"exponential_base" json:"exponential_base"`
	Jitter               bool          `yaml:"jitter" json:"jitter"`
	RetryableStatusCodes []int         `yaml:"retryable_status_codes" json:"retryable_status_codes"`
}

// ScrapeConfig holds scrape-specific configuration
type ScrapeConfig struct {
	// PostsPerPage is the feed page size requested from the API
	PostsPerPage int `yaml:"posts_per_page" json:"posts_per_page"`
	// MaxPosts caps the number of posts per account (0 = all)
	MaxPosts int `yaml:"max_posts" json:"max_posts"`
	// HeaderProfile pins a named browser identity ("" = random)
	HeaderProfile string `yaml:"header_profile" json:"header_profile"`
	// Concurrency bounds the number of accounts scraped in parallel
	Concurrency int `yaml:"concurrency" json:"concurrency"`
}

// OutputConfig holds output configuration
type OutputConfig struct {
	Directory string `yaml:"directory" json:"directory"`
	// File overrides the generated <username>_<timestamp>.json name
	File string `yaml:"file" json:"file"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout: 30 * time.Second,
		},
		Pacing: PacingConfig{
			MinDelay:          2 * time.Second,
			MaxDelay:          5 * time.Second,
			RequestsPerMinute: 30,
		},
		Retry: RetryConfig{
			MaxAttempts:          3,
			BaseDelay:            2 * time.Second,
			MaxDelay:             5 * time.Minute,
			ExponentialBase:      2.0,
			Jitter:               true,
			RetryableStatusCodes: []int{429, 500, 502, 503, 504},
		},
		Scrape: ScrapeConfig{
			PostsPerPage: 12,
			MaxPosts:     0,
			Concurrency:  2,
		},
		Output: OutputConfig{
			Directory: "output",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if proxy := os.Getenv("IGFETCH_PROXY_URL"); proxy != "" {
		c.HTTP.ProxyURL = proxy
	}
	if rpm := os.Getenv("IGFETCH_REQUESTS_PER_MINUTE"); rpm != "" {
		var val int
		fmt.Sscanf(rpm, "%d", &val)
		if val > 0 {
			c.Pacing.RequestsPerMinute = val
		}
	}
	if maxPosts := os.Getenv("IGFETCH_MAX_POSTS"); maxPosts != "" {
		var val int
		fmt.Sscanf(maxPosts, "%d", &val)
		if val > 0 {
			c.Scrape.MaxPosts = val
		}
	}
	if profile := os.Getenv("IGFETCH_HEADER_PROFILE"); profile != "" {
		c.Scrape.HeaderProfile = profile
	}
	if outputDir := os.Getenv("IGFETCH_OUTPUT_DIR"); outputDir != "" {
		c.Output.Directory = outputDir
	}
	if logLevel := os.Getenv("IGFETCH_LOG_LEVEL"); logLevel != "" {
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
	locations := []string{
		".igfetch.yaml",
		".igfetch.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "igfetch", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "igfetch", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".igfetch.yaml"),
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

	if c.HTTP.Timeout <= 0 {
		errs = append(errs, errors.New("http timeout must be positive"))
	}

	if c.Pacing.MinDelay < 0 {
		errs = append(errs, errors.New("pacing min delay cannot be negative"))
	}
	if c.Pacing.MaxDelay < c.Pacing.MinDelay {
		errs = append(errs, errors.New("pacing max delay must be >= min delay"))
	}
	if c.Pacing.RequestsPerMinute <= 0 {
		errs = append(errs, errors.New("requests per minute must be positive"))
	}

	if c.Retry.MaxAttempts <= 0 {
		errs = append(errs, errors.New("retry max attempts must be positive"))
	}
	if c.Retry.BaseDelay <= 0 {
		errs = append(errs, errors.New("retry base delay must be positive"))
	}
	if c.Retry.MaxDelay < c.Retry.BaseDelay {
		errs = append(errs, errors.New("retry max delay must be >= base delay"))
	}
	if c.Retry.ExponentialBase < 1.0 {
		errs = append(errs, errors.New("retry exponential base must be >= 1"))
	}

	if c.Scrape.PostsPerPage <= 0 {
		errs = append(errs, errors.New("posts per page must be positive"))
	}
	if c.Scrape.MaxPosts < 0 {
		errs = append(errs, errors.New("max posts cannot be negative"))
	}
	if c.Scrape.Concurrency <= 0 {
		errs = append(errs, errors.New("concurrency must be positive"))
	}

	if c.Output.Directory == "" && c.Output.File == "" {
		errs = append(errs, errors.New("output directory is required"))
	}

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

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if proxy, ok := flags["proxy"].(string); ok && proxy != "" {
		c.HTTP.ProxyURL = proxy
	}
	if maxPosts, ok := flags["max-posts"].(int); ok && maxPosts > 0 {
		c.Scrape.MaxPosts = maxPosts
	}
	if profile, ok := flags["profile"].(string); ok && profile != "" {
		c.Scrape.HeaderProfile = profile
	}
	if concurrency, ok := flags["concurrency"].(int); ok && concurrency > 0 {
		c.Scrape.Concurrency = concurrency
	}
	if outputDir, ok := flags["output-dir"].(string); ok && outputDir != "" {
		c.Output.Directory = outputDir
	}
	if outputFile, ok := flags["output"].(string); ok && outputFile != "" {
		c.Output.File = outputFile
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
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".igfetch.env"))

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
