// Package config loads runtime settings from the environment, an optional
// .env file and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config is the complete application configuration.
type Config struct {
	SEC      SECConfig      `yaml:"sec" envconfig:"SEC"`
	Cache    CacheConfig    `yaml:"cache" envconfig:"CACHE"`
	Database DatabaseConfig `yaml:"database" envconfig:"DATABASE"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOG"`
	Output   OutputConfig   `yaml:"output" envconfig:"OUTPUT"`
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
}

// SECConfig controls the EDGAR API client.
// SEC asks for a descriptive User-Agent and at most 10 requests per second.
type SECConfig struct {
	BaseURL        string        `yaml:"base_url" envconfig:"BASE_URL" default:"https://data.sec.gov"`
	TickersURL     string        `yaml:"tickers_url" envconfig:"TICKERS_URL" default:"https://www.sec.gov/files/company_tickers.json"`
	UserAgent      string        `yaml:"user_agent" envconfig:"USER_AGENT" default:"Company Research Tool research@example.com"`
	RateLimitDelay time.Duration `yaml:"rate_limit_delay" envconfig:"RATE_LIMIT_DELAY" default:"100ms"`
	MaxRetries     int           `yaml:"max_retries" envconfig:"MAX_RETRIES" default:"3"`
	RetryDelay     time.Duration `yaml:"retry_delay" envconfig:"RETRY_DELAY" default:"1s"`
	Timeout        time.Duration `yaml:"timeout" envconfig:"TIMEOUT" default:"30s"`
}

// CacheConfig locates the on-disk response cache.
type CacheConfig struct {
	Dir string `yaml:"dir" envconfig:"DIR" default:".cache"`
}

// DatabaseConfig holds the Postgres connection string. Empty disables persistence.
type DatabaseConfig struct {
	URL string `yaml:"url" envconfig:"URL"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format string `yaml:"format" envconfig:"FORMAT" default:"text"`
	Dir    string `yaml:"dir" envconfig:"DIR" default:"logs"`
	File   bool   `yaml:"file" envconfig:"FILE" default:"false"`
}

// OutputConfig is where exported statements are written.
type OutputConfig struct {
	Dir string `yaml:"dir" envconfig:"DIR" default:"financial_statements"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Addr string `yaml:"addr" envconfig:"ADDR" default:":8080"`
}

// Load builds the configuration. Precedence, lowest first: struct defaults,
// environment (including .env), YAML file. path may be empty; CONFIG_FILE is
// consulted then.
func Load(path string) (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// mergeFile overlays the keys present in a YAML file.
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

// Validate checks the values the client cannot work without.
func (c *Config) Validate() error {
	var problems []error
	if c.SEC.BaseURL == "" {
		problems = append(problems, errors.New("sec.base_url is required"))
	}
	if c.SEC.UserAgent == "" {
		problems = append(problems, errors.New("sec.user_agent is required"))
	}
	if c.SEC.MaxRetries < 1 {
		problems = append(problems, fmt.Errorf("sec.max_retries must be >= 1, got %d", c.SEC.MaxRetries))
	}
	if c.SEC.RateLimitDelay < 0 || c.SEC.RetryDelay < 0 {
		problems = append(problems, errors.New("sec delays must not be negative"))
	}
	if c.Cache.Dir == "" {
		problems = append(problems, errors.New("cache.dir is required"))
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		problems = append(problems, fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format))
	}
	return errors.Join(problems...)
}

// EnsureDirs creates the cache and output directories.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.Cache.Dir, c.Output.Dir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}
