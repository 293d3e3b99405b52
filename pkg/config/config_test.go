package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://data.sec.gov", cfg.SEC.BaseURL)
	assert.Equal(t, 100*time.Millisecond, cfg.SEC.RateLimitDelay)
	assert.Equal(t, 3, cfg.SEC.MaxRetries)
	assert.Equal(t, time.Second, cfg.SEC.RetryDelay)
	assert.Equal(t, ".cache", cfg.Cache.Dir)
	assert.Equal(t, "financial_statements", cfg.Output.Dir)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("SEC_USER_AGENT", "Acme Research ops@acme.test")
	t.Setenv("SEC_MAX_RETRIES", "5")
	t.Setenv("SEC_RETRY_DELAY", "250ms")
	t.Setenv("CACHE_DIR", "/tmp/sec-cache")
	t.Setenv("DATABASE_URL", "postgres://localhost/sec")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "Acme Research ops@acme.test", cfg.SEC.UserAgent)
	assert.Equal(t, 5, cfg.SEC.MaxRetries)
	assert.Equal(t, 250*time.Millisecond, cfg.SEC.RetryDelay)
	assert.Equal(t, "/tmp/sec-cache", cfg.Cache.Dir)
	assert.Equal(t, "postgres://localhost/sec", cfg.Database.URL)
}

func TestLoad_FileOverlay(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "sec:\n  max_retries: 7\nlogging:\n  format: json\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.SEC.MaxRetries)
	assert.Equal(t, "json", cfg.Logging.Format)
	// untouched keys keep their defaults
	assert.Equal(t, 100*time.Millisecond, cfg.SEC.RateLimitDelay)
}

func TestValidate(t *testing.T) {
	cfg := Config{
		SEC:     SECConfig{BaseURL: "x", UserAgent: "ua", MaxRetries: 0},
		Cache:   CacheConfig{Dir: ".cache"},
		Logging: LoggingConfig{Format: "xml"},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_retries")
	assert.Contains(t, err.Error(), "logging.format")
}

func TestEnsureDirs(t *testing.T) {
	root := t.TempDir()
	cfg := Config{
		Cache:  CacheConfig{Dir: filepath.Join(root, "cache")},
		Output: OutputConfig{Dir: filepath.Join(root, "out")},
	}

	require.NoError(t, cfg.EnsureDirs())
	assert.DirExists(t, cfg.Cache.Dir)
	assert.DirExists(t, cfg.Output.Dir)
}
