package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	RegisterFlags(cmd)
	cmd.Flags().Duration("delay", 0, "")
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultHTTPTimeout, cfg.HTTPTimeout)
	assert.Equal(t, DefaultRetryAttempts, cfg.RetryAttempts)
	assert.Equal(t, int64(DefaultCacheMaxSizeBytes), cfg.CacheMaxSizeBytes)
	assert.True(t, cfg.BrowserHeadless)
	assert.Empty(t, cfg.Proxies)
	assert.NoError(t, validate(cfg))
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "kungul.yaml")
	require.NoError(t, os.WriteFile(file, []byte("timeout: 5s\nuser_agent: from-file\nretry_attempts: 2\nrender_settle: 1s\n"), 0o644))

	t.Setenv("KUNGUL_USER_AGENT", "from-env")
	t.Setenv("KUNGUL_PROXIES", "http://p1:8080,http://p2:8080,")

	cmd := newCmd(t, "--config", file, "--timeout", "7s", "--delay", "3s")
	cfg, err := Load(cmd)
	require.NoError(t, err)

	assert.Equal(t, 7*time.Second, cfg.HTTPTimeout, "flag beats file")
	assert.Equal(t, "from-env", cfg.UserAgent, "env beats file")
	assert.Equal(t, 2, cfg.RetryAttempts)
	assert.Equal(t, time.Second, cfg.RenderSettle)
	assert.Equal(t, 3*time.Second, cfg.Delay)
	assert.Equal(t, []string{"http://p1:8080", "http://p2:8080"}, cfg.Proxies)
}

func TestLoad_VerboseAndQuiet(t *testing.T) {
	cfg, err := Load(newCmd(t, "-v"))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)

	cfg, err = Load(newCmd(t, "-q"))
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestLoad_ProxyFlag(t *testing.T) {
	cfg, err := Load(newCmd(t, "--proxy", "http://a:1", "--proxy", "http://b:2"))
	require.NoError(t, err)
	assert.Equal(t, []string{"http://a:1", "http://b:2"}, cfg.Proxies)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	_, err := Load(newCmd(t, "--config", filepath.Join(t.TempDir(), "missing.yaml")))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("KUNGUL_LOG_LEVEL", "chatty")
	_, err := Load(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log level")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero timeout", func(c *Config) { c.HTTPTimeout = 0 }},
		{"negative rps", func(c *Config) { c.RateLimitRPS = -1 }},
		{"zero burst", func(c *Config) { c.RateLimitBurst = 0 }},
		{"zero attempts", func(c *Config) { c.RetryAttempts = 0 }},
		{"inverted backoff", func(c *Config) { c.RetryInitialBackoff = time.Minute }},
		{"negative delay", func(c *Config) { c.Delay = -time.Second }},
		{"zero cache", func(c *Config) { c.CacheMaxSizeBytes = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			assert.Error(t, validate(cfg))
		})
	}
}

func TestRetryPolicy(t *testing.T) {
	cfg := Defaults()
	cfg.RetryAttempts = 6
	p := cfg.RetryPolicy()
	assert.Equal(t, 6, p.MaxAttempts)
	assert.Equal(t, DefaultRetryInitialBackoff, p.InitialBackoff)
	assert.Contains(t, p.RetryableStatusCodes, 429)
}
