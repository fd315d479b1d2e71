package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kungul/scraper/internal/retry"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel string `mapstructure:"log_level"`
	JSONLog  bool   `mapstructure:"json"`

	// HTTP
	HTTPTimeout time.Duration `mapstructure:"timeout"`
	UserAgent   string        `mapstructure:"user_agent"`
	Proxies     []string      `mapstructure:"proxies"`

	// Rate limiting, per host
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`

	// Retries
	RetryAttempts       int           `mapstructure:"retry_attempts"`
	RetryInitialBackoff time.Duration `mapstructure:"retry_initial_backoff"`
	RetryMaxBackoff     time.Duration `mapstructure:"retry_max_backoff"`

	// Browser
	BrowserHeadless   bool          `mapstructure:"headless"`
	ChromePath        string        `mapstructure:"chrome_path"`
	RenderSettle      time.Duration `mapstructure:"render_settle"`
	RenderWaitTimeout time.Duration `mapstructure:"render_wait_timeout"`

	// Pacing. A zero Delay keeps each site's own politeness delay.
	ChallengeBackoff time.Duration `mapstructure:"challenge_backoff"`
	Delay            time.Duration `mapstructure:"delay"`

	// Caching
	CacheMaxSizeBytes int64 `mapstructure:"cache_max_bytes"`
}

// flagKeys maps persistent flag names to config keys.
var flagKeys = map[string]string{
	"json":       "json",
	"timeout":    "timeout",
	"user-agent": "user_agent",
	"proxy":      "proxies",
	"chrome":     "chrome_path",
	"delay":      "delay",
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() *Config {
	cfg, _ := decode(newViper())
	return cfg
}

// Load builds a Config by combining defaults, an optional config file, KUNGUL_*
// environment variables and CLI flags, in increasing priority.
// Caller should pass the command being run so its flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	v := newViper()

	if cmd != nil {
		if f := cmd.Flags().Lookup("config"); f != nil && f.Value.String() != "" {
			v.SetConfigFile(f.Value.String())
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
		for name, key := range flagKeys {
			if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}

	if cmd != nil {
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			cfg.LogLevel = "debug"
		} else if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
			cfg.LogLevel = "error"
		}
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// RetryPolicy returns the retry schedule the fetcher should use.
func (c *Config) RetryPolicy() retry.Policy {
	p := retry.DefaultPolicy()
	p.MaxAttempts = c.RetryAttempts
	p.InitialBackoff = c.RetryInitialBackoff
	p.MaxBackoff = c.RetryMaxBackoff
	return p
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(DefaultEnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("json", DefaultJSONLog)
	v.SetDefault("timeout", DefaultHTTPTimeout)
	v.SetDefault("user_agent", "")
	v.SetDefault("proxies", []string{})
	v.SetDefault("rate_limit_rps", DefaultRateLimitRPS)
	v.SetDefault("rate_limit_burst", DefaultRateLimitBurst)
	v.SetDefault("retry_attempts", DefaultRetryAttempts)
	v.SetDefault("retry_initial_backoff", DefaultRetryInitialBackoff)
	v.SetDefault("retry_max_backoff", DefaultRetryMaxBackoff)
	v.SetDefault("headless", DefaultBrowserHeadless)
	v.SetDefault("chrome_path", "")
	v.SetDefault("render_settle", DefaultRenderSettle)
	v.SetDefault("render_wait_timeout", DefaultRenderWaitTimeout)
	v.SetDefault("challenge_backoff", DefaultChallengeBackoff)
	v.SetDefault("delay", time.Duration(0))
	v.SetDefault("cache_max_bytes", DefaultCacheMaxSizeBytes)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.Proxies = compact(cfg.Proxies)
	return &cfg, nil
}

// compact drops blank proxy entries, which a trailing comma in
// KUNGUL_PROXIES would otherwise produce.
func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

var errNonPositive = errors.New("must be > 0")
