package config

import "fmt"

func validate(c *Config) error {
	if !logLevels[c.LogLevel] {
		return fmt.Errorf("log level must be one of debug, info, warn, error; got %q", c.LogLevel)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout %w", errNonPositive)
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("rate limit rps must be >= 0")
	}
	if c.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit burst %w", errNonPositive)
	}
	if c.RetryAttempts <= 0 {
		return fmt.Errorf("retry attempts %w", errNonPositive)
	}
	if c.RetryInitialBackoff <= 0 || c.RetryMaxBackoff <= 0 {
		return fmt.Errorf("retry backoff %w", errNonPositive)
	}
	if c.RetryInitialBackoff > c.RetryMaxBackoff {
		return fmt.Errorf("retry initial backoff %s exceeds max backoff %s", c.RetryInitialBackoff, c.RetryMaxBackoff)
	}
	if c.RenderSettle < 0 || c.RenderWaitTimeout < 0 || c.ChallengeBackoff < 0 || c.Delay < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	if c.CacheMaxSizeBytes <= 0 {
		return fmt.Errorf("cache max size %w", errNonPositive)
	}
	return nil
}
