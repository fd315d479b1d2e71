package config

import "time"

// Default constants for application configuration
const (
	DefaultLogLevel            = "info"
	DefaultJSONLog             = false
	DefaultHTTPTimeout         = 20 * time.Second
	DefaultRateLimitRPS        = 2.0
	DefaultRateLimitBurst      = 2
	DefaultRetryAttempts       = 4
	DefaultRetryInitialBackoff = 300 * time.Millisecond
	DefaultRetryMaxBackoff     = 10 * time.Second
	DefaultBrowserHeadless     = true
	DefaultRenderSettle        = 10 * time.Second
	DefaultRenderWaitTimeout   = 20 * time.Second
	DefaultChallengeBackoff    = 5 * time.Second
	DefaultCacheMaxSizeBytes   = 64 * 1024 * 1024 // 64MB
	DefaultEnvPrefix           = "KUNGUL"
)

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
