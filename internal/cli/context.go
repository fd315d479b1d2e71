// Package cli provides the command-line interface for the kungul scraper.
package cli

import (
	"context"

	"github.com/kungul/scraper/internal/config"
	"github.com/spf13/cobra"
)

type ctxKey string

const configKey ctxKey = "config"

// setConfig stores the loaded configuration in the command's context.
func setConfig(cmd *cobra.Command, cfg *config.Config) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, configKey, cfg))
}

// getConfig returns the configuration loaded for cmd, or the defaults when
// the command ran without the root pre-run (as in tests).
func getConfig(cmd *cobra.Command) *config.Config {
	if ctx := cmd.Context(); ctx != nil {
		if cfg, ok := ctx.Value(configKey).(*config.Config); ok && cfg != nil {
			return cfg
		}
	}
	return config.Defaults()
}
