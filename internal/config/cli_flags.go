package config

import "github.com/spf13/cobra"

// RegisterFlags registers common CLI flags on the provided root command
func RegisterFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress all output except errors")
	cmd.PersistentFlags().Bool("json", false, "Log and report in JSON format")
	cmd.PersistentFlags().StringSlice("proxy", nil, "HTTP/SOCKS5 proxy to rotate through (repeatable)")
	cmd.PersistentFlags().Duration("timeout", DefaultHTTPTimeout, "Per-request timeout")
	cmd.PersistentFlags().String("user-agent", "", "Custom user agent string")
	cmd.PersistentFlags().String("chrome", "", "Path to the Chrome/Chromium executable")
	cmd.PersistentFlags().String("config", "", "Path to configuration file (yaml, toml or json)")
}
