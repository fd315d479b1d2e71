package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kungul/scraper/internal/config"
	"github.com/kungul/scraper/internal/ui"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "kungul",
	Short: "Scrape cosmetic product pages into a flat products file",
	Long: `Kungul extracts barcode, name, description, ingredients, image, brand and
category from storefront product pages and appends them to a pipe-delimited
products file, skipping incomplete and duplicate records.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command with ctx, which is cancelled on interrupt.
// It is called by main.main() and exits non-zero on error.
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", ui.Error("Error:"), err)
		os.Exit(1)
	}
}

func init() {
	config.RegisterFlags(rootCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, _ []string) {
		printHelp(cmd.OutOrStdout(), cmd)
	})
	rootCmd.SetUsageFunc(func(cmd *cobra.Command) error {
		printUsage(cmd.ErrOrStderr(), cmd)
		return nil
	})

	// Customize help and version flag descriptions
	rootCmd.Flags().BoolP("help", "h", false, "Help for Kungul")
	rootCmd.Flags().Bool("version", false, "Version for Kungul")

	// Configuration is loaded per invocation so -h/help never touch config files
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cmd)
		if err != nil {
			return err
		}
		setupLogging(cfg, os.Stderr)
		log.Debug().
			Str("log_level", cfg.LogLevel).
			Dur("timeout", cfg.HTTPTimeout).
			Int("proxies", len(cfg.Proxies)).
			Msg("Configuration loaded")
		setConfig(cmd, cfg)
		return nil
	}
}

// setupLogging points the global logger at w. "info" is treated as
// non-verbose: info logs only show with -v.
func setupLogging(cfg *config.Config, w io.Writer) {
	switch cfg.LogLevel {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}

	if cfg.JSONLog {
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: w})
	}
}
