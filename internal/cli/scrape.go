package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kungul/scraper/internal/app"
	"github.com/kungul/scraper/internal/config"
	"github.com/kungul/scraper/internal/pipeline"
	"github.com/kungul/scraper/internal/runctx"
	"github.com/kungul/scraper/internal/sites"
	"github.com/kungul/scraper/internal/store"
	"github.com/kungul/scraper/internal/ui"
	"github.com/kungul/scraper/internal/utils/headers"
)

var (
	outputPath string
	headerArgs []string
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape <site> <url-file>",
	Short: "Scrape every product URL listed in a file",
	Long: `Fetches each product URL in <url-file> (one per line, '#' starts a comment)
with the extractor registered for <site> and appends complete, previously
unseen records to the products file.

Rendered storefronts are loaded in headless Chrome. Interrupting the run
keeps every record written so far.`,
	Example: `  # Scrape INKEY List products into products.txt
  kungul scrape inkeylist urls.txt

  # Write somewhere else and slow down
  kungul scrape notino urls.txt -o data/notino.txt --delay 5s

  # Add a request header
  kungul scrape generic urls.txt -H "Accept-Language: en-GB"`,
	Args: cobra.ExactArgs(2),
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().StringVarP(&outputPath, "output", "o", "products.txt", "Products file to append to")
	scrapeCmd.Flags().StringArrayVarP(&headerArgs, "header", "H", []string{}, "Custom headers (e.g., -H \"Accept-Language: de\")")
	scrapeCmd.Flags().Duration("delay", 0, "Pause between products (default: per-site)")
}

// scrapeReport is what scrape prints when it finishes.
type scrapeReport struct {
	Site        string        `json:"site"`
	RunID       string        `json:"run_id"`
	Output      string        `json:"output"`
	URLs        int           `json:"urls"`
	Processed   int           `json:"processed"`
	Failed      int           `json:"failed"`
	Interrupted bool          `json:"interrupted"`
	Store       store.Summary `json:"store"`
}

func runScrape(cmd *cobra.Command, args []string) (err error) {
	cfg := getConfig(cmd)

	site, err := sites.Lookup(args[0])
	if err != nil {
		return err
	}
	urls, err := pipeline.LoadURLs(args[1])
	if err != nil {
		return err
	}
	hdrs, err := headers.ParseHeaders(headerArgs)
	if err != nil {
		return err
	}

	a, err := app.New(cfg, hdrs)
	if err != nil {
		return err
	}
	defer a.Close()

	w, err := store.Open(outputPath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	ctx := runctx.New(cmd.Context(), site.Slug)
	run := runctx.From(ctx)
	log.Info().
		Str("run_id", run.ID).
		Str("site", site.Slug).
		Int("urls", len(urls)).
		Str("output", outputPath).
		Msg("Starting scrape")

	bar := newProgress(cfg, len(urls), site.Name)
	runner := &pipeline.Runner{
		Scraper: a.Scraper(site),
		Sink:    w,
		Delay:   a.Delay(site),
		OnItem: func(pipeline.Item) {
			if bar != nil {
				_ = bar.Add(1)
			}
		},
	}

	res, err := runner.Run(ctx, urls)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return err
	}

	return printScrapeReport(cmd.OutOrStdout(), cfg.JSONLog, scrapeReport{
		Site:        site.Slug,
		RunID:       run.ID,
		Output:      outputPath,
		URLs:        len(urls),
		Processed:   res.Processed,
		Failed:      len(res.Failures),
		Interrupted: res.Interrupted,
		Store:       w.Summary(),
	})
}

// newProgress returns a stderr progress bar, or nil when logs or JSON
// output would interleave with it.
func newProgress(cfg *config.Config, total int, name string) *progressbar.ProgressBar {
	if cfg.JSONLog || cfg.LogLevel == "debug" || cfg.LogLevel == "error" || total == 0 {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(name),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionClearOnFinish(),
	)
}

func printScrapeReport(w io.Writer, asJSON bool, r scrapeReport) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}

	status := ui.Success("Done")
	if r.Interrupted {
		status = ui.Warn("Interrupted")
	}
	fmt.Fprintf(w, "%s %s: %d/%d URLs processed, %d failed\n", status, r.Site, r.Processed, r.URLs, r.Failed)
	fmt.Fprintf(w, "  %s %d written, %d duplicates, %d incomplete\n",
		ui.Bold(r.Output+":"), r.Store.Written, r.Store.Duplicates, r.Store.Incomplete)
	return nil
}
