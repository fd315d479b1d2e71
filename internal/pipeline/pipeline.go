// Package pipeline drives a list of product URLs through a site scraper
// into the products store, one URL at a time.
package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kungul/scraper/internal/product"
	"github.com/kungul/scraper/internal/retry"
	"github.com/kungul/scraper/internal/runctx"
	"github.com/kungul/scraper/internal/store"
	urlutil "github.com/kungul/scraper/internal/utils/url"
	"github.com/rs/zerolog/log"
)

// LoadURLs reads one URL per line from path. Blank lines and lines starting
// with '#' are skipped, as are lines that are not absolute http(s) URLs.
func LoadURLs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open url list: %w", err)
	}
	defer f.Close()

	var urls []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		u := strings.TrimSpace(sc.Text())
		if u == "" || strings.HasPrefix(u, "#") {
			continue
		}
		if err := urlutil.ValidateURL(u); err != nil {
			log.Warn().Err(err).Int("line", line).Str("url", u).Msg("Skipping invalid URL")
			continue
		}
		urls = append(urls, u)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read url list: %w", err)
	}
	return urls, nil
}

// Scraper turns one product URL into a record.
type Scraper interface {
	Scrape(ctx context.Context, url string) (product.Record, error)
}

// Sink accepts scraped records as they are produced.
type Sink interface {
	Add(rec product.Record) (store.Outcome, error)
}

// Item describes one finished URL, passed to Runner.OnItem.
type Item struct {
	Index   int
	URL     string
	Record  product.Record
	Outcome store.Outcome
	Err     error
}

// Result summarizes a run.
type Result struct {
	Processed   int
	Failures    []error
	Interrupted bool
}

// Runner scrapes URLs sequentially with a delay between them.
type Runner struct {
	Scraper Scraper
	Sink    Sink
	Delay   time.Duration
	OnItem  func(Item)
}

// Run scrapes every URL in order. A failing URL is logged and recorded in
// the result without stopping the batch. Cancelling ctx stops the run after
// the current URL; rows already handed to the sink stay persisted. The
// returned error is non-nil only when the sink fails.
func (r *Runner) Run(ctx context.Context, urls []string) (Result, error) {
	var res Result
	logger := runctx.Logger(ctx, log.Logger)

	for i, u := range urls {
		if ctx.Err() != nil {
			res.Interrupted = true
			break
		}

		item := Item{Index: i, URL: u}
		rec, err := r.Scraper.Scrape(ctx, u)
		switch {
		case err != nil && ctx.Err() != nil:
			res.Interrupted = true
		case err != nil:
			ierr := runctx.NewItemError(ctx, u, err)
			logger.Error().Err(err).Str("url", u).Msg("Failed to scrape product")
			res.Failures = append(res.Failures, ierr)
			item.Err = ierr
		default:
			item.Record = rec
			item.Outcome, err = r.Sink.Add(rec)
			if err != nil {
				return res, fmt.Errorf("persist %s: %w", u, err)
			}
			logger.Info().
				Str("url", u).
				Str("name", rec.Name).
				Stringer("outcome", item.Outcome).
				Msg("Scraped product")
		}
		if res.Interrupted {
			break
		}

		res.Processed++
		if r.OnItem != nil {
			r.OnItem(item)
		}

		if i < len(urls)-1 {
			if err := retry.Sleep(ctx, r.Delay); err != nil {
				res.Interrupted = true
				break
			}
		}
	}

	if res.Interrupted {
		logger.Warn().Int("processed", res.Processed).Int("total", len(urls)).Msg("Run interrupted")
	}
	return res, nil
}
