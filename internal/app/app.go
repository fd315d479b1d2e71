// Package app wires the scraper's collaborators from a Config and owns
// their lifecycle.
package app

import (
	"fmt"
	"time"

	"github.com/kungul/scraper/internal/cache"
	"github.com/kungul/scraper/internal/config"
	"github.com/kungul/scraper/internal/fetch"
	"github.com/kungul/scraper/internal/proxy"
	"github.com/kungul/scraper/internal/ratelimit"
	"github.com/kungul/scraper/internal/render"
	"github.com/kungul/scraper/internal/sites"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Application holds the shared dependencies of one scrape run.
//
// Use Close() to release the document cache when the run ends.
type Application struct {
	Config      *config.Config
	Logger      zerolog.Logger
	Cache       cache.Cache
	RateLimiter ratelimit.RateLimiter
	Proxies     *proxy.Pool
	Fetcher     *fetch.Client
	Renderer    *render.Renderer
	startTime   time.Time
}

// New builds the fetcher, renderer, per-host limiter, proxy pool and
// document cache described by cfg. headers are sent with every plain HTTP
// request on top of the browser-like defaults.
func New(cfg *config.Config, headers map[string]string) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	logger := log.With().Str("component", "app").Logger()

	pool, err := proxy.NewPool(cfg.Proxies)
	if err != nil {
		return nil, fmt.Errorf("proxy pool: %w", err)
	}

	limiter := ratelimit.NewHostLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	logger.Debug().
		Float64("rps", cfg.RateLimitRPS).
		Int("burst", cfg.RateLimitBurst).
		Int("proxies", pool.Len()).
		Msg("Rate limiter initialized")

	fetcher := fetch.New(fetch.Options{
		Timeout:   cfg.HTTPTimeout,
		UserAgent: cfg.UserAgent,
		Headers:   headers,
		Policy:    cfg.RetryPolicy(),
		Limiter:   limiter,
		Proxies:   pool,
	})

	renderer := render.New(render.Options{
		ChromePath:  cfg.ChromePath,
		Headless:    cfg.BrowserHeadless,
		UserAgent:   cfg.UserAgent,
		Settle:      cfg.RenderSettle,
		WaitTimeout: cfg.RenderWaitTimeout,
		Limiter:     limiter,
		Proxies:     pool,
	})

	memCache := cache.NewMemoryCache(cfg.CacheMaxSizeBytes)
	logger.Debug().Int64("max_size_bytes", cfg.CacheMaxSizeBytes).Msg("Document cache initialized")

	return &Application{
		Config:      cfg,
		Logger:      logger,
		Cache:       memCache,
		RateLimiter: limiter,
		Proxies:     pool,
		Fetcher:     fetcher,
		Renderer:    renderer,
		startTime:   time.Now(),
	}, nil
}

// Source returns the cached page source for site: the headless renderer
// for rendered storefronts, plain HTTP otherwise.
func (a *Application) Source(site sites.Site) sites.Source {
	var src sites.Source = a.Fetcher.Get
	if site.Render {
		src = a.Renderer.WithWaitSelector(site.WaitSelector).Render
	}
	return sites.Cached(src, a.Cache)
}

// Scraper returns a scraper for site using the configured challenge backoff
// when one is set.
func (a *Application) Scraper(site sites.Site) *sites.Scraper {
	backoff := site.ChallengeBackoff
	if a.Config.ChallengeBackoff > 0 {
		backoff = a.Config.ChallengeBackoff
	}
	return &sites.Scraper{
		Extractor:        site.New(),
		Source:           a.Source(site),
		ChallengeBackoff: backoff,
	}
}

// Delay returns the politeness delay between products of site. A
// configured delay overrides the site's own.
func (a *Application) Delay(site sites.Site) time.Duration {
	if a.Config.Delay > 0 {
		return a.Config.Delay
	}
	return site.Delay
}

// Close releases the cache.
func (a *Application) Close() error {
	if a.Cache != nil {
		a.Cache.Close()
	}
	a.Logger.Debug().Dur("uptime", a.Uptime()).Msg("Application shutdown complete")
	return nil
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}
