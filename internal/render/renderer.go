// Package render is the browser document source for storefronts that only
// expose product data after client-side rendering.
package render

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/kungul/scraper/internal/proxy"
	"github.com/kungul/scraper/internal/ratelimit"
	"github.com/kungul/scraper/internal/retry"
	"github.com/rs/zerolog/log"
)

// Defaults for a storefront that hydrates server-rendered markup.
const (
	DefaultSettle       = 10 * time.Second
	DefaultWaitTimeout  = 20 * time.Second
	DefaultNavTimeout   = 60 * time.Second
	DefaultWaitSelector = "body"
)

// Options configures a Renderer.
type Options struct {
	ChromePath string
	Headless   bool
	UserAgent  string
	// Settle is slept after navigation so client scripts can run.
	Settle time.Duration
	// WaitSelector marks a finished page; waiting for it is bounded by
	// WaitTimeout and a timeout is tolerated.
	WaitSelector string
	WaitTimeout  time.Duration
	NavTimeout   time.Duration
	Limiter      ratelimit.RateLimiter
	Proxies      *proxy.Pool
}

// Renderer loads pages in headless Chrome. Every Render call owns its own
// browser process and tab, both released before it returns.
type Renderer struct {
	opts       Options
	chromePath string
}

// New resolves the browser executable and returns a Renderer.
func New(opts Options) *Renderer {
	if opts.Settle < 0 {
		opts.Settle = 0
	}
	if opts.WaitTimeout <= 0 {
		opts.WaitTimeout = DefaultWaitTimeout
	}
	if opts.NavTimeout <= 0 {
		opts.NavTimeout = DefaultNavTimeout
	}
	if opts.WaitSelector == "" {
		opts.WaitSelector = DefaultWaitSelector
	}
	return &Renderer{opts: opts, chromePath: FindChrome(opts.ChromePath)}
}

// WithWaitSelector returns a copy of r waiting for selector instead.
func (r *Renderer) WithWaitSelector(selector string) *Renderer {
	cp := *r
	if selector != "" {
		cp.opts.WaitSelector = selector
	}
	return &cp
}

func (r *Renderer) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("window-size", "1920,1080"),
	}
	if r.opts.Headless {
		opts = append(opts, chromedp.Flag("headless", "new"))
	}
	if r.opts.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(r.opts.UserAgent))
	}
	if r.chromePath != "" {
		opts = append([]chromedp.ExecAllocatorOption{chromedp.ExecPath(r.chromePath)}, opts...)
	}
	if r.opts.Proxies != nil {
		if u := r.opts.Proxies.Next(); u != nil {
			opts = append(opts, chromedp.ProxyServer(u.String()))
		}
	}
	return opts
}

// Render navigates to url and returns the page's outer HTML once the page
// settled and the wait selector appeared (or its wait timed out).
func (r *Renderer) Render(ctx context.Context, url string) (string, error) {
	if r.opts.Limiter != nil {
		if err := r.opts.Limiter.Wait(ctx, url); err != nil {
			return "", err
		}
	}

	start := time.Now()

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, r.allocatorOptions()...)
	defer allocCancel()

	tabCtx, tabCancel := chromedp.NewContext(allocCtx)
	defer tabCancel()

	// Start the browser on the tab context so per-step timeouts below do
	// not bound its lifetime.
	if err := chromedp.Run(tabCtx); err != nil {
		return "", fmt.Errorf("failed to start browser: %w", err)
	}

	var status atomic.Int64
	chromedp.ListenTarget(tabCtx, func(ev interface{}) {
		if e, ok := ev.(*network.EventResponseReceived); ok && e.Type == network.ResourceTypeDocument {
			status.CompareAndSwap(0, e.Response.Status)
		}
	})

	navCtx, navCancel := context.WithTimeout(tabCtx, r.opts.NavTimeout)
	defer navCancel()
	if err := chromedp.Run(navCtx, network.Enable(), chromedp.Navigate(url)); err != nil {
		return "", fmt.Errorf("navigation to %s failed: %w", url, err)
	}

	if err := retry.Sleep(ctx, r.opts.Settle); err != nil {
		return "", err
	}

	waitCtx, waitCancel := context.WithTimeout(tabCtx, r.opts.WaitTimeout)
	err := chromedp.Run(waitCtx, chromedp.WaitReady(r.opts.WaitSelector, chromedp.ByQuery))
	waitCancel()
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if !errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("waiting for %q: %w", r.opts.WaitSelector, err)
		}
		log.Warn().
			Str("url", url).
			Str("selector", r.opts.WaitSelector).
			Dur("timeout", r.opts.WaitTimeout).
			Msg("Completion selector did not appear, using page as is")
	}

	var html string
	if err := chromedp.Run(tabCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("reading page source of %s: %w", url, err)
	}

	log.Debug().
		Str("url", url).
		Int64("status", status.Load()).
		Int("bytes", len(html)).
		Int64("render_time_ms", time.Since(start).Milliseconds()).
		Msg("Render completed")

	return html, nil
}
