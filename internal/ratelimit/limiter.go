// internal/ratelimit/limiter.go
package ratelimit

import (
	"context"
	"sync"

	urlutil "github.com/kungul/scraper/internal/utils/url"
	"golang.org/x/time/rate"
)

// RateLimiter paces outgoing requests per storefront host.
type RateLimiter interface {
	// Wait blocks until a request for urlStr may proceed or ctx is done.
	Wait(ctx context.Context, urlStr string) error

	// Allow reports whether a request for urlStr may proceed right now.
	Allow(urlStr string) bool
}

// HostLimiter keeps one token bucket per host. "www." prefixes are folded so
// notino.de and www.notino.de share a budget.
type HostLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	perHost  rate.Limit
	burst    int
}

// NewHostLimiter creates a limiter allowing requestsPerSecond per host with
// the given burst. A non-positive rate disables limiting.
func NewHostLimiter(requestsPerSecond float64, burst int) *HostLimiter {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	if burst <= 0 {
		burst = 1
	}

	return &HostLimiter{
		limiters: make(map[string]*rate.Limiter),
		perHost:  limit,
		burst:    burst,
	}
}

// Wait blocks until the request for urlStr can proceed.
func (l *HostLimiter) Wait(ctx context.Context, urlStr string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	host := urlutil.Host(urlStr)
	if host == "" {
		// Unparseable URLs fail in the transport, not here
		return nil
	}
	return l.limiter(host).Wait(ctx)
}

// Allow checks if a request can proceed immediately without blocking
func (l *HostLimiter) Allow(urlStr string) bool {
	host := urlutil.Host(urlStr)
	if host == "" {
		return true
	}
	return l.limiter(host).Allow()
}

// SetLimit overrides the budget of one host.
func (l *HostLimiter) SetLimit(host string, requestsPerSecond float64, burst int) {
	lim := l.limiter(host)
	lim.SetLimit(rate.Limit(requestsPerSecond))
	lim.SetBurst(burst)
}

func (l *HostLimiter) limiter(host string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.limiters[host]
	if !ok {
		lim = rate.NewLimiter(l.perHost, l.burst)
		l.limiters[host] = lim
	}
	return lim
}
