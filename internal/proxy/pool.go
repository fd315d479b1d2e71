package proxy

import (
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultCooldown is how long a failing proxy is skipped.
const DefaultCooldown = 5 * time.Minute

// Pool rotates requests across outbound proxies, sidelining those that
// recently failed.
type Pool struct {
	proxies  []*url.URL
	index    int
	mu       sync.Mutex
	failed   map[string]time.Time
	cooldown time.Duration
	now      func() time.Time
}

// NewPool parses the proxy URLs. An empty list yields a pool that routes
// every request directly.
func NewPool(rawProxies []string) (*Pool, error) {
	p := &Pool{
		failed:   make(map[string]time.Time),
		cooldown: DefaultCooldown,
		now:      time.Now,
	}
	for _, raw := range rawProxies {
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			return nil, fmt.Errorf("invalid proxy %q", raw)
		}
		p.proxies = append(p.proxies, u)
	}
	return p, nil
}

// Len returns the number of configured proxies.
func (p *Pool) Len() int { return len(p.proxies) }

// Next returns the next healthy proxy, or nil when the pool is empty. If
// every proxy is cooling down the next one in rotation is returned anyway.
func (p *Pool) Next() *url.URL {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.proxies) == 0 {
		return nil
	}

	start := p.index
	for {
		u := p.proxies[p.index]
		p.index = (p.index + 1) % len(p.proxies)

		failedAt, ok := p.failed[u.String()]
		if !ok {
			return u
		}
		if p.now().Sub(failedAt) >= p.cooldown {
			delete(p.failed, u.String())
			return u
		}
		if p.index == start {
			return u
		}
	}
}

// MarkFailed sidelines proxy for the cooldown period.
func (p *Pool) MarkFailed(proxy *url.URL) {
	if proxy == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed[proxy.String()] = p.now()
	log.Debug().Str("proxy", proxy.Redacted()).Msg("Proxy marked as failed")
}

// MarkHealthy clears the failure status of a proxy
func (p *Pool) MarkHealthy(proxy *url.URL) {
	if proxy == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.failed, proxy.String())
}
