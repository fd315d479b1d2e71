// Package fetch is the HTTP document source: an explicitly constructed
// client with browser-like headers, per-host pacing, optional proxy
// rotation and an injected retry policy.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kungul/scraper/internal/proxy"
	"github.com/kungul/scraper/internal/ratelimit"
	"github.com/kungul/scraper/internal/retry"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultUserAgent matches a current desktop Chrome.
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"
	// DefaultTimeout bounds one attempt, not the whole retry sequence.
	DefaultTimeout = 20 * time.Second

	maxBodyBytes = 16 << 20
	snippetBytes = 256
)

// DefaultHeaders are sent with every request unless overridden.
var DefaultHeaders = map[string]string{
	"Accept":             "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
	"Accept-Language":    "en-US,en;q=0.9,de;q=0.8",
	"sec-ch-ua":          `"Chromium";v="121", "Not A(Brand";v="99"`,
	"sec-ch-ua-mobile":   "?0",
	"sec-ch-ua-platform": "macOS",
}

// Request describes one call. Only URL is required; Method defaults to GET.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Query   url.Values
	// JSON, when set, is encoded as the request body.
	JSON any
}

// Response is a successful (2xx) reply with its body fully read.
type Response struct {
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Text returns the body as a string.
func (r *Response) Text() string { return string(r.Body) }

// Options configures a Client.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	// Headers are added to DefaultHeaders for every request.
	Headers map[string]string
	Policy  retry.Policy
	Limiter ratelimit.RateLimiter
	Proxies *proxy.Pool
	// Transport overrides the default transport, mainly for tests.
	Transport http.RoundTripper
}

// Client performs requests. It is safe for concurrent use.
type Client struct {
	http      *http.Client
	userAgent string
	headers   map[string]string
	policy    retry.Policy
	limiter   ratelimit.RateLimiter
	proxies   *proxy.Pool
}

type proxyKey struct{}

// New builds a client from opts, filling unset fields with defaults.
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Policy.MaxAttempts == 0 {
		opts.Policy = retry.DefaultPolicy()
	}

	transport := opts.Transport
	if transport == nil {
		transport = &http.Transport{
			Proxy:               proxyFromContext,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		}
	}

	headers := make(map[string]string, len(DefaultHeaders)+len(opts.Headers))
	for k, v := range DefaultHeaders {
		headers[k] = v
	}
	for k, v := range opts.Headers {
		headers[k] = v
	}

	return &Client{
		http:      &http.Client{Transport: transport, Timeout: opts.Timeout},
		userAgent: opts.UserAgent,
		headers:   headers,
		policy:    opts.Policy,
		limiter:   opts.Limiter,
		proxies:   opts.Proxies,
	}
}

// proxyFromContext routes a request through the proxy chosen for its
// attempt, or directly when none was chosen.
func proxyFromContext(req *http.Request) (*url.URL, error) {
	if u, ok := req.Context().Value(proxyKey{}).(*url.URL); ok && u != nil {
		return u, nil
	}
	return nil, nil
}

// Get fetches rawURL and returns the body as text.
func (c *Client) Get(ctx context.Context, rawURL string) (string, error) {
	resp, err := c.Do(ctx, Request{URL: rawURL})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// Do sends req, retrying transient failures per the client's policy. A
// non-2xx status that is not retried, or still failing once the budget is
// spent, is returned as a *StatusError.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	if strings.TrimSpace(req.URL) == "" {
		return nil, ErrEmptyURL
	}
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}
	if !validMethod(method) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidMethod, req.Method)
	}

	target, err := buildURL(req.URL, req.Query)
	if err != nil {
		return nil, err
	}

	var body []byte
	if req.JSON != nil {
		if body, err = json.Marshal(req.JSON); err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
	}

	policy := c.policy
	if method != http.MethodGet && method != http.MethodPost {
		policy.MaxAttempts = 1
	}

	var resp *Response
	err = retry.Do(ctx, policy, func(attempt int) error {
		r, err := c.attempt(ctx, method, target, req.Headers, body, attempt)
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) attempt(ctx context.Context, method, target string, headers map[string]string, body []byte, attempt int) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, target); err != nil {
			return nil, err
		}
	}

	var via *url.URL
	if c.proxies != nil {
		via = c.proxies.Next()
	}
	reqCtx := context.WithValue(ctx, proxyKey{}, via)

	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(reqCtx, method, target, rdr)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("User-Agent", c.userAgent)
	for k, v := range c.headers {
		httpReq.Header.Set(k, v)
	}
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	log.Debug().
		Str("method", method).
		Str("url", target).
		Int("attempt", attempt+1).
		Msg("Sending request")

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		if via != nil && ctx.Err() == nil {
			c.proxies.MarkFailed(via)
		}
		return nil, fmt.Errorf("failed to fetch %s: %w", target, err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read body of %s: %w", target, err)
	}
	if via != nil {
		c.proxies.MarkHealthy(via)
	}

	log.Debug().
		Str("url", target).
		Int("status", httpResp.StatusCode).
		Int64("response_time_ms", time.Since(start).Milliseconds()).
		Int("bytes", len(data)).
		Msg("Fetch completed")

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, &StatusError{
			URL:        target,
			StatusCode: httpResp.StatusCode,
			Status:     httpResp.Status,
			Snippet:    snippet(data),
			retryAfter: parseRetryAfter(httpResp.Header.Get("Retry-After"), time.Now()),
		}
	}

	return &Response{
		URL:        target,
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       data,
	}, nil
}

func buildURL(raw string, query url.Values) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid URL %q: %w", raw, errors.New("missing scheme or host"))
	}
	if len(query) > 0 {
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func validMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodPost, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions:
		return true
	}
	return false
}

func snippet(b []byte) string {
	if len(b) > snippetBytes {
		b = b[:snippetBytes]
	}
	return strings.ToValidUTF8(string(b), "")
}
