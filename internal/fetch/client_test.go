package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kungul/scraper/internal/retry"
)

func fastPolicy() retry.Policy {
	p := retry.DefaultPolicy()
	p.InitialBackoff = time.Millisecond
	p.MaxBackoff = 5 * time.Millisecond
	return p
}

func TestClient_GetSendsBrowserHeaders(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != DefaultUserAgent {
			t.Errorf("unexpected user agent %q", ua)
		}
		if r.Header.Get("sec-ch-ua-platform") != "macOS" {
			t.Errorf("missing sec-ch-ua-platform header")
		}
		if r.Header.Get("X-Extra") != "1" {
			t.Errorf("missing configured header")
		}
		w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer ts.Close()

	c := New(Options{Policy: fastPolicy(), Headers: map[string]string{"X-Extra": "1"}})
	body, err := c.Get(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body != "<html><body>ok</body></html>" {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("done"))
	}))
	defer ts.Close()

	c := New(Options{Policy: fastPolicy()})
	body, err := c.Get(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body != "done" || atomic.LoadInt32(&calls) != 3 {
		t.Fatalf("expected success on third call, got body=%q calls=%d", body, calls)
	}
}

func TestClient_NotFoundIsStatusError(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.NotFound(w, r)
	}))
	defer ts.Close()

	c := New(Options{Policy: fastPolicy()})
	_, err := c.Get(context.Background(), ts.URL+"/missing")

	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StatusError, got %T: %v", err, err)
	}
	if se.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", se.StatusCode)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("404 must not be retried, got %d calls", calls)
	}
}

func TestClient_ExhaustedRetriesKeepStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	c := New(Options{Policy: fastPolicy()})
	_, err := c.Get(context.Background(), ts.URL)
	if !IsStatus(err, http.StatusTooManyRequests) {
		t.Fatalf("expected 429 status error, got %v", err)
	}
}

func TestClient_DoPostsJSONWithQuery(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Query().Get("page") != "2" {
			t.Errorf("expected page=2, got %q", r.URL.RawQuery)
		}
		var in map[string]string
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in["q"] != "serum" {
			t.Errorf("unexpected body %v (%v)", in, err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer ts.Close()

	c := New(Options{Policy: fastPolicy()})
	resp, err := c.Do(context.Background(), Request{
		Method: "post",
		URL:    ts.URL,
		Query:  url.Values{"page": {"2"}},
		JSON:   map[string]string{"q": "serum"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text() != `{"ok":true}` {
		t.Fatalf("unexpected response %q", resp.Text())
	}
}

func TestClient_RejectsBadRequests(t *testing.T) {
	c := New(Options{})
	if _, err := c.Get(context.Background(), "  "); !errors.Is(err, ErrEmptyURL) {
		t.Fatalf("expected ErrEmptyURL, got %v", err)
	}
	if _, err := c.Do(context.Background(), Request{Method: "BREW", URL: "http://x"}); !errors.Is(err, ErrInvalidMethod) {
		t.Fatalf("expected ErrInvalidMethod, got %v", err)
	}
	if _, err := c.Get(context.Background(), "/relative"); err == nil {
		t.Fatal("expected error for relative URL")
	}
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	if d := parseRetryAfter("3", now); d != 3*time.Second {
		t.Errorf("seconds: got %v", d)
	}
	if d := parseRetryAfter(now.Add(time.Minute).Format(http.TimeFormat), now); d != time.Minute {
		t.Errorf("date: got %v", d)
	}
	if d := parseRetryAfter("soon", now); d != 0 {
		t.Errorf("garbage: got %v", d)
	}
}

func TestClient_RetriesDroppedConnection(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			hj, ok := w.(http.Hijacker)
			if !ok {
				t.Error("server does not support hijacking")
				return
			}
			conn, _, err := hj.Hijack()
			if err != nil {
				t.Errorf("hijack: %v", err)
				return
			}
			conn.Close()
			return
		}
		w.Write([]byte("recovered"))
	}))
	defer ts.Close()

	c := New(Options{Policy: fastPolicy()})
	body, err := c.Get(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("expected retry after dropped connection, got %v", err)
	}
	if body != "recovered" || atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("got body=%q calls=%d", body, calls)
	}
}
