package proxy

import (
	"net/url"
	"testing"
	"time"
)

func hosts(t *testing.T, p *Pool, n int) []string {
	t.Helper()
	var out []string
	for i := 0; i < n; i++ {
		out = append(out, p.Next().Host)
	}
	return out
}

func TestPool_Rotation(t *testing.T) {
	pool, err := NewPool([]string{"http://p1:8080", "http://p2:8080", "http://p3:8080"})
	if err != nil {
		t.Fatal(err)
	}

	got := hosts(t, pool, 4)
	want := []string{"p1:8080", "p2:8080", "p3:8080", "p1:8080"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("rotation %d: expected %s, got %s", i, want[i], got[i])
		}
	}

	// Current index is at p2
	p2, _ := url.Parse("http://p2:8080")
	pool.MarkFailed(p2)
	got = hosts(t, pool, 3)
	want = []string{"p3:8080", "p1:8080", "p3:8080"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("after failure %d: expected %s, got %s", i, want[i], got[i])
		}
	}

	pool.MarkHealthy(p2)
	got = hosts(t, pool, 2)
	if got[0] != "p1:8080" || got[1] != "p2:8080" {
		t.Fatalf("expected p2 back in rotation, got %v", got)
	}
}

func TestPool_CooldownExpires(t *testing.T) {
	pool, _ := NewPool([]string{"http://p1:1", "http://p2:1"})
	now := time.Unix(1000, 0)
	pool.now = func() time.Time { return now }

	pool.MarkFailed(pool.Next()) // p1
	if h := pool.Next().Host; h != "p2:1" {
		t.Fatalf("expected p2, got %s", h)
	}
	if h := pool.Next().Host; h != "p2:1" {
		t.Fatalf("expected p1 to be skipped, got %s", h)
	}

	now = now.Add(DefaultCooldown)
	if h := pool.Next().Host; h != "p1:1" {
		t.Fatalf("expected p1 after cooldown, got %s", h)
	}
}

func TestPool_Empty(t *testing.T) {
	pool, err := NewPool(nil)
	if err != nil {
		t.Fatal(err)
	}
	if pool.Next() != nil {
		t.Fatal("empty pool should route directly")
	}
	if _, err := NewPool([]string{"::"}); err == nil {
		t.Fatal("expected invalid proxy error")
	}
}
