// internal/cache/cache.go
package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Cache holds fetched page sources keyed by URL so that a URL listed twice
// in one run is fetched once.
type Cache interface {
	// Get returns the cached page source for key.
	Get(key string) (string, bool)

	// Set stores a page source. A non-positive ttl uses the cache default.
	Set(key string, page string, ttl time.Duration)

	// Delete removes key. Missing keys are ignored.
	Delete(key string)

	// Close stops background maintenance.
	Close()
}

type entry struct {
	key       string
	page      string
	expiresAt time.Time
}

// MemoryCache is a size-bounded LRU cache of page sources.
type MemoryCache struct {
	store   map[string]*list.Element
	lru     *list.List
	mu      sync.Mutex
	maxSize int64
	size    int64
	ttl     time.Duration
	cancel  context.CancelFunc
	hits    uint64
	misses  uint64
}

// DefaultTTL keeps pages for the length of a typical batch.
const DefaultTTL = 30 * time.Minute

// NewMemoryCache creates a cache bounded to maxSizeBytes of page source.
func NewMemoryCache(maxSizeBytes int64) *MemoryCache {
	if maxSizeBytes <= 0 {
		maxSizeBytes = 64 * 1024 * 1024
	}

	ctx, cancel := context.WithCancel(context.Background())
	mc := &MemoryCache{
		store:   make(map[string]*list.Element),
		lru:     list.New(),
		maxSize: maxSizeBytes,
		ttl:     DefaultTTL,
		cancel:  cancel,
	}

	go mc.cleanupExpired(ctx)

	return mc
}

// Get retrieves a cached page and marks it most recently used.
func (mc *MemoryCache) Get(key string) (string, bool) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	el, ok := mc.store[key]
	if !ok {
		mc.misses++
		return "", false
	}

	e := el.Value.(*entry)
	if time.Now().After(e.expiresAt) {
		mc.removeElement(el)
		mc.misses++
		return "", false
	}

	mc.lru.MoveToFront(el)
	mc.hits++
	log.Debug().Str("url", key).Msg("Cache hit")
	return e.page, true
}

// Set stores page under key, evicting least recently used pages to stay
// within the size bound. Pages larger than the bound are not cached.
func (mc *MemoryCache) Set(key string, page string, ttl time.Duration) {
	if ttl <= 0 {
		ttl = mc.ttl
	}
	size := int64(len(page))

	mc.mu.Lock()
	defer mc.mu.Unlock()

	if el, ok := mc.store[key]; ok {
		mc.removeElement(el)
	}
	if size > mc.maxSize {
		log.Debug().Str("url", key).Int64("size_bytes", size).Msg("Page too large to cache")
		return
	}

	for mc.size+size > mc.maxSize && mc.lru.Len() > 0 {
		back := mc.lru.Back()
		log.Debug().Str("url", back.Value.(*entry).key).Msg("Evicted from cache (LRU)")
		mc.removeElement(back)
	}

	el := mc.lru.PushFront(&entry{key: key, page: page, expiresAt: time.Now().Add(ttl)})
	mc.store[key] = el
	mc.size += size
}

// Delete removes a cached page
func (mc *MemoryCache) Delete(key string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if el, ok := mc.store[key]; ok {
		mc.removeElement(el)
	}
}

// Close stops the background cleanup goroutine
func (mc *MemoryCache) Close() {
	mc.cancel()
}

// Len returns the number of cached pages.
func (mc *MemoryCache) Len() int {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.lru.Len()
}

// Stats returns hit/miss counters and the current footprint.
func (mc *MemoryCache) Stats() map[string]interface{} {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	hitRate := 0.0
	if total := mc.hits + mc.misses; total > 0 {
		hitRate = float64(mc.hits) / float64(total) * 100
	}

	return map[string]interface{}{
		"entries":    mc.lru.Len(),
		"size_bytes": mc.size,
		"max_size":   mc.maxSize,
		"hits":       mc.hits,
		"misses":     mc.misses,
		"hit_rate":   hitRate,
	}
}

// removeElement must be called with the lock held.
func (mc *MemoryCache) removeElement(el *list.Element) {
	e := el.Value.(*entry)
	mc.lru.Remove(el)
	delete(mc.store, e.key)
	mc.size -= int64(len(e.page))
}

func (mc *MemoryCache) cleanupExpired(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			mc.mu.Lock()
			now := time.Now()
			var next *list.Element
			for el := mc.lru.Front(); el != nil; el = next {
				next = el.Next()
				if now.After(el.Value.(*entry).expiresAt) {
					mc.removeElement(el)
				}
			}
			mc.mu.Unlock()
		case <-ctx.Done():
			return
		}
	}
}
