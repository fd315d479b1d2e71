package sites

import (
	"context"

	"github.com/kungul/scraper/internal/cache"
)

type freshKey struct{}

// fresh marks ctx so cached sources fetch again instead of replaying.
func fresh(ctx context.Context) context.Context {
	return context.WithValue(ctx, freshKey{}, true)
}

func isFresh(ctx context.Context) bool {
	v, _ := ctx.Value(freshKey{}).(bool)
	return v
}

// Cached serves repeated URLs from c. Refetches of challenge pages bypass
// the cache and replace the stored copy.
func Cached(src Source, c cache.Cache) Source {
	return func(ctx context.Context, url string) (string, error) {
		if !isFresh(ctx) {
			if page, ok := c.Get(url); ok {
				return page, nil
			}
		}
		page, err := src(ctx, url)
		if err != nil {
			return "", err
		}
		c.Set(url, page, 0)
		return page, nil
	}
}
