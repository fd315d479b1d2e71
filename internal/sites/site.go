// Package sites holds one extractor per supported storefront and the
// registry that maps a site slug to it.
package sites

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/kungul/scraper/internal/extract"
	"github.com/kungul/scraper/internal/product"
)

// ErrUnknownSite is returned by Lookup for slugs that are not registered.
var ErrUnknownSite = errors.New("unknown site")

// Extractor turns a fetched product page into a record. Implementations
// never fail: fields they cannot locate are left empty.
type Extractor interface {
	Extract(doc *extract.Document) product.Record
}

// Guard is implemented by extractors for storefronts that may serve an
// anti-automation interstitial instead of the product page.
type Guard interface {
	Challenged(doc *extract.Document) bool
}

// Source returns the page source for a URL.
type Source func(ctx context.Context, url string) (string, error)

// Site describes a supported storefront.
type Site struct {
	Slug string
	Name string
	// Origin is used to absolutize relative image references.
	Origin string
	// Render selects the browser source instead of plain HTTP.
	Render bool
	// WaitSelector marks a fully rendered product page.
	WaitSelector string
	// Delay is the politeness pause after each product.
	Delay time.Duration
	// ChallengeBackoff is the pause before refetching a challenge page.
	ChallengeBackoff time.Duration
	New              func() Extractor
}

const (
	defaultDelay            = time.Second
	defaultChallengeBackoff = 5 * time.Second
)

var registry = map[string]Site{}

func register(s Site) {
	if s.Delay == 0 {
		s.Delay = defaultDelay
	}
	if s.ChallengeBackoff == 0 {
		s.ChallengeBackoff = defaultChallengeBackoff
	}
	registry[s.Slug] = s
}

func init() {
	register(Site{
		Slug:   "inkeylist",
		Name:   "The INKEY List",
		Origin: inkeyOrigin,
		Delay:  2500 * time.Millisecond,
		New:    func() Extractor { return InkeyList{} },
	})
	register(Site{
		Slug:         "notino",
		Name:         "Notino",
		Origin:       notinoOrigin,
		Render:       true,
		WaitSelector: "h1[data-testid='pd-title'], h1",
		Delay:        2 * time.Second,
		New:          func() Extractor { return Notino{} },
	})
	register(Site{
		Slug:   "sisley",
		Name:   "Sisley Paris",
		Origin: "https://www.sisley-paris.com",
		New:    func() Extractor { return Microdata{Origin: "https://www.sisley-paris.com", Brand: "Sisley"} },
	})
	register(Site{
		Slug:   "versed",
		Name:   "Versed",
		Origin: "https://versedskin.com",
		New:    func() Extractor { return Microdata{Origin: "https://versedskin.com", Brand: "Versed"} },
	})
	register(Site{
		Slug: "generic",
		Name: "Any schema.org product page",
		New:  func() Extractor { return Microdata{} },
	})
}

// Lookup returns the site registered under slug.
func Lookup(slug string) (Site, error) {
	s, ok := registry[slug]
	if !ok {
		return Site{}, fmt.Errorf("%w %q (known: %v)", ErrUnknownSite, slug, Slugs())
	}
	return s, nil
}

// Slugs lists registered slugs in lexical order.
func Slugs() []string {
	out := make([]string, 0, len(registry))
	for slug := range registry {
		out = append(out, slug)
	}
	sort.Strings(out)
	return out
}

// All returns every registered site ordered by slug.
func All() []Site {
	out := make([]Site, 0, len(registry))
	for _, slug := range Slugs() {
		out = append(out, registry[slug])
	}
	return out
}
