package sites

import (
	"context"
	"time"

	"github.com/kungul/scraper/internal/extract"
	"github.com/kungul/scraper/internal/product"
	"github.com/kungul/scraper/internal/retry"
	"github.com/rs/zerolog/log"
)

// Scraper fetches one product page and runs a site's extractor over it.
type Scraper struct {
	Extractor Extractor
	Source    Source
	// ChallengeBackoff is waited before the single refetch of a challenge page.
	ChallengeBackoff time.Duration
}

// Scrape returns the normalized record for url. Fetch errors are returned
// as is. A page that is still a challenge after one refetch yields an
// empty record and a nil error.
func (s *Scraper) Scrape(ctx context.Context, url string) (product.Record, error) {
	doc, err := s.load(ctx, url)
	if err != nil {
		return product.Record{}, err
	}

	if g, ok := s.Extractor.(Guard); ok && g.Challenged(doc) {
		log.Warn().
			Str("url", url).
			Dur("backoff", s.ChallengeBackoff).
			Msg("Challenge page detected, retrying once")

		if err := retry.Sleep(ctx, s.ChallengeBackoff); err != nil {
			return product.Record{}, err
		}
		if doc, err = s.load(fresh(ctx), url); err != nil {
			return product.Record{}, err
		}
		if g.Challenged(doc) {
			log.Warn().Str("url", url).Msg("Still served a challenge page, giving up on this product")
			return product.Normalize(product.Record{}), nil
		}
	}

	return product.Normalize(extractSafely(s.Extractor, doc)), nil
}

func (s *Scraper) load(ctx context.Context, url string) (*extract.Document, error) {
	raw, err := s.Source(ctx, url)
	if err != nil {
		return nil, err
	}
	return extract.NewDocument(raw, url), nil
}

// extractSafely keeps a panicking extractor from aborting the batch.
func extractSafely(ext Extractor, doc *extract.Document) (rec product.Record) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("url", doc.URL).Msg("Extractor panicked, returning empty record")
			rec = product.Record{}
		}
	}()
	return ext.Extract(doc)
}
