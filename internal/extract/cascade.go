package extract

import (
	"strings"

	"github.com/rs/zerolog/log"
)

// Strategy locates one string field in a document. An empty result means
// "not found here, try the next strategy".
type Strategy func(*Document) string

// ListStrategy locates a list field in a document.
type ListStrategy func(*Document) []string

// First returns the first non-blank value produced by strategies, in order.
// Later strategies are not evaluated once one succeeds.
func First(doc *Document, strategies ...Strategy) string {
	for i, s := range strategies {
		if v := strings.TrimSpace(run(doc, i, s)); v != "" {
			return v
		}
	}
	return ""
}

// FirstList returns the first result holding at least one non-blank item.
func FirstList(doc *Document, strategies ...ListStrategy) []string {
	for i, s := range strategies {
		items := runList(doc, i, s)
		for _, item := range items {
			if strings.TrimSpace(item) != "" {
				return items
			}
		}
	}
	return nil
}

// Const always yields v. It is used for site defaults at the end of a cascade.
func Const(v string) Strategy {
	return func(*Document) string { return v }
}

// Map post-processes the result of s when it is non-empty.
func Map(s Strategy, fn func(string) string) Strategy {
	return func(doc *Document) string {
		v := s(doc)
		if strings.TrimSpace(v) == "" {
			return ""
		}
		return fn(v)
	}
}

// run isolates a strategy so that a panic on adversarial markup only
// disqualifies that strategy.
func run(doc *Document, idx int, s Strategy) (v string) {
	defer func() {
		if r := recover(); r != nil {
			log.Debug().Interface("panic", r).Int("strategy", idx).Str("url", doc.URL).Msg("Strategy panicked, skipping")
			v = ""
		}
	}()
	return s(doc)
}

func runList(doc *Document, idx int, s ListStrategy) (v []string) {
	defer func() {
		if r := recover(); r != nil {
			log.Debug().Interface("panic", r).Int("strategy", idx).Str("url", doc.URL).Msg("List strategy panicked, skipping")
			v = nil
		}
	}()
	return s(doc)
}
