// Package extract provides the building blocks shared by every site
// extractor: a parsed document, first-non-empty cascades and the individual
// strategies (structured data, meta tags, selectors, script objects and
// ingredient scans) that cascades are built from.
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
)

// Document is a fetched page ready for extraction.
type Document struct {
	// URL is the address the document was fetched from.
	URL string
	// Raw is the unparsed HTML as returned by the fetcher.
	Raw string
	// Doc is the parsed tree.
	Doc *goquery.Document
}

// NewDocument parses raw HTML. It never fails: unparseable input yields an
// empty tree so cascades simply find nothing.
func NewDocument(raw, sourceURL string) *Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		log.Debug().Err(err).Str("url", sourceURL).Msg("Failed to parse document, using empty tree")
		doc = goquery.NewDocumentFromNode(&html.Node{Type: html.DocumentNode})
	}
	return &Document{URL: sourceURL, Raw: raw, Doc: doc}
}

// Root returns the document node.
func (d *Document) Root() *html.Node {
	if d == nil || d.Doc == nil || len(d.Doc.Nodes) == 0 {
		return nil
	}
	return d.Doc.Nodes[0]
}

// Title returns the trimmed <title> text.
func (d *Document) Title() string {
	return strings.TrimSpace(d.Doc.Find("title").First().Text())
}
