package sites

import (
	"strings"

	"github.com/kungul/scraper/internal/extract"
	"github.com/kungul/scraper/internal/product"
	urlutil "github.com/kungul/scraper/internal/utils/url"
)

const notinoOrigin = "https://www.notino.de"

// Markers of the landing or error page served instead of a product.
const (
	notinoLandingTitle = "Parfum & Kosmetik online shop"
	notinoErrorPhrase  = "nichts beschädigt"
)

var ingredientHeadings = []string{"ingredients", "inhaltsstoffe", "zutaten"}

// Notino extracts rendered product pages of the Notino storefront.
type Notino struct{}

// Challenged reports whether doc is the generic landing or error page.
func (Notino) Challenged(doc *extract.Document) bool {
	return strings.Contains(doc.Title(), notinoLandingTitle) || strings.Contains(doc.Raw, notinoErrorPhrase)
}

// Extract implements Extractor.
func (Notino) Extract(doc *extract.Document) product.Record {
	if strings.Contains(extract.Text("h1")(doc), notinoErrorPhrase) {
		return product.Record{}
	}

	ld := readStructured(doc)
	image := extract.First(doc,
		ldImage(ld.product),
		extract.Meta("og:image", "twitter:image"),
		extract.Src("[itemprop='image']"),
		extract.Src("[data-testid*='image']"),
		extract.Src("[data-testid='product-image']"),
	)

	return product.Record{
		Barcode: extract.First(doc,
			anyField(ld.product, "gtin13", "gtin", "sku"),
			apolloEAN,
			extract.Meta("gtin13", "product:retailer_item_id"),
		),
		Name: extract.First(doc,
			field(ld.product, "name"),
			extract.Meta("og:title", "twitter:title"),
			extract.Text("h1[data-testid*='title']"),
			extract.Text("h1"),
			extract.Text("[data-testid='product-name']"),
		),
		Description: extract.First(doc,
			field(ld.product, "description"),
			extract.Meta("og:description", "description"),
			extract.Text("[itemprop='description']"),
			extract.Text("[data-testid='product-description']"),
		),
		Ingredients: extract.FirstList(doc,
			split(func(d *extract.Document) string { return extract.SectionAfterHeading(d, ingredientHeadings...) }),
			inciScan,
		),
		Image: urlutil.AbsoluteImage(notinoOrigin, image),
		Brand: extract.First(doc,
			field(ld.product, "brand", "name"),
			field(ld.product, "brand"),
			extract.Text("[itemprop='brand']"),
			extract.Text("[data-testid='brand-name']"),
			extract.Text(".pd-brand"),
			extract.Nth("nav a, .breadcrumb a", 1),
		),
		Category: extract.First(doc,
			ldCrumb(ld.breadcrumbs),
			field(ld.product, "category"),
			extract.Nth("nav[aria-label*='read'] a, .breadcrumb a", -1),
		),
	}
}

// apolloEAN reads the first EAN found in the Apollo client cache, in
// document order.
func apolloEAN(doc *extract.Document) string {
	for _, entry := range extract.ScriptEntries(doc, "script#__APOLLO_STATE__") {
		for _, key := range []string{"eanCode", "gtin13"} {
			if v := extract.Scalar(entry[key]); strings.TrimSpace(v) != "" {
				return v
			}
		}
	}
	return ""
}
