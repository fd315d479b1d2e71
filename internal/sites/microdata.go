package sites

import (
	"github.com/kungul/scraper/internal/extract"
	"github.com/kungul/scraper/internal/product"
	urlutil "github.com/kungul/scraper/internal/utils/url"
)

// XPath queries over schema.org microdata and Open Graph tags.
var (
	xpRetailerID  = extract.XPath(`//meta[@property="product:retailer_item_id"]/@content`)
	xpGTINMeta    = extract.XPath(`//meta[@property="gtin13"]/@content`)
	xpGTINProp    = extract.XPath(`//*[@itemprop="gtin13"]/@content`)
	xpOGTitle     = extract.XPath(`//meta[@property="og:title"]/@content`)
	xpItemName    = extract.XPath(`//h1[@itemprop="name"]/text()`)
	xpOGDesc      = extract.XPath(`//meta[@property="og:description"]/@content`)
	xpItemDesc    = extract.XPathJoined(`//*[@itemprop="description"]//text()`)
	xpOGImage     = extract.XPath(`//meta[@property="og:image"]/@content`)
	xpItemImage   = extract.XPath(`//img[@itemprop="image"]/@src`)
	xpBrandAttr   = extract.XPath(`//*[@itemprop="brand"]/@content`)
	xpBrandText   = extract.XPath(`//*[@itemprop="brand"]`)
	xpIngredients = extract.XPathJoined(`//*[contains(translate(text(), "INGREDIENTS", "ingredients"), "ingredients")]/following-sibling::*[1]//text()`)
)

// Microdata extracts any product page that exposes schema.org JSON-LD,
// itemprop microdata or Open Graph tags.
type Microdata struct {
	// Origin absolutizes relative images; the page's own origin is used
	// when empty.
	Origin string
	// Brand is used when the page names no brand.
	Brand string
}

// Extract implements Extractor.
func (m Microdata) Extract(doc *extract.Document) product.Record {
	ld := readStructured(doc)

	origin := m.Origin
	if origin == "" {
		origin = urlutil.Origin(doc.URL)
	}
	image := extract.First(doc,
		ldImage(ld.product),
		xpOGImage,
		xpItemImage,
	)

	return product.Record{
		Barcode: extract.First(doc,
			anyField(ld.product, "gtin13", "gtin", "sku"),
			xpRetailerID,
			xpGTINMeta,
			xpGTINProp,
		),
		Name: extract.First(doc,
			field(ld.product, "name"),
			xpOGTitle,
			xpItemName,
			extract.Text("h1"),
		),
		Description: extract.First(doc,
			field(ld.product, "description"),
			xpOGDesc,
			xpItemDesc,
		),
		Ingredients: extract.FirstList(doc, split(xpIngredients), inciScan),
		Image:       urlutil.AbsoluteImage(origin, image),
		Brand: extract.First(doc,
			field(ld.product, "brand", "name"),
			field(ld.product, "brand"),
			xpBrandAttr,
			xpBrandText,
			extract.Text(`[data-testid="brand-name"]`),
			extract.Const(m.Brand),
		),
		Category: extract.First(doc,
			ldCrumb(ld.breadcrumbs),
			field(ld.product, "category"),
			extract.Nth("nav[aria-label*='read'] li", -1),
		),
	}
}
