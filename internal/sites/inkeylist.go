package sites

import (
	"github.com/kungul/scraper/internal/extract"
	"github.com/kungul/scraper/internal/product"
	urlutil "github.com/kungul/scraper/internal/utils/url"
)

const (
	inkeyOrigin = "https://uk.theinkeylist.com"
	inkeyBrand  = "The INKEY List"
	swymMarker  = "window.SwymProductInfo.product"
)

// InkeyList reads the Shopify product object the storefront hands to its
// wishlist widget, falling back to JSON-LD and social meta tags.
type InkeyList struct{}

// Extract implements Extractor.
func (InkeyList) Extract(doc *extract.Document) product.Record {
	swym, _ := extract.AssignedObject(doc, swymMarker)
	var variant extract.Object
	if vs := extract.ListAt(swym, "variants"); len(vs) > 0 {
		variant, _ = vs[0].(extract.Object)
	}
	ld := readStructured(doc)

	image := extract.First(doc,
		field(swym, "featured_image"),
		firstItem(swym, "images"),
		ldImage(ld.product),
		extract.Meta("og:image"),
	)

	return product.Record{
		Barcode: extract.First(doc,
			field(swym, "barcode"),
			field(variant, "barcode"),
			anyField(ld.product, "gtin13", "gtin", "sku"),
		),
		Name: extract.First(doc,
			field(swym, "title"),
			field(swym, "name"),
			field(ld.product, "name"),
			extract.Meta("og:title"),
			extract.Text("h1"),
		),
		Description: extract.First(doc,
			extract.Map(extract.Meta("og:description"), extract.PlainText),
			extract.Map(extract.Meta("description"), extract.PlainText),
			field(swym, "description"),
			field(ld.product, "description"),
		),
		Ingredients: extract.FirstList(doc, inciScan),
		Image:       urlutil.AbsoluteImage(inkeyOrigin, image),
		Brand: extract.First(doc,
			field(swym, "brand"),
			field(swym, "vendor"),
			field(ld.product, "brand", "name"),
			extract.Const(inkeyBrand),
		),
		Category: extract.First(doc,
			firstItem(swym, "tags"),
			field(swym, "type"),
			ldCrumb(ld.breadcrumbs),
		),
	}
}
