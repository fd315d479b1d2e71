package sites

import (
	"github.com/kungul/scraper/internal/extract"
)

// field reads a scalar from an already decoded object. A nil object simply
// yields nothing.
func field(obj extract.Object, path ...string) extract.Strategy {
	return func(*extract.Document) string {
		return extract.StringAt(obj, path...)
	}
}

// anyField tries each top-level key of obj in order.
func anyField(obj extract.Object, keys ...string) extract.Strategy {
	return func(*extract.Document) string {
		for _, k := range keys {
			if v := extract.StringAt(obj, k); v != "" {
				return v
			}
		}
		return ""
	}
}

// ldImage reads the schema.org image of obj.
func ldImage(obj extract.Object) extract.Strategy {
	return func(*extract.Document) string {
		return extract.LDImage(obj)
	}
}

// ldCrumb reads the deepest BreadcrumbList entry.
func ldCrumb(list extract.Object) extract.Strategy {
	return func(*extract.Document) string {
		return extract.BreadcrumbLeaf(list)
	}
}

// firstItem returns the first non-empty scalar of a list-valued property.
func firstItem(obj extract.Object, key string) extract.Strategy {
	return func(*extract.Document) string {
		for _, item := range extract.ListAt(obj, key) {
			if s := extract.PlainText(extract.Scalar(item)); s != "" {
				return s
			}
		}
		return ""
	}
}

// inciScan runs the raw-text ingredient scan.
func inciScan(doc *extract.Document) []string {
	return extract.INCIScan(doc.Raw)
}

// split wraps a text strategy as a list strategy splitting INCI text.
func split(s extract.Strategy) extract.ListStrategy {
	return func(doc *extract.Document) []string {
		return extract.SplitINCI(s(doc))
	}
}

// structured bundles the JSON-LD entities most extractors consult.
type structured struct {
	product     extract.Object
	breadcrumbs extract.Object
}

func readStructured(doc *extract.Document) structured {
	entries := extract.JSONLD(doc)
	return structured{
		product:     extract.FindType(entries, "Product"),
		breadcrumbs: extract.FindType(entries, "BreadcrumbList"),
	}
}
