package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/kungul/scraper/internal/product"
	"golang.org/x/net/html"
)

// Meta returns the content of the first <meta> tag whose property or name
// matches one of names, checked in order.
func Meta(names ...string) Strategy {
	return func(doc *Document) string {
		for _, name := range names {
			for _, attr := range []string{"property", "name"} {
				sel := doc.Doc.Find(fmt.Sprintf("meta[%s=%q]", attr, name))
				if content := strings.TrimSpace(sel.First().AttrOr("content", "")); content != "" {
					return content
				}
			}
		}
		return ""
	}
}

// Text returns the text of the first element matching selector.
func Text(selector string) Strategy {
	return func(doc *Document) string {
		sel := doc.Doc.Find(selector)
		if sel.Length() == 0 {
			return ""
		}
		return product.CollapseSpaces(sel.First().Text())
	}
}

// Src returns the src (or lazy-loading data-src) of the first element
// matching selector.
func Src(selector string) Strategy {
	return Attr(selector, "src", "data-src")
}

// Attr returns the first non-empty attribute among attrs on the first
// element matching selector.
func Attr(selector string, attrs ...string) Strategy {
	return func(doc *Document) string {
		sel := doc.Doc.Find(selector).First()
		if sel.Length() == 0 {
			return ""
		}
		for _, a := range attrs {
			if v := strings.TrimSpace(sel.AttrOr(a, "")); v != "" {
				return v
			}
		}
		return ""
	}
}

// Nth returns the text of the n-th (zero based) element matching selector.
// Negative n counts from the end.
func Nth(selector string, n int) Strategy {
	return func(doc *Document) string {
		sel := doc.Doc.Find(selector)
		i := n
		if i < 0 {
			i += sel.Length()
		}
		if i < 0 || i >= sel.Length() {
			return ""
		}
		return product.CollapseSpaces(sel.Eq(i).Text())
	}
}

// PlainText decodes character references and drops markup from a value
// taken from structured data.
func PlainText(s string) string {
	s = html.UnescapeString(s)
	if !strings.Contains(s, "<") {
		return product.CollapseSpaces(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return product.CollapseSpaces(product.StripTags(s))
	}
	return NodeText(doc.Nodes[0])
}

// NodeText joins the trimmed text nodes below n with single spaces,
// skipping script and style bodies.
func NodeText(n *html.Node) string {
	if n == nil {
		return ""
	}
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return product.CollapseSpaces(strings.Join(parts, " "))
}
