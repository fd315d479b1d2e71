package extract

import (
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"github.com/kungul/scraper/internal/product"
	"golang.org/x/net/html"
)

// XPath returns the text of the first node selected by expr. Attribute
// steps (".../@content") yield the attribute value. expr is compiled once;
// an invalid expression panics at construction.
func XPath(expr string) Strategy {
	compiled := xpath.MustCompile(expr)
	return func(doc *Document) string {
		root := doc.Root()
		if root == nil {
			return ""
		}
		n := htmlquery.QuerySelector(root, compiled)
		if n == nil {
			return ""
		}
		return innerText(n)
	}
}

// XPathJoined joins the text of every node selected by expr with spaces.
func XPathJoined(expr string) Strategy {
	compiled := xpath.MustCompile(expr)
	return func(doc *Document) string {
		return strings.Join(xpathTexts(doc, compiled), " ")
	}
}

func xpathTexts(doc *Document, expr *xpath.Expr) []string {
	root := doc.Root()
	if root == nil {
		return nil
	}
	var out []string
	for _, n := range htmlquery.QuerySelectorAll(root, expr) {
		if t := innerText(n); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func innerText(n *html.Node) string {
	return product.CollapseSpaces(htmlquery.InnerText(n))
}
