package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/kungul/scraper/internal/product"
	"golang.org/x/net/html"
)

const (
	inciWindow    = 3000
	minCutOffset  = 100
	minOpeningLen = 80
	minRunLen     = 100
	maxRunLen     = 3000
	minRunCommas  = 7
	minRunParens  = 2
)

var (
	openingTokens = []*regexp.Regexp{
		regexp.MustCompile(`(?i)aqua \(water\)`),
		regexp.MustCompile(`(?i)aqua \(water/eau`),
	}
	tagPattern     = regexp.MustCompile(`<[^>]+>`)
	inciRunPattern = regexp.MustCompile(`([A-Za-z0-9 \-/\(\)%]+,\s*){6,}[A-Za-z0-9 \-/\(\)%]+`)

	terminators = []string{".", "<", "©"}
	signalWords = []string{"aqua", "water", "acid", "alcohol", "gly", "oil", "butyl", "peptide", "retin", "vitamin", "sodium"}

	// Actives recognised when no full INCI declaration is present.
	Actives = []string{
		"Ceramides", "Bio-Active Ceramides", "Glycerin", "Hyaluronic Acid", "Vitamin C",
		"Retinol", "Niacinamide", "Caffeine", "Salicylic Acid", "Squalane", "Peptides",
		"Collagen", "Azelaic Acid", "Alanine", "Shea Butter", "Oat", "Polyglutamic Acid",
		"Ectoin", "Exosome", "PDRN", "Succinic Acid", "Tranexamic Acid", "Fulvic Acid",
	}
)

// INCIScan recovers an ingredient list from raw page HTML. It looks for a
// declaration opening with "Aqua (Water)", then for the longest
// comma-separated run that reads like INCI, and finally falls back to
// listing recognised actives mentioned anywhere on the page.
func INCIScan(raw string) []string {
	if s := scanOpening(raw); s != "" {
		return SplitINCI(s)
	}
	if s := longestINCIRun(raw); s != "" {
		return SplitINCI(s)
	}
	return ScanActives(raw)
}

func scanOpening(raw string) string {
	for _, token := range openingTokens {
		loc := token.FindStringIndex(raw)
		if loc == nil {
			continue
		}
		end := loc[0] + inciWindow
		if end > len(raw) {
			end = len(raw)
		}
		window := strings.ToValidUTF8(raw[loc[0]:end], "")
		text := product.CollapseSpaces(tagPattern.ReplaceAllString(window, " "))
		for _, t := range terminators {
			if pos := strings.Index(text, t); pos > minCutOffset {
				text = strings.TrimSpace(text[:pos])
				break
			}
		}
		if utf8.RuneCountInString(text) > minOpeningLen {
			return html.UnescapeString(text)
		}
	}
	return ""
}

func longestINCIRun(raw string) string {
	text := product.CollapseSpaces(tagPattern.ReplaceAllString(raw, " "))
	best := ""
	for _, m := range inciRunPattern.FindAllString(text, -1) {
		if strings.Count(m, "(") < minRunParens || !hasSignal(m) {
			continue
		}
		if len(m) > len(best) {
			best = m
		}
	}
	best = strings.TrimSpace(best)
	if len(best) < minRunLen || len(best) > maxRunLen || strings.Count(best, ",") < minRunCommas {
		return ""
	}
	return best
}

func hasSignal(s string) bool {
	lower := strings.ToLower(s)
	for _, w := range signalWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// ScanActives lists the recognised actives mentioned in raw, in the order
// of the Actives table.
func ScanActives(raw string) []string {
	lower := strings.ToLower(raw)
	var out []string
	for _, a := range Actives {
		if strings.Contains(lower, strings.ToLower(a)) {
			out = append(out, a)
		}
	}
	return out
}

// SplitINCI splits an ingredient declaration on commas that are neither
// nested in brackets nor between two digits, so "1,2-Hexanediol" and
// "Parfum (Limonene, Linalool)" stay whole.
func SplitINCI(s string) []string {
	runes := []rune(s)
	var (
		out   []string
		depth int
		start int
	)
	flush := func(end int) {
		part := strings.TrimSpace(string(runes[start:end]))
		part = strings.TrimSpace(strings.TrimSuffix(part, "."))
		if part != "" {
			out = append(out, part)
		}
	}
	for i, r := range runes {
		switch r {
		case '(', '[':
			depth++
		case ')', ']':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth > 0 {
				continue
			}
			if i > 0 && i+1 < len(runes) && unicode.IsDigit(runes[i-1]) && unicode.IsDigit(runes[i+1]) {
				continue
			}
			flush(i)
			start = i + 1
		}
	}
	flush(len(runes))
	return out
}

// SectionAfterHeading finds the first heading-like element whose text
// contains one of words (case-insensitive) and returns the text of the next
// paragraph, list or container that follows it in document order.
func SectionAfterHeading(doc *Document, words ...string) string {
	var heading *html.Node
	doc.Doc.Find("h2, h3, h4, strong, span").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.ToLower(s.Text())
		for _, w := range words {
			if strings.Contains(text, strings.ToLower(w)) {
				heading = s.Nodes[0]
				return false
			}
		}
		return true
	})
	if heading == nil {
		return ""
	}
	for n := afterSubtree(heading); n != nil; n = nextInOrder(n) {
		if n.Type == html.ElementNode && sectionContainers[n.Data] {
			return NodeText(n)
		}
	}
	return ""
}

var sectionContainers = map[string]bool{"p": true, "div": true, "ul": true, "ol": true, "span": true}

// nextInOrder returns the node after n in a depth-first walk, descending
// into n first.
func nextInOrder(n *html.Node) *html.Node {
	if n.FirstChild != nil {
		return n.FirstChild
	}
	return afterSubtree(n)
}

// afterSubtree returns the first node following n that is not one of its
// descendants.
func afterSubtree(n *html.Node) *html.Node {
	for ; n != nil; n = n.Parent {
		if n.NextSibling != nil {
			return n.NextSibling
		}
	}
	return nil
}
