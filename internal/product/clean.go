package product

import (
	"strings"

	"golang.org/x/net/html"
)

// DelimiterSubstitute replaces Delimiter inside field values.
const DelimiterSubstitute = "/"

// Normalize returns a cleaned copy of r. The input is never modified and
// list fields are never nil in the result. Normalize is idempotent.
func Normalize(r Record) Record {
	return Record{
		Barcode:     CleanText(r.Barcode),
		Name:        CleanText(r.Name),
		Description: CleanMarkup(r.Description),
		Ingredients: cleanList(r.Ingredients, CleanMarkup),
		Image:       CleanText(r.Image),
		Brand:       CleanText(r.Brand),
		Category:    CleanText(r.Category),
		Concerns:    CleanList(r.Concerns),
	}
}

// CleanText collapses whitespace and replaces the row delimiter.
func CleanText(s string) string {
	return SanitizeDelimiter(CollapseSpaces(s))
}

// CleanMarkup is CleanText for values that may carry HTML. The delimiter is
// replaced before tags are stripped so the substitute can never complete a
// tag on a second pass.
func CleanMarkup(s string) string {
	return CollapseSpaces(StripTags(SanitizeDelimiter(s)))
}

// CleanList applies CleanText to every item and drops empty results.
func CleanList(items []string) []string {
	return cleanList(items, CleanText)
}

func cleanList(items []string, clean func(string) string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if c := clean(item); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// CollapseSpaces folds every run of Unicode whitespace into one space and
// trims both ends.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// SanitizeDelimiter replaces every Delimiter with DelimiterSubstitute.
func SanitizeDelimiter(s string) string {
	return strings.ReplaceAll(s, Delimiter, DelimiterSubstitute)
}

// StripTags removes markup and returns the text content with tags turned
// into single spaces. Bodies of raw-text elements (script, style, title,
// textarea and friends) are dropped. Character references are kept as
// written.
func StripTags(s string) string {
	if !strings.Contains(s, "<") {
		return CollapseSpaces(s)
	}

	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return CollapseSpaces(b.String())
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Raw())
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			// The tokenizer switches to raw text after these tags even when
			// they are written self-closing.
			if name, _ := z.TagName(); isHiddenText(name) {
				skip++
			}
			b.WriteByte(' ')
		case html.EndTagToken:
			if name, _ := z.TagName(); isHiddenText(name) && skip > 0 {
				skip--
			}
			b.WriteByte(' ')
		default:
			b.WriteByte(' ')
		}
	}
}

func isHiddenText(tag []byte) bool {
	switch string(tag) {
	case "script", "style", "noscript", "title", "textarea",
		"iframe", "noembed", "noframes", "plaintext", "xmp":
		return true
	}
	return false
}
