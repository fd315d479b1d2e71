package extract

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

// Object is a decoded JSON (or JavaScript) object.
type Object = map[string]any

// JSONLD collects every object declared in application/ld+json scripts.
// Top-level arrays are flattened and @graph members are appended after
// their container. Scripts that fail to decode are skipped.
func JSONLD(doc *Document) []Object {
	var out []Object
	doc.Doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		body := strings.TrimSpace(s.Text())
		if body == "" {
			return
		}
		v, err := decodeJSON(body)
		if err != nil {
			log.Debug().Err(err).Str("url", doc.URL).Msg("Skipping malformed JSON-LD block")
			return
		}
		switch t := v.(type) {
		case []any:
			for _, item := range t {
				if obj, ok := item.(Object); ok {
					out = append(out, obj)
				}
			}
		case Object:
			out = append(out, t)
			if graph, ok := t["@graph"].([]any); ok {
				for _, item := range graph {
					if obj, ok := item.(Object); ok {
						out = append(out, obj)
					}
				}
			}
		}
	})
	return out
}

// FindType returns the first entry whose @type equals one of types, or nil.
// A list-valued @type matches if any element does.
func FindType(entries []Object, types ...string) Object {
	for _, e := range entries {
		for _, t := range typesOf(e) {
			for _, want := range types {
				if t == want {
					return e
				}
			}
		}
	}
	return nil
}

func typesOf(e Object) []string {
	switch t := e["@type"].(type) {
	case string:
		return []string{t}
	case []any:
		var out []string
		for _, v := range t {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Lookup walks nested objects along path and returns the value found, or
// nil when any step is missing or not an object.
func Lookup(obj Object, path ...string) any {
	var cur any = obj
	for _, key := range path {
		m, ok := cur.(Object)
		if !ok || m == nil {
			return nil
		}
		cur = m[key]
	}
	return cur
}

// StringAt returns the scalar at path rendered as text with markup
// removed. Numbers keep their literal form so barcodes survive intact.
func StringAt(obj Object, path ...string) string {
	return PlainText(Scalar(Lookup(obj, path...)))
}

// Scalar renders a decoded JSON/JS scalar as a string. Objects, arrays,
// booleans and nil yield "".
func Scalar(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	}
	return ""
}

// ListAt returns the value at path as a list. A scalar becomes a one
// element list.
func ListAt(obj Object, path ...string) []any {
	switch t := Lookup(obj, path...).(type) {
	case []any:
		return t
	case nil:
		return nil
	default:
		return []any{t}
	}
}

// LDImage reads a schema.org image property, which may be a URL, a list of
// URLs or an ImageObject.
func LDImage(obj Object) string {
	return imageValue(Lookup(obj, "image"))
}

func imageValue(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []any:
		for _, item := range t {
			if s := imageValue(item); s != "" {
				return s
			}
		}
	case Object:
		for _, key := range []string{"url", "contentUrl"} {
			if s := Scalar(t[key]); strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

// BreadcrumbLeaf returns the name of the deepest entry of a BreadcrumbList.
func BreadcrumbLeaf(list Object) string {
	items := ListAt(list, "itemListElement")
	for i := len(items) - 1; i >= 0; i-- {
		entry, ok := items[i].(Object)
		if !ok {
			continue
		}
		if inner, ok := entry["item"].(Object); ok {
			if name := PlainText(Scalar(inner["name"])); name != "" {
				return name
			}
		}
		if name := PlainText(Scalar(entry["name"])); name != "" {
			return name
		}
	}
	return ""
}

func decodeJSON(s string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
