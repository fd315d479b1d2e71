// Package product holds the canonical cosmetic product record, its field
// normalizer and the pipe-delimited row codec used by the flat-file store.
package product

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Delimiter separates fields in a persisted row.
const Delimiter = "|"

// Header is the first line of every products file.
const Header = "barcode|product_name|description|ingredients|image|brand_name|category|concerns"

// FieldCount is the number of columns in Header.
const FieldCount = 8

// ErrShortRow is returned by ParseRow for lines with fewer than FieldCount columns.
var ErrShortRow = errors.New("row has too few fields")

// Record is one scraped product.
type Record struct {
	Barcode     string   `json:"barcode"`
	Name        string   `json:"product_name"`
	Description string   `json:"description"`
	Ingredients []string `json:"ingredients"`
	Image       string   `json:"image"`
	Brand       string   `json:"brand_name"`
	Category    string   `json:"category"`
	// Concerns is reserved for skin-concern tags and is always empty today.
	Concerns []string `json:"concerns"`
}

// Complete reports whether the record carries the minimum fields worth
// persisting: name, brand and image.
func (r Record) Complete() bool {
	return strings.TrimSpace(r.Name) != "" &&
		strings.TrimSpace(r.Brand) != "" &&
		strings.TrimSpace(r.Image) != ""
}

// IsZero reports whether every field of the record is empty.
func (r Record) IsZero() bool {
	return r.Barcode == "" && r.Name == "" && r.Description == "" &&
		len(r.Ingredients) == 0 && r.Image == "" && r.Brand == "" &&
		r.Category == "" && len(r.Concerns) == 0
}

// Row normalizes the record and renders it as one products-file line
// (without the trailing newline).
func (r Record) Row() string {
	n := Normalize(r)
	fields := []string{
		n.Barcode,
		n.Name,
		n.Description,
		encodeList(n.Ingredients),
		n.Image,
		n.Brand,
		n.Category,
		encodeList(n.Concerns),
	}
	return strings.Join(fields, Delimiter)
}

// ParseRow decodes a products-file line back into a Record. List columns
// that are not valid JSON arrays are kept as a single raw entry so the
// validator can flag them.
func ParseRow(line string) (Record, error) {
	line = strings.TrimRight(line, "\r\n")
	parts := strings.Split(line, Delimiter)
	if len(parts) < FieldCount {
		return Record{}, fmt.Errorf("%w: got %d, want %d", ErrShortRow, len(parts), FieldCount)
	}
	return Record{
		Barcode:     parts[0],
		Name:        parts[1],
		Description: parts[2],
		Ingredients: decodeList(parts[3]),
		Image:       parts[4],
		Brand:       parts[5],
		Category:    parts[6],
		Concerns:    decodeList(parts[7]),
	}, nil
}

func encodeList(items []string) string {
	if len(items) == 0 {
		return ""
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(items); err != nil {
		return ""
	}
	return strings.TrimRight(buf.String(), "\n")
}

func decodeList(field string) []string {
	field = strings.TrimSpace(field)
	if field == "" {
		return nil
	}
	var items []string
	if err := json.Unmarshal([]byte(field), &items); err != nil {
		return []string{field}
	}
	return items
}
