// Package validate applies advisory quality checks to extracted records.
// Problems are reported as data; nothing here returns an error.
package validate

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/kungul/scraper/internal/product"
)

// Severity separates issues that make a record invalid from advisories.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// MaxIngredientLen is the longest ingredient entry accepted as parsed.
const MaxIngredientLen = 200

// Issue is one finding about one field.
type Issue struct {
	Field    string   `json:"field"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

func (i Issue) String() string {
	return i.Field + ": " + i.Message
}

type rule struct {
	field  string
	minLen int
	value  func(product.Record) string
}

var required = []rule{
	{"product_name", 3, func(r product.Record) string { return r.Name }},
	{"brand_name", 2, func(r product.Record) string { return r.Brand }},
	{"image", 10, func(r product.Record) string { return r.Image }},
}

var recommended = []rule{
	{field: "barcode", value: func(r product.Record) string { return r.Barcode }},
	{field: "category", value: func(r product.Record) string { return r.Category }},
	{field: "description", value: func(r product.Record) string { return r.Description }},
}

// Validate checks r and returns whether it has no errors together with
// every issue found, errors first.
func Validate(r product.Record) (bool, []Issue) {
	var errs []Issue
	add := func(field, msg string) {
		errs = append(errs, Issue{Field: field, Message: msg, Severity: SeverityError})
	}

	for _, rl := range required {
		v := strings.TrimSpace(rl.value(r))
		if v == "" {
			add(rl.field, "Required field is empty")
			continue
		}
		if n := utf8.RuneCountInString(v); n < rl.minLen {
			add(rl.field, fmt.Sprintf("Too short (min %d chars, got %d)", rl.minLen, n))
		}
	}

	if img := strings.TrimSpace(r.Image); img != "" && !strings.HasPrefix(img, "http") {
		add("image", "Invalid URL format (must start with http)")
	}

	if code := strings.TrimSpace(r.Barcode); code != "" && !digitsOnly(code) {
		add("barcode", "Barcode should be numeric only")
	}

	if len(r.Ingredients) > 0 {
		blank := true
		for _, ing := range r.Ingredients {
			if strings.TrimSpace(ing) != "" {
				blank = false
			}
			if n := utf8.RuneCountInString(ing); n > MaxIngredientLen {
				add("ingredients", fmt.Sprintf("Ingredient entry too long (%d chars): likely unparsed", n))
			}
		}
		if blank {
			add("ingredients", "Ingredients list is empty")
		}
	}

	issues := errs
	for _, rl := range recommended {
		if strings.TrimSpace(rl.value(r)) == "" {
			issues = append(issues, Issue{Field: rl.field, Message: "Recommended field is empty", Severity: SeverityWarning})
		}
	}

	return len(errs) == 0, issues
}

func digitsOnly(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Result is the outcome for one record of a batch.
type Result struct {
	Index  int     `json:"index"`
	Name   string  `json:"product_name"`
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues,omitempty"`
}

// Report aggregates a batch.
type Report struct {
	Total        int      `json:"total"`
	Valid        int      `json:"valid"`
	Invalid      int      `json:"invalid"`
	ValidityRate float64  `json:"validity_rate"`
	Errors       []string `json:"errors"`
	Results      []Result `json:"results,omitempty"`
}

// ValidateBatch validates records in order. Records are numbered from 1
// in the flat issue list ("Product N: field: message").
func ValidateBatch(records []product.Record) Report {
	rep := Report{Total: len(records), Errors: []string{}}

	for i, r := range records {
		idx := i + 1
		ok, issues := Validate(r)
		if ok {
			rep.Valid++
		} else {
			rep.Invalid++
		}
		for _, is := range issues {
			rep.Errors = append(rep.Errors, fmt.Sprintf("Product %d: %s", idx, is))
		}
		rep.Results = append(rep.Results, Result{Index: idx, Name: r.Name, Valid: ok, Issues: issues})
	}

	if rep.Total > 0 {
		rep.ValidityRate = float64(rep.Valid) / float64(rep.Total) * 100
	}
	return rep
}

// WriteJSON writes the report as indented JSON. Per-record results are
// included only when details is set.
func (r Report) WriteJSON(w io.Writer, details bool) error {
	if !details {
		r.Results = nil
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
