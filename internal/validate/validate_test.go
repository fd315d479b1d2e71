package validate

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/kungul/scraper/internal/product"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func good() product.Record {
	return product.Record{
		Barcode:     "5060329510197",
		Name:        "Retinol Serum",
		Description: "A gentle night serum",
		Ingredients: []string{"Aqua", "Retinol"},
		Image:       "https://x/y.jpg",
		Brand:       "Acme",
		Category:    "Serum",
	}
}

func fields(issues []Issue, sev Severity) []string {
	var out []string
	for _, i := range issues {
		if i.Severity == sev {
			out = append(out, i.String())
		}
	}
	return out
}

func TestValidate_Good(t *testing.T) {
	ok, issues := Validate(good())
	assert.True(t, ok)
	assert.Empty(t, issues)
}

func TestValidate_EmptyName(t *testing.T) {
	ok, issues := Validate(product.Record{Name: "", Brand: "Acme", Image: "http://x/y.jpg"})
	assert.False(t, ok)
	assert.Equal(t, []string{"product_name: Required field is empty"}, fields(issues, SeverityError))
	assert.Len(t, fields(issues, SeverityWarning), 3)
}

func TestValidate_NonNumericBarcode(t *testing.T) {
	r := good()
	r.Barcode = "12A45"
	ok, issues := Validate(r)
	assert.False(t, ok)
	assert.Equal(t, []string{"barcode: Barcode should be numeric only"}, fields(issues, SeverityError))
}

func TestValidate_CollectsEveryViolation(t *testing.T) {
	r := good()
	r.Name = "Ab"
	r.Brand = "A"
	r.Image = "/relative/img.jpg"
	r.Ingredients = []string{strings.Repeat("x", MaxIngredientLen+1)}

	ok, issues := Validate(r)
	assert.False(t, ok)
	assert.Equal(t, []string{
		"product_name: Too short (min 3 chars, got 2)",
		"brand_name: Too short (min 2 chars, got 1)",
		"image: Invalid URL format (must start with http)",
		"ingredients: Ingredient entry too long (201 chars): likely unparsed",
	}, fields(issues, SeverityError))
}

func TestValidate_BlankIngredientList(t *testing.T) {
	r := good()
	r.Ingredients = []string{" ", ""}
	ok, issues := Validate(r)
	assert.False(t, ok)
	assert.Contains(t, fields(issues, SeverityError), "ingredients: Ingredients list is empty")

	r.Ingredients = []string{}
	ok, _ = Validate(r)
	assert.True(t, ok, "no ingredients at all is allowed")
}

func TestValidate_WarningsKeepRecordValid(t *testing.T) {
	r := good()
	r.Barcode, r.Category, r.Description = "", "", ""
	ok, issues := Validate(r)
	assert.True(t, ok)
	assert.Equal(t, []string{
		"barcode: Recommended field is empty",
		"category: Recommended field is empty",
		"description: Recommended field is empty",
	}, fields(issues, SeverityWarning))
}

func TestValidateBatch_Empty(t *testing.T) {
	rep := ValidateBatch(nil)
	assert.Zero(t, rep.Total)
	assert.Zero(t, rep.ValidityRate)
	assert.Empty(t, rep.Errors)
}

func TestValidateBatch_Aggregates(t *testing.T) {
	warnOnly := good()
	warnOnly.Category = ""
	bad := good()
	bad.Barcode = "12A45"

	rep := ValidateBatch([]product.Record{good(), bad, warnOnly, good()})
	assert.Equal(t, 4, rep.Total)
	assert.Equal(t, 3, rep.Valid)
	assert.Equal(t, 1, rep.Invalid)
	assert.InDelta(t, 75.0, rep.ValidityRate, 1e-9)
	assert.Equal(t, []string{
		"Product 2: barcode: Barcode should be numeric only",
		"Product 3: category: Recommended field is empty",
	}, rep.Errors)
}

func TestReport_WriteJSON(t *testing.T) {
	rep := ValidateBatch([]product.Record{good()})

	var buf bytes.Buffer
	require.NoError(t, rep.WriteJSON(&buf, false))
	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.EqualValues(t, 100, out["validity_rate"])
	assert.NotContains(t, out, "results")

	buf.Reset()
	require.NoError(t, rep.WriteJSON(&buf, true))
	assert.Contains(t, buf.String(), `"results"`)
}
