package product

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_Row(t *testing.T) {
	r := Record{
		Barcode:     "5060",
		Name:        "Retinol Serum",
		Description: "Night serum",
		Ingredients: []string{"Aqua", "Retinol <b>1%</b>", "Squalane, Plant"},
		Image:       "https://x/y.jpg",
		Brand:       "Acme",
		Category:    "Serum",
	}

	row := r.Row()

	assert.Equal(t, `5060|Retinol Serum|Night serum|["Aqua","Retinol 1%","Squalane, Plant"]|https://x/y.jpg|Acme|Serum|`, row)
}

func TestRecord_RowEmptyListsAreBlank(t *testing.T) {
	row := Record{Name: "A", Brand: "B", Image: "http://c"}.Row()
	assert.Equal(t, "|A|||http://c|B||", row)
}

func TestRecord_Complete(t *testing.T) {
	assert.True(t, Record{Name: "A", Brand: "B", Image: "http://c"}.Complete())
	assert.False(t, Record{Name: " ", Brand: "B", Image: "http://c"}.Complete())
	assert.False(t, Record{Name: "A", Image: "http://c"}.Complete())
	assert.False(t, Record{Name: "A", Brand: "B"}.Complete())
}

func TestParseRow(t *testing.T) {
	r := Record{
		Barcode:     "123",
		Name:        "Serum",
		Ingredients: []string{"Aqua", "Glycerin"},
		Image:       "https://x/y.jpg",
		Brand:       "Acme",
	}

	parsed, err := ParseRow(r.Row() + "\n")
	require.NoError(t, err)

	assert.Equal(t, "123", parsed.Barcode)
	assert.Equal(t, []string{"Aqua", "Glycerin"}, parsed.Ingredients)
	assert.Nil(t, parsed.Concerns)
	assert.Equal(t, "Acme", parsed.Brand)
}

func TestParseRow_RawListKept(t *testing.T) {
	parsed, err := ParseRow("1|n|d|Aqua, Glycerin|i|b|c|")
	require.NoError(t, err)
	assert.Equal(t, []string{"Aqua, Glycerin"}, parsed.Ingredients)
}

func TestParseRow_Short(t *testing.T) {
	_, err := ParseRow("a|b|c")
	assert.ErrorIs(t, err, ErrShortRow)
}
