package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kungul/scraper/internal/product"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	recA = product.Record{Barcode: "111", Name: "Serum A", Image: "https://x/a.jpg", Brand: "Acme", Ingredients: []string{"Aqua", "Glycerin"}}
	recB = product.Record{Barcode: "222", Name: "Cream B", Image: "https://x/b.jpg", Brand: "Acme"}
	recC = product.Record{Name: "Toner C", Image: "https://x/c.jpg", Brand: "Other"}
)

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

func TestPersist_DeduplicatesWithinBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.txt")

	sum, err := Persist(path, []product.Record{recA, recB, recA})
	require.NoError(t, err)

	assert.Equal(t, []string{product.Header, recA.Row(), recB.Row()}, readLines(t, path))
	assert.Equal(t, Summary{Received: 3, Written: 2, Duplicates: 1}, sum)
}

func TestPersist_DeduplicatesAgainstExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "products.txt")

	_, err := Persist(path, []product.Record{recA, recB})
	require.NoError(t, err)
	sum, err := Persist(path, []product.Record{recB, recC, recA})
	require.NoError(t, err)

	assert.Equal(t, []string{product.Header, recA.Row(), recB.Row(), recC.Row()}, readLines(t, path))
	assert.Equal(t, 1, sum.Written)
	assert.Equal(t, 2, sum.Duplicates)
}

func TestPersist_SkipsIncompleteRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.txt")
	noName := recA
	noName.Name = "   "
	noImage := recB
	noImage.Image = ""
	noBrand := recC
	noBrand.Brand = ""

	sum, err := Persist(path, []product.Record{noName, noImage, noBrand})
	require.NoError(t, err)

	assert.Equal(t, []string{product.Header}, readLines(t, path))
	assert.Equal(t, 3, sum.Incomplete)
	assert.Zero(t, sum.Written)
}

func TestPersist_NormalizesBeforeComparing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.txt")
	messy := recA
	messy.Name = "  Serum\n  A "

	sum, err := Persist(path, []product.Record{recA, messy})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Written)
	assert.Equal(t, 1, sum.Duplicates)
}

func TestOpen_RepairsMissingTrailingNewline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.txt")
	require.NoError(t, os.WriteFile(path, []byte(product.Header+"\n"+recA.Row()), 0o644))

	_, err := Persist(path, []product.Record{recA, recB})
	require.NoError(t, err)
	assert.Equal(t, []string{product.Header, recA.Row(), recB.Row()}, readLines(t, path))
}

func TestWriter_EmptyExistingFileGetsHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.txt")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	w, err := Open(path)
	require.NoError(t, err)
	outcome, err := w.Add(recC)
	require.NoError(t, err)
	assert.Equal(t, Written, outcome)
	require.NoError(t, w.Close())

	assert.Equal(t, []string{product.Header, recC.Row()}, readLines(t, path))
}

func TestReadRecords_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.txt")
	_, err := Persist(path, []product.Record{recA, recB})
	require.NoError(t, err)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("short|row\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	recs, err := ReadRecords(path)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Serum A", recs[0].Name)
	assert.Equal(t, []string{"Aqua", "Glycerin"}, recs[0].Ingredients)
	assert.Equal(t, "222", recs[1].Barcode)
}
