package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kungul/scraper/internal/product"
	"github.com/kungul/scraper/internal/sites"
	"github.com/kungul/scraper/internal/store"
	"github.com/kungul/scraper/internal/validate"
)

// resetFlags restores every flag to its default so runs do not leak state.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeProducts(t *testing.T, records ...product.Record) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "products.txt")
	lines := []string{product.Header}
	for _, r := range records {
		lines = append(lines, r.Row())
	}
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

var (
	good = product.Record{Barcode: "123", Name: "Foo Serum", Description: "Light", Image: "https://img.example/foo.jpg", Brand: "Acme", Category: "Serum", Ingredients: []string{"Aqua"}}
	bad  = product.Record{Name: "X", Brand: "Acme", Image: "foo.jpg"}
)

func TestSitesCommand(t *testing.T) {
	out, err := run(t, "sites", "-q")
	require.NoError(t, err)
	for _, slug := range sites.Slugs() {
		assert.Contains(t, out, slug)
	}

	out, err = run(t, "sites", "--json")
	require.NoError(t, err)
	var list []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	assert.Len(t, list, len(sites.Slugs()))
}

func TestValidateCommand(t *testing.T) {
	path := writeProducts(t, good, bad)

	out, err := run(t, "validate", path, "-q")
	require.NoError(t, err)
	assert.Contains(t, out, "2 records")
	assert.Contains(t, out, "Product 2: product_name")

	out, err = run(t, "validate", path, "--json", "--details")
	require.NoError(t, err)
	var rep validate.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, 2, rep.Total)
	assert.Equal(t, 1, rep.Valid)
	assert.Len(t, rep.Results, 2)
}

func TestValidateCommand_MissingFile(t *testing.T) {
	_, err := run(t, "validate", filepath.Join(t.TempDir(), "none.txt"), "-q")
	assert.Error(t, err)
}

func TestConvertCommand(t *testing.T) {
	path := writeProducts(t, good)

	out, err := run(t, "convert", path, "-q")
	require.NoError(t, err)
	assert.Contains(t, out, "1 rows")

	csvData, err := os.ReadFile(strings.TrimSuffix(path, ".txt") + ".csv")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(csvData), "barcode,product_name,"))
	assert.Contains(t, string(csvData), "Foo Serum")

	dst := filepath.Join(t.TempDir(), "out.json")
	_, err = run(t, "convert", path, dst, "--format", "json", "-q")
	require.NoError(t, err)
	var records []product.Record
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 1)
	assert.Equal(t, []string{"Aqua"}, records[0].Ingredients)

	_, err = run(t, "convert", path, "--format", "xml", "-q")
	assert.Error(t, err)
}

const productPage = `<html><head>
<meta property="og:title" content="Foo Serum">
<meta property="og:description" content="A light serum.">
<meta property="og:image" content="/img/foo.jpg">
</head><body><h1>Foo Serum</h1><span itemprop="brand" content="Acme">Acme</span></body></html>`

func TestScrapeCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, productPage)
	}))
	defer srv.Close()

	dir := t.TempDir()
	urls := filepath.Join(dir, "urls.txt")
	list := fmt.Sprintf("# test\n%[1]s/foo\n%[1]s/missing\n%[1]s/foo\n", srv.URL)
	require.NoError(t, os.WriteFile(urls, []byte(list), 0o644))
	out := filepath.Join(dir, "data", "products.txt")

	stdout, err := run(t, "scrape", "generic", urls, "-o", out, "--delay", "1ms", "--json", "-H", "X-Test: 1")
	require.NoError(t, err)

	var rep scrapeReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &rep))
	assert.Equal(t, 3, rep.URLs)
	assert.Equal(t, 3, rep.Processed)
	assert.Equal(t, 1, rep.Failed)
	assert.Equal(t, store.Summary{Received: 2, Written: 1, Duplicates: 1}, rep.Store)

	records, err := store.ReadRecords(out)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Foo Serum", records[0].Name)
	assert.Equal(t, "Acme", records[0].Brand)
	assert.Equal(t, srv.URL+"/img/foo.jpg", records[0].Image)
}

func TestScrapeCommand_UnknownSite(t *testing.T) {
	urls := filepath.Join(t.TempDir(), "urls.txt")
	require.NoError(t, os.WriteFile(urls, []byte("https://example.com/p\n"), 0o644))
	_, err := run(t, "scrape", "nope", urls, "-q")
	assert.ErrorIs(t, err, sites.ErrUnknownSite)
}

func TestPrintHelp(t *testing.T) {
	var buf bytes.Buffer
	printHelp(&buf, scrapeCmd)
	out := buf.String()
	assert.Contains(t, out, "SCRAPE")
	assert.Contains(t, out, "$ kungul scrape inkeylist urls.txt")
	assert.Contains(t, out, "--output")
	assert.Contains(t, out, "Global Flags")
}

func TestWrapText(t *testing.T) {
	got := wrapText("one two three four\n\n- keep this bullet as is", 9)
	assert.Equal(t, "one two\nthree\nfour\n\n- keep this bullet as is", got)
}
