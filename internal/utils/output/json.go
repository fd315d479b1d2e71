package output

import (
	"encoding/json"
	"io"
	"os"

	"github.com/kungul/scraper/internal/product"
)

// WriteJSON writes records as an indented JSON array with list fields as
// real arrays.
func WriteJSON(w io.Writer, records []product.Record) error {
	if records == nil {
		records = []product.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// SaveJSON writes records to filepath.
func SaveJSON(records []product.Record, filepath string) error {
	f, err := os.Create(filepath)
	if err != nil {
		return err
	}
	if err := WriteJSON(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
