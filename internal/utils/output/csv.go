package output

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kungul/scraper/internal/product"
)

// PipeToCSV converts products-file content to CSV. The header row is
// always the canonical one; data rows are padded or trimmed to its width.
// It returns the number of data rows written.
func PipeToCSV(r io.Reader, w io.Writer) (int, error) {
	header := strings.Split(product.Header, product.Delimiter)
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return 0, err
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4<<20)
	rows, line := 0, 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		if text == "" || (line == 1 && strings.HasPrefix(text, "barcode"+product.Delimiter)) {
			continue
		}
		if err := cw.Write(fit(strings.Split(text, product.Delimiter), len(header))); err != nil {
			return rows, err
		}
		rows++
	}
	if err := sc.Err(); err != nil {
		return rows, fmt.Errorf("read products: %w", err)
	}

	cw.Flush()
	return rows, cw.Error()
}

func fit(fields []string, width int) []string {
	if len(fields) >= width {
		return fields[:width]
	}
	out := make([]string, width)
	copy(out, fields)
	return out
}

// ConvertFile converts the products file at src to CSV at dst.
func ConvertFile(src, dst string) (int, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return 0, err
	}
	n, err := PipeToCSV(in, out)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return n, err
}
