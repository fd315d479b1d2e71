// Package store appends product rows to the pipe-delimited products file,
// never writing an incomplete record or a row the file already holds.
package store

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kungul/scraper/internal/product"
	"github.com/rs/zerolog/log"
)

// maxLine bounds a single products-file row.
const maxLine = 4 << 20

// Outcome says what Add did with a record.
type Outcome int

const (
	Written Outcome = iota
	Incomplete
	Duplicate
)

func (o Outcome) String() string {
	switch o {
	case Written:
		return "written"
	case Incomplete:
		return "incomplete"
	case Duplicate:
		return "duplicate"
	}
	return "unknown"
}

// Summary counts what happened to a batch.
type Summary struct {
	Received   int `json:"received"`
	Written    int `json:"written"`
	Duplicates int `json:"duplicates"`
	Incomplete int `json:"incomplete"`
}

func (s *Summary) record(o Outcome) {
	s.Received++
	switch o {
	case Written:
		s.Written++
	case Duplicate:
		s.Duplicates++
	case Incomplete:
		s.Incomplete++
	}
}

// Writer appends to one products file. It is not safe for concurrent use.
type Writer struct {
	path    string
	file    *os.File
	buf     *bufio.Writer
	seen    map[string]struct{}
	summary Summary
}

// Open prepares path for appending. Existing rows (everything after the
// header) are loaded into the dedup set; a missing or empty file gets the
// header written first.
func Open(path string) (*Writer, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}

	seen, needsNewline, err := loadExisting(path)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	w := &Writer{path: path, file: f, buf: bufio.NewWriter(f), seen: seen}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	switch {
	case info.Size() == 0:
		w.buf.WriteString(product.Header + "\n")
	case needsNewline:
		w.buf.WriteString("\n")
	}

	log.Debug().Str("path", path).Int("existing_rows", len(seen)).Msg("Opened products file")
	return w, nil
}

// loadExisting reads the rows already in path. needsNewline reports a
// final row without a line terminator.
func loadExisting(path string) (map[string]struct{}, bool, error) {
	seen := make(map[string]struct{})

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return seen, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", path, err)
	}
	if len(data) == 0 {
		return seen, false, nil
	}

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64*1024), maxLine)
	first := true
	for sc.Scan() {
		line := sc.Text()
		if first {
			first = false
			if line == product.Header {
				continue
			}
		}
		if line != "" {
			seen[line] = struct{}{}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, false, fmt.Errorf("scan %s: %w", path, err)
	}
	return seen, data[len(data)-1] != '\n', nil
}

// Add appends rec unless it is incomplete or its row was already written,
// in this run or a previous one.
func (w *Writer) Add(rec product.Record) (Outcome, error) {
	n := product.Normalize(rec)
	outcome := Written

	switch row := n.Row(); {
	case !n.Complete():
		outcome = Incomplete
	default:
		if _, dup := w.seen[row]; dup {
			outcome = Duplicate
			break
		}
		if _, err := w.buf.WriteString(row + "\n"); err != nil {
			return outcome, fmt.Errorf("write %s: %w", w.path, err)
		}
		// Flush per row so an interrupted run keeps what it extracted.
		if err := w.buf.Flush(); err != nil {
			return outcome, fmt.Errorf("write %s: %w", w.path, err)
		}
		w.seen[row] = struct{}{}
	}

	w.summary.record(outcome)
	log.Debug().Str("outcome", outcome.String()).Str("name", n.Name).Msg("Persist record")
	return outcome, nil
}

// Summary returns the counts so far.
func (w *Writer) Summary() Summary { return w.summary }

// Close flushes buffered output and closes the file.
func (w *Writer) Close() error {
	if err := w.buf.Flush(); err != nil {
		w.file.Close()
		return fmt.Errorf("flush %s: %w", w.path, err)
	}
	return w.file.Close()
}

// Persist appends records to path (see Writer.Add) and returns the counts.
func Persist(path string, records []product.Record) (Summary, error) {
	w, err := Open(path)
	if err != nil {
		return Summary{}, err
	}
	for _, rec := range records {
		if _, err := w.Add(rec); err != nil {
			w.Close()
			return w.Summary(), err
		}
	}
	return w.Summary(), w.Close()
}

// ReadRecords parses every row of a products file. Rows with too few
// fields are logged and skipped.
func ReadRecords(path string) ([]product.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses products-file content from r.
func Decode(r io.Reader) ([]product.Record, error) {
	var out []product.Record
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLine)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if text == "" || (line == 1 && text == product.Header) {
			continue
		}
		rec, err := product.ParseRow(text)
		if err != nil {
			log.Warn().Int("line", line).Err(err).Msg("Skipping malformed row")
			continue
		}
		out = append(out, rec)
	}
	if err := sc.Err(); err != nil {
		return out, err
	}
	return out, nil
}
