// Package table loads raw tabular sources (CSV, TSV, XLSX) into header-keyed rows.
//
// No schema is imposed: each Row maps a column name to its cell text, and callers
// decide which columns matter. Metadata preambles (World Bank indicator files,
// sea-level exports) are dropped with Options.SkipLines before the header is read.
package table

import (
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

// Row maps column name to raw cell text for one source record.
type Row map[string]string

// Table is a parsed source file.
type Table struct {
	Name   string
	Header []string
	Rows   []Row
}

// Columns returns a copy of the header in file order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.Header))
	copy(out, t.Header)
	return out
}

// Options controls how a source is read.
type Options struct {
	// Format overrides extension based detection: "csv", "tsv" or "xlsx".
	Format string
	// SkipLines drops this many leading lines (rows for xlsx) before the header.
	SkipLines int
	// Delimiter for CSV. If 0, derived from the format.
	Delimiter rune
	// Sheet selects an xlsx sheet by name; empty means the first sheet.
	Sheet string
}

// Reader parses one tabular format.
type Reader interface {
	CanRead(name string) bool
	Read(r io.Reader, name string, opt Options) (*Table, error)
}

var registry = map[string]Reader{}

// Register adds a reader under a format name.
func Register(format string, r Reader) {
	registry[format] = r
}

// ErrUnsupported indicates no reader handles the requested format.
var ErrUnsupported = errors.New("unsupported table format")

// Read parses r using the reader selected by opt.Format or by the file extension of name.
func Read(r io.Reader, name string, opt Options) (*Table, error) {
	if opt.SkipLines < 0 {
		return nil, fmt.Errorf("read %s: negative skip_lines %d", name, opt.SkipLines)
	}
	if opt.Format != "" {
		rd, ok := registry[strings.ToLower(opt.Format)]
		if !ok {
			return nil, fmt.Errorf("read %s: %w: %s", name, ErrUnsupported, opt.Format)
		}
		return rd.Read(r, name, opt)
	}
	for _, format := range []string{"xlsx", "tsv", "csv"} {
		if rd, ok := registry[format]; ok && rd.CanRead(name) {
			return rd.Read(r, name, opt)
		}
	}
	return nil, fmt.Errorf("read %s: %w: %s", name, ErrUnsupported, path.Ext(name))
}

func init() {
	Register("csv", csvReader{comma: ','})
	Register("tsv", csvReader{comma: '\t'})
	Register("xlsx", xlsxReader{})
}

// build assembles a Table from a header record and data records.
// Empty header names (trailing separators) are ignored; the first of duplicate names wins.
func build(name string, header []string, records [][]string) *Table {
	t := &Table{Name: name}
	idx := make([]int, 0, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		h = CleanCell(h)
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		t.Header = append(t.Header, h)
		idx = append(idx, i)
	}
	for _, rec := range records {
		if blank(rec) {
			continue
		}
		row := make(Row, len(t.Header))
		for j, col := range t.Header {
			pos := idx[j]
			if pos < len(rec) {
				row[col] = strings.TrimSpace(rec[pos])
			} else {
				row[col] = ""
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
