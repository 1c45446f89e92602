package table

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

type csvReader struct {
	comma rune
}

func (c csvReader) CanRead(name string) bool {
	name = strings.ToLower(name)
	if c.comma == '\t' {
		return strings.HasSuffix(name, ".tsv")
	}
	return strings.HasSuffix(name, ".csv")
}

func (c csvReader) Read(src io.Reader, name string, opt Options) (*Table, error) {
	br := bufio.NewReader(src)
	// Metadata preambles are line oriented and may hold unbalanced quotes,
	// so they are consumed before the csv reader sees the stream.
	for i := 0; i < opt.SkipLines; i++ {
		if _, err := br.ReadString('\n'); err != nil {
			if errors.Is(err, io.EOF) {
				return &Table{Name: name}, nil
			}
			return nil, fmt.Errorf("read %s: skip line %d: %w", name, i+1, err)
		}
	}
	r := csv.NewReader(br)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.LazyQuotes = true
	r.Comma = c.comma
	if opt.Delimiter != 0 {
		r.Comma = opt.Delimiter
	}

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &Table{Name: name}, nil
		}
		return nil, fmt.Errorf("read %s: header: %w", name, err)
	}
	var records [][]string
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read %s: row %d: %w", name, len(records)+1, err)
		}
		records = append(records, rec)
	}
	return build(name, header, records), nil
}
