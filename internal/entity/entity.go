// Package entity maps country display names to ISO3-like codes and back.
package entity

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Directory is a read-only name/code lookup built from a name → code JSON object.
type Directory struct {
	codes map[string]string // folded name -> code
	names map[string]string // upper-cased code -> display name
}

// Fold normalizes a name for comparison: trimmed, lower-cased, accents stripped.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return out
}

// Load reads a JSON object of display name → code.
// When two names share a code the later one becomes the display name.
func Load(r io.Reader) (*Directory, error) {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("entity directory: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("entity directory: expected object, got %v", tok)
	}
	dir := New()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("entity directory: %w", err)
		}
		name, _ := tok.(string)
		var code string
		if err := dec.Decode(&code); err != nil {
			return nil, fmt.Errorf("entity directory: value for %q: %w", name, err)
		}
		dir.Add(name, code)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("entity directory: %w", err)
	}
	return dir, nil
}

// New returns an empty directory.
func New() *Directory {
	return &Directory{codes: map[string]string{}, names: map[string]string{}}
}

// Add registers name under code. Blank names or codes are ignored.
func (d *Directory) Add(name, code string) {
	name, code = strings.TrimSpace(name), strings.TrimSpace(code)
	if name == "" || code == "" {
		return
	}
	d.codes[Fold(name)] = code
	d.names[strings.ToUpper(code)] = name
}

// CodeFor returns the code registered for name, compared after folding.
func (d *Directory) CodeFor(name string) (string, bool) {
	if d == nil {
		return "", false
	}
	code, ok := d.codes[Fold(name)]
	return code, ok
}

// NameFor returns the display name for code, compared case-insensitively.
func (d *Directory) NameFor(code string) (string, bool) {
	if d == nil {
		return "", false
	}
	name, ok := d.names[strings.ToUpper(strings.TrimSpace(code))]
	return name, ok
}

// Len reports the number of distinct names.
func (d *Directory) Len() int {
	if d == nil {
		return 0
	}
	return len(d.codes)
}

// Codes returns every known code in ascending order.
func (d *Directory) Codes() []string {
	if d == nil {
		return nil
	}
	out := make([]string, 0, len(d.names))
	for c := range d.names {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
