package table

import (
	"math"
	"strconv"
	"strings"
)

// CleanCell removes common spreadsheet artifacts from a cell value:
// byte order marks, the Excel formula prefix (="...") and surrounding quotes.
func CleanCell(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	}
	return strings.TrimSpace(strings.Trim(s, `"'`))
}

// ParseNumber parses a numeric cell. Empty cells, unparsable text and
// non-finite results (NaN, ±Inf) all report false; nothing is zero-filled.
func ParseNumber(s string) (float64, bool) {
	s = CleanCell(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseYear reads a year from a plain year cell ("2001") or from the leading four
// characters of a truncated ISO date ("2001-07", "2001-07-15").
func ParseYear(s string) (int, bool) {
	s = CleanCell(s)
	if s == "" {
		return 0, false
	}
	if y, err := strconv.Atoi(s); err == nil {
		return y, true
	}
	if len(s) > 4 && (s[4] == '-' || s[4] == '/') {
		if y, err := strconv.Atoi(s[:4]); err == nil {
			return y, true
		}
	}
	return 0, false
}
