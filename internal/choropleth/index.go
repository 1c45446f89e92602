// Package choropleth indexes per-country values by variable and year for map rendering.
package choropleth

import (
	"fmt"
	"math"
	"sort"

	"github.com/KaramelBytes/trendloom-cli/internal/series"
)

// Aggregation decides how repeated (year, code) observations combine.
type Aggregation string

const (
	// AggregateMean averages repeated observations, e.g. monthly readings.
	AggregateMean Aggregation = "mean"
	// AggregateLast keeps the observation that appears last in source order.
	AggregateLast Aggregation = "last"
)

// Valid reports whether a is a known aggregation. The empty value counts as AggregateLast.
func (a Aggregation) Valid() bool {
	switch a {
	case "", AggregateMean, AggregateLast:
		return true
	}
	return false
}

type cell struct {
	sum float64
	n   int
}

// Builder accumulates observations into an Index.
// A Builder is not safe for concurrent use.
type Builder struct {
	years series.YearRange
	cells map[string]map[int]map[string]*cell
	aggs  map[string]Aggregation
}

// NewBuilder returns a builder that keeps observations inside years.
// With a closed range every year gets an entry, even when no country reports a value.
func NewBuilder(years series.YearRange) *Builder {
	return &Builder{
		years: years,
		cells: map[string]map[int]map[string]*cell{},
		aggs:  map[string]Aggregation{},
	}
}

// Add folds obs into variable. Observation entities must already be codes;
// blank codes and out-of-range years are ignored. It returns how many observations were kept.
func (b *Builder) Add(variable string, obs []series.Observation, agg Aggregation) int {
	byYear, ok := b.cells[variable]
	if !ok {
		byYear = map[int]map[string]*cell{}
		if b.years.To != 0 {
			for y := b.years.From; y <= b.years.To; y++ {
				byYear[y] = map[string]*cell{}
			}
		}
		b.cells[variable] = byYear
		b.aggs[variable] = agg
	}
	mode := b.aggs[variable]
	kept := 0
	for _, o := range obs {
		if o.Entity == "" || !b.years.Contains(o.Year) {
			continue
		}
		codes, ok := byYear[o.Year]
		if !ok {
			codes = map[string]*cell{}
			byYear[o.Year] = codes
		}
		c, ok := codes[o.Entity]
		if !ok || mode != AggregateMean {
			c = &cell{}
			codes[o.Entity] = c
		}
		c.sum += o.Value
		c.n++
		kept++
	}
	return kept
}

// Build freezes the accumulated observations. The builder may keep being used afterwards.
func (b *Builder) Build() *Index {
	idx := &Index{years: b.years, vars: make(map[string]map[int]map[string]float64, len(b.cells))}
	for v, byYear := range b.cells {
		out := make(map[int]map[string]float64, len(byYear))
		for y, codes := range byYear {
			m := make(map[string]float64, len(codes))
			for code, c := range codes {
				if c.n == 1 {
					m[code] = c.sum
				} else {
					m[code] = c.sum / float64(c.n)
				}
			}
			out[y] = m
		}
		idx.vars[v] = out
	}
	return idx
}

// Index maps variable → year → code → value. It is read-only once built.
type Index struct {
	years series.YearRange
	vars  map[string]map[int]map[string]float64
}

// Range returns the year range the index was built for.
func (x *Index) Range() series.YearRange { return x.years }

// Variables lists indexed variables in ascending order.
func (x *Index) Variables() []string {
	out := make([]string, 0, len(x.vars))
	for v := range x.vars {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Years lists the years present for variable in ascending order.
func (x *Index) Years(variable string) []int {
	byYear := x.vars[variable]
	out := make([]int, 0, len(byYear))
	for y := range byYear {
		out = append(out, y)
	}
	sort.Ints(out)
	return out
}

// Lookup returns the value for code in year. ok is false when there is no data,
// which is distinct from a stored zero.
func (x *Index) Lookup(variable string, year int, code string) (float64, bool) {
	v, ok := x.vars[variable][year][code]
	return v, ok
}

// Year returns a copy of the code → value map for one year. The map is empty, not nil,
// for in-range years without data; nil means the year or variable is unknown.
func (x *Index) Year(variable string, year int) map[string]float64 {
	codes, ok := x.vars[variable][year]
	if !ok {
		return nil
	}
	out := make(map[string]float64, len(codes))
	for k, v := range codes {
		out[k] = v
	}
	return out
}

// Extent returns the minimum and maximum finite value for one year.
func (x *Index) Extent(variable string, year int) (lo, hi float64, ok bool) {
	for _, v := range x.vars[variable][year] {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if !ok {
			lo, hi, ok = v, v, true
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi, ok
}

// LegendSteps returns steps+1 evenly spaced stops from lo to hi inclusive.
func LegendSteps(lo, hi float64, steps int) []float64 {
	if steps < 1 {
		steps = 1
	}
	out := make([]float64, steps+1)
	for i := 0; i <= steps; i++ {
		out[i] = lo + float64(i)/float64(steps)*(hi-lo)
	}
	out[steps] = hi
	return out
}

// FormatUSD renders a dollar amount for tooltips: "1.23 Trillion USD", "Billion", "Million",
// and a digit-grouped whole number below one million.
func FormatUSD(v float64) string {
	sign := ""
	if v < 0 {
		sign, v = "-", -v
	}
	switch {
	case v >= 1e12:
		return fmt.Sprintf("%s%.2f Trillion USD", sign, v/1e12)
	case v >= 1e9:
		return fmt.Sprintf("%s%.2f Billion USD", sign, v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%s%.2f Million USD", sign, v/1e6)
	}
	digits := fmt.Sprintf("%.0f", v)
	var out []byte
	for i := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, digits[i])
	}
	return sign + string(out) + " USD"
}
