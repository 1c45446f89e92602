// Package series turns raw tabular rows into uniform (year, value) series and
// lines two series up on a shared year axis.
//
// The pipeline is resolve → observe → select → aggregate → sort → transform →
// filter years → normalize → align. Every step is a pure function over values;
// nothing here keeps state between calls.
package series

import (
	"fmt"
	"sort"
)

// Point is one yearly observation of a variable.
type Point struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// Series is an ordered sequence of points. After Aggregate and Sort it holds
// unique years in ascending order.
type Series []Point

// AlignedPoint pairs the values of two series for one shared year.
type AlignedPoint struct {
	Year int     `json:"year"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// YearRange bounds valid years inclusively. To == 0 leaves the range open-ended.
type YearRange struct {
	From int `yaml:"from" json:"from"`
	To   int `yaml:"to,omitempty" json:"to,omitempty"`
}

// Contains reports whether year lies within the range.
func (r YearRange) Contains(year int) bool {
	if year < r.From {
		return false
	}
	return r.To == 0 || year <= r.To
}

// Narrow intersects r with o; zero bounds in o are ignored.
func (r YearRange) Narrow(o YearRange) YearRange {
	out := r
	if o.From > out.From {
		out.From = o.From
	}
	if o.To != 0 && (out.To == 0 || o.To < out.To) {
		out.To = o.To
	}
	return out
}

func (r YearRange) String() string {
	if r.To == 0 {
		return fmt.Sprintf("%d+", r.From)
	}
	return fmt.Sprintf("%d-%d", r.From, r.To)
}

// Years returns the distinct years of s in their order of appearance.
func (s Series) Years() []int {
	seen := make(map[int]bool, len(s))
	out := make([]int, 0, len(s))
	for _, p := range s {
		if !seen[p.Year] {
			seen[p.Year] = true
			out = append(out, p.Year)
		}
	}
	return out
}

// Sort returns a copy of s ordered by ascending year. Equal years keep their relative order.
func Sort(s Series) Series {
	out := make(Series, len(s))
	copy(out, s)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// FilterYears keeps the points whose year lies in r.
func FilterYears(s Series, r YearRange) Series {
	out := make(Series, 0, len(s))
	for _, p := range s {
		if r.Contains(p.Year) {
			out = append(out, p)
		}
	}
	return out
}
