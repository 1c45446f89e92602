package series

import "sort"

// Align inner-joins a and b on year and returns the pairs in ascending year order.
// Years present in only one series are dropped. When a series repeats a year the
// first occurrence is used.
func Align(a, b Series) []AlignedPoint {
	index := make(map[int]float64, len(b))
	for _, p := range b {
		if _, ok := index[p.Year]; !ok {
			index[p.Year] = p.Value
		}
	}
	out := make([]AlignedPoint, 0, min(len(a), len(index)))
	emitted := make(map[int]bool, len(a))
	for _, p := range a {
		y, ok := index[p.Year]
		if !ok || emitted[p.Year] {
			continue
		}
		emitted[p.Year] = true
		out = append(out, AlignedPoint{Year: p.Year, X: p.Value, Y: y})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}
