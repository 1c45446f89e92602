package series

// Aggregate collapses points sharing a year into one point holding their arithmetic mean.
// Output keeps first-appearance order of years; call Sort for ascending order.
// Inputs are expected to be finite already; no NaN handling happens here.
func Aggregate(s Series) Series {
	type acc struct {
		sum float64
		n   int
	}
	groups := make(map[int]*acc, len(s))
	order := make([]int, 0, len(s))
	for _, p := range s {
		g, ok := groups[p.Year]
		if !ok {
			g = &acc{}
			groups[p.Year] = g
			order = append(order, p.Year)
		}
		g.sum += p.Value
		g.n++
	}
	out := make(Series, 0, len(order))
	for _, y := range order {
		g := groups[y]
		if g.n == 1 {
			out = append(out, Point{Year: y, Value: g.sum})
			continue
		}
		out = append(out, Point{Year: y, Value: g.sum / float64(g.n)})
	}
	return out
}
