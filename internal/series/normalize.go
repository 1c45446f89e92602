package series

// ConstantFallback is the normalized value given to every point of a constant series.
const ConstantFallback = 0.5

// Normalize rescales s linearly onto [0,1] using its own extent.
// A constant series maps to ConstantFallback.
func Normalize(s Series) Series {
	return NormalizeWith(s, ConstantFallback)
}

// NormalizeWith is Normalize with an explicit value for constant series.
// The minimum maps to exactly 0 and the maximum to exactly 1.
func NormalizeWith(s Series, fallback float64) Series {
	out := make(Series, len(s))
	if len(s) == 0 {
		return out
	}
	lo, hi := s[0].Value, s[0].Value
	for _, p := range s[1:] {
		if p.Value < lo {
			lo = p.Value
		}
		if p.Value > hi {
			hi = p.Value
		}
	}
	span := hi - lo
	for i, p := range s {
		out[i].Year = p.Year
		if span == 0 {
			out[i].Value = fallback
			continue
		}
		out[i].Value = (p.Value - lo) / span
	}
	return out
}
