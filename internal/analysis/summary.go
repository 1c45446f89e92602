// Package analysis computes descriptive statistics for yearly series and the
// correlation of two aligned series, and renders them as a compact Markdown report.
package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/trendloom-cli/internal/series"
)

// Options controls summary behavior.
type Options struct {
	// OutlierThreshold flags points whose robust Z-score (MAD based) exceeds it. 0 uses 3.5; negative disables.
	OutlierThreshold float64
}

// DefaultOptions returns reasonable defaults for series summaries.
func DefaultOptions() Options {
	return Options{OutlierThreshold: 3.5}
}

// Summary captures statistics of one series.
type Summary struct {
	ID     string
	Label  string
	Points int
	From   int
	To     int
	// Gaps lists years between From and To without a value.
	Gaps    []int
	Min     float64
	MinYear int
	Max     float64
	MaxYear int
	Mean    float64
	Std     float64
	// Outliers (robust Z via MAD)
	OutlierYears     []int
	OutliersMaxAbsZ  float64
	OutlierThreshold float64
}

// Summarize computes statistics over s. s does not need to be sorted.
func Summarize(id, label string, s series.Series, opt Options) Summary {
	sum := Summary{ID: id, Label: label}
	if len(s) == 0 {
		return sum
	}
	sorted := series.Sort(s)
	sum.Points = len(sorted)
	sum.From, sum.To = sorted[0].Year, sorted[len(sorted)-1].Year
	sum.Min, sum.Max = math.Inf(1), math.Inf(-1)

	// Welford update
	var n int
	var mean, m2 float64
	vals := make([]float64, 0, len(sorted))
	present := make(map[int]bool, len(sorted))
	for _, p := range sorted {
		present[p.Year] = true
		vals = append(vals, p.Value)
		n++
		delta := p.Value - mean
		mean += delta / float64(n)
		m2 += delta * (p.Value - mean)
		if p.Value < sum.Min {
			sum.Min, sum.MinYear = p.Value, p.Year
		}
		if p.Value > sum.Max {
			sum.Max, sum.MaxYear = p.Value, p.Year
		}
	}
	sum.Mean = mean
	if n > 1 {
		sum.Std = math.Sqrt(m2 / float64(n-1))
	}
	for y := sum.From; y <= sum.To; y++ {
		if !present[y] {
			sum.Gaps = append(sum.Gaps, y)
		}
	}

	thr := opt.OutlierThreshold
	if thr == 0 {
		thr = 3.5
	}
	if thr > 0 {
		sum.OutlierThreshold = thr
		median, mad := medianMAD(vals)
		if mad > 0 {
			for _, p := range sorted {
				az := math.Abs(0.6745 * (p.Value - median) / mad)
				if az > thr {
					sum.OutlierYears = append(sum.OutlierYears, p.Year)
				}
				if az > sum.OutliersMaxAbsZ {
					sum.OutliersMaxAbsZ = az
				}
			}
		}
	}
	return sum
}

// Pearson returns the correlation of X and Y over aligned points.
// ok is false with fewer than two points or when either side is constant.
func Pearson(pts []series.AlignedPoint) (r float64, ok bool) {
	var n, sumX, sumY, sumXX, sumYY, sumXY float64
	for _, p := range pts {
		n++
		sumX += p.X
		sumY += p.Y
		sumXX += p.X * p.X
		sumYY += p.Y * p.Y
		sumXY += p.X * p.Y
	}
	if n < 2 {
		return 0, false
	}
	denom := math.Sqrt((n*sumXX - sumX*sumX) * (n*sumYY - sumY*sumY))
	if denom == 0 || math.IsNaN(denom) {
		return 0, false
	}
	r = (n*sumXY - sumX*sumY) / denom
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r, true
}

// Report is a markdown-friendly comparison of two series.
type Report struct {
	Title    string
	X, Y     Summary
	Aligned  int
	From, To int
	R        float64
	HasR     bool
	Warnings []string
}

// Compare summarizes x and y (raw values) and correlates the aligned points.
func Compare(title string, x, y Summary, pts []series.AlignedPoint) *Report {
	rep := &Report{Title: title, X: x, Y: y, Aligned: len(pts)}
	if len(pts) > 0 {
		rep.From, rep.To = pts[0].Year, pts[len(pts)-1].Year
	}
	rep.R, rep.HasR = Pearson(pts)
	for _, s := range []Summary{x, y} {
		if s.Points == 0 {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("%s has no data in range", s.ID))
		}
	}
	if len(pts) == 0 && x.Points > 0 && y.Points > 0 {
		rep.Warnings = append(rep.Warnings, "series share no years")
	} else if len(pts) > 0 && !rep.HasR {
		rep.Warnings = append(rep.Warnings, "correlation undefined (fewer than two shared years or a constant series)")
	}
	return rep
}

// Markdown renders the report as labelled sections.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[COMPARISON SUMMARY]\n")
	if r.Title != "" {
		fmt.Fprintf(&b, "View: %s\n", r.Title)
	}
	fmt.Fprintf(&b, "X: %s\nY: %s\n", safeName(r.X.Label, r.X.ID), safeName(r.Y.Label, r.Y.ID))
	if r.Aligned > 0 {
		fmt.Fprintf(&b, "Shared years: %d (%d-%d)\n", r.Aligned, r.From, r.To)
	} else {
		b.WriteString("Shared years: 0\n")
	}

	b.WriteString("\n[SERIES]\n")
	for _, s := range []Summary{r.X, r.Y} {
		if s.Points == 0 {
			fmt.Fprintf(&b, "- %s: no data\n", s.ID)
			continue
		}
		fmt.Fprintf(&b, "- %s: %d points %d-%d; min %.4g (%d), max %.4g (%d), mean %.4g, std %.4g",
			s.ID, s.Points, s.From, s.To, s.Min, s.MinYear, s.Max, s.MaxYear, s.Mean, s.Std)
		if len(s.Gaps) > 0 {
			fmt.Fprintf(&b, "; gaps: %s", joinYears(s.Gaps))
		}
		if s.OutlierThreshold > 0 && len(s.OutlierYears) > 0 {
			fmt.Fprintf(&b, "; outliers: %d above |z|>%.1f (%s)", len(s.OutlierYears), s.OutlierThreshold, joinYears(s.OutlierYears))
		}
		b.WriteString("\n")
	}

	if r.HasR {
		b.WriteString("\n[CORRELATION]\n")
		fmt.Fprintf(&b, "- %s ~ %s: r=%.3f (%s)\n", r.X.ID, r.Y.ID, r.R, strength(r.R))
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func strength(r float64) string {
	a := math.Abs(r)
	dir := "positive"
	if r < 0 {
		dir = "negative"
	}
	switch {
	case a >= 0.7:
		return "strong " + dir
	case a >= 0.4:
		return "moderate " + dir
	case a >= 0.2:
		return "weak " + dir
	}
	return "negligible"
}

func safeName(label, id string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return id
	}
	return fmt.Sprintf("%s (%s)", label, id)
}

func joinYears(ys []int) string {
	parts := make([]string, len(ys))
	for i, y := range ys {
		parts[i] = fmt.Sprint(y)
	}
	return strings.Join(parts, ", ")
}

// medianMAD computes median and MAD (median absolute deviation) of values.
func medianMAD(vals []float64) (median, mad float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	median = quantile(cp, 0.5)
	dev := make([]float64, len(cp))
	for i, v := range cp {
		dev[i] = math.Abs(v - median)
	}
	sort.Float64s(dev)
	mad = quantile(dev, 0.5)
	return
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
