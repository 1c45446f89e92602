package dataset

import (
	"fmt"
	"sort"
	"time"

	"github.com/KaramelBytes/trendloom-cli/internal/catalog"
	"github.com/KaramelBytes/trendloom-cli/internal/series"
)

// Snapshot is the immutable result of one load. It is safe for concurrent readers.
type Snapshot struct {
	ID         string
	View       string
	Entity     string // code, empty for views that are not per-entity
	EntityName string
	Years      series.YearRange
	LoadedAt   time.Time

	fallback float64
	order    []string
	labels   map[string]string
	series   map[string]series.Series
	problems map[string]error
}

// IDs returns the variable ids in catalog order.
func (s *Snapshot) IDs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Label returns the display label of a variable.
func (s *Snapshot) Label(id string) string {
	if l := s.labels[id]; l != "" {
		return l
	}
	return id
}

// Series returns a copy of the extracted series for id, sorted by year.
func (s *Snapshot) Series(id string) (series.Series, error) {
	pts, ok := s.series[id]
	if !ok {
		return nil, fmt.Errorf("%w %q in snapshot of %s", catalog.ErrUnknownVariable, id, s.View)
	}
	out := make(series.Series, len(pts))
	copy(out, pts)
	return out, nil
}

// Problem returns the extraction error recorded for id, if any.
func (s *Snapshot) Problem(id string) error {
	return s.problems[id]
}

// Problems returns the ids with recorded extraction errors in ascending order.
func (s *Snapshot) Problems() []string {
	out := make([]string, 0, len(s.problems))
	for id := range s.problems {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Compare narrows x and y to window, normalizes each onto [0,1] independently and
// aligns them on their shared years.
func (s *Snapshot) Compare(x, y string, window series.YearRange) ([]series.AlignedPoint, error) {
	xs, err := s.Series(x)
	if err != nil {
		return nil, err
	}
	ys, err := s.Series(y)
	if err != nil {
		return nil, err
	}
	r := s.Years.Narrow(window)
	xs = series.NormalizeWith(series.FilterYears(xs, r), s.fallback)
	ys = series.NormalizeWith(series.FilterYears(ys, r), s.fallback)
	return series.Align(xs, ys), nil
}
