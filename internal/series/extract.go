package series

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/KaramelBytes/trendloom-cli/internal/table"
)

// Strategy selects how observations are laid out in a source.
type Strategy string

const (
	// StrategyWide has one row per entity and one column per year.
	StrategyWide Strategy = "wide"
	// StrategyLong has one row per (entity, time) observation.
	StrategyLong Strategy = "long"
)

// EntityKey names what identifies the entity in a source row.
type EntityKey string

const (
	KeyCode EntityKey = "code"
	KeyName EntityKey = "name"
	KeyNone EntityKey = "none"
)

// Layout describes where a source keeps its years, values and entity keys.
// Column fields are resolver hints, not required exact names.
type Layout struct {
	Strategy     Strategy
	YearColumn   string
	ValueColumn  string
	EntityColumn string
	Key          EntityKey
}

// Observation is one extracted cell before it is narrowed to a single entity.
// Entity is empty when the layout has no entity key.
type Observation struct {
	Entity string
	Year   int
	Value  float64
}

// Stats counts what an extraction kept and dropped.
type Stats struct {
	Rows     int
	Observed int
	// Skipped counts cells (wide) or rows (long) whose year or value did not parse
	// as a finite number.
	Skipped int
}

var yearHeader = regexp.MustCompile(`^\d{4}$`)

// Observe extracts every observation from t according to l.
// Unparsable or non-finite cells are dropped one by one; a missing column fails the whole source.
func Observe(t *table.Table, l Layout) ([]Observation, Stats, error) {
	var entityCol string
	if l.Key != KeyNone && l.Key != "" {
		intent := IntentCode
		if l.Key == KeyName {
			intent = IntentEntity
		}
		col, err := Resolve(t.Name, t.Header, intent, l.EntityColumn)
		if err != nil {
			return nil, Stats{}, err
		}
		entityCol = col
	}
	switch l.Strategy {
	case StrategyWide:
		return observeWide(t, entityCol)
	case StrategyLong:
		return observeLong(t, l, entityCol)
	default:
		return nil, Stats{}, fmt.Errorf("observe %s: unknown strategy %q", t.Name, l.Strategy)
	}
}

func observeWide(t *table.Table, entityCol string) ([]Observation, Stats, error) {
	type yearCol struct {
		name string
		year int
	}
	var years []yearCol
	for _, h := range t.Header {
		if yearHeader.MatchString(h) {
			y, _ := table.ParseYear(h)
			years = append(years, yearCol{name: h, year: y})
		}
	}
	if len(years) == 0 {
		return nil, Stats{}, &SchemaMismatchError{Source: t.Name, Intent: IntentYear, Hint: "YYYY", Columns: t.Columns()}
	}
	st := Stats{Rows: len(t.Rows)}
	var out []Observation
	for _, row := range t.Rows {
		entity := ""
		if entityCol != "" {
			entity = row[entityCol]
		}
		for _, yc := range years {
			v, ok := table.ParseNumber(row[yc.name])
			if !ok {
				st.Skipped++
				continue
			}
			out = append(out, Observation{Entity: entity, Year: yc.year, Value: v})
		}
	}
	st.Observed = len(out)
	return out, st, nil
}

func observeLong(t *table.Table, l Layout, entityCol string) ([]Observation, Stats, error) {
	yearCol, err := Resolve(t.Name, t.Header, IntentYear, l.YearColumn)
	if err != nil {
		return nil, Stats{}, err
	}
	valueCol, err := Resolve(t.Name, t.Header, IntentValue, l.ValueColumn)
	if err != nil {
		return nil, Stats{}, err
	}
	st := Stats{Rows: len(t.Rows)}
	out := make([]Observation, 0, len(t.Rows))
	for _, row := range t.Rows {
		year, ok := table.ParseYear(row[yearCol])
		if !ok {
			st.Skipped++
			continue
		}
		v, ok := table.ParseNumber(row[valueCol])
		if !ok {
			st.Skipped++
			continue
		}
		entity := ""
		if entityCol != "" {
			entity = row[entityCol]
		}
		out = append(out, Observation{Entity: entity, Year: year, Value: v})
	}
	st.Observed = len(out)
	return out, st, nil
}

// Matcher decides whether an observation's entity key belongs to the requested entity.
type Matcher func(entity string) bool

// MatchAll keeps every observation; used for single-entity global sources.
func MatchAll(string) bool { return true }

// MatchCode matches entity codes case-insensitively.
func MatchCode(code string) Matcher {
	code = strings.TrimSpace(code)
	return func(entity string) bool {
		return code != "" && strings.EqualFold(strings.TrimSpace(entity), code)
	}
}

// MatchFolded compares fold(entity) against an already folded key.
func MatchFolded(key string, fold func(string) string) Matcher {
	return func(entity string) bool {
		return key != "" && fold(entity) == key
	}
}

// Select narrows observations to those accepted by m.
func Select(obs []Observation, m Matcher) Series {
	out := make(Series, 0)
	for _, o := range obs {
		if m(o.Entity) {
			out = append(out, Point{Year: o.Year, Value: o.Value})
		}
	}
	return out
}

// GrowthRate derives year-over-year percentage change from yearly levels:
// (curr-prev)/prev*100 for every year whose predecessor year is present.
// Years without a predecessor, and non-finite results (prev == 0), are skipped.
func GrowthRate(levels Series) Series {
	sorted := Sort(levels)
	byYear := make(map[int]float64, len(sorted))
	for _, p := range sorted {
		if _, ok := byYear[p.Year]; !ok {
			byYear[p.Year] = p.Value
		}
	}
	out := make(Series, 0, len(sorted))
	for i, p := range sorted {
		if i > 0 && sorted[i-1].Year == p.Year {
			continue
		}
		prev, ok := byYear[p.Year-1]
		if !ok {
			continue
		}
		g := (byYear[p.Year] - prev) / prev * 100
		if math.IsNaN(g) || math.IsInf(g, 0) {
			continue
		}
		out = append(out, Point{Year: p.Year, Value: g})
	}
	return out
}
