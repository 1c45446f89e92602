// Package catalog describes which variables a view offers and where each one comes from.
//
// A Catalog is declarative: every Source names a file, how to read it, which
// extraction strategy applies and which column hints the resolver should try.
// Catalogs are built once, validated, and then only read.
package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/trendloom-cli/internal/choropleth"
	"github.com/KaramelBytes/trendloom-cli/internal/series"
	"github.com/KaramelBytes/trendloom-cli/internal/table"
)

var (
	ErrUnknownView     = errors.New("unknown view")
	ErrUnknownVariable = errors.New("unknown variable")
)

// Transform is applied to a series after aggregation and sorting.
type Transform string

const (
	TransformNone Transform = "none"
	// TransformYoY turns yearly levels into year-over-year growth in percent.
	TransformYoY Transform = "yoy"
)

// Source tells the loader how to turn one file into observations.
type Source struct {
	File         string                 `yaml:"file"`
	Format       string                 `yaml:"format,omitempty"`
	Sheet        string                 `yaml:"sheet,omitempty"`
	SkipLines    int                    `yaml:"skip_lines,omitempty"`
	Strategy     series.Strategy        `yaml:"strategy"`
	YearColumn   string                 `yaml:"year_column,omitempty"`
	ValueColumn  string                 `yaml:"value_column,omitempty"`
	EntityColumn string                 `yaml:"entity_column,omitempty"`
	Entity       series.EntityKey       `yaml:"entity,omitempty"`
	Transform    Transform              `yaml:"transform,omitempty"`
	Aggregate    choropleth.Aggregation `yaml:"aggregate,omitempty"`
}

// Layout returns the extraction layout for the source.
func (s Source) Layout() series.Layout {
	key := s.Entity
	if key == "" {
		key = series.KeyNone
	}
	return series.Layout{
		Strategy:     s.Strategy,
		YearColumn:   s.YearColumn,
		ValueColumn:  s.ValueColumn,
		EntityColumn: s.EntityColumn,
		Key:          key,
	}
}

// TableOptions returns the reader options for the source file.
func (s Source) TableOptions() table.Options {
	return table.Options{Format: s.Format, SkipLines: s.SkipLines, Sheet: s.Sheet}
}

// ReadKey identifies a distinct file read; two variables sharing it share one parse.
func (s Source) ReadKey() string {
	return fmt.Sprintf("%s|%s|%s|%d", s.File, s.Format, s.Sheet, s.SkipLines)
}

// Variable is one selectable indicator.
type Variable struct {
	ID    string `yaml:"id"`
	Label string `yaml:"label"`
	Unit  string `yaml:"unit,omitempty"`
	// Auxiliary variables feed other outputs (tooltips) and are hidden from pickers.
	Auxiliary bool   `yaml:"auxiliary,omitempty"`
	Source    Source `yaml:"source"`
}

// Defaults are the variables preselected on the x and y axes.
type Defaults struct {
	X string `yaml:"x,omitempty"`
	Y string `yaml:"y,omitempty"`
}

// View is one page of the application: a year range and its variables.
type View struct {
	Name           string           `yaml:"-"`
	Description    string           `yaml:"description,omitempty"`
	Years          series.YearRange `yaml:"years"`
	EntityRequired bool             `yaml:"entity_required,omitempty"`
	Defaults       Defaults         `yaml:"defaults,omitempty"`
	Variables      []Variable       `yaml:"variables"`
}

// Catalog is the full set of views plus the entity directory file.
type Catalog struct {
	Entities string           `yaml:"entities"`
	Views    map[string]*View `yaml:"views"`
}

// Parse decodes a YAML catalog and validates it.
func Parse(r io.Reader) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	for name, v := range c.Views {
		if v == nil {
			return nil, fmt.Errorf("catalog: view %q is empty", name)
		}
		v.Name = name
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Load reads a YAML catalog from path.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	c, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Dump writes c as YAML.
func (c *Catalog) Dump(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	return enc.Close()
}

// Validate checks every view and source descriptor and reports all problems at once.
func (c *Catalog) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Entities) == "" {
		errs = append(errs, errors.New("entities file is required"))
	}
	if len(c.Views) == 0 {
		errs = append(errs, errors.New("no views defined"))
	}
	for _, name := range c.ViewNames() {
		errs = append(errs, c.Views[name].validate()...)
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid catalog: %w", errors.Join(errs...))
	}
	return nil
}

func (v *View) validate() []error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("view %s: "+format, append([]any{v.Name}, args...)...))
	}
	if v.Years.From <= 0 {
		bad("years.from must be positive")
	}
	if v.Years.To != 0 && v.Years.To < v.Years.From {
		bad("years %s ends before it starts", v.Years)
	}
	if len(v.Variables) == 0 {
		bad("no variables")
	}
	seen := map[string]bool{}
	for _, vr := range v.Variables {
		if vr.ID == "" {
			bad("variable without id")
			continue
		}
		if seen[vr.ID] {
			bad("duplicate variable %q", vr.ID)
		}
		seen[vr.ID] = true
		s := vr.Source
		if strings.TrimSpace(s.File) == "" {
			bad("%s: source file is required", vr.ID)
		}
		if s.SkipLines < 0 {
			bad("%s: negative skip_lines %d", vr.ID, s.SkipLines)
		}
		switch strings.ToLower(s.Format) {
		case "", "csv", "tsv", "xlsx":
		default:
			bad("%s: unknown format %q", vr.ID, s.Format)
		}
		switch s.Strategy {
		case series.StrategyWide:
		case series.StrategyLong:
			if s.ValueColumn == "" {
				bad("%s: long strategy needs value_column", vr.ID)
			}
		default:
			bad("%s: unknown strategy %q", vr.ID, s.Strategy)
		}
		switch s.Entity {
		case "", series.KeyNone, series.KeyCode, series.KeyName:
		default:
			bad("%s: unknown entity key %q", vr.ID, s.Entity)
		}
		switch s.Transform {
		case "", TransformNone, TransformYoY:
		default:
			bad("%s: unknown transform %q", vr.ID, s.Transform)
		}
		if !s.Aggregate.Valid() {
			bad("%s: unknown aggregate %q", vr.ID, s.Aggregate)
		}
	}
	for _, d := range []string{v.Defaults.X, v.Defaults.Y} {
		if d != "" && !seen[d] {
			bad("default %q is not a variable of this view", d)
		}
	}
	return errs
}

// ViewNames returns the view names in ascending order.
func (c *Catalog) ViewNames() []string {
	out := make([]string, 0, len(c.Views))
	for name := range c.Views {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// View returns the named view.
func (c *Catalog) View(name string) (*View, error) {
	v, ok := c.Views[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (have %s)", ErrUnknownView, name, strings.Join(c.ViewNames(), ", "))
	}
	return v, nil
}

// Variable returns variable id of the named view.
func (c *Catalog) Variable(view, id string) (*Variable, error) {
	v, err := c.View(view)
	if err != nil {
		return nil, err
	}
	return v.Variable(id)
}

// Variables returns the view's variables in declaration order.
func (c *Catalog) Variables(view string, auxiliary bool) ([]Variable, error) {
	v, err := c.View(view)
	if err != nil {
		return nil, err
	}
	out := make([]Variable, 0, len(v.Variables))
	for _, vr := range v.Variables {
		if vr.Auxiliary && !auxiliary {
			continue
		}
		out = append(out, vr)
	}
	return out, nil
}

// Variable looks up id within the view.
func (v *View) Variable(id string) (*Variable, error) {
	for i := range v.Variables {
		if v.Variables[i].ID == id {
			return &v.Variables[i], nil
		}
	}
	ids := make([]string, 0, len(v.Variables))
	for _, vr := range v.Variables {
		ids = append(ids, vr.ID)
	}
	return nil, fmt.Errorf("%w %q in view %s (have %s)", ErrUnknownVariable, id, v.Name, strings.Join(ids, ", "))
}
