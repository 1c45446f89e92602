// Package report renders loaded series, comparisons and map slices as Markdown,
// JSON or CSV, and comparisons additionally as a chart image or XLSX workbook.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/KaramelBytes/trendloom-cli/internal/analysis"
	"github.com/KaramelBytes/trendloom-cli/internal/choropleth"
	"github.com/KaramelBytes/trendloom-cli/internal/series"
	"github.com/KaramelBytes/trendloom-cli/internal/utils"
)

// Format selects a text output encoding.
type Format string

const (
	FormatMarkdown Format = "md"
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
)

// ParseFormat accepts md, markdown, json or csv in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "md", "markdown":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("unknown output format %q (use md, json or csv)", s)
}

// Document is anything Write can render.
type Document interface {
	markdown(w io.Writer) error
	records() (header []string, rows [][]string)
}

// Write renders d to w in format f.
func Write(w io.Writer, f Format, d Document) error {
	switch f {
	case FormatMarkdown, "":
		return d.markdown(w)
	case FormatJSON:
		b, err := utils.PrettyJSON(d)
		if err != nil {
			return err
		}
		_, err = w.Write(append(b, '\n'))
		return err
	case FormatCSV:
		cw := csv.NewWriter(w)
		header, rows := d.records()
		if err := cw.Write(header); err != nil {
			return err
		}
		if err := cw.WriteAll(rows); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		return nil
	}
	return fmt.Errorf("unknown output format %q", f)
}

// Axis describes one compared variable.
type Axis struct {
	ID    string        `json:"id"`
	Label string        `json:"label"`
	Unit  string        `json:"unit,omitempty"`
	Raw   series.Series `json:"raw"`
}

func (a Axis) title() string {
	name := a.Label
	if name == "" {
		name = a.ID
	}
	if a.Unit != "" {
		return fmt.Sprintf("%s (%s)", name, a.Unit)
	}
	return name
}

// Comparison is two normalized series aligned on shared years.
type Comparison struct {
	SnapshotID string                `json:"snapshot_id,omitempty"`
	View       string                `json:"view"`
	Entity     string                `json:"entity,omitempty"`
	Window     series.YearRange      `json:"window"`
	X          Axis                  `json:"x"`
	Y          Axis                  `json:"y"`
	Points     []series.AlignedPoint `json:"points"`
	Stats      *analysis.Report      `json:"stats,omitempty"`
}

func (c *Comparison) markdown(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s vs %s\n\n", c.X.title(), c.Y.title())
	fmt.Fprintf(&b, "View: %s", c.View)
	if c.Entity != "" {
		fmt.Fprintf(&b, " | Entity: %s", c.Entity)
	}
	fmt.Fprintf(&b, " | Years: %s\n\n", c.Window)
	if len(c.Points) == 0 {
		b.WriteString("_No shared years._\n")
	} else {
		fmt.Fprintf(&b, "| Year | %s | %s |\n| --- | --- | --- |\n", safeCell(c.X.ID), safeCell(c.Y.ID))
		for _, p := range c.Points {
			fmt.Fprintf(&b, "| %d | %.4f | %.4f |\n", p.Year, p.X, p.Y)
		}
	}
	if c.Stats != nil {
		b.WriteString("\n")
		b.WriteString(c.Stats.Markdown())
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func (c *Comparison) records() ([]string, [][]string) {
	rows := make([][]string, 0, len(c.Points))
	for _, p := range c.Points {
		rows = append(rows, []string{strconv.Itoa(p.Year), formatFloat(p.X), formatFloat(p.Y)})
	}
	return []string{"year", c.X.ID, c.Y.ID}, rows
}

// SeriesDoc is one extracted series.
type SeriesDoc struct {
	View       string        `json:"view"`
	Entity     string        `json:"entity,omitempty"`
	ID         string        `json:"id"`
	Label      string        `json:"label"`
	Unit       string        `json:"unit,omitempty"`
	Normalized bool          `json:"normalized"`
	Problem    string        `json:"problem,omitempty"`
	Points     series.Series `json:"points"`
}

func (s *SeriesDoc) markdown(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", Axis{ID: s.ID, Label: s.Label, Unit: s.Unit}.title())
	fmt.Fprintf(&b, "View: %s", s.View)
	if s.Entity != "" {
		fmt.Fprintf(&b, " | Entity: %s", s.Entity)
	}
	if s.Normalized {
		b.WriteString(" | normalized")
	}
	b.WriteString("\n\n")
	if s.Problem != "" {
		fmt.Fprintf(&b, "> %s\n\n", s.Problem)
	}
	if len(s.Points) == 0 {
		b.WriteString("_No data._\n")
	} else {
		b.WriteString("| Year | Value |\n| --- | --- |\n")
		for _, p := range s.Points {
			fmt.Fprintf(&b, "| %d | %.4f |\n", p.Year, p.Value)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func (s *SeriesDoc) records() ([]string, [][]string) {
	rows := make([][]string, 0, len(s.Points))
	for _, p := range s.Points {
		rows = append(rows, []string{strconv.Itoa(p.Year), formatFloat(p.Value)})
	}
	return []string{"year", s.ID}, rows
}

// CodeValue is one country's value in a map slice.
type CodeValue struct {
	Code  string  `json:"code"`
	Name  string  `json:"name,omitempty"`
	Value float64 `json:"value"`
	// Note carries auxiliary tooltip text, e.g. formatted GDP in dollars.
	Note string `json:"note,omitempty"`
}

// MapDoc is one variable's choropleth slice for one year.
type MapDoc struct {
	View     string      `json:"view"`
	Variable string      `json:"variable"`
	Label    string      `json:"label"`
	Year     int         `json:"year"`
	Min      float64     `json:"min"`
	Max      float64     `json:"max"`
	Legend   []float64   `json:"legend,omitempty"`
	Values   []CodeValue `json:"values"`
}

// NewMapDoc slices idx for one variable and year. Values are ordered by code.
func NewMapDoc(view, variable, label string, year int, idx *choropleth.Index, steps int) *MapDoc {
	d := &MapDoc{View: view, Variable: variable, Label: label, Year: year}
	for code, v := range idx.Year(variable, year) {
		d.Values = append(d.Values, CodeValue{Code: code, Value: v})
	}
	sort.Slice(d.Values, func(i, j int) bool { return d.Values[i].Code < d.Values[j].Code })
	if lo, hi, ok := idx.Extent(variable, year); ok {
		d.Min, d.Max = lo, hi
		if steps > 0 {
			d.Legend = choropleth.LegendSteps(lo, hi, steps)
		}
	}
	return d
}

func (d *MapDoc) markdown(w io.Writer) error {
	var b strings.Builder
	label := d.Label
	if label == "" {
		label = d.Variable
	}
	fmt.Fprintf(&b, "# %s, %d\n\n", label, d.Year)
	if len(d.Values) == 0 {
		b.WriteString("_No data for this year._\n")
		_, err := io.WriteString(w, b.String())
		return err
	}
	fmt.Fprintf(&b, "Range: %.4f → %.4f (%d countries)\n", d.Min, d.Max, len(d.Values))
	if len(d.Legend) > 0 {
		stops := make([]string, len(d.Legend))
		for i, v := range d.Legend {
			stops[i] = strconv.FormatFloat(v, 'g', 4, 64)
		}
		fmt.Fprintf(&b, "Legend: %s\n", strings.Join(stops, " | "))
	}
	b.WriteString("\n")
	b.WriteString("| Code | Name | Value | Note |\n| --- | --- | --- | --- |\n")
	for _, v := range d.Values {
		fmt.Fprintf(&b, "| %s | %s | %.4f | %s |\n", v.Code, safeCell(v.Name), v.Value, safeCell(v.Note))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func (d *MapDoc) records() ([]string, [][]string) {
	rows := make([][]string, 0, len(d.Values))
	for _, v := range d.Values {
		rows = append(rows, []string{v.Code, v.Name, formatFloat(v.Value), v.Note})
	}
	return []string{"code", "name", d.Variable, "note"}, rows
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func safeCell(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
