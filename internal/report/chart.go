package report

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrTooFewPoints is returned when a chart would have fewer than two shared years.
var ErrTooFewPoints = errors.New("chart needs at least two shared years")

var (
	colorX = drawing.ColorFromHex("1c3d5a")
	colorY = drawing.ColorFromHex("e66101")
)

// ChartOptions sizes and encodes a chart.
type ChartOptions struct {
	Width  int
	Height int
	// Format is "png" or "svg"; empty derives it from the output file extension.
	Format string
}

// ChartFormatFor returns the image format implied by path, defaulting to png.
func ChartFormatFor(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".svg") {
		return "svg"
	}
	return "png"
}

// WriteChart draws the normalized comparison as two lines over year, X on the left axis
// and Y on the right axis, both scaled to [0,1].
func WriteChart(w io.Writer, c *Comparison, opt ChartOptions) error {
	if len(c.Points) < 2 {
		return ErrTooFewPoints
	}
	if opt.Width <= 0 {
		opt.Width = 960
	}
	if opt.Height <= 0 {
		opt.Height = 540
	}
	years := make([]float64, len(c.Points))
	xs := make([]float64, len(c.Points))
	ys := make([]float64, len(c.Points))
	for i, p := range c.Points {
		years[i], xs[i], ys[i] = float64(p.Year), p.X, p.Y
	}
	unit := &chart.ContinuousRange{Min: 0, Max: 1}
	yearFormatter := func(v interface{}) string {
		if f, ok := v.(float64); ok {
			return fmt.Sprintf("%.0f", f)
		}
		return ""
	}

	title := fmt.Sprintf("%s vs %s", c.X.title(), c.Y.title())
	if c.Entity != "" {
		title += " | " + c.Entity
	}
	ch := chart.Chart{
		Title:      title,
		Width:      opt.Width,
		Height:     opt.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.XAxis{Name: "Year", ValueFormatter: yearFormatter},
		YAxis:      chart.YAxis{Name: c.X.title(), Range: unit},
		YAxisSecondary: chart.YAxis{
			Name:  c.Y.title(),
			Range: &chart.ContinuousRange{Min: 0, Max: 1},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    c.X.title(),
				Style:   chart.Style{StrokeColor: colorX, StrokeWidth: 2, DotColor: colorX, DotWidth: 3},
				XValues: years,
				YValues: xs,
			},
			chart.ContinuousSeries{
				Name:    c.Y.title(),
				YAxis:   chart.YAxisSecondary,
				Style:   chart.Style{StrokeColor: colorY, StrokeWidth: 2, DotColor: colorY, DotWidth: 3},
				XValues: years,
				YValues: ys,
			},
		},
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	render := chart.PNG
	format := strings.ToLower(opt.Format)
	switch format {
	case "", "png":
	case "svg":
		render = chart.SVG
	default:
		return fmt.Errorf("unknown chart format %q (use png or svg)", opt.Format)
	}
	if err := ch.Render(render, w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}
