package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/trendloom-cli/internal/analysis"
	"github.com/KaramelBytes/trendloom-cli/internal/series"
)

const (
	sheetAligned = "Aligned"
	sheetSummary = "Summary"
	// Excel rejects longer sheet names.
	maxSheetName = 31
)

// WriteWorkbook exports the comparison as an XLSX workbook: the aligned normalized
// points, each raw series on its own sheet, and the statistics when present.
func WriteWorkbook(w io.Writer, c *Comparison) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheetAligned); err != nil {
		return fmt.Errorf("workbook: %w", err)
	}
	rows := [][]any{{"Year", c.X.ID + " (normalized)", c.Y.ID + " (normalized)"}}
	for _, p := range c.Points {
		rows = append(rows, []any{p.Year, p.X, p.Y})
	}
	if err := writeRows(f, sheetAligned, rows); err != nil {
		return err
	}

	used := map[string]bool{sheetAligned: true, sheetSummary: true}
	for _, a := range []Axis{c.X, c.Y} {
		name := sheetName(a.ID, used)
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("workbook: %w", err)
		}
		if err := writeRows(f, name, rawRows(a)); err != nil {
			return err
		}
	}
	if c.Stats != nil {
		if _, err := f.NewSheet(sheetSummary); err != nil {
			return fmt.Errorf("workbook: %w", err)
		}
		if err := writeRows(f, sheetSummary, summaryRows(c.Stats)); err != nil {
			return err
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func rawRows(a Axis) [][]any {
	rows := [][]any{{"Year", a.title()}}
	for _, p := range series.Sort(a.Raw) {
		rows = append(rows, []any{p.Year, p.Value})
	}
	return rows
}

func summaryRows(r *analysis.Report) [][]any {
	rows := [][]any{{"Variable", "Points", "From", "To", "Min", "Max", "Mean", "Std", "Outliers"}}
	for _, s := range []analysis.Summary{r.X, r.Y} {
		rows = append(rows, []any{s.ID, s.Points, s.From, s.To, s.Min, s.Max, s.Mean, s.Std, len(s.OutlierYears)})
	}
	if r.HasR {
		rows = append(rows, []any{}, []any{"Pearson r", r.R})
	}
	return rows
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("workbook %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func sheetName(id string, used map[string]bool) string {
	name := id
	if len(name) > maxSheetName {
		name = name[:maxSheetName]
	}
	base := name
	for i := 2; used[name]; i++ {
		suffix := fmt.Sprintf("_%d", i)
		if len(base)+len(suffix) > maxSheetName {
			base = base[:maxSheetName-len(suffix)]
		}
		name = base + suffix
	}
	used[name] = true
	return name
}
