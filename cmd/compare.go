package cmd

import (
	"bytes"
	"fmt"

	"github.com/KaramelBytes/trendloom-cli/internal/analysis"
	"github.com/KaramelBytes/trendloom-cli/internal/report"
	"github.com/KaramelBytes/trendloom-cli/internal/series"
	"github.com/KaramelBytes/trendloom-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	cmpView       string
	cmpEntity     string
	cmpFrom       int
	cmpUntil      int
	cmpFormat     string
	cmpOutput     string
	cmpStats      bool
	cmpOutlierThr float64
	cmpChart      string
	cmpWorkbook   string
)

var compareCmd = &cobra.Command{
	Use:   "compare [x] [y]",
	Short: "Normalize two variables and align them on shared years",
	Long: `Compare loads a view, rescales the two chosen variables onto [0,1] independently
and pairs their values on the years both have. Without arguments the view's default
x and y variables are used.`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat(cmpFormat)
		if err != nil {
			return err
		}
		l, err := newLoader()
		if err != nil {
			return err
		}
		v, err := l.Catalog.View(viewOrDefault(cmpView))
		if err != nil {
			return err
		}
		xID, yID := v.Defaults.X, v.Defaults.Y
		if len(args) > 0 {
			xID = args[0]
		}
		if len(args) > 1 {
			yID = args[1]
		}
		if xID == "" || yID == "" {
			return fmt.Errorf("view %s has no default pair; pass both variables", v.Name)
		}
		xv, err := v.Variable(xID)
		if err != nil {
			return err
		}
		yv, err := v.Variable(yID)
		if err != nil {
			return err
		}

		snap, err := l.Load(cmd.Context(), v.Name, entityFor(v, cmpEntity))
		if err != nil {
			return err
		}
		warnProblems(cmd, snap, xID, yID)
		window := snap.Years.Narrow(series.YearRange{From: cmpFrom, To: cmpUntil})
		pts, err := snap.Compare(xID, yID, window)
		if err != nil {
			return err
		}
		xs, _ := snap.Series(xID)
		ys, _ := snap.Series(yID)
		c := &report.Comparison{
			SnapshotID: snap.ID,
			View:       v.Name,
			Entity:     snap.Entity,
			Window:     window,
			X:          report.Axis{ID: xv.ID, Label: xv.Label, Unit: xv.Unit, Raw: series.FilterYears(xs, window)},
			Y:          report.Axis{ID: yv.ID, Label: yv.Label, Unit: yv.Unit, Raw: series.FilterYears(ys, window)},
			Points:     pts,
		}
		if cmpStats || cmpWorkbook != "" {
			opt := analysis.DefaultOptions()
			if cmpOutlierThr > 0 {
				opt.OutlierThreshold = cmpOutlierThr
			}
			title := fmt.Sprintf("%s vs %s", xv.Label, yv.Label)
			if snap.EntityName != "" {
				title += " (" + snap.EntityName + ")"
			}
			c.Stats = analysis.Compare(title,
				analysis.Summarize(xv.ID, xv.Label, c.X.Raw, opt),
				analysis.Summarize(yv.ID, yv.Label, c.Y.Raw, opt),
				pts)
		}
		if len(pts) == 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: %s and %s share no years in %s\n", xID, yID, window)
		}

		if cmpChart != "" {
			var buf bytes.Buffer
			opt := report.ChartOptions{Width: cfg.ChartWidth, Height: cfg.ChartHeight, Format: report.ChartFormatFor(cmpChart)}
			if err := report.WriteChart(&buf, c, opt); err != nil {
				return err
			}
			if err := utils.SafeWriteFile(cmpChart, buf.Bytes()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote chart to %s\n", cmpChart)
		}
		if cmpWorkbook != "" {
			var buf bytes.Buffer
			if err := report.WriteWorkbook(&buf, c); err != nil {
				return err
			}
			if err := utils.SafeWriteFile(cmpWorkbook, buf.Bytes()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote workbook to %s\n", cmpWorkbook)
		}
		return emit(cmd, format, c, cmpOutput, "comparison")
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)
	compareCmd.Flags().StringVar(&cmpView, "view", "", "catalog view (default from config)")
	compareCmd.Flags().StringVarP(&cmpEntity, "entity", "e", "", "country code or name for per-entity views")
	compareCmd.Flags().IntVar(&cmpFrom, "from", 0, "first year of the comparison window")
	compareCmd.Flags().IntVar(&cmpUntil, "until", 0, "last year of the comparison window")
	compareCmd.Flags().StringVarP(&cmpFormat, "format", "f", "", "output format: md|json|csv (default from config)")
	compareCmd.Flags().StringVarP(&cmpOutput, "output", "o", "", "write to file instead of stdout")
	compareCmd.Flags().BoolVar(&cmpStats, "stats", false, "include summary statistics and correlation")
	compareCmd.Flags().Float64Var(&cmpOutlierThr, "outlier-threshold", 0, "robust z-score threshold for outliers (default 3.5)")
	compareCmd.Flags().StringVar(&cmpChart, "chart", "", "write a dual-axis chart (.png or .svg)")
	compareCmd.Flags().StringVar(&cmpWorkbook, "xlsx", "", "write aligned and raw series to an Excel workbook")
}
