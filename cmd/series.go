package cmd

import (
	"fmt"

	"github.com/KaramelBytes/trendloom-cli/internal/report"
	"github.com/KaramelBytes/trendloom-cli/internal/series"
	"github.com/spf13/cobra"
)

var (
	serView      string
	serEntity    string
	serFrom      int
	serTo        int
	serNormalize bool
	serFormat    string
	serOutput    string
)

var seriesCmd = &cobra.Command{
	Use:   "series <variable>",
	Short: "Print one variable's yearly series",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat(serFormat)
		if err != nil {
			return err
		}
		l, err := newLoader()
		if err != nil {
			return err
		}
		v, err := l.Catalog.View(viewOrDefault(serView))
		if err != nil {
			return err
		}
		vr, err := v.Variable(args[0])
		if err != nil {
			return err
		}
		snap, err := l.Load(cmd.Context(), v.Name, entityFor(v, serEntity))
		if err != nil {
			return err
		}
		s, err := snap.Series(vr.ID)
		if err != nil {
			return err
		}
		s = series.FilterYears(s, snap.Years.Narrow(series.YearRange{From: serFrom, To: serTo}))
		if serNormalize {
			s = series.NormalizeWith(s, cfg.ConstantFallback)
		}
		doc := &report.SeriesDoc{
			View:       v.Name,
			Entity:     snap.Entity,
			ID:         vr.ID,
			Label:      vr.Label,
			Unit:       vr.Unit,
			Normalized: serNormalize,
			Points:     s,
		}
		if p := snap.Problem(vr.ID); p != nil {
			doc.Problem = p.Error()
			warnProblems(cmd, snap, vr.ID)
		}
		return emit(cmd, format, doc, serOutput, fmt.Sprintf("series %s", vr.ID))
	},
}

func init() {
	rootCmd.AddCommand(seriesCmd)
	seriesCmd.Flags().StringVar(&serView, "view", "", "catalog view (default from config)")
	seriesCmd.Flags().StringVarP(&serEntity, "entity", "e", "", "country code or name for per-entity views")
	seriesCmd.Flags().IntVar(&serFrom, "from", 0, "first year to include")
	seriesCmd.Flags().IntVar(&serTo, "to", 0, "last year to include")
	seriesCmd.Flags().BoolVar(&serNormalize, "normalize", false, "rescale values onto [0,1]")
	seriesCmd.Flags().StringVarP(&serFormat, "format", "f", "", "output format: md|json|csv (default from config)")
	seriesCmd.Flags().StringVarP(&serOutput, "output", "o", "", "write to file instead of stdout")
}
