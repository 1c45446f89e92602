package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/trendloom-cli/internal/catalog"
	"github.com/KaramelBytes/trendloom-cli/internal/choropleth"
	"github.com/KaramelBytes/trendloom-cli/internal/report"
	"github.com/spf13/cobra"
)

var (
	mapView        string
	mapYear        int
	mapCode        string
	mapFormat      string
	mapOutput      string
	mapLegendSteps int
)

var mapCmd = &cobra.Command{
	Use:   "map [variable]",
	Short: "Show one variable's per-country values for a year",
	Long: `Map builds the choropleth index of a view and prints the values of every country
for one year, with the legend stops used for coloring. Countries with dollar GDP data
carry it as a note. Without --year the last year of the view is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat(mapFormat)
		if err != nil {
			return err
		}
		l, err := newLoader()
		if err != nil {
			return err
		}
		v, err := l.Catalog.View(mapView)
		if err != nil {
			return err
		}
		id := v.Defaults.X
		if len(args) > 0 {
			id = args[0]
		}
		vr, err := v.Variable(id)
		if err != nil {
			return err
		}
		year := mapYear
		if year == 0 {
			year = v.Years.To
		}
		if !v.Years.Contains(year) {
			return fmt.Errorf("year %d outside view %s (%s)", year, v.Name, v.Years)
		}

		idx, err := l.LoadMap(cmd.Context(), v.Name)
		if err != nil {
			return err
		}
		if mapCode != "" {
			code := strings.ToUpper(strings.TrimSpace(mapCode))
			val, ok := idx.Lookup(vr.ID, year, code)
			if !ok {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %d: no data\n", code, vr.ID, year)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %d: %g\n", code, vr.ID, year, val)
			return nil
		}

		doc := report.NewMapDoc(v.Name, vr.ID, vr.Label, year, idx, mapLegendSteps)
		dir, err := l.Directory(cmd.Context())
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: country names unavailable: %v\n", err)
		}
		usd := dollarVariable(v)
		for i := range doc.Values {
			cv := &doc.Values[i]
			if name, ok := dir.NameFor(cv.Code); ok {
				cv.Name = name
			}
			if usd == "" {
				continue
			}
			if amount, ok := idx.Lookup(usd, year, cv.Code); ok {
				cv.Note = choropleth.FormatUSD(amount)
			}
		}
		return emit(cmd, format, doc, mapOutput, fmt.Sprintf("map %s %d", vr.ID, year))
	},
}

// dollarVariable returns the first auxiliary USD variable of v, used for tooltip notes.
func dollarVariable(v *catalog.View) string {
	for _, vr := range v.Variables {
		if vr.Auxiliary && strings.EqualFold(vr.Unit, "USD") {
			return vr.ID
		}
	}
	return ""
}

func init() {
	rootCmd.AddCommand(mapCmd)
	mapCmd.Flags().StringVar(&mapView, "view", "world", "catalog view holding per-country variables")
	mapCmd.Flags().IntVar(&mapYear, "year", 0, "year to show (default: last year of the view)")
	mapCmd.Flags().StringVar(&mapCode, "code", "", "print only this country code's value")
	mapCmd.Flags().StringVarP(&mapFormat, "format", "f", "", "output format: md|json|csv (default from config)")
	mapCmd.Flags().StringVarP(&mapOutput, "output", "o", "", "write to file instead of stdout")
	mapCmd.Flags().IntVar(&mapLegendSteps, "legend-steps", 10, "number of legend intervals")
}
