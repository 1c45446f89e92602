package cmd

import (
	"fmt"

	"github.com/KaramelBytes/trendloom-cli/internal/catalog"
	"github.com/spf13/cobra"
)

var (
	catView      string
	catAuxiliary bool
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the views and variables available for loading",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List views and their variables",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadCatalog()
		if err != nil {
			return err
		}
		names := cat.ViewNames()
		if catView != "" {
			if _, err := cat.View(catView); err != nil {
				return err
			}
			names = []string{catView}
		}
		out := cmd.OutOrStdout()
		for i, name := range names {
			v, _ := cat.View(name)
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "%s  years %s", v.Name, v.Years)
			if v.EntityRequired {
				fmt.Fprint(out, "  (per entity)")
			}
			fmt.Fprintln(out)
			if v.Description != "" {
				fmt.Fprintf(out, "  %s\n", v.Description)
			}
			vars, err := cat.Variables(name, catAuxiliary)
			if err != nil {
				return err
			}
			for _, vr := range vars {
				unit := ""
				if vr.Unit != "" {
					unit = " [" + vr.Unit + "]"
				}
				fmt.Fprintf(out, "  - %-16s %s%s  <- %s\n", vr.ID, vr.Label, unit, vr.Source.File)
			}
		}
		return nil
	},
}

var catalogDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the effective catalog as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadCatalog()
		if err != nil {
			return err
		}
		return cat.Dump(cmd.OutOrStdout())
	},
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a catalog file for errors",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalog.Load(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s: %d views\n", args[0], len(cat.Views))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogDumpCmd)
	catalogCmd.AddCommand(catalogValidateCmd)
	catalogListCmd.Flags().StringVar(&catView, "view", "", "only list this view")
	catalogListCmd.Flags().BoolVar(&catAuxiliary, "all", false, "include auxiliary variables")
}
