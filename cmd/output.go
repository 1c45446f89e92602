package cmd

import (
	"bytes"
	"fmt"

	"github.com/KaramelBytes/trendloom-cli/internal/catalog"
	"github.com/KaramelBytes/trendloom-cli/internal/dataset"
	"github.com/KaramelBytes/trendloom-cli/internal/report"
	"github.com/KaramelBytes/trendloom-cli/internal/utils"
	"github.com/spf13/cobra"
)

// viewOrDefault returns flag, or the configured default view.
func viewOrDefault(flag string) string {
	if flag != "" {
		return flag
	}
	return cfg.DefaultView
}

// entityFor picks the entity to load for v: the flag, else the configured default
// for per-entity views, else none.
func entityFor(v *catalog.View, flag string) string {
	if !v.EntityRequired {
		return ""
	}
	if flag != "" {
		return flag
	}
	return cfg.DefaultEntity
}

func outputFormat(flag string) (report.Format, error) {
	if flag == "" {
		flag = cfg.OutputFormat
	}
	return report.ParseFormat(flag)
}

// emit renders d to stdout, or atomically to outPath when set.
func emit(cmd *cobra.Command, f report.Format, d report.Document, outPath, what string) error {
	if outPath == "" {
		return report.Write(cmd.OutOrStdout(), f, d)
	}
	var buf bytes.Buffer
	if err := report.Write(&buf, f, d); err != nil {
		return err
	}
	if err := utils.SafeWriteFile(outPath, buf.Bytes()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s to %s\n", what, outPath)
	return nil
}

// warnProblems reports sources of ids that were skipped because their schema did not match.
func warnProblems(cmd *cobra.Command, snap *dataset.Snapshot, ids ...string) {
	for _, id := range ids {
		if err := snap.Problem(id); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: %s has no data: %v\n", id, err)
		}
	}
}
