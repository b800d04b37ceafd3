// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdfgrab/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded fetch runs",
	Long: `History reads the ledger kept next to the downloads and lists recent
fetch runs, or the per-URL outcomes of one run with --run.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().String("dest-folder", "downloads", "destination folder holding the history ledger")
	historyCmd.Flags().Int("limit", 20, "maximum number of runs to list")
	historyCmd.Flags().Int64("run", 0, "show the outcomes of this run ID")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	destFolder, _ := cmd.Flags().GetString("dest-folder")
	store, err := history.Open(destFolder)
	if err != nil {
		return err
	}
	defer store.Close()

	out := cmd.OutOrStdout()

	if runID, _ := cmd.Flags().GetInt64("run"); runID > 0 {
		outcomes, err := store.Outcomes(runID)
		if err != nil {
			return err
		}
		if len(outcomes) == 0 {
			fmt.Fprintf(out, "No outcomes recorded for run %d.\n", runID)
			return nil
		}
		for _, o := range outcomes {
			switch {
			case o.Skipped:
				fmt.Fprintf(out, "skipped     %s\n", o.URL)
			case o.Success:
				fmt.Fprintf(out, "downloaded  %s -> %s\n", o.URL, o.LocalPath)
			default:
				fmt.Fprintf(out, "failed      %s (%s)\n", o.URL, o.Err)
			}
		}
		return nil
	}

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.Recent(limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded.")
		return nil
	}

	fmt.Fprintf(out, "%-5s  %-20s  %-30s  %-10s  %s\n", "ID", "Started", "Query", "Site", "DL/Skip/Fail")
	fmt.Fprintln(out, strings.Repeat("-", 90))
	for _, r := range runs {
		query := r.Query
		if len(query) > 30 {
			query = query[:27] + "..."
		}
		fmt.Fprintf(out, "%-5d  %-20s  %-30s  %-10s  %d/%d/%d\n",
			r.ID, r.Started.Local().Format(time.DateTime), query, r.Site,
			r.Downloaded, r.Skipped, r.Failed)
	}
	return nil
}
