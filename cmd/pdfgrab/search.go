// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/pdfgrab/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search without downloading",
	Long: `Search pages through Custom Search API results for the configured
query, filetype, and site and prints them, without downloading anything.`,
	RunE: runSearch,
}

func init() {
	addQueryFlags(searchCmd)
	searchCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	results, err := collectResults(cmd.Context(), cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return search.FormatJSON(results, cmd.OutOrStdout())
	}
	search.FormatTable(results, cmd.OutOrStdout())
	return nil
}
