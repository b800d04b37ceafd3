// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/api/option"

	"github.com/pdiddy/pdfgrab/internal/download"
	"github.com/pdiddy/pdfgrab/internal/history"
	"github.com/pdiddy/pdfgrab/internal/httputil"
	"github.com/pdiddy/pdfgrab/internal/search"
	"github.com/pdiddy/pdfgrab/pkg/types"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Search and download matching documents",
	Long: `Fetch runs the full pipeline: it pages through Custom Search API
results for the configured query, filetype, and site, then downloads
each matching link into the destination folder. Files already present
are skipped; individual download failures are reported and the run
continues. The run is recorded in the history ledger unless
--no-history is set.`,
	RunE: runFetch,
}

func init() {
	addQueryFlags(fetchCmd)
	fetchCmd.Flags().String("dest-folder", "", "destination folder for downloaded files (default \"downloads\")")
	fetchCmd.Flags().Duration("delay", 0, "delay between consecutive downloads (default 1s)")
	fetchCmd.Flags().Bool("no-history", false, "do not record the run in the history ledger")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	results, err := collectResults(ctx, cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Fprintln(out, "No results found.")
		return nil
	}

	links := filterLinks(results, cfg.Filetype)
	fmt.Fprintf(out, "Found %d %s link(s) in %d result(s)\n", len(links), cfg.Filetype, len(results))
	if len(links) == 0 {
		return nil
	}

	client := httputil.NewClient(cfg.HTTPConfig)
	started := time.Now()
	sum := download.Batch(ctx, client, links, cfg.DestFolder, cfg, out)

	if noHistory, _ := cmd.Flags().GetBool("no-history"); !noHistory {
		if err := recordRun(cfg, started, sum.Outcomes); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: recording history: %v\n", err)
		}
	}
	return nil
}

// collectResults drains the paginated result sequence. An API error on
// the first page aborts the run; an error after results have arrived is
// reported as a warning and the collected results stand, matching how
// the API signals the end of a result set.
// searchOpts lets tests redirect the search service to a stub server.
var searchOpts []option.ClientOption

func collectResults(ctx context.Context, cfg types.FetchConfig, errw io.Writer) ([]types.SearchResult, error) {
	client, err := search.New(ctx, cfg, searchOpts...)
	if err != nil {
		return nil, err
	}

	var results []types.SearchResult
	for r, err := range client.Results(ctx, cfg) {
		if err != nil {
			if len(results) == 0 {
				return nil, err
			}
			fmt.Fprintf(errw, "warning: search ended early: %v\n", err)
			break
		}
		results = append(results, r)
	}
	return results, nil
}

// filterLinks keeps links whose path ends in the configured filetype
// extension. The API's filetype operator narrows results but does not
// guarantee every link resolves to a file of that type.
func filterLinks(results []types.SearchResult, filetype string) []string {
	suffix := "." + strings.ToLower(filetype)
	var links []string
	for _, r := range results {
		if filetype != "" && !strings.HasSuffix(strings.ToLower(r.Link), suffix) {
			continue
		}
		links = append(links, r.Link)
	}
	return links
}

func recordRun(cfg types.FetchConfig, started time.Time, outcomes []types.Outcome) error {
	store, err := history.Open(cfg.DestFolder)
	if err != nil {
		return err
	}
	defer store.Close()

	_, err = store.RecordRun(cfg, started, outcomes)
	return err
}
