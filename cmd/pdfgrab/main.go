// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pdfgrab CLI.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdfgrab/internal/config"
	"github.com/pdiddy/pdfgrab/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the pdfgrab CLI.
var rootCmd = &cobra.Command{
	Use:   "pdfgrab",
	Short: "Download documents found through the Google Custom Search API",
	Long: `pdfgrab queries the Google Custom Search API for documents of a given
filetype on a given site and downloads the matches into a local folder.

Search parameters come from CLI flags layered over a YAML config file
layered over built-in defaults; API credentials come from a JSON secrets
file.`,
}

func init() {
	rootCmd.PersistentFlags().String("secret-file", ".secret", "path to the JSON secrets file")
	rootCmd.PersistentFlags().String("config-file", "config.yaml", "path to the YAML config file")
}

// addQueryFlags registers the search parameter flags shared by the
// fetch and search subcommands.
func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().String("query", "", "free-text search query")
	cmd.Flags().String("filetype", config.DefaultFiletype, "file type to search for")
	cmd.Flags().String("site", "", "site to restrict the search to")
	cmd.Flags().Int("start", config.DefaultStart, "first result index requested from the API")
	cmd.Flags().Int("stop", config.DefaultStop, "last result index requested from the API")
	cmd.Flags().String("referer", "", "Referer header to send with API requests")
	cmd.Flags().Duration("timeout", config.DefaultTimeout, "HTTP request timeout")
}

// loadConfig merges the secrets file, the config file, and the
// command's flags into one FetchConfig.
func loadConfig(cmd *cobra.Command) (types.FetchConfig, error) {
	secretFile, _ := cmd.Flags().GetString("secret-file")
	configFile, _ := cmd.Flags().GetString("config-file")
	return config.Load(secretFile, configFile, cmd.Flags())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
