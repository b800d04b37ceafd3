// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"time"
)

// HTTPConfig holds shared HTTP settings used by every stage that makes
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "pdfgrab/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// Referer is an optional Referer header. Some Custom Search Engine
	// configurations restrict the API key to requests carrying a
	// registered referer.
	Referer string `json:"referer,omitempty" yaml:"referer,omitempty"`
}

// FetchConfig is the merged configuration for one run: CLI flags layered
// over the YAML config file layered over built-in defaults, plus the
// credentials from the secrets file.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// Query is the free-text search query.
	Query string `json:"query" yaml:"query"`

	// Filetype restricts results to a document type (default "pdf").
	Filetype string `json:"filetype" yaml:"filetype"`

	// Site restricts results to a domain (e.g. "example.edu").
	Site string `json:"site" yaml:"site"`

	// APIKey authenticates requests to the Custom Search API.
	APIKey string `json:"-" yaml:"-"`

	// SearchEngineID is the Custom Search Engine identifier (cx).
	SearchEngineID string `json:"-" yaml:"-"`

	// DestFolder is where downloaded files are written (default "downloads").
	DestFolder string `json:"dest_folder" yaml:"dest_folder"`

	// Start and Stop bound the result index range requested from the API,
	// inclusive. The API serves at most 10 results per page.
	Start int `json:"start" yaml:"start"`
	Stop  int `json:"stop" yaml:"stop"`

	// DownloadDelay is the pause between consecutive downloads.
	DownloadDelay time.Duration `json:"download_delay" yaml:"download_delay"`
}

// Validate checks the invariants that must hold before any network call.
func (c FetchConfig) Validate() error {
	switch {
	case c.APIKey == "":
		return fmt.Errorf("API key is empty")
	case c.SearchEngineID == "":
		return fmt.Errorf("search engine ID is empty")
	case c.Query == "":
		return fmt.Errorf("query is empty: set --query or the config file's query field")
	case c.Site == "":
		return fmt.Errorf("site is empty: set --site or the config file's site field")
	case c.Start < 1:
		return fmt.Errorf("start index %d is below 1", c.Start)
	case c.Start > c.Stop:
		return fmt.Errorf("start index %d exceeds stop index %d", c.Start, c.Stop)
	}
	return nil
}

// FullQuery returns the query string sent to the API, with the filetype
// and site restriction operators appended.
func (c FetchConfig) FullQuery() string {
	q := fmt.Sprintf("%q", c.Query)
	if c.Filetype != "" {
		q += " filetype:" + c.Filetype
	}
	if c.Site != "" {
		q += " site:" + c.Site
	}
	return q
}
