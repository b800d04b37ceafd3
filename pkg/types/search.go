// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the pdfgrab pipeline.
package types

// SearchResult represents one item returned by a Custom Search API page.
type SearchResult struct {
	// Link is the resolvable URL of the document.
	Link string `json:"link" yaml:"link"`

	// Title is the result title as returned by the API.
	Title string `json:"title" yaml:"title"`

	// Snippet is the API's text excerpt for the result.
	Snippet string `json:"snippet,omitempty" yaml:"snippet,omitempty"`

	// MIME is the document MIME type when the API reports one
	// (e.g. "application/pdf").
	MIME string `json:"mime,omitempty" yaml:"mime,omitempty"`

	// Index is the 1-based result index within the overall search,
	// in API-returned order.
	Index int `json:"index" yaml:"index"`
}

// Outcome records the result of one download attempt. Outcomes live for
// a single run; they feed the end-of-run summary and the history ledger.
type Outcome struct {
	// URL is the source URL that was fetched.
	URL string `json:"url" yaml:"url"`

	// LocalPath is the destination file, set when the file exists on
	// disk after the attempt (downloaded now or skipped as present).
	LocalPath string `json:"local_path,omitempty" yaml:"local_path,omitempty"`

	// Skipped is true when a file of the derived name already existed
	// and the download was not attempted.
	Skipped bool `json:"skipped" yaml:"skipped"`

	// Success is true when the file is on disk (downloaded or skipped).
	Success bool `json:"success" yaml:"success"`

	// Err describes the failure when Success is false.
	Err string `json:"error,omitempty" yaml:"error,omitempty"`
}
