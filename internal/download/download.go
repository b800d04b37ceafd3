// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package download fetches result URLs and writes them into the
// destination folder. Filenames come from the URL's last path segment;
// a file that already exists is skipped, never overwritten, so re-runs
// are deterministic.
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/pdiddy/pdfgrab/internal/httputil"
	"github.com/pdiddy/pdfgrab/pkg/types"
)

// Summary holds the outcome of a batch download run.
type Summary struct {
	Downloaded int
	Skipped    int
	Failed     int
	Outcomes   []types.Outcome
}

// Total returns the number of URLs processed.
func (s Summary) Total() int {
	return s.Downloaded + s.Skipped + s.Failed
}

// HasFailures reports whether any download failed.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// Filename derives the local filename from a URL's last path segment.
func Filename(rawurl string) (string, error) {
	u, err := url.Parse(rawurl)
	if err != nil {
		return "", fmt.Errorf("parsing URL: %w", err)
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return "", fmt.Errorf("no usable filename in URL %q", rawurl)
	}
	return name, nil
}

// Fetch downloads one URL into destFolder, creating the folder if
// absent. An existing file of the same name is skipped. Failures are
// returned in the outcome, never as a panic or an aborted run.
func Fetch(ctx context.Context, client *http.Client, rawurl, destFolder string, cfg types.HTTPConfig) types.Outcome {
	out := types.Outcome{URL: rawurl}

	name, err := Filename(rawurl)
	if err != nil {
		out.Err = err.Error()
		return out
	}

	if err := os.MkdirAll(destFolder, 0o755); err != nil {
		out.Err = fmt.Sprintf("creating %s: %v", destFolder, err)
		return out
	}

	dest := filepath.Join(destFolder, name)
	if _, err := os.Stat(dest); err == nil {
		out.LocalPath = dest
		out.Skipped = true
		out.Success = true
		return out
	}

	req, err := httputil.NewGet(ctx, rawurl, cfg)
	if err != nil {
		out.Err = fmt.Sprintf("creating request: %v", err)
		return out
	}

	resp, err := client.Do(req)
	if err != nil {
		out.Err = fmt.Sprintf("HTTP request: %v", err)
		return out
	}
	if resp.StatusCode != http.StatusOK {
		httputil.Drain(resp)
		out.Err = fmt.Sprintf("HTTP %d from %s", resp.StatusCode, rawurl)
		return out
	}
	defer resp.Body.Close()

	if err := writeFile(resp.Body, dest); err != nil {
		out.Err = err.Error()
		return out
	}

	out.LocalPath = dest
	out.Success = true
	return out
}

// writeFile streams r to destPath through a temporary file renamed into
// place on success, so a failed download never leaves a partial file
// under the final name.
func writeFile(r io.Reader, destPath string) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".pdfgrab-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, r)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// Batch downloads URLs sequentially, printing per-item status to w and
// returning a summary. It continues after individual failures and
// applies a delay between consecutive downloads.
func Batch(ctx context.Context, client *http.Client, urls []string, destFolder string, cfg types.FetchConfig, w io.Writer) Summary {
	var sum Summary
	for i, u := range urls {
		if i > 0 && cfg.DownloadDelay > 0 {
			time.Sleep(cfg.DownloadDelay)
		}
		fmt.Fprintf(w, "downloading: %s\n", u)
		out := Fetch(ctx, client, u, destFolder, cfg.HTTPConfig)
		switch {
		case out.Skipped:
			fmt.Fprintf(w, "skipped: %s (already exists)\n", out.LocalPath)
			sum.Skipped++
		case out.Success:
			fmt.Fprintf(w, "saved: %s\n", out.LocalPath)
			sum.Downloaded++
		default:
			fmt.Fprintf(w, "failed: %s (%s)\n", u, out.Err)
			sum.Failed++
		}
		sum.Outcomes = append(sum.Outcomes, out)
	}
	fmt.Fprintf(w, "\nBatch summary: %d downloaded, %d skipped, %d failed (total: %d)\n",
		sum.Downloaded, sum.Skipped, sum.Failed, sum.Total())
	return sum
}
