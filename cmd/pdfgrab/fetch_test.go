// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/pdiddy/pdfgrab/pkg/types"
)

func TestFilterLinks(t *testing.T) {
	results := []types.SearchResult{
		{Link: "https://example.edu/a.pdf"},
		{Link: "https://example.edu/page.html"},
		{Link: "https://example.edu/B.PDF"},
		{Link: "https://example.edu/notes.pdf"},
	}

	links := filterLinks(results, "pdf")
	assert.Equal(t, []string{
		"https://example.edu/a.pdf",
		"https://example.edu/B.PDF",
		"https://example.edu/notes.pdf",
	}, links)
}

// stubSearchAPI serves Custom Search responses and points searchOpts at
// itself for the duration of the test.
func stubSearchAPI(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	old := searchOpts
	searchOpts = []option.ClientOption{option.WithEndpoint(srv.URL)}
	t.Cleanup(func() { searchOpts = old })
	return srv
}

func searchPage(links []string) map[string]any {
	items := make([]map[string]any, 0, len(links))
	for _, l := range links {
		items = append(items, map[string]any{"title": "Doc", "link": l})
	}
	return map[string]any{"items": items}
}

func writeTestConfig(t *testing.T, dir string) (secretFile, configFile string) {
	t.Helper()
	secretFile = filepath.Join(dir, ".secret")
	require.NoError(t, os.WriteFile(secretFile,
		[]byte(`{"API_KEY": "k", "SEARCH_ENGINE_ID": "c"}`), 0o644))
	configFile = filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configFile,
		[]byte("query: physics notes\nsite: example.edu\n"), 0o644))
	return secretFile, configFile
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestFetchEndToEnd(t *testing.T) {
	fileSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("content of " + r.URL.Path))
	}))
	t.Cleanup(fileSrv.Close)

	links := []string{
		fileSrv.URL + "/one.pdf",
		fileSrv.URL + "/two.pdf",
		fileSrv.URL + "/three.pdf",
	}
	stubSearchAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(searchPage(links))
	}))

	dir := t.TempDir()
	secretFile, configFile := writeTestConfig(t, dir)
	dest := filepath.Join(dir, "downloads")

	out, err := execute(t,
		"fetch",
		"--secret-file", secretFile,
		"--config-file", configFile,
		"--dest-folder", dest,
		"--stop", "10",
		"--delay", "0",
		"--timeout", "10s",
	)
	require.NoError(t, err, "output: %s", out)

	assert.Contains(t, out, "Batch summary: 3 downloaded, 0 skipped, 0 failed")
	for _, name := range []string{"one.pdf", "two.pdf", "three.pdf"} {
		assert.FileExists(t, filepath.Join(dest, name))
	}
	assert.FileExists(t, filepath.Join(dest, "history.db"), "run should be recorded")
}

func TestFetchZeroResults(t *testing.T) {
	stubSearchAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{})
	}))

	dir := t.TempDir()
	secretFile, configFile := writeTestConfig(t, dir)

	out, err := execute(t,
		"fetch",
		"--secret-file", secretFile,
		"--config-file", configFile,
		"--dest-folder", filepath.Join(dir, "downloads"),
		"--stop", "10",
		"--delay", "0",
		"--timeout", "10s",
	)
	require.NoError(t, err, "zero results is not an error")
	assert.Contains(t, out, "No results found.")
}

func TestFetchMissingSecretsFails(t *testing.T) {
	stubSearchAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no API call should be made when secrets are missing")
	}))

	dir := t.TempDir()
	_, configFile := writeTestConfig(t, dir)

	_, err := execute(t,
		"fetch",
		"--secret-file", filepath.Join(dir, "missing"),
		"--config-file", configFile,
		"--dest-folder", filepath.Join(dir, "downloads"),
		"--stop", "10",
		"--delay", "0",
		"--timeout", "10s",
	)
	require.Error(t, err)
}

func TestFetchFirstPageAPIErrorFails(t *testing.T) {
	stubSearchAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": 403, "message": "quota exceeded"},
		})
	}))

	dir := t.TempDir()
	secretFile, configFile := writeTestConfig(t, dir)

	_, err := execute(t,
		"fetch",
		"--secret-file", secretFile,
		"--config-file", configFile,
		"--dest-folder", filepath.Join(dir, "downloads"),
		"--stop", "10",
		"--delay", "0",
		"--timeout", "10s",
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestCollectResultsKeepsEarlierPagesOnLaterError(t *testing.T) {
	stubSearchAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("start") == "1" {
			links := make([]string, 10)
			for i := range links {
				links[i] = "https://example.edu/x.pdf"
			}
			page := searchPage(links)
			page["queries"] = map[string]any{
				"nextPage": []map[string]any{{"startIndex": 11}},
			}
			json.NewEncoder(w).Encode(page)
			return
		}
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": 429, "message": "rate limited"},
		})
	}))

	cfg := types.FetchConfig{
		HTTPConfig:     types.HTTPConfig{Timeout: 10 * time.Second, UserAgent: "test/0.1"},
		Query:          "physics notes",
		Filetype:       "pdf",
		Site:           "example.edu",
		APIKey:         "k",
		SearchEngineID: "c",
		Start:          1,
		Stop:           20,
	}

	var errbuf bytes.Buffer
	results, err := collectResults(context.Background(), cfg, &errbuf)
	require.NoError(t, err, "a later-page error must not abort the run")
	assert.Len(t, results, 10)
	assert.Contains(t, errbuf.String(), "search ended early")
}
