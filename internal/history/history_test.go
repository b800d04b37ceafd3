// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pdfgrab/pkg/types"
)

func testOutcomes() []types.Outcome {
	return []types.Outcome{
		{URL: "https://example.edu/a.pdf", LocalPath: "downloads/a.pdf", Success: true},
		{URL: "https://example.edu/b.pdf", LocalPath: "downloads/b.pdf", Skipped: true, Success: true},
		{URL: "https://example.edu/c.pdf", Err: "HTTP 404"},
	}
}

func testCfg() types.FetchConfig {
	return types.FetchConfig{
		Query:    "physics notes",
		Filetype: "pdf",
		Site:     "example.edu",
	}
}

func TestOpenCreatesFolderAndSchema(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "downloads")

	store, err := Open(dest)
	require.NoError(t, err)
	defer store.Close()

	assert.DirExists(t, dest)
	assert.FileExists(t, filepath.Join(dest, dbFile))

	// Opening again over the existing schema must be a no-op.
	again, err := Open(dest)
	require.NoError(t, err)
	require.NoError(t, again.Close())
}

func TestRecordRunAndRecent(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	started := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	runID, err := store.RecordRun(testCfg(), started, testOutcomes())
	require.NoError(t, err)
	assert.Positive(t, runID)

	runs, err := store.Recent(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	r := runs[0]
	assert.Equal(t, runID, r.ID)
	assert.Equal(t, "physics notes", r.Query)
	assert.Equal(t, "pdf", r.Filetype)
	assert.Equal(t, "example.edu", r.Site)
	assert.Equal(t, 1, r.Downloaded)
	assert.Equal(t, 1, r.Skipped)
	assert.Equal(t, 1, r.Failed)
	assert.True(t, started.Equal(r.Started), "started = %v, want %v", r.Started, started)
}

func TestRecentOrdersNewestFirstAndLimits(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	var last int64
	for i := 0; i < 3; i++ {
		id, err := store.RecordRun(testCfg(), time.Now(), testOutcomes())
		require.NoError(t, err)
		last = id
	}

	runs, err := store.Recent(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, last, runs[0].ID)
	assert.Greater(t, runs[0].ID, runs[1].ID)
}

func TestOutcomesRoundTrip(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	want := testOutcomes()
	runID, err := store.RecordRun(testCfg(), time.Now(), want)
	require.NoError(t, err)

	got, err := store.Outcomes(runID)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	none, err := store.Outcomes(runID + 1)
	require.NoError(t, err)
	assert.Empty(t, none)
}
