// Package local_test tests the filesystem exporter.
package local_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/bulletin-crawler/internal/bulletin"
	"github.com/JakeFAU/bulletin-crawler/internal/storage/local"
)

func TestNew(t *testing.T) {
	t.Run("ValidConfig", func(t *testing.T) {
		exporter, err := local.New(local.Config{BaseDir: t.TempDir()}, nil)
		require.NoError(t, err)
		assert.NotNil(t, exporter)
	})

	t.Run("CreatesMissingDir", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "out", "texts")
		exporter, err := local.New(local.Config{BaseDir: dir}, nil)
		require.NoError(t, err)
		assert.Equal(t, dir, exporter.Dir())
		assert.DirExists(t, dir)
	})

	t.Run("MissingBaseDir", func(t *testing.T) {
		_, err := local.New(local.Config{}, nil)
		assert.Error(t, err)
	})

	t.Run("BaseDirIsNotADirectory", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))
		_, err := local.New(local.Config{BaseDir: file}, nil)
		assert.Error(t, err)
	})
}

func TestWriteAndFinish(t *testing.T) {
	dir := t.TempDir()
	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 4, 12, 30, 0, 0, time.UTC))
	exporter, err := local.New(local.Config{BaseDir: dir}, clock)
	require.NoError(t, err)

	ctx := context.Background()
	date := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, exporter.Write(ctx, bulletin.ExtractedText{Date: date, CleanedText: "Forces withdrew."}))
	require.NoError(t, exporter.Write(ctx, bulletin.ExtractedText{Date: date, CleanedText: "Forces advanced."}))
	require.Error(t, exporter.Write(ctx, bulletin.ExtractedText{}))

	// #nosec G304 -- test reads from the controlled temp directory.
	data, err := os.ReadFile(filepath.Join(dir, "isw_report_2025-03-01.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Forces advanced.", string(data))

	require.NoError(t, exporter.Finish(ctx, 1))
	// #nosec G304 -- test reads from the controlled temp directory.
	raw, err := os.ReadFile(filepath.Join(dir, local.ManifestName))
	require.NoError(t, err)

	var manifest local.Manifest
	require.NoError(t, json.Unmarshal(raw, &manifest))
	assert.Equal(t, local.Manifest{
		TotalDocuments: 1,
		ExtractionDate: "2025-03-04T12:30:00Z",
		Source:         local.DefaultSource,
	}, manifest)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "isw_report_2024-12-31.txt", local.FileName(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)))
}
