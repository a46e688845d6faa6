package main

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/observation-gapfill/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "data.json")
	out := filepath.Join(dir, "datafixed.json")
	require.NoError(t, os.WriteFile(in, []byte(`{"features":[
		{"properties":{"observed":"2024-01-01T03:00:00Z","value":8.0}},
		{"properties":{"observed":"2024-01-01T00:00:00Z","value":5.0}}
	]}`), 0o600))

	var stdout bytes.Buffer
	require.NoError(t, run(in, out, 0, &stdout, discardLogger()))

	assert.Equal(t, "New Timestamps (2)\n\t2024-01-01T01:00:00Z\n\t2024-01-01T02:00:00Z\n", stdout.String())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	doc, err := domain.ParseDocument(data)
	require.NoError(t, err)
	assert.Len(t, doc.Features, 4)
}

func TestRun_FailureWritesNothing(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "data.json")
	out := filepath.Join(dir, "datafixed.json")
	require.NoError(t, os.WriteFile(in, []byte(`{"features":[
		{"properties":{"observed":"2024-01-01T00:00:00Z","value":1}},
		{"properties":{"observed":"2024-01-01T00:00:00Z","value":2}}
	]}`), 0o600))

	var stdout bytes.Buffer
	err := run(in, out, 0, &stdout, discardLogger())
	require.ErrorIs(t, err, domain.ErrNoConvergence)
	assert.Empty(t, stdout.String())

	_, statErr := os.Stat(out)
	assert.ErrorIs(t, statErr, os.ErrNotExist)
}
