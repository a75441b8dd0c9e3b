package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunReportsSetupFailure(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("LOG_FILE", filepath.Join(t.TempDir(), "loader.log"))
	t.Setenv("CHUNK_SIZE", "0")

	err := run(filepath.Join(t.TempDir(), "diseases.jsonl"), "", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "initialize application")
}

func TestReadFileMissingPath(t *testing.T) {
	_, _, err := readFile(filepath.Join(t.TempDir(), "missing.jsonl"), 0, nil)
	assert.Error(t, err)
}
