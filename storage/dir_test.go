package storage

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirMakeTemporary(t *testing.T) {
	t.Parallel()

	var d Dir
	require.NoError(t, d.Make(t.TempDir(), ""))
	require.DirExists(t, d.Dir)
	assert.Contains(t, d.Dir, "browserbridge-")

	require.NoError(t, d.Cleanup())
	assert.NoDirExists(t, d.Dir)

	// A second cleanup must not fail.
	require.NoError(t, d.Cleanup())
}

func TestDirMakeProvided(t *testing.T) {
	t.Parallel()

	provided := t.TempDir()

	var d Dir
	require.NoError(t, d.Make("", provided))
	assert.Equal(t, provided, d.Dir)

	// Caller-provided directories are not owned and must survive Cleanup.
	require.NoError(t, d.Cleanup())
	_, err := os.Stat(provided)
	require.NoError(t, err)
}
