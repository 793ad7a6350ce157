package fileutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDurableWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.json")

	require.NoError(t, DurableWrite(path, []byte("first record, longer"), 0600))
	require.NoError(t, DurableWrite(path, []byte("second"), 0600))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), content, "previous contents must be truncated")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestDurableWrite_CreatesParent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "usage.json")

	require.NoError(t, DurableWrite(path, []byte("{}"), 0600))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("{}"), content)
}

func TestDurableWrite_TargetIsDirectory(t *testing.T) {
	dir := t.TempDir()

	err := DurableWrite(dir, []byte("data"), 0600)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open file")
}
