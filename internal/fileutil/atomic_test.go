package fileutil

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomicWrite(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		perm os.FileMode
	}{
		{"config", []byte(`{"show_speed": true}`), 0600},
		{"empty", []byte{}, 0600},
		{"group readable", []byte("x"), 0640},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.json")

			require.NoError(t, AtomicWrite(path, tt.data, tt.perm))

			content, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.data, content)

			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Equal(t, tt.perm, info.Mode().Perm())

			matches, err := filepath.Glob(path + ".tmp.*")
			require.NoError(t, err)
			assert.Empty(t, matches, "temp file should be renamed away")
		})
	}
}

func TestAtomicWrite_OverwriteExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	require.NoError(t, AtomicWrite(path, []byte("initial, longer content"), 0600))
	require.NoError(t, AtomicWrite(path, []byte("updated"), 0600))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("updated"), content)
}

func TestAtomicWrite_DirectoryNotExist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "config.json")

	err := AtomicWrite(path, []byte("data"), 0600)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create temp file")
}

func TestAtomicWrite_RenameFailureCleansUp(t *testing.T) {
	dir := t.TempDir()
	// A non-empty directory at the target path makes the rename fail.
	target := filepath.Join(dir, "config.json")
	require.NoError(t, os.MkdirAll(filepath.Join(target, "child"), 0700))

	err := AtomicWrite(target, []byte("data"), 0600)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rename to final path")

	matches, err := filepath.Glob(target + ".tmp.*")
	require.NoError(t, err)
	assert.Empty(t, matches, "temp file should be removed after a failed rename")
}

func TestAtomicWrite_ConcurrentWriters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	payloads := [][]byte{[]byte("aaaa"), []byte("bbbbbbbb"), []byte("cc")}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(p []byte) {
			defer wg.Done()
			_ = AtomicWrite(path, p, 0600)
		}(payloads[i%len(payloads)])
	}
	wg.Wait()

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, payloads, content, "the file holds exactly one complete payload")
}
