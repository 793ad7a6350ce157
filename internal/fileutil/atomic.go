// Package fileutil writes small state files: the config atomically and the
// usage record durably.
package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// AtomicWrite replaces the file at path with data using write-to-temp then rename,
// so readers see either the old or the new content. The temp file lives in the
// target directory and has a unique name, so concurrent writers never collide.
func AtomicWrite(path string, data []byte, perm os.FileMode) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	if err := writeSynced(tmpFile, data); err != nil {
		return err
	}

	// CreateTemp always uses 0600.
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename to final path: %w", err)
	}

	committed = true
	return nil
}

// writeSynced writes data, flushes it to stable storage and closes f.
func writeSynced(f *os.File, data []byte) error {
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("write file: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("sync file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close file: %w", err)
	}
	return nil
}
