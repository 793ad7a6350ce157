package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// DurableWrite overwrites the file at path in place and forces it to stable storage
// before returning. Unlike AtomicWrite there is no rename, so a crash mid-write can
// leave a truncated file behind; callers must tolerate that on the read side.
func DurableWrite(path string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create parent directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm) // #nosec G304 -- caller-controlled path
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}

	return writeSynced(f, data)
}
