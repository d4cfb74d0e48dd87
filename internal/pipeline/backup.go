package pipeline

import (
	"bytes"
	"os"

	"github.com/countrystatecity/docsync/internal/errors"
)

// writeWithBackup writes data to path, first preserving the previous content
// as a ".backup" sibling for manual rollback. It reports whether the file
// content actually changed; an identical write is skipped entirely so that
// re-runs with unchanged remote data touch nothing.
func writeWithBackup(path string, data []byte, backup bool) (changed bool, err error) {
	current, readErr := os.ReadFile(path)
	exists := readErr == nil

	if exists && bytes.Equal(current, data) {
		return false, nil
	}

	if exists && backup {
		if err := os.WriteFile(path+".backup", current, 0o644); err != nil {
			return false, errors.WriteFailed(path+".backup", err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, errors.WriteFailed(path, err)
	}
	return true, nil
}
