package sheets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// validateFile checks that path is a readable regular file whose extension
// is one of exts.
func validateFile(path string, exts ...string) error {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: file %s does not exist", ErrOpen, path)
	}
	if err != nil {
		return fmt.Errorf("%w: failed to stat file %s: %w", ErrOpen, path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory, not a file", ErrOpen, path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !contains(exts, ext) {
		return fmt.Errorf("%w: %s has extension %q, want one of %s", ErrOpen, path, ext, strings.Join(exts, ", "))
	}
	if strings.HasPrefix(filepath.Base(path), "~$") {
		return fmt.Errorf("%w: %s is a temporary Office lock file", ErrOpen, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: file %s is not readable: %w", ErrOpen, path, err)
	}
	return f.Close()
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
