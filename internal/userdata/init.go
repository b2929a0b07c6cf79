package userdata

import (
	"fmt"
	"io"
	"os"

	"github.com/femtoclaw/talon/internal/platform"
)

// Init creates the packages root if it does not exist. It prints progress
// messages to w; an existing directory is reported and left alone.
func Init(w io.Writer, packagesRoot string) error {
	return ensureDir(w, packagesRoot, DirPermNormal)
}

// ensureDir creates a directory if it doesn't exist.
func ensureDir(w io.Writer, path string, perm os.FileMode) error {
	if info, err := os.Stat(path); err == nil {
		if info.IsDir() {
			fmt.Fprintf(w, "  [SKIP] %s already exists\n", path)
			return nil
		}
		return fmt.Errorf("%s exists but is not a directory", path)
	}

	if err := os.MkdirAll(path, perm); err != nil {
		return fmt.Errorf("creating directory %s: %w", path, err)
	}
	// MkdirAll may not apply exact perms if parent dirs needed creation.
	if err := platform.Chmod(path, perm); err != nil {
		return fmt.Errorf("setting permissions on %s: %w", path, err)
	}
	fmt.Fprintf(w, "  [ OK ] Created %s\n", path)
	return nil
}
