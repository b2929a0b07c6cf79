package userdata

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/femtoclaw/talon/internal/platform"
	"github.com/femtoclaw/talon/internal/registry"
)

// Report counts the findings of Check.
type Report struct {
	Problems int
	Fixed    int
}

// Check validates the packages root and the index file. It reports to w and,
// when fix is set, repairs what can be repaired without touching talons:
// missing directories, index permissions, and leftovers of interrupted saves
// and installs.
func Check(w io.Writer, packagesRoot, indexPath string, fix bool) *Report {
	r := &Report{}
	fmt.Fprintln(w, "Registry check:")

	checkDirExists(w, r, packagesRoot, fix)
	checkIndex(w, r, indexPath, fix)
	removeLeftovers(w, r, filepath.Dir(indexPath), registry.TempIndexPattern, fix)
	recoverBackups(w, r, packagesRoot, indexPath, fix)

	return r
}

func checkDirExists(w io.Writer, r *Report, path string, fix bool) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		r.Problems++
		fmt.Fprintf(w, "  [MISS] %s does not exist\n", path)
		if fix {
			if mkErr := os.MkdirAll(path, DirPermNormal); mkErr != nil {
				fmt.Fprintf(w, "  [FAIL] Could not create %s: %v\n", path, mkErr)
				return
			}
			r.Fixed++
			fmt.Fprintf(w, "  [FIX ] Created %s\n", path)
		}
		return
	}
	if err != nil {
		r.Problems++
		fmt.Fprintf(w, "  [FAIL] %s: %v\n", path, err)
		return
	}
	if !info.IsDir() {
		r.Problems++
		fmt.Fprintf(w, "  [WARN] %s exists but is not a directory\n", path)
		return
	}
	fmt.Fprintf(w, "  [ OK ] %s exists\n", path)
}

func checkIndex(w io.Writer, r *Report, path string, fix bool) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(w, "  [ OK ] %s not created yet (empty index)\n", path)
		return
	}
	if err != nil {
		r.Problems++
		fmt.Fprintf(w, "  [FAIL] %s: %v\n", path, err)
		return
	}

	idx, err := registry.LoadIndex(path)
	if err != nil {
		r.Problems++
		fmt.Fprintf(w, "  [FAIL] %v\n", err)
		return
	}
	fmt.Fprintf(w, "  [ OK ] %s (%d talons)\n", path, idx.Len())

	actualPerm := info.Mode().Perm()
	if !platform.SupportsPermissions() || actualPerm == FilePermNormal {
		return
	}
	r.Problems++
	fmt.Fprintf(w, "  [WARN] %s has permissions %o (expected %o)\n", path, actualPerm, FilePermNormal)
	if fix {
		if chErr := platform.Chmod(path, FilePermNormal); chErr != nil {
			fmt.Fprintf(w, "  [FAIL] Could not fix permissions on %s: %v\n", path, chErr)
			return
		}
		r.Fixed++
		fmt.Fprintf(w, "  [FIX ] Fixed permissions on %s to %o\n", path, FilePermNormal)
	}
}

func removeLeftovers(w io.Writer, r *Report, dir, pattern string, fix bool) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return
	}
	for _, path := range matches {
		r.Problems++
		fmt.Fprintf(w, "  [WARN] %s is left over from an interrupted operation\n", path)
		if !fix {
			continue
		}
		if rmErr := os.RemoveAll(path); rmErr != nil {
			fmt.Fprintf(w, "  [FAIL] Could not remove %s: %v\n", path, rmErr)
			continue
		}
		r.Fixed++
		fmt.Fprintf(w, "  [FIX ] Removed %s\n", path)
	}
}

// recoverBackups handles the holding directories of interrupted installs.
// The replaced talon is moved back over the partial copy unless the index
// shows the add was saved, in which case the backup is obsolete.
func recoverBackups(w io.Writer, r *Report, root, indexPath string, fix bool) {
	matches, err := filepath.Glob(filepath.Join(root, registry.BackupPattern))
	if err != nil {
		return
	}
	for _, backup := range matches {
		r.Problems++
		prev := filepath.Join(backup, registry.BackupPrev)
		if _, err := os.Stat(prev); err != nil {
			fmt.Fprintf(w, "  [WARN] %s is left over from an interrupted install\n", backup)
			if fix {
				dropBackup(w, r, backup)
			}
			continue
		}

		name, err := backupTarget(backup)
		if err != nil {
			fmt.Fprintf(w, "  [FAIL] %s holds a replaced talon but %v\n", backup, err)
			continue
		}
		dest := filepath.Join(root, name)

		if installCommitted(backup, dest, name, indexPath) {
			fmt.Fprintf(w, "  [WARN] %s holds the previous copy of %s, which was since replaced\n", backup, name)
			if fix {
				dropBackup(w, r, backup)
			}
			continue
		}

		fmt.Fprintf(w, "  [WARN] %s holds %s from an interrupted install\n", backup, name)
		if !fix {
			continue
		}
		if rmErr := os.RemoveAll(dest); rmErr != nil {
			fmt.Fprintf(w, "  [FAIL] Could not remove partial copy %s: %v\n", dest, rmErr)
			continue
		}
		if mvErr := os.Rename(prev, dest); mvErr != nil {
			fmt.Fprintf(w, "  [FAIL] Could not restore %s: %v\n", dest, mvErr)
			continue
		}
		fmt.Fprintf(w, "  [FIX ] Restored %s from %s\n", dest, backup)
		dropBackup(w, r, backup)
	}
}

func dropBackup(w io.Writer, r *Report, backup string) {
	if err := os.RemoveAll(backup); err != nil {
		fmt.Fprintf(w, "  [FAIL] Could not remove %s: %v\n", backup, err)
		return
	}
	r.Fixed++
	fmt.Fprintf(w, "  [FIX ] Removed %s\n", backup)
}

// backupTarget reads the directory name an install moved aside.
func backupTarget(backup string) (string, error) {
	data, err := os.ReadFile(filepath.Join(backup, registry.BackupTarget))
	if err != nil {
		return "", fmt.Errorf("its target is unknown: %w", err)
	}
	name := strings.TrimSpace(string(data))
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("its target %q is not a directory name", name)
	}
	return name, nil
}

// installCommitted reports whether the index records an add of dest that
// finished after the backup was taken.
func installCommitted(backup, dest, name, indexPath string) bool {
	info, err := os.Stat(backup)
	if err != nil {
		return false
	}
	idx, err := registry.LoadIndex(indexPath)
	if err != nil {
		return false
	}
	e, err := idx.Get(name)
	if err != nil {
		return false
	}
	return filepath.Clean(e.SourcePath) == filepath.Clean(dest) && !e.InstalledAt.Before(info.ModTime())
}
