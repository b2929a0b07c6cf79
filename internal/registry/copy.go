package registry

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultExcludes are never copied into the packages root.
var DefaultExcludes = []string{
	"**/.git",
	"**/node_modules",
	"**/.DS_Store",
}

// BackupPattern names the directory an install moves a replaced talon into
// until the add commits. It doubles as a glob for leftovers.
const BackupPattern = ".talon-backup-*"

// Inside a backup directory, BackupPrev holds the replaced talon and
// BackupTarget names the directory it was moved out of, relative to the
// backup's parent.
const (
	BackupPrev   = "prev"
	BackupTarget = "target"
)

// installation tracks a copy made by install so a failed add can undo it.
type installation struct {
	dest   string
	backup string // holding directory for the replaced dest, if any
}

// install copies src into dest. An existing dest is moved aside first and
// restored by rollback. When src and dest are the same directory nothing is
// copied and the returned installation is a no-op.
func install(src, dest string, excludes []string) (*installation, error) {
	src = filepath.Clean(src)
	dest = filepath.Clean(dest)
	if src == dest {
		return &installation{}, nil
	}
	if within(src, dest) {
		return nil, fmt.Errorf("cannot install %s into its own subdirectory %s", src, dest)
	}

	inst := &installation{dest: dest}
	if _, err := os.Lstat(dest); err == nil {
		parent := filepath.Dir(dest)
		backup, err := os.MkdirTemp(parent, BackupPattern)
		if err != nil {
			return nil, &IOError{Op: "mkdir", Path: parent, Err: err}
		}
		target := filepath.Join(backup, BackupTarget)
		if err := os.WriteFile(target, []byte(filepath.Base(dest)+"\n"), 0o644); err != nil {
			_ = os.RemoveAll(backup)
			return nil, &IOError{Op: "write", Path: target, Err: err}
		}
		if err := os.Rename(dest, filepath.Join(backup, BackupPrev)); err != nil {
			_ = os.RemoveAll(backup)
			return nil, &IOError{Op: "rename", Path: dest, Err: err}
		}
		inst.backup = backup
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, &IOError{Op: "stat", Path: dest, Err: err}
	}

	if err := copyDir(src, dest, "", excludes); err != nil {
		inst.rollback()
		return nil, fmt.Errorf("copying %s to %s: %w", src, dest, err)
	}
	return inst, nil
}

// commit discards the backup of the replaced directory.
func (i *installation) commit() {
	if i == nil || i.backup == "" {
		return
	}
	_ = os.RemoveAll(i.backup)
	i.backup = ""
}

// rollback removes the copy and puts the replaced directory back.
func (i *installation) rollback() {
	if i == nil || i.dest == "" {
		return
	}
	_ = os.RemoveAll(i.dest)
	if i.backup != "" {
		_ = os.Rename(filepath.Join(i.backup, BackupPrev), i.dest)
		_ = os.RemoveAll(i.backup)
		i.backup = ""
	}
}

// within reports whether path lies inside dir.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// copyDir recursively copies src to dst. rel is the slash-separated path of
// src relative to the talon root, used for exclude matching.
func copyDir(src, dst, rel string, excludes []string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return &IOError{Op: "stat", Path: src, Err: err}
	}

	if err := os.MkdirAll(dst, srcInfo.Mode().Perm()|0o700); err != nil {
		return &IOError{Op: "mkdir", Path: dst, Err: err}
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return &IOError{Op: "readdir", Path: src, Err: err}
	}

	for _, entry := range entries {
		entryRel := entry.Name()
		if rel != "" {
			entryRel = rel + "/" + entry.Name()
		}
		if excluded(entryRel, excludes) {
			continue
		}

		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if entry.IsDir() {
			if err := copyDir(srcPath, dstPath, entryRel, excludes); err != nil {
				return err
			}
		} else if entry.Type().IsRegular() {
			if err := copyFile(srcPath, dstPath); err != nil {
				return err
			}
		}
		// Symlinks and special files are not copied.
	}

	return nil
}

// copyFile copies a single file from src to dst, preserving permissions.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return &IOError{Op: "open", Path: src, Err: err}
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return &IOError{Op: "stat", Path: src, Err: err}
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return &IOError{Op: "create", Path: dst, Err: err}
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return &IOError{Op: "write", Path: dst, Err: err}
	}
	if err := out.Close(); err != nil {
		return &IOError{Op: "close", Path: dst, Err: err}
	}
	return nil
}

func excluded(rel string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}
