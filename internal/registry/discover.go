package registry

import (
	"errors"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/femtoclaw/talon/internal/manifest"
)

// Discover scans the immediate children of root for talon directories.
//
// The directory listing is read once, up front; a failure to read root is
// returned as an *IOError. Each child is parsed only when the consumer pulls
// it, in name order. Non-directories, dot-directories and directories without
// a TALON.md are skipped. A child whose manifest fails to parse is yielded
// with Err set so callers can report it.
func Discover(root string) (iter.Seq[Candidate], error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, &IOError{Op: "readdir", Path: root, Err: err}
	}

	return func(yield func(Candidate) bool) {
		for _, entry := range entries {
			name := entry.Name()
			if strings.HasPrefix(name, ".") {
				continue
			}
			path := filepath.Join(root, name)
			if !isDir(entry, path) {
				continue
			}

			m, err := manifest.ParseDir(path)
			if errors.Is(err, manifest.ErrManifestMissing) {
				continue
			}
			if !yield(Candidate{Path: path, Manifest: m, Err: err}) {
				return
			}
		}
	}, nil
}

// DiscoverAll collects Discover into a slice.
func DiscoverAll(root string) ([]Candidate, error) {
	seq, err := Discover(root)
	if err != nil {
		return nil, err
	}
	var result []Candidate
	for c := range seq {
		result = append(result, c)
	}
	return result, nil
}

// isDir follows symlinks so a linked talon directory is scanned like a real one.
func isDir(entry os.DirEntry, path string) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
