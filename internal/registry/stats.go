package registry

import (
	"io/fs"
	"path/filepath"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"
)

// dirStats walks root in parallel and totals regular files, directories
// below root, and file bytes. Symlinks are not followed.
func dirStats(root string) (PackageStats, error) {
	var files, dirs, size atomic.Int64
	root = filepath.Clean(root)

	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if filepath.Clean(path) != root {
				dirs.Add(1)
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files.Add(1)
		size.Add(info.Size())
		return nil
	})
	if err != nil {
		return PackageStats{}, &IOError{Op: "walk", Path: root, Err: err}
	}

	return PackageStats{
		Files: files.Load(),
		Dirs:  dirs.Load(),
		Bytes: size.Load(),
	}, nil
}
