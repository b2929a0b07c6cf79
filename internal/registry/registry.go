package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/femtoclaw/talon/internal/manifest"
)

// Registry ties the index file to a packages root. Every operation loads the
// index from disk and mutating operations save it before returning, so no
// state is held between calls.
type Registry struct {
	root      string
	indexPath string
	logger    hclog.Logger
	now       func() time.Time
	excludes  []string
}

// New returns a Registry over packagesRoot. An empty indexPath defaults to
// <packagesRoot>/index.yaml. Neither path has to exist yet.
func New(packagesRoot, indexPath string, opts ...Option) (*Registry, error) {
	if packagesRoot == "" {
		return nil, fmt.Errorf("packages root cannot be empty")
	}
	o, err := NewOptions(opts...)
	if err != nil {
		return nil, err
	}

	root, err := filepath.Abs(packagesRoot)
	if err != nil {
		return nil, fmt.Errorf("resolving packages root: %w", err)
	}
	if indexPath == "" {
		indexPath = filepath.Join(root, DefaultIndexName)
	}
	indexPath, err = filepath.Abs(indexPath)
	if err != nil {
		return nil, fmt.Errorf("resolving index path: %w", err)
	}

	return &Registry{
		root:      root,
		indexPath: indexPath,
		logger:    o.logger.Named("registry"),
		now:       o.now,
		excludes:  o.excludes,
	}, nil
}

// Root returns the absolute packages root.
func (r *Registry) Root() string { return r.root }

// IndexPath returns the absolute index file path.
func (r *Registry) IndexPath() string { return r.indexPath }

// AddFromPath parses the talon at path and indexes it. With opts.Install the
// directory is first copied to <root>/<name> and the copy is indexed.
//
// On any failure the index file is left as it was and a copy made by this
// call is removed again.
func (r *Registry) AddFromPath(path string, opts AddOptions) (Entry, error) {
	src, err := filepath.Abs(path)
	if err != nil {
		return Entry{}, fmt.Errorf("resolving %s: %w", path, err)
	}

	m, err := manifest.ParseDir(src)
	if err != nil {
		return Entry{}, fmt.Errorf("adding %s: %w", path, err)
	}

	idx, err := LoadIndex(r.indexPath)
	if err != nil {
		return Entry{}, err
	}
	if idx.Has(m.Name) && !opts.Replace {
		return Entry{}, &ConflictError{Name: m.Name}
	}

	source := src
	var inst *installation
	if opts.Install {
		dest := filepath.Join(r.root, m.Name)
		inst, err = install(src, dest, r.excludes)
		if err != nil {
			return Entry{}, fmt.Errorf("installing %s: %w", m.Name, err)
		}
		source = dest
		r.logger.Debug("copied talon", "name", m.Name, "from", src, "to", dest)
	}

	e := Entry{
		Manifest:    *m,
		SourcePath:  source,
		InstalledAt: r.now().UTC().Round(0),
	}
	if err := idx.Add(e, opts.Replace); err != nil {
		inst.rollback()
		return Entry{}, err
	}
	if err := idx.Save(r.indexPath); err != nil {
		inst.rollback()
		return Entry{}, fmt.Errorf("saving index: %w", err)
	}
	inst.commit()

	r.logger.Info("added talon", "name", m.Name, "version", m.Version, "path", source)
	return e, nil
}

// RemoveByName drops name from the index. Files on disk are never touched.
// When name is not indexed the index file is not rewritten.
func (r *Registry) RemoveByName(name string) (Entry, error) {
	idx, err := LoadIndex(r.indexPath)
	if err != nil {
		return Entry{}, err
	}
	e, err := idx.Remove(name)
	if err != nil {
		return Entry{}, err
	}
	if err := idx.Save(r.indexPath); err != nil {
		return Entry{}, fmt.Errorf("saving index: %w", err)
	}

	r.logger.Info("removed talon", "name", name)
	return e, nil
}

// Info returns the indexed entry for name.
func (r *Registry) Info(name string) (Entry, error) {
	idx, err := LoadIndex(r.indexPath)
	if err != nil {
		return Entry{}, err
	}
	return idx.Get(name)
}

// Get is an alias for Info.
func (r *Registry) Get(name string) (Entry, error) {
	return r.Info(name)
}

// Search returns the indexed entries matching q, sorted by name.
func (r *Registry) Search(q Query) ([]Entry, error) {
	idx, err := LoadIndex(r.indexPath)
	if err != nil {
		return nil, err
	}
	return idx.Search(q), nil
}

// List returns every indexed entry sorted by name.
func (r *Registry) List() ([]Entry, error) {
	return r.Search(Query{})
}

// Discover scans the packages root. A root that does not exist yet yields
// nothing.
func (r *Registry) Discover() (iter.Seq[Candidate], error) {
	seq, err := Discover(r.root)
	if errors.Is(err, fs.ErrNotExist) {
		return func(func(Candidate) bool) {}, nil
	}
	return seq, err
}

// Reconcile compares the index with the packages root. It reports what
// differs and never modifies the index.
func (r *Registry) Reconcile() (*Diff, error) {
	idx, err := LoadIndex(r.indexPath)
	if err != nil {
		return nil, err
	}
	seq, err := r.Discover()
	if err != nil {
		return nil, err
	}

	diff := &Diff{}
	seen := make(map[string]string)
	for c := range seq {
		if c.Err != nil {
			diff.Invalid = append(diff.Invalid, c)
			continue
		}
		name := c.Manifest.Name
		if first, dup := seen[name]; dup {
			c.Err = fmt.Errorf("%w (also declared by %s)", &ConflictError{Name: name}, first)
			diff.Invalid = append(diff.Invalid, c)
			continue
		}
		seen[name] = c.Path
		if !idx.Has(name) {
			diff.Installable = append(diff.Installable, c)
		}
	}

	for _, e := range idx.List() {
		disk, err := manifest.ParseDir(e.SourcePath)
		if err != nil {
			diff.Stale = append(diff.Stale, StaleEntry{Entry: e, Err: err})
			continue
		}
		if disk.Name != e.Manifest.Name {
			diff.Stale = append(diff.Stale, StaleEntry{
				Entry: e,
				Err:   fmt.Errorf("%s now declares talon %q", e.SourcePath, disk.Name),
			})
			continue
		}
		if disk.Version != e.Manifest.Version {
			diff.Changed = append(diff.Changed, Change{
				Entry:     e,
				Disk:      disk,
				Direction: direction(e.Manifest.Version, disk.Version),
			})
		}
	}

	r.logger.Debug("reconciled", "installable", len(diff.Installable), "stale", len(diff.Stale),
		"changed", len(diff.Changed), "invalid", len(diff.Invalid))
	return diff, nil
}

// direction classifies the move from the indexed to the on-disk version.
// Both are validated semver strings by the time they reach here.
func direction(indexed, disk string) Direction {
	from, err1 := manifest.ParseVersion(indexed)
	to, err2 := manifest.ParseVersion(disk)
	if err1 != nil || err2 != nil {
		return Metadata
	}
	switch to.Compare(from) {
	case 1:
		return Upgrade
	case -1:
		return Downgrade
	default:
		return Metadata
	}
}

// Stats totals the files under the indexed source directory of name.
func (r *Registry) Stats(name string) (PackageStats, error) {
	e, err := r.Info(name)
	if err != nil {
		return PackageStats{}, err
	}
	return dirStats(e.SourcePath)
}
