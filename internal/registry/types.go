package registry

import (
	"time"

	"github.com/femtoclaw/talon/internal/manifest"
)

// Entry is one row of the registry index. Entries are values: the index
// hands out copies and replaces whole entries, never individual fields.
type Entry struct {
	Manifest    manifest.Manifest `yaml:"manifest"`
	SourcePath  string            `yaml:"source_path"`
	InstalledAt time.Time         `yaml:"installed_at"`
}

// Name returns the package name the entry is indexed under.
func (e Entry) Name() string { return e.Manifest.Name }

// Query selects entries for Search. An empty Query matches everything.
type Query struct {
	// Text matches case-insensitively as a substring of the name or the
	// description, or as an exact (case-insensitive) tag.
	Text string

	// Tags, when set, keeps only entries carrying at least one of them.
	// Comparison is exact and case-insensitive.
	Tags []string
}

// Candidate is one result of a discovery scan: a child directory holding a
// TALON.md, with either the parsed manifest or the parse error.
type Candidate struct {
	Path     string
	Manifest *manifest.Manifest
	Err      error
}

// AddOptions controls AddFromPath.
type AddOptions struct {
	// Replace swaps an existing entry with the same name instead of
	// reporting a conflict.
	Replace bool

	// Install copies the package directory into the packages root
	// (<root>/<name>) and indexes the copy.
	Install bool
}

// Diff is the divergence between the index and the packages root.
type Diff struct {
	// Installable packages parse on disk but are not indexed.
	Installable []Candidate

	// Stale entries point at a directory that is gone or no longer holds a
	// valid manifest.
	Stale []StaleEntry

	// Changed entries are present on disk with a different version.
	Changed []Change

	// Invalid candidates have a TALON.md that does not parse, or reuse a
	// name already claimed by another directory on disk.
	Invalid []Candidate
}

// Clean reports whether the index and the disk agree.
func (d *Diff) Clean() bool {
	return len(d.Installable) == 0 && len(d.Stale) == 0 && len(d.Changed) == 0 && len(d.Invalid) == 0
}

// StaleEntry is an indexed entry whose source no longer backs it.
type StaleEntry struct {
	Entry Entry
	Err   error
}

// Direction classifies a version change found by Reconcile.
type Direction string

const (
	Upgrade   Direction = "upgrade"
	Downgrade Direction = "downgrade"
	Metadata  Direction = "metadata" // same precedence, different build metadata
)

// Change is an indexed entry whose on-disk manifest carries another version.
type Change struct {
	Entry     Entry
	Disk      *manifest.Manifest
	Direction Direction
}

// PackageStats summarizes the files behind an entry.
type PackageStats struct {
	Files int64
	Dirs  int64
	Bytes int64
}
