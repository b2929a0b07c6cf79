package registry

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/femtoclaw/talon/internal/manifest"
	"github.com/femtoclaw/talon/internal/platform"
)

// IndexFormatVersion is the layout version written to every index file.
const IndexFormatVersion = "1"

// DefaultIndexName is the index file name inside the packages root.
const DefaultIndexName = "index.yaml"

// TempIndexPattern names the temporary file a save writes before renaming it
// into place. It doubles as a glob for leftovers of an interrupted save.
const TempIndexPattern = ".index-*.tmp"

// indexFile is the on-disk layout: a mapping of records keyed by name.
type indexFile struct {
	Version string           `yaml:"version"`
	Talons  map[string]Entry `yaml:"talons"`
}

// beforeRename runs between writing the temporary index file and renaming it
// into place. Tests replace it to simulate a crash mid-save.
var beforeRename = func(tmpPath string) error { return nil }

// Index is the in-memory registry index. It is not safe for concurrent use;
// callers load, mutate and save within a single operation.
type Index struct {
	entries map[string]Entry
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{entries: make(map[string]Entry)}
}

// LoadIndex reads the index at path. A missing file yields an empty index.
// A file that cannot be decoded, or whose entries break an index invariant,
// returns an error matching ErrIndexCorrupt.
func LoadIndex(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewIndex(), nil
		}
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}

	var file indexFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrIndexCorrupt, path, err)
	}
	if file.Version != IndexFormatVersion {
		return nil, fmt.Errorf("%w: %s: unsupported index version %q", ErrIndexCorrupt, path, file.Version)
	}

	idx := NewIndex()
	for key, e := range file.Talons {
		if err := checkEntry(e); err != nil {
			return nil, fmt.Errorf("%w: %s: entry %q: %v", ErrIndexCorrupt, path, key, err)
		}
		if key != e.Manifest.Name {
			return nil, fmt.Errorf("%w: %s: entry %q holds talon %q", ErrIndexCorrupt, path, key, e.Manifest.Name)
		}
		idx.entries[key] = e
	}
	return idx, nil
}

// checkEntry re-validates the fields an index entry is keyed and compared by.
func checkEntry(e Entry) error {
	if !manifest.ValidName(e.Manifest.Name) {
		return &manifest.InvalidNameError{Name: e.Manifest.Name}
	}
	if _, err := manifest.ParseVersion(e.Manifest.Version); err != nil {
		return &manifest.InvalidVersionError{Version: e.Manifest.Version, Err: err}
	}
	return nil
}

// Add inserts e. When an entry with the same name exists, Add returns a
// *ConflictError and leaves the index unchanged unless replace is set.
func (idx *Index) Add(e Entry, replace bool) error {
	if err := checkEntry(e); err != nil {
		return err
	}
	name := e.Manifest.Name
	if _, exists := idx.entries[name]; exists && !replace {
		return &ConflictError{Name: name}
	}
	idx.entries[name] = e
	return nil
}

// Remove deletes the entry for name and returns it.
func (idx *Index) Remove(name string) (Entry, error) {
	e, ok := idx.entries[name]
	if !ok {
		return Entry{}, &NotFoundError{Name: name}
	}
	delete(idx.entries, name)
	return e, nil
}

// Get returns a copy of the entry for name.
func (idx *Index) Get(name string) (Entry, error) {
	e, ok := idx.entries[name]
	if !ok {
		return Entry{}, &NotFoundError{Name: name}
	}
	return e, nil
}

// Has reports whether name is indexed.
func (idx *Index) Has(name string) bool {
	_, ok := idx.entries[name]
	return ok
}

// Len returns the number of entries.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// List returns all entries sorted by name.
func (idx *Index) List() []Entry {
	return idx.Search(Query{})
}

// SearchText is Search with only a text term.
func (idx *Index) SearchText(text string) []Entry {
	return idx.Search(Query{Text: text})
}

// Search returns the entries matching q, sorted by name.
func (idx *Index) Search(q Query) []Entry {
	text := strings.ToLower(q.Text)
	result := make([]Entry, 0, len(idx.entries))
	for _, e := range idx.entries {
		if text != "" && !matchesText(e, text) {
			continue
		}
		if len(q.Tags) > 0 && !hasAnyTag(e, q.Tags) {
			continue
		}
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Manifest.Name < result[j].Manifest.Name
	})
	return result
}

// matchesText expects text already lowercased.
func matchesText(e Entry, text string) bool {
	if strings.Contains(strings.ToLower(e.Manifest.Name), text) {
		return true
	}
	if strings.Contains(strings.ToLower(e.Manifest.Description), text) {
		return true
	}
	for _, tag := range e.Manifest.Tags {
		if strings.ToLower(tag) == text {
			return true
		}
	}
	return false
}

func hasAnyTag(e Entry, tags []string) bool {
	for _, want := range tags {
		for _, tag := range e.Manifest.Tags {
			if strings.EqualFold(tag, want) {
				return true
			}
		}
	}
	return false
}

// Save writes the index to path atomically: the content goes to a temporary
// file in the same directory which is then renamed over path. Readers see
// either the previous file or the new one, never a partial write.
func (idx *Index) Save(path string) error {
	data, err := idx.marshal()
	if err != nil {
		return fmt.Errorf("encoding index: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &IOError{Op: "mkdir", Path: dir, Err: err}
	}
	return writeFileAtomic(path, data)
}

func (idx *Index) marshal() ([]byte, error) {
	file := indexFile{
		Version: IndexFormatVersion,
		Talons:  idx.entries,
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(file); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeFileAtomic(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), TempIndexPattern)
	if err != nil {
		return &IOError{Op: "create", Path: path, Err: err}
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return &IOError{Op: "write", Path: tmpPath, Err: err}
	}
	if err = tmp.Sync(); err != nil {
		return &IOError{Op: "sync", Path: tmpPath, Err: err}
	}
	if err = tmp.Close(); err != nil {
		return &IOError{Op: "close", Path: tmpPath, Err: err}
	}
	if err = platform.Chmod(tmpPath, 0o644); err != nil {
		return &IOError{Op: "chmod", Path: tmpPath, Err: err}
	}
	if err = beforeRename(tmpPath); err != nil {
		return err
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return &IOError{Op: "rename", Path: path, Err: err}
	}
	return nil
}
