package registry

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/femtoclaw/talon/internal/manifest"
)

var fixedTime = time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

func fixedClock() time.Time { return fixedTime }

// writeTalon creates <root>/<dir>/TALON.md for m and returns the directory.
func writeTalon(t *testing.T, root, dir string, m *manifest.Manifest) string {
	t.Helper()

	path := filepath.Join(root, dir)
	require.NoError(t, os.MkdirAll(path, 0o755))
	data, err := manifest.Marshal(m)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(path, manifest.FileName), data, 0o644))
	return path
}

func talon(name, version, description string, tags ...string) *manifest.Manifest {
	m := &manifest.Manifest{Name: name, Version: version, Description: description}
	if len(tags) > 0 {
		m.Tags = tags
	}
	return m
}

func entry(name, version, description string, tags ...string) Entry {
	return Entry{
		Manifest:    *talon(name, version, description, tags...),
		SourcePath:  "/talons/" + name,
		InstalledAt: fixedTime,
	}
}

func names(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Manifest.Name)
	}
	return out
}

func newTestRegistry(t *testing.T, opts ...Option) *Registry {
	t.Helper()

	root := filepath.Join(t.TempDir(), "talons")
	opts = append([]Option{WithClock(fixedClock)}, opts...)
	reg, err := New(root, "", opts...)
	require.NoError(t, err)
	return reg
}
