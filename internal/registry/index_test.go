package registry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/femtoclaw/talon/internal/manifest"
	"github.com/femtoclaw/talon/internal/platform"
)

func TestIndex_AddGet(t *testing.T) {
	t.Parallel()

	idx := NewIndex()
	e := entry("github", "1.0.0", "GitHub integration", "vcs")
	require.NoError(t, idx.Add(e, false))

	got, err := idx.Get("github")
	require.NoError(t, err)
	require.Equal(t, e, got)
	require.Equal(t, 1, idx.Len())
}

func TestIndex_AddConflictLeavesIndexUnchanged(t *testing.T) {
	t.Parallel()

	idx := NewIndex()
	require.NoError(t, idx.Add(entry("alpha", "1.0.0", "first"), false))
	require.NoError(t, idx.Add(entry("beta", "1.0.0", "second"), false))
	before := idx.List()

	err := idx.Add(entry("alpha", "2.0.0", "replacement"), false)
	require.ErrorIs(t, err, ErrConflict)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	require.Equal(t, "alpha", conflict.Name)
	require.Equal(t, before, idx.List())
}

func TestIndex_AddReplace(t *testing.T) {
	t.Parallel()

	idx := NewIndex()
	require.NoError(t, idx.Add(entry("alpha", "1.0.0", "first"), false))
	require.NoError(t, idx.Add(entry("alpha", "2.0.0", "second"), true))

	got, err := idx.Get("alpha")
	require.NoError(t, err)
	require.Equal(t, "2.0.0", got.Manifest.Version)
	require.Equal(t, 1, idx.Len())
}

func TestIndex_AddRejectsInvalidEntries(t *testing.T) {
	t.Parallel()

	idx := NewIndex()
	require.ErrorIs(t, idx.Add(entry("Bad_Name", "1.0.0", "d"), false), manifest.ErrInvalidName)
	require.ErrorIs(t, idx.Add(entry("ok", "1.0", "d"), false), manifest.ErrInvalidVersion)
	require.ErrorIs(t, idx.Add(entry("ok", "v1.0.0", "d"), false), manifest.ErrInvalidVersion)
	require.Zero(t, idx.Len())
}

func TestIndex_Remove(t *testing.T) {
	t.Parallel()

	idx := NewIndex()
	require.NoError(t, idx.Add(entry("alpha", "1.0.0", "first"), false))

	removed, err := idx.Remove("alpha")
	require.NoError(t, err)
	require.Equal(t, "alpha", removed.Manifest.Name)

	_, err = idx.Remove("alpha")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = idx.Get("alpha")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestIndex_ListSortedByName(t *testing.T) {
	t.Parallel()

	idx := NewIndex()
	for _, n := range []string{"gamma", "alpha", "beta", "alpha-two"} {
		require.NoError(t, idx.Add(entry(n, "1.0.0", "d"), false))
	}
	require.Equal(t, []string{"alpha", "alpha-two", "beta", "gamma"}, names(idx.List()))
}

func TestIndex_Search(t *testing.T) {
	t.Parallel()

	idx := NewIndex()
	require.NoError(t, idx.Add(entry("github", "1.0.0", "Issues and pull requests", "VCS", "devtools"), false))
	require.NoError(t, idx.Add(entry("slack", "1.0.0", "Team chat", "chat"), false))
	require.NoError(t, idx.Add(entry("gitlab", "1.0.0", "Merge requests", "vcs-hosting"), false))

	tc := []struct {
		name  string
		query Query
		want  []string
	}{
		{name: "empty matches all", query: Query{}, want: []string{"github", "gitlab", "slack"}},
		{name: "name substring", query: Query{Text: "git"}, want: []string{"github", "gitlab"}},
		{name: "name case insensitive", query: Query{Text: "GITHUB"}, want: []string{"github"}},
		{name: "description substring", query: Query{Text: "CHAT"}, want: []string{"slack"}},
		{name: "tag exact case insensitive", query: Query{Text: "vcs"}, want: []string{"github"}},
		{name: "tag substring does not match", query: Query{Text: "dev"}, want: []string{}},
		{name: "query longer than tag does not match", query: Query{Text: "devtoolsx"}, want: []string{}},
		{name: "tag filter", query: Query{Tags: []string{"CHAT", "vcs-hosting"}}, want: []string{"gitlab", "slack"}},
		{name: "text and tag filter", query: Query{Text: "requests", Tags: []string{"vcs"}}, want: []string{"github"}},
		{name: "no match", query: Query{Text: "jira"}, want: []string{}},
	}

	for _, testCase := range tc {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, testCase.want, names(idx.Search(testCase.query)))
		})
	}
}

func TestIndex_SaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", DefaultIndexName)

	full := Entry{
		Manifest: manifest.Manifest{
			Name:        "github",
			Version:     "1.2.3-rc.1+build.7",
			Description: "GitHub: issues & PRs",
			Author:      "femtoclaw",
			License:     "MIT",
			Tags:        []string{"vcs", "devtools"},
			Repository:  "https://github.com/femtoclaw/talons",
			Runtime:     map[string]any{"kind": "shell", "version": 3.0, "ratio": 0.5},
			Permissions: []any{"network", 1.0},
			Commands: []any{map[string]any{
				"name": "list-issues",
				"args": []any{map[string]any{"name": "repo", "required": true}},
			}},
			Extra:         map[string]any{"x-level": 3, "x-weight": 2.0},
			Documentation: "\n# GitHub\n\n---\nbody\n",
		},
		SourcePath:  "/talons/github",
		InstalledAt: fixedTime,
	}

	idx := NewIndex()
	require.NoError(t, idx.Add(full, false))
	require.NoError(t, idx.Add(entry("alpha", "0.1.0", "minimal"), false))
	require.NoError(t, idx.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	if platform.SupportsPermissions() {
		require.Equal(t, os.FileMode(0o644), info.Mode().Perm())
	}

	loaded, err := LoadIndex(path)
	require.NoError(t, err)
	require.Equal(t, idx.List(), loaded.List())
}

func TestLoadIndex_MissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	idx, err := LoadIndex(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Zero(t, idx.Len())
}

func TestLoadIndex_Corrupt(t *testing.T) {
	t.Parallel()

	tc := []struct {
		name    string
		content string
	}{
		{name: "not yaml", content: "version: \"1\"\ntalons: [unclosed"},
		{name: "empty file", content: ""},
		{name: "unknown format version", content: "version: \"9\"\ntalons: {}\n"},
		{name: "key differs from name", content: "version: \"1\"\ntalons:\n  alpha:\n    manifest: {name: beta, version: 1.0.0, description: d}\n"},
		{name: "invalid version", content: "version: \"1\"\ntalons:\n  alpha:\n    manifest: {name: alpha, version: \"1.0\", description: d}\n"},
		{name: "invalid name", content: "version: \"1\"\ntalons:\n  Alpha:\n    manifest: {name: Alpha, version: 1.0.0, description: d}\n"},
	}

	for _, testCase := range tc {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), DefaultIndexName)
			require.NoError(t, os.WriteFile(path, []byte(testCase.content), 0o644))

			_, err := LoadIndex(path)
			require.ErrorIs(t, err, ErrIndexCorrupt)
		})
	}
}

func TestLoadIndex_UnreadableIsIOError(t *testing.T) {
	t.Parallel()

	// A directory in place of the file cannot be read.
	path := t.TempDir()
	_, err := LoadIndex(path)
	require.ErrorIs(t, err, ErrIO)
	require.NotErrorIs(t, err, ErrIndexCorrupt)
}

// Not parallel: swaps the package-level rename hook.
func TestIndex_SaveInterruptedKeepsPreviousFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultIndexName)

	idx := NewIndex()
	require.NoError(t, idx.Add(entry("alpha", "1.0.0", "first"), false))
	require.NoError(t, idx.Save(path))
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	crash := errors.New("simulated crash")
	var tmpSeen string
	orig := beforeRename
	beforeRename = func(tmpPath string) error {
		tmpSeen = tmpPath
		return crash
	}
	t.Cleanup(func() { beforeRename = orig })

	require.NoError(t, idx.Add(entry("beta", "1.0.0", "second"), false))
	err = idx.Save(path)
	require.ErrorIs(t, err, crash)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, before, after)

	require.NotEmpty(t, tmpSeen)
	require.Equal(t, dir, filepath.Dir(tmpSeen))
	_, err = os.Stat(tmpSeen)
	require.ErrorIs(t, err, os.ErrNotExist, "temp file should be cleaned up")

	loaded, err := LoadIndex(path)
	require.NoError(t, err)
	require.Equal(t, []string{"alpha"}, names(loaded.List()))
}

func TestLoadIndex_IgnoresLeftoverTempFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, DefaultIndexName)

	idx := NewIndex()
	require.NoError(t, idx.Add(entry("alpha", "1.0.0", "first"), false))
	require.NoError(t, idx.Save(path))

	// A process killed between write and rename leaves a partial temp file.
	leftover := filepath.Join(dir, ".index-12345.tmp")
	require.NoError(t, os.WriteFile(leftover, []byte("version: \"1\"\ntalons:\n  be"), 0o644))

	loaded, err := LoadIndex(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha"}, names(loaded.List()))
}
