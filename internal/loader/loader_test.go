package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/femtoclaw/talon/internal/manifest"
	"github.com/femtoclaw/talon/internal/registry"
)

func githubManifest() *manifest.Manifest {
	return &manifest.Manifest{
		Name:        "github",
		Version:     "1.2.0",
		Description: "GitHub integration",
		Commands: []any{
			map[string]any{
				"name":        "list-issues",
				"description": "List open issues",
				"args": []any{
					map[string]any{"name": "repo", "type": "string", "required": true},
					map[string]any{"name": "limit", "type": "integer"},
				},
			},
			"not-a-mapping",
			map[string]any{"description": "no name"},
			map[string]any{"name": []any{"bad"}},
			map[string]any{"name": "whoami"},
		},
	}
}

func TestCapabilities(t *testing.T) {
	t.Parallel()

	caps := Capabilities(githubManifest())
	require.Equal(t, []Capability{
		{
			Name:        "github.list-issues",
			Description: "List open issues",
			Args: []Arg{
				{Name: "repo", Type: "string", Required: true},
				{Name: "limit", Type: "integer"},
			},
		},
		{Name: "github.whoami"},
	}, caps)
}

func TestCapabilities_OpaqueShapes(t *testing.T) {
	t.Parallel()

	tc := []struct {
		name     string
		commands any
	}{
		{name: "absent", commands: nil},
		{name: "mapping", commands: map[string]any{"run": "x"}},
		{name: "scalar", commands: "run"},
		{name: "empty list", commands: []any{}},
	}

	for _, testCase := range tc {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			m := &manifest.Manifest{Name: "x", Version: "1.0.0", Description: "d", Commands: testCase.commands}
			require.Empty(t, Capabilities(m))
		})
	}
}

func TestSystemPrompt(t *testing.T) {
	t.Parallel()

	plain := &manifest.Manifest{Name: "notes", Version: "0.1.0", Description: "Take notes"}
	got := SystemPrompt([]*manifest.Manifest{githubManifest(), plain})

	want := "Available Talons:\n\n" +
		"## github (v1.2.0)\n" +
		"GitHub integration\n\n" +
		"Commands:\n" +
		"- list-issues: List open issues\n" +
		"- whoami: \n" +
		"\n" +
		"## notes (v0.1.0)\n" +
		"Take notes\n\n"
	require.Equal(t, want, got)
}

func TestLoader(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	reg, err := registry.New(root, "")
	require.NoError(t, err)

	dir := filepath.Join(root, "github")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	data, err := manifest.Marshal(githubManifest())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, manifest.FileName), data, 0o644))

	_, err = reg.AddFromPath(dir, registry.AddOptions{})
	require.NoError(t, err)

	l := New(reg, nil)

	caps, err := l.Capabilities("github")
	require.NoError(t, err)
	require.Len(t, caps, 2)

	_, err = l.Capabilities("ghost")
	require.ErrorIs(t, err, registry.ErrNotFound)

	prompt := l.SystemPrompt([]string{"ghost", "github"})
	require.Contains(t, prompt, "## github (v1.2.0)")
	require.NotContains(t, prompt, "ghost")

	// Load reads the current files, not the indexed copy.
	require.NoError(t, os.Remove(filepath.Join(dir, manifest.FileName)))
	_, err = l.Load("github")
	require.ErrorIs(t, err, manifest.ErrManifestMissing)
}
