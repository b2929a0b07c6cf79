//go:build integration

package integration_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// testEnv holds paths to isolated test directories.
type testEnv struct {
	PackagesDir string // TALON_HOME, the packages root
	ConfigDir   string // XDG_CONFIG_HOME
	SourceDir   string // talons living outside the packages root
}

// setupTestEnv creates isolated temp directories and sets environment variables
// so all talon operations are sandboxed. The env vars are restored after the test.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		PackagesDir: filepath.Join(t.TempDir(), "talons"),
		ConfigDir:   t.TempDir(),
		SourceDir:   t.TempDir(),
	}

	t.Setenv("TALON_HOME", env.PackagesDir)
	t.Setenv("TALON_INDEX", "")
	t.Setenv("XDG_CONFIG_HOME", env.ConfigDir)

	return env
}

// writeTalon creates <root>/<dir>/TALON.md with a minimal manifest.
func writeTalon(t *testing.T, root, dir, name, version, description string) string {
	t.Helper()
	content := "---\nname: " + name + "\nversion: " + version + "\ndescription: " + description + "\n---\n\n# " + name + "\n"
	path := filepath.Join(root, dir, "TALON.md")
	writeFile(t, path, content)
	return filepath.Dir(path)
}

// writeFile creates a file at the given path with the given content.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("creating dir %s: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// assertFileExists fails the test if the file does not exist.
func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to exist: %s (error: %v)", path, err)
	}
}

// assertFileNotExists fails the test if the file exists.
func assertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("expected file NOT to exist: %s", path)
	}
}

// assertFileContains fails if the file doesn't exist or doesn't contain substr.
func assertFileContains(t *testing.T, path, substr string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Errorf("reading %s: %v", path, err)
		return
	}
	if !strings.Contains(string(data), substr) {
		t.Errorf("file %s does not contain %q.\nContents:\n%s", path, substr, string(data))
	}
}
