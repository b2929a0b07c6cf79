package scaffold

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"go.yaml.in/yaml/v3"

	"github.com/femtoclaw/talon/internal/manifest"
)

//go:embed templates/TALON.md.tmpl
var templateFS embed.FS

// parseGenerated reads back a written manifest. Tests replace it to
// simulate a file that does not parse.
var parseGenerated = manifest.ParseFile

// ErrExists is returned when the target directory already holds a manifest.
var ErrExists = errors.New("talon already exists")

// DefaultName is the talon name used when none is given.
const DefaultName = "example"

// Data holds the template variables.
type Data struct {
	Name        string // directory and talon name, e.g. "example"
	Version     string // semver, e.g. "1.0.0"
	Description string
	Author      string // optional
	License     string // optional SPDX expression
}

// Result holds the outcome of a generation.
type Result struct {
	OutputDir string
	Files     []string
	Warnings  []string
}

// NewData returns Data for name with the starter defaults filled in.
func NewData(name string) *Data {
	if name == "" {
		name = DefaultName
	}
	return &Data{
		Name:        name,
		Version:     "1.0.0",
		Description: "An example talon demonstrating the format",
		Author:      "Your Name",
		License:     "MIT",
	}
}

// Title is the Markdown heading of the generated documentation.
func (d *Data) Title() string {
	words := strings.Split(d.Name, "-")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ") + " Talon"
}

// FileName is the manifest file name, exposed to the template.
func (d *Data) FileName() string { return manifest.FileName }

// Generate writes <root>/<name>/TALON.md. It refuses to overwrite an
// existing manifest and returns ErrExists instead. The written file is
// parsed back; lint findings are returned as warnings.
func Generate(root string, data *Data) (*Result, error) {
	if !manifest.ValidName(data.Name) {
		return nil, &manifest.InvalidNameError{Name: data.Name}
	}
	if _, err := manifest.ParseVersion(data.Version); err != nil {
		return nil, &manifest.InvalidVersionError{Version: data.Version, Err: err}
	}

	for _, v := range []string{data.Description, data.Author, data.License} {
		if strings.ContainsAny(v, "\r\n") {
			return nil, fmt.Errorf("%w: metadata values must be single-line", manifest.ErrInvalidManifest)
		}
	}
	if strings.TrimSpace(data.Description) == "" {
		return nil, &manifest.MissingFieldError{Field: manifest.KeyDescription}
	}

	outputDir := filepath.Join(root, data.Name)
	outPath := filepath.Join(outputDir, manifest.FileName)
	if _, err := os.Stat(outPath); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrExists, outPath)
	}

	content, err := render(data)
	if err != nil {
		return nil, err
	}

	_, statErr := os.Stat(outputDir)
	createdDir := errors.Is(statErr, fs.ErrNotExist)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	cleanup := func() {
		_ = os.Remove(outPath)
		if createdDir {
			_ = os.Remove(outputDir)
		}
	}
	if err := os.WriteFile(outPath, content, 0644); err != nil {
		cleanup()
		return nil, fmt.Errorf("writing %s: %w", outPath, err)
	}

	result := &Result{
		OutputDir: outputDir,
		Files:     []string{manifest.FileName},
	}

	m, err := parseGenerated(outPath)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("generated manifest does not parse: %w", err)
	}
	result.Warnings = manifest.Lint(m)

	return result, nil
}

func render(data *Data) ([]byte, error) {
	tmplBytes, err := templateFS.ReadFile("templates/TALON.md.tmpl")
	if err != nil {
		return nil, fmt.Errorf("reading template: %w", err)
	}

	tmpl, err := template.New("TALON.md").Parse(string(tmplBytes))
	if err != nil {
		return nil, fmt.Errorf("parsing template: %w", err)
	}

	quoted := *data
	quoted.Description = yamlScalar(data.Description)
	quoted.Author = yamlScalar(data.Author)
	quoted.License = yamlScalar(data.License)

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, &quoted); err != nil {
		return nil, fmt.Errorf("executing template: %w", err)
	}
	return buf.Bytes(), nil
}

// yamlScalar renders s as a single-line YAML scalar, quoting it when plain
// style would change its meaning (e.g. "true", "1.0" or "a: b").
func yamlScalar(s string) string {
	if s == "" {
		return ""
	}
	out, err := yaml.Marshal(s)
	if err != nil {
		return s
	}
	return strings.TrimSuffix(string(out), "\n")
}
