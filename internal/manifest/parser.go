package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"
)

// frontmatter mirrors the recognized keys of the metadata block. It is
// decoded separately from Manifest so user keys such as "extra" can never
// land in Manifest's bookkeeping fields.
type frontmatter struct {
	Name        string   `yaml:"name"`
	Version     string   `yaml:"version"`
	Description string   `yaml:"description"`
	Author      string   `yaml:"author"`
	License     string   `yaml:"license"`
	Tags        []string `yaml:"tags"`
	Repository  string   `yaml:"repository"`
	Homepage    string   `yaml:"homepage"`
	Runtime     any      `yaml:"runtime"`
	Permissions any      `yaml:"permissions"`
	Environment any      `yaml:"environment"`
	Commands    any      `yaml:"commands"`
}

// ParseDir locates TALON.md inside dir and parses it. A missing directory
// or missing manifest yields a *MissingError.
func ParseDir(dir string) (*Manifest, error) {
	path, err := findManifest(dir)
	if err != nil {
		return nil, err
	}
	return ParseFile(path)
}

// ParseFile reads a manifest file and parses its content.
func ParseFile(path string) (*Manifest, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return m, nil
}

// Parse parses manifest content: a metadata block between two "---" lines
// followed by a free-text documentation body. It never touches the
// filesystem and is safe for concurrent use.
func Parse(data []byte) (*Manifest, error) {
	block, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := yaml.Unmarshal(block, &raw); err != nil {
		return nil, fmt.Errorf("%w: decoding metadata: %v", ErrInvalidManifest, err)
	}

	for _, key := range RequiredKeys {
		if isEmptyValue(raw[key]) {
			return nil, &MissingFieldError{Field: key}
		}
	}

	if _, ok := raw[KeyName].(string); !ok {
		return nil, &InvalidNameError{Name: fmt.Sprint(raw[KeyName])}
	}
	if _, ok := raw[KeyVersion].(string); !ok {
		v := fmt.Sprint(raw[KeyVersion])
		return nil, &InvalidVersionError{Version: v, Err: fmt.Errorf("expected a quoted or dotted string, got %T", raw[KeyVersion])}
	}

	result, err := validateValue(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: validating metadata: %v", ErrInvalidManifest, err)
	}
	if !result.Valid {
		return nil, &SchemaError{Issues: result.Issues}
	}

	var fm frontmatter
	if err := yaml.Unmarshal(block, &fm); err != nil {
		return nil, fmt.Errorf("%w: decoding metadata: %v", ErrInvalidManifest, err)
	}

	if !ValidName(fm.Name) {
		return nil, &InvalidNameError{Name: fm.Name}
	}
	if _, err := ParseVersion(fm.Version); err != nil {
		return nil, &InvalidVersionError{Version: fm.Version, Err: err}
	}

	m := &Manifest{
		Name:          fm.Name,
		Version:       fm.Version,
		Description:   fm.Description,
		Author:        fm.Author,
		License:       fm.License,
		Repository:    fm.Repository,
		Homepage:      fm.Homepage,
		Runtime:       fm.Runtime,
		Permissions:   fm.Permissions,
		Environment:   fm.Environment,
		Commands:      fm.Commands,
		Documentation: body,
	}
	if len(fm.Tags) > 0 {
		m.Tags = fm.Tags
	}
	for key, value := range raw {
		if isKnownKey(key) {
			continue
		}
		if m.Extra == nil {
			m.Extra = make(map[string]any)
		}
		m.Extra[key] = value
	}

	return m, nil
}

// splitFrontmatter separates the metadata block from the body. Leading blank
// lines are skipped; the first non-blank line must be the opening delimiter
// and the block ends at the next line consisting of the delimiter alone.
// The body is returned verbatim, starting right after the closing line.
func splitFrontmatter(data []byte) ([]byte, string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	pos := 0
	opened := false
	blockStart := 0
	for pos < len(data) {
		end := bytes.IndexByte(data[pos:], '\n')
		next := len(data)
		if end >= 0 {
			next = pos + end + 1
		}
		line := strings.TrimRight(string(data[pos:next]), " \t\r\n")

		switch {
		case !opened && line == "":
			// Blank lines before the block are ignored.
		case !opened && line == Delimiter:
			opened = true
			blockStart = next
		case !opened:
			return nil, "", fmt.Errorf("%w: missing frontmatter: first line must be %q", ErrInvalidManifest, Delimiter)
		case line == Delimiter:
			return data[blockStart:pos], string(data[next:]), nil
		}
		pos = next
	}

	if !opened {
		return nil, "", fmt.Errorf("%w: missing frontmatter", ErrInvalidManifest)
	}
	return nil, "", fmt.Errorf("%w: frontmatter is not closed by %q", ErrInvalidManifest, Delimiter)
}

// findManifest returns the path of the manifest inside dir. The directory
// listing is compared byte for byte so "talon.md" does not satisfy the
// lookup on case-insensitive filesystems.
func findManifest(dir string) (string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &MissingError{Dir: dir}
		}
		return "", &IOError{Op: "stat", Path: dir, Err: err}
	}
	if !info.IsDir() {
		return "", &MissingError{Dir: dir}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", &IOError{Op: "read directory", Path: dir, Err: err}
	}
	for _, entry := range entries {
		if entry.Name() == FileName && !entry.IsDir() {
			return filepath.Join(dir, FileName), nil
		}
	}
	return "", &MissingError{Dir: dir}
}

func isEmptyValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	default:
		return false
	}
}

// readFile reads the contents of a file at the given path.
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &MissingError{Dir: filepath.Dir(path)}
		}
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}
	return data, nil
}
