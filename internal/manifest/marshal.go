package manifest

import (
	"bytes"
	"fmt"
	"sort"

	"go.yaml.in/yaml/v3"
)

// Marshal renders m as TALON.md content. Known keys are written in
// canonical order, then unknown keys sorted by name, then the closing
// delimiter and the documentation body verbatim. Parse(Marshal(m))
// reproduces m.
func Marshal(m *Manifest) ([]byte, error) {
	doc := &yaml.Node{Kind: yaml.MappingNode}

	add := func(key string, value any) error {
		v, err := encodeValue(value)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", key, err)
		}
		if key == KeyTags {
			v.Style = yaml.FlowStyle
		}
		doc.Content = append(doc.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, v)
		return nil
	}

	fields := []struct {
		key   string
		value any
		set   bool
	}{
		{KeyName, m.Name, true},
		{KeyVersion, m.Version, true},
		{KeyDescription, m.Description, true},
		{KeyAuthor, m.Author, m.Author != ""},
		{KeyLicense, m.License, m.License != ""},
		{KeyTags, m.Tags, len(m.Tags) > 0},
		{KeyRepository, m.Repository, m.Repository != ""},
		{KeyHomepage, m.Homepage, m.Homepage != ""},
		{KeyRuntime, m.Runtime, m.Runtime != nil},
		{KeyPermissions, m.Permissions, m.Permissions != nil},
		{KeyEnvironment, m.Environment, m.Environment != nil},
		{KeyCommands, m.Commands, m.Commands != nil},
	}
	for _, f := range fields {
		if !f.set {
			continue
		}
		if err := add(f.key, f.value); err != nil {
			return nil, err
		}
	}

	extraKeys := make([]string, 0, len(m.Extra))
	for k := range m.Extra {
		if isKnownKey(k) {
			return nil, fmt.Errorf("extra key %q shadows a known field", k)
		}
		extraKeys = append(extraKeys, k)
	}
	sort.Strings(extraKeys)
	for _, k := range extraKeys {
		if err := add(k, m.Extra[k]); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	buf.WriteString(Delimiter + "\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encoding metadata: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding metadata: %w", err)
	}
	buf.WriteString(Delimiter + "\n")
	buf.WriteString(m.Documentation)

	return buf.Bytes(), nil
}
