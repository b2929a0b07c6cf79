package manifest

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"go.yaml.in/yaml/v3"
)

// encodeValue builds the YAML node for a decoded metadata value. It differs
// from yaml.Node.Encode in one respect: floats with a whole-number value are
// written as 3.0 rather than 3, so they decode back as float64 and not int.
func encodeValue(value any) (*yaml.Node, error) {
	switch v := value.(type) {
	case float64:
		return floatNode(v, 64)
	case float32:
		return floatNode(float64(v), 32)
	case []any:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range v {
			n, err := encodeValue(item)
			if err != nil {
				return nil, err
			}
			seq.Content = append(seq.Content, n)
		}
		return seq, nil
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range keys {
			if err := appendPair(m, k, v[k]); err != nil {
				return nil, err
			}
		}
		return m, nil
	case map[any]any:
		keys := make([]any, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			return fmt.Sprint(keys[i]) < fmt.Sprint(keys[j])
		})
		m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range keys {
			if err := appendPair(m, k, v[k]); err != nil {
				return nil, err
			}
		}
		return m, nil
	default:
		var n yaml.Node
		if err := n.Encode(value); err != nil {
			return nil, err
		}
		return &n, nil
	}
}

func appendPair(m *yaml.Node, key, value any) error {
	k, err := encodeValue(key)
	if err != nil {
		return err
	}
	v, err := encodeValue(value)
	if err != nil {
		return fmt.Errorf("encoding %v: %w", key, err)
	}
	m.Content = append(m.Content, k, v)
	return nil
}

func floatNode(f float64, bits int) (*yaml.Node, error) {
	if math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) {
		var n yaml.Node
		if err := n.Encode(f); err != nil {
			return nil, err
		}
		return &n, nil
	}
	s := strconv.FormatFloat(f, 'f', -1, bits) + ".0"
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: s}, nil
}

// MarshalYAML encodes m field by field so the opaque trees keep their
// scalar types when the manifest is stored inside another document, such
// as the registry index.
func (m Manifest) MarshalYAML() (any, error) {
	doc := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}

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
		{"extra", map[string]any(m.Extra), len(m.Extra) > 0},
		{"documentation", m.Documentation, m.Documentation != ""},
	}
	for _, f := range fields {
		if !f.set {
			continue
		}
		if err := appendPair(doc, f.key, f.value); err != nil {
			return nil, err
		}
	}
	return doc, nil
}
