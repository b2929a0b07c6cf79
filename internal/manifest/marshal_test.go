package manifest

import (
	"reflect"
	"strings"
	"testing"
)

func TestMarshal_RoundTrip(t *testing.T) {
	full := &Manifest{
		Name:        "github",
		Version:     "1.2.3-rc.1+meta",
		Description: "GitHub integration: issues & PRs",
		Author:      "femtoclaw",
		License:     "Apache-2.0 OR MIT",
		Tags:        []string{"github", "devtools", "github"},
		Repository:  "https://github.com/femtoclaw/talons",
		Homepage:    "https://femtoclaw.dev",
		Runtime:     map[string]any{"kind": "shell", "version": "5.2"},
		Permissions: []any{"network", "exec:gh"},
		Environment: []any{map[string]any{"name": "GH_TOKEN", "required": true}},
		Commands: []any{map[string]any{
			"name":        "list-issues",
			"description": "List issues",
			"args":        []any{map[string]any{"name": "repo", "type": "string", "required": true}},
		}},
		Extra:         map[string]any{"x-level": 3, "x-flag": false, "x-null": nil},
		Documentation: "\n# GitHub\n\nBody with --- inside.\n",
	}

	tests := []struct {
		name string
		m    *Manifest
	}{
		{"all fields", full},
		{"required only", &Manifest{Name: "a", Version: "0.0.1", Description: "d"}},
		{"numeric looking strings", &Manifest{Name: "n", Version: "1.0.0", Description: "123", Author: "true", Tags: []string{"1", "null"}}},
		{"documentation without leading newline", &Manifest{Name: "a", Version: "1.0.0", Description: "d", Documentation: "text"}},
		{"only opaque fields", &Manifest{Name: "a", Version: "1.0.0", Description: "d", Runtime: "node", Commands: []any{}}},
		{"whole number floats", &Manifest{
			Name:        "f",
			Version:     "1.0.0",
			Description: "d",
			Runtime:     map[string]any{"min": 1.0, "ratio": 2.5, "count": 3, "zero": 0.0, "neg": -4.0},
			Permissions: []any{1.0, 2},
			Extra:       map[string]any{"x-weight": 3.0, "x-nested": map[string]any{"big": 1e21}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Marshal(tt.m)
			if err != nil {
				t.Fatalf("Marshal error: %v", err)
			}
			got, err := Parse(data)
			if err != nil {
				t.Fatalf("Parse error: %v\n%s", err, data)
			}
			if !reflect.DeepEqual(got, tt.m) {
				t.Errorf("round trip mismatch\n got: %#v\nwant: %#v\ncontent:\n%s", got, tt.m, data)
			}
		})
	}
}

// Every combination of the optional scalar fields must survive a round trip.
func TestMarshal_RoundTripOptionalCombinations(t *testing.T) {
	setters := []func(*Manifest){
		func(m *Manifest) { m.Author = "someone" },
		func(m *Manifest) { m.License = "MIT" },
		func(m *Manifest) { m.Tags = []string{"x", "y"} },
		func(m *Manifest) { m.Repository = "https://example.com/r" },
		func(m *Manifest) { m.Homepage = "https://example.com" },
		func(m *Manifest) { m.Runtime = map[string]any{"kind": "node"} },
		func(m *Manifest) { m.Permissions = []any{"fs:read"} },
		func(m *Manifest) { m.Environment = []any{"HOME"} },
		func(m *Manifest) { m.Commands = []any{map[string]any{"name": "run"}} },
		func(m *Manifest) { m.Documentation = "# doc\n" },
	}

	for mask := 0; mask < 1<<len(setters); mask++ {
		m := &Manifest{Name: "combo", Version: "1.0.0", Description: "combination"}
		for i, set := range setters {
			if mask&(1<<i) != 0 {
				set(m)
			}
		}
		data, err := Marshal(m)
		if err != nil {
			t.Fatalf("mask %b: Marshal error: %v", mask, err)
		}
		got, err := Parse(data)
		if err != nil {
			t.Fatalf("mask %b: Parse error: %v", mask, err)
		}
		if !reflect.DeepEqual(got, m) {
			t.Fatalf("mask %b: round trip mismatch\n got: %#v\nwant: %#v", mask, got, m)
		}
	}
}

func TestMarshal_CanonicalLayout(t *testing.T) {
	m := &Manifest{
		Name:        "github",
		Version:     "1.0.0",
		Description: "d",
		Tags:        []string{"a", "b"},
		Extra:       map[string]any{"zeta": 1, "alpha": 2},
	}
	data, err := Marshal(m)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	want := "---\nname: github\nversion: 1.0.0\ndescription: d\ntags: [a, b]\nalpha: 2\nzeta: 1\n---\n"
	if string(data) != want {
		t.Errorf("Marshal =\n%s\nwant:\n%s", data, want)
	}
}

func TestMarshal_WholeFloatKeepsDecimalPoint(t *testing.T) {
	m, err := Parse([]byte("---\nname: f\nversion: 1.0.0\ndescription: d\nruntime:\n  min: 1.0\n  ratio: 2.50\n---\n"))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	data, err := Marshal(m)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	if !strings.Contains(string(data), "min: 1.0\n") {
		t.Errorf("Marshal dropped the decimal point:\n%s", data)
	}
	again, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if got := again.Runtime.(map[string]any)["min"]; got != 1.0 {
		t.Errorf("runtime.min = %#v, want float64(1)", got)
	}
}

func TestMarshal_RejectsShadowingExtra(t *testing.T) {
	m := &Manifest{Name: "a", Version: "1.0.0", Description: "d", Extra: map[string]any{"name": "b"}}
	_, err := Marshal(m)
	if err == nil || !strings.Contains(err.Error(), "shadows") {
		t.Fatalf("Marshal error = %v, want shadowing error", err)
	}
}

func TestMarshal_ParsedFixtureRoundTrip(t *testing.T) {
	m, err := ParseDir(testPath("github"))
	if err != nil {
		t.Fatalf("ParseDir error: %v", err)
	}
	data, err := Marshal(m)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	again, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if !reflect.DeepEqual(again, m) {
		t.Errorf("fixture round trip mismatch\n got: %#v\nwant: %#v", again, m)
	}
}
