package loader

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"
	"go.yaml.in/yaml/v3"

	"github.com/femtoclaw/talon/internal/manifest"
	"github.com/femtoclaw/talon/internal/registry"
)

// Capability is one command a talon exposes, named <talon>.<command>.
type Capability struct {
	Name        string
	Description string
	Args        []Arg
}

// Arg describes a single command argument.
type Arg struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Required bool   `yaml:"required"`
}

// command is the shape a commands list item is expected to have.
type command struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Args        []Arg  `yaml:"args"`
}

// Loader reads talons through a registry.
type Loader struct {
	reg    *registry.Registry
	logger hclog.Logger
}

// New returns a Loader over reg. A nil logger discards output.
func New(reg *registry.Registry, logger hclog.Logger) *Loader {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Loader{reg: reg, logger: logger.Named("loader")}
}

// Load re-reads the manifest of an indexed talon from its source directory,
// so the result reflects the files as they are now.
func (l *Loader) Load(name string) (*manifest.Manifest, error) {
	e, err := l.reg.Info(name)
	if err != nil {
		return nil, err
	}
	m, err := manifest.ParseDir(e.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("loading talon %s: %w", name, err)
	}
	return m, nil
}

// Capabilities loads name and returns its capabilities.
func (l *Loader) Capabilities(name string) ([]Capability, error) {
	m, err := l.Load(name)
	if err != nil {
		return nil, err
	}
	return Capabilities(m), nil
}

// SystemPrompt loads each named talon and renders the prompt. Talons that
// fail to load are logged and left out.
func (l *Loader) SystemPrompt(names []string) string {
	manifests := make([]*manifest.Manifest, 0, len(names))
	for _, name := range names {
		m, err := l.Load(name)
		if err != nil {
			l.logger.Warn("skipping talon", "name", name, "error", err)
			continue
		}
		manifests = append(manifests, m)
	}
	return SystemPrompt(manifests)
}

// Capabilities interprets the opaque commands field of m. It must be a list
// of mappings with at least a name; items of any other shape are skipped.
func Capabilities(m *manifest.Manifest) []Capability {
	var caps []Capability
	for _, cmd := range commands(m) {
		caps = append(caps, Capability{
			Name:        m.Name + "." + cmd.Name,
			Description: cmd.Description,
			Args:        cmd.Args,
		})
	}
	return caps
}

// SystemPrompt renders the "Available Talons" section for manifests, in the
// order given.
func SystemPrompt(manifests []*manifest.Manifest) string {
	var b strings.Builder
	b.WriteString("Available Talons:\n\n")
	for _, m := range manifests {
		fmt.Fprintf(&b, "## %s (v%s)\n", m.Name, m.Version)
		fmt.Fprintf(&b, "%s\n\n", m.Description)

		cmds := commands(m)
		if len(cmds) == 0 {
			continue
		}
		b.WriteString("Commands:\n")
		for _, cmd := range cmds {
			fmt.Fprintf(&b, "- %s: %s\n", cmd.Name, cmd.Description)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func commands(m *manifest.Manifest) []command {
	items, ok := m.Commands.([]any)
	if !ok {
		return nil
	}
	var out []command
	for _, item := range items {
		if cmd, ok := decodeCommand(item); ok {
			out = append(out, cmd)
		}
	}
	return out
}

// decodeCommand re-encodes one decoded YAML node into the command shape.
func decodeCommand(item any) (command, bool) {
	if _, ok := item.(map[string]any); !ok {
		return command{}, false
	}
	data, err := yaml.Marshal(item)
	if err != nil {
		return command{}, false
	}
	var cmd command
	if err := yaml.Unmarshal(data, &cmd); err != nil {
		return command{}, false
	}
	if cmd.Name == "" {
		return command{}, false
	}
	return cmd, true
}
