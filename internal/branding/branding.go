// Package branding provides compile-time identity values for the CLI.
//
// Forkers edit branding.yaml in this package before building; Go's
// //go:embed bakes it into the binary.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName     string `yaml:"cli_name"`
	DisplayName string `yaml:"display_name"`
	Description string `yaml:"description"`
	AppDir      string `yaml:"app_dir"`
	PackagesDir string `yaml:"packages_dir"`
	EnvPrefix   string `yaml:"env_prefix"`
	GoModule    string `yaml:"go_module"`
}

func load() {
	once.Do(func() {
		// Set hard defaults in case the embedded file is missing/empty.
		defaults = brand{
			CLIName:     "talon",
			DisplayName: "Talon",
			Description: "Local package index for FemtoClaw talons",
			AppDir:      "femtoclaw",
			PackagesDir: "talons",
			EnvPrefix:   "TALON",
			GoModule:    "github.com/femtoclaw/talon",
		}
		// Overlay with embedded YAML values.
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "talon").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name (e.g., "Talon").
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// AppDir returns the application directory name created under the
// per-user data and config directories (e.g., "femtoclaw").
func AppDir() string { load(); return defaults.AppDir }

// PackagesDir returns the name of the packages root below AppDir (e.g., "talons").
func PackagesDir() string { load(); return defaults.PackagesDir }

// EnvPrefix returns the environment variable prefix (e.g., "TALON").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// GoModule returns the Go module path. Not consumed at runtime.
func GoModule() string { load(); return defaults.GoModule }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("home") → "TALON_HOME".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
