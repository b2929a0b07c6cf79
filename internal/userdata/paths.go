package userdata

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/femtoclaw/talon/internal/branding"
)

// File name constants.
const (
	IndexFile  = "index.yaml"
	ConfigFile = "config.yaml"
)

// Permission constants.
const (
	DirPermNormal  os.FileMode = 0755
	FilePermNormal os.FileMode = 0644
)

// DataRoot returns the per-user application data directory, e.g.
// ~/.local/share/femtoclaw. XDG_DATA_HOME is honored on every platform.
func DataRoot() string {
	xdg.Reload()
	return filepath.Join(xdg.DataHome, branding.AppDir())
}

// ConfigRoot returns the per-user configuration directory, e.g.
// ~/.config/femtoclaw. XDG_CONFIG_HOME is honored on every platform.
func ConfigRoot() string {
	xdg.Reload()
	return filepath.Join(xdg.ConfigHome, branding.AppDir())
}

// ConfigPath returns the path to config.yaml.
func ConfigPath() string {
	return filepath.Join(ConfigRoot(), ConfigFile)
}

// PackagesRoot returns the directory talons are discovered in and installed
// to. TALON_HOME overrides the default <data root>/talons.
func PackagesRoot() string {
	if v := os.Getenv(branding.EnvVar("HOME")); v != "" {
		return v
	}
	return filepath.Join(DataRoot(), branding.PackagesDir())
}

// IndexPath returns the registry index file. TALON_INDEX overrides the
// default <packages root>/index.yaml.
func IndexPath() string {
	if v := os.Getenv(branding.EnvVar("INDEX")); v != "" {
		return v
	}
	return filepath.Join(PackagesRoot(), IndexFile)
}
