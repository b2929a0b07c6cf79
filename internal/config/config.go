package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/femtoclaw/talon/internal/branding"
	"github.com/femtoclaw/talon/internal/userdata"
)

const fileType = "yaml"

// Recognized keys.
const (
	KeyDir            = "dir"
	KeyIndex          = "index"
	KeyLogLevel       = "log_level"
	KeyInstallExclude = "install.exclude"
)

// DefaultLogLevel applies when no level is configured.
const DefaultLogLevel = "warn"

// Keys lists every key accepted by Get and Set.
var Keys = []string{KeyDir, KeyIndex, KeyLogLevel, KeyInstallExclude}

// Config is a resolved configuration.
type Config struct {
	v    *viper.Viper
	path string
}

// Load reads the config file at path, or at the default location when path
// is empty. A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = userdata.ConfigPath()
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(fileType)
	v.SetEnvPrefix(branding.EnvPrefix())
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyDir, userdata.PackagesRoot())
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyInstallExclude, []string{})

	if err := v.ReadInConfig(); err != nil && !isNotExist(err) {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	return &Config{v: v, path: path}, nil
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}

// Path returns the config file location.
func (c *Config) Path() string { return c.path }

// BindFlag makes flag, when set on the command line, take precedence for key.
func (c *Config) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("binding %s: flag not defined", key)
	}
	return c.v.BindPFlag(key, flag)
}

// Dir returns the packages root.
func (c *Config) Dir() string {
	return c.v.GetString(KeyDir)
}

// IndexPath returns the index file, defaulting to <dir>/index.yaml.
func (c *Config) IndexPath() string {
	if p := c.v.GetString(KeyIndex); p != "" {
		return p
	}
	return filepath.Join(c.Dir(), userdata.IndexFile)
}

// LogLevel returns the configured log level name.
func (c *Config) LogLevel() string {
	return c.v.GetString(KeyLogLevel)
}

// Excludes returns the extra install exclude patterns. A value given as a
// single string, as TALON_INSTALL_EXCLUDE is, is a comma-separated list, the
// same form Set accepts.
func (c *Config) Excludes() []string {
	if v, ok := c.v.Get(KeyInstallExclude).(string); ok {
		return splitList(v)
	}
	return c.v.GetStringSlice(KeyInstallExclude)
}

// Get returns the resolved value of key as a string. Lists are joined with
// commas.
func (c *Config) Get(key string) (string, error) {
	if !slices.Contains(Keys, key) {
		return "", fmt.Errorf("unknown config key %q (valid keys: %s)", key, strings.Join(Keys, ", "))
	}
	switch key {
	case KeyIndex:
		return c.IndexPath(), nil
	case KeyInstallExclude:
		return strings.Join(c.Excludes(), ","), nil
	default:
		return c.v.GetString(key), nil
	}
}

// Set writes key to the config file. Only the file is touched: values from
// flags, environment or defaults are not persisted alongside it. For
// install.exclude, value is a comma-separated list.
func (c *Config) Set(key, value string) error {
	if !slices.Contains(Keys, key) {
		return fmt.Errorf("unknown config key %q (valid keys: %s)", key, strings.Join(Keys, ", "))
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	file := viper.New()
	file.SetConfigFile(c.path)
	file.SetConfigType(fileType)
	if err := file.ReadInConfig(); err != nil && !isNotExist(err) {
		return fmt.Errorf("reading config file %s: %w", c.path, err)
	}

	var stored any = value
	if key == KeyInstallExclude {
		stored = splitList(value)
	}
	file.Set(key, stored)
	c.v.Set(key, stored)

	if err := file.WriteConfigAs(c.path); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
