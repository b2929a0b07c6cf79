package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/femtoclaw/talon/internal/branding"
	"github.com/femtoclaw/talon/internal/config"
	"github.com/femtoclaw/talon/internal/registry"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

// Global flags.
var (
	configFile string
	dirFlag    string
	indexFlag  string
	logLevel   string
)

// Resolved per invocation by PersistentPreRunE.
var (
	cfg     *config.Config
	logger  hclog.Logger = hclog.NewNullLogger()
	logFile io.Closer
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` keeps a local index of talons: capability packages described by a
TALON.md manifest. It adds, removes, searches and reconciles talons in the
packages directory.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Config file (default is the user config directory)")
	flags.StringVar(&dirFlag, config.KeyDir, "", "Packages directory")
	flags.StringVar(&indexFlag, config.KeyIndex, "", "Index file (default is <dir>/"+registry.DefaultIndexName+")")
	flags.StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error, off)")
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	defer closeLog()
	return rootCmd.Execute()
}

// setup loads configuration, lets global flags override it and configures
// the logger.
func setup(cmd *cobra.Command, args []string) error {
	c, err := config.Load(configFile)
	if err != nil {
		return err
	}

	flags := cmd.Root().PersistentFlags()
	for key, name := range map[string]string{
		config.KeyDir:      config.KeyDir,
		config.KeyIndex:    config.KeyIndex,
		config.KeyLogLevel: "log-level",
	} {
		if err := c.BindFlag(key, flags.Lookup(name)); err != nil {
			return err
		}
	}

	l, f, err := configureLogger(c.LogLevel(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	closeLog()
	cfg = c
	logger = l
	logFile = f
	return nil
}

// configureLogger writes to the file named by TALON_LOG_PATH when set and to
// stderr otherwise. The returned closer is the log file, or nil.
func configureLogger(level string, stderr io.Writer) (hclog.Logger, io.Closer, error) {
	lvl := hclog.LevelFromString(strings.ToLower(level))
	if lvl == hclog.NoLevel {
		return nil, nil, fmt.Errorf("invalid log level %q", level)
	}

	output := stderr
	var closer io.Closer
	if logPath := os.Getenv(branding.EnvVar("LOG_PATH")); logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file (%s): %w", logPath, err)
		}
		output = f
		closer = f
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:   branding.CLIName(),
		Level:  lvl,
		Output: output,
	}), closer, nil
}

// closeLog closes the log file opened by the last setup, if any.
func closeLog() {
	if logFile == nil {
		return
	}
	_ = logFile.Close()
	logFile = nil
	logger = hclog.NewNullLogger()
}

// openRegistry builds a registry from the resolved configuration.
func openRegistry() (*registry.Registry, error) {
	return registry.New(cfg.Dir(), cfg.IndexPath(),
		registry.WithLogger(logger),
		registry.WithExcludes(cfg.Excludes()),
	)
}
