package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/femtoclaw/talon/internal/manifest"
)

var validateCmd = &cobra.Command{
	Use:   "validate <path>",
	Short: "Check a talon manifest",
	Long: `Parse a TALON.md file, or the TALON.md inside a directory, and report
schema violations and advisory warnings. Warnings do not fail the command.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	path := args[0]
	info, err := os.Stat(path)
	if err != nil {
		return &manifest.IOError{Op: "stat", Path: path, Err: err}
	}

	var m *manifest.Manifest
	if info.IsDir() {
		m, err = manifest.ParseDir(path)
	} else {
		m, err = manifest.ParseFile(path)
	}
	if err != nil {
		var schemaErr *manifest.SchemaError
		if errors.As(err, &schemaErr) {
			fmt.Fprintln(cmd.OutOrStdout(), "Schema violations:")
			for _, issue := range schemaErr.Issues {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s: %s\n", issuePath(issue.Path), issue.Message)
			}
			return fmt.Errorf("%s: %d schema violation(s)", path, len(schemaErr.Issues))
		}
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "OK %s@%s\n", m.Name, m.Version)
	for _, w := range manifest.Lint(m) {
		fmt.Fprintf(out, "  warning: %s\n", w)
	}
	return nil
}

func issuePath(p string) string {
	if p == "" {
		return "/"
	}
	return p
}
