package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/femtoclaw/talon/internal/loader"
)

var promptOutput string

var promptCmd = &cobra.Command{
	Use:   "prompt [name...]",
	Short: "Render a system prompt describing talons",
	Long: `Render the system prompt section that lists talons and their commands.

With no arguments every indexed talon is included. Manifests are re-read from
their source directories; talons that fail to load are skipped with a warning
in the log.`,
	RunE: runPrompt,
}

func init() {
	promptCmd.Flags().StringVarP(&promptOutput, "output", "o", "", "Write output to a file")
	rootCmd.AddCommand(promptCmd)
}

func runPrompt(cmd *cobra.Command, args []string) error {
	reg, err := openRegistry()
	if err != nil {
		return err
	}

	names := args
	if len(names) == 0 {
		entries, err := reg.List()
		if err != nil {
			return fmt.Errorf("listing talons: %w", err)
		}
		for _, e := range entries {
			names = append(names, e.Name())
		}
	}

	text := loader.New(reg, logger).SystemPrompt(names)

	if promptOutput != "" {
		if err := os.WriteFile(promptOutput, []byte(text), 0o644); err != nil {
			return fmt.Errorf("writing output file: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Prompt written to %s\n", promptOutput)
		return nil
	}

	_, err = fmt.Fprint(cmd.OutOrStdout(), text)
	return err
}
