package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/femtoclaw/talon/internal/branding"
	"github.com/femtoclaw/talon/internal/scaffold"
	"github.com/femtoclaw/talon/internal/userdata"
)

var (
	initName    string
	initAuthor  string
	initLicense string
	initBare    bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the packages directory and an example talon",
	Long: `Create the packages directory if it does not exist and write an example
talon into it. An existing example is left untouched.

The example is not indexed; run '` + branding.CLIName() + ` add <dir>/<name>' afterwards.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&initName, "name", scaffold.DefaultName, "Name of the example talon")
	initCmd.Flags().StringVar(&initAuthor, "author", "", "Author written into the example manifest")
	initCmd.Flags().StringVar(&initLicense, "license", "", "SPDX license written into the example manifest")
	initCmd.Flags().BoolVar(&initBare, "bare", false, "Only create the packages directory")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	root := cfg.Dir()

	if err := userdata.Init(out, root); err != nil {
		return err
	}
	if initBare {
		return nil
	}

	data := scaffold.NewData(initName)
	if initAuthor != "" {
		data.Author = initAuthor
	}
	if initLicense != "" {
		data.License = initLicense
	}

	result, err := scaffold.Generate(root, data)
	if errors.Is(err, scaffold.ErrExists) {
		fmt.Fprintf(out, "Example talon already present: %v\n", err)
		return nil
	}
	if err != nil {
		return fmt.Errorf("creating example talon: %w", err)
	}

	fmt.Fprintf(out, "Created example talon at %s\n", result.OutputDir)
	for _, w := range result.Warnings {
		fmt.Fprintf(out, "  warning: %s\n", w)
	}
	return nil
}
