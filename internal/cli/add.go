package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/femtoclaw/talon/internal/registry"
)

var (
	addReplace bool
	addCopy    bool
)

var addCmd = &cobra.Command{
	Use:   "add <path>",
	Short: "Add a talon directory to the index",
	Long: `Parse the TALON.md manifest in <path> and record the talon in the index.

By default the talon is indexed where it is. With --copy the directory is
first copied into the packages directory, skipping version control and
dependency folders. Adding a name that is already indexed fails unless
--replace is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().BoolVar(&addReplace, "replace", false, "Overwrite an existing entry with the same name")
	addCmd.Flags().BoolVar(&addCopy, "copy", false, "Copy the talon into the packages directory before indexing")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	reg, err := openRegistry()
	if err != nil {
		return err
	}

	e, err := reg.AddFromPath(args[0], registry.AddOptions{Replace: addReplace, Install: addCopy})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Added %s@%s from %s\n", e.Name(), e.Manifest.Version, e.SourcePath)
	return nil
}
