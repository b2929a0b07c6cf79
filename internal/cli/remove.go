package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm"},
	Short:   "Remove a talon from the index",
	Long:    `Remove a talon from the index. Files on disk are left in place.`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}

		e, err := reg.RemoveByName(args[0])
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s@%s\n", e.Name(), e.Manifest.Version)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(removeCmd)
}
