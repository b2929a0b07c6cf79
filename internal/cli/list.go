package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed talons",
	Long:  `List every talon recorded in the index, sorted by name.`,
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	reg, err := openRegistry()
	if err != nil {
		return err
	}

	entries, err := reg.List()
	if err != nil {
		return fmt.Errorf("listing talons: %w", err)
	}

	if listJSON {
		return printEntriesJSON(cmd.OutOrStdout(), entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No talons indexed yet.")
		return nil
	}
	return printEntriesTable(cmd.OutOrStdout(), entries)
}
