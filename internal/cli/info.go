package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	infoJSON  bool
	infoStats bool
)

var infoCmd = &cobra.Command{
	Use:   "info <name>",
	Short: "Show details of an indexed talon",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	infoCmd.Flags().BoolVar(&infoJSON, "json", false, "Output in JSON format")
	infoCmd.Flags().BoolVar(&infoStats, "stats", false, "Include file and size totals of the talon directory")
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	reg, err := openRegistry()
	if err != nil {
		return err
	}

	e, err := reg.Info(args[0])
	if err != nil {
		return err
	}

	if infoJSON {
		return printJSON(cmd.OutOrStdout(), viewOf(e))
	}
	if err := printEntryDetails(cmd.OutOrStdout(), e); err != nil {
		return err
	}
	if !infoStats {
		return nil
	}

	stats, err := reg.Stats(e.Name())
	if err != nil {
		return fmt.Errorf("measuring %s: %w", e.Name(), err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Files:       %d in %d directories, %d bytes\n", stats.Files, stats.Dirs, stats.Bytes)
	return nil
}
