package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/femtoclaw/talon/internal/userdata"
)

var doctorFix bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the packages directory and index",
	Long: `Check that the packages directory exists, that the index loads and has the
expected permissions, and that no temporary files from interrupted saves or
installs are left behind. --fix repairs what it can.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		report := userdata.Check(cmd.OutOrStdout(), cfg.Dir(), cfg.IndexPath(), doctorFix)
		remaining := report.Problems - report.Fixed
		if remaining == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "\nAll checks passed.")
			return nil
		}
		return fmt.Errorf("%d problem(s) found", remaining)
	},
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Repair problems where possible")
	rootCmd.AddCommand(doctorCmd)
}
