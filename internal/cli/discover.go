package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Scan the packages directory for talons",
	Long: `List every immediate subdirectory of the packages directory that holds a
TALON.md manifest, indexed or not. Directories whose manifest fails to parse
are reported with the error.`,
	Args: cobra.NoArgs,
	RunE: runDiscover,
}

func init() {
	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, args []string) error {
	reg, err := openRegistry()
	if err != nil {
		return err
	}

	seq, err := reg.Discover()
	if err != nil {
		return fmt.Errorf("scanning %s: %w", reg.Root(), err)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "NAME\tVERSION\tPATH")
	found, broken := 0, 0
	for c := range seq {
		if c.Err != nil {
			broken++
			fmt.Fprintf(tw, "-\t-\t%s (%v)\n", c.Path, c.Err)
			continue
		}
		found++
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Manifest.Name, c.Manifest.Version, c.Path)
	}
	if found+broken == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No talons found in %s\n", reg.Root())
		return nil
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d talon(s) found, %d invalid\n", found, broken)
	return nil
}
