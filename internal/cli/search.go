package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/femtoclaw/talon/internal/registry"
)

var (
	searchTags []string
	searchJSON bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed talons",
	Long: `Search indexed talons by name, description and tags.

The query matches case-insensitively against names and descriptions as a
substring, and against tags exactly. --tag narrows results to talons carrying
any of the given tags.

Examples:
  talon search github
  talon search --tag vcs
  talon search issues --tag vcs,devtools`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringSliceVar(&searchTags, "tag", nil, "Filter by tag (comma-separated, any match)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	q := registry.Query{Tags: searchTags}
	if len(args) > 0 {
		q.Text = args[0]
	}

	reg, err := openRegistry()
	if err != nil {
		return err
	}

	results, err := reg.Search(q)
	if err != nil {
		return fmt.Errorf("searching talons: %w", err)
	}

	if searchJSON {
		return printEntriesJSON(cmd.OutOrStdout(), results)
	}
	if len(results) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No talons found matching your criteria.")
		return nil
	}
	if err := printEntriesTable(cmd.OutOrStdout(), results); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d talon(s) found\n", len(results))
	return nil
}
