package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var reconcileJSON bool

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Compare the index with the packages directory",
	Long: `Report how the index and the packages directory differ. The index is
never modified.

  +  talon on disk that is not indexed
  -  indexed talon whose source is gone or no longer parses
  ~  indexed talon whose version on disk differs
  !  directory whose manifest is invalid`,
	Args: cobra.NoArgs,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().BoolVar(&reconcileJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(reconcileCmd)
}

// diffView is the JSON shape of a reconcile result.
type diffView struct {
	Installable []string          `json:"installable"`
	Stale       []string          `json:"stale"`
	Changed     []changeView      `json:"changed"`
	Invalid     map[string]string `json:"invalid"`
}

type changeView struct {
	Name      string `json:"name"`
	Indexed   string `json:"indexed"`
	Disk      string `json:"disk"`
	Direction string `json:"direction"`
}

func runReconcile(cmd *cobra.Command, args []string) error {
	reg, err := openRegistry()
	if err != nil {
		return err
	}

	diff, err := reg.Reconcile()
	if err != nil {
		return fmt.Errorf("reconciling: %w", err)
	}

	if !reconcileJSON {
		printDiff(cmd.OutOrStdout(), diff)
		return nil
	}

	view := diffView{
		Installable: []string{},
		Stale:       []string{},
		Changed:     []changeView{},
		Invalid:     map[string]string{},
	}
	for _, c := range diff.Installable {
		view.Installable = append(view.Installable, c.Manifest.Name)
	}
	for _, s := range diff.Stale {
		view.Stale = append(view.Stale, s.Entry.Name())
	}
	for _, c := range diff.Changed {
		view.Changed = append(view.Changed, changeView{
			Name:      c.Entry.Name(),
			Indexed:   c.Entry.Manifest.Version,
			Disk:      c.Disk.Version,
			Direction: string(c.Direction),
		})
	}
	for _, c := range diff.Invalid {
		view.Invalid[c.Path] = c.Err.Error()
	}
	return printJSON(cmd.OutOrStdout(), view)
}
