package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/femtoclaw/talon/internal/registry"
)

// entryView is the JSON shape of an index entry.
type entryView struct {
	Name        string    `json:"name"`
	Version     string    `json:"version"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags,omitempty"`
	SourcePath  string    `json:"source_path"`
	InstalledAt time.Time `json:"installed_at"`
}

func viewOf(e registry.Entry) entryView {
	return entryView{
		Name:        e.Manifest.Name,
		Version:     e.Manifest.Version,
		Description: e.Manifest.Description,
		Tags:        e.Manifest.Tags,
		SourcePath:  e.SourcePath,
		InstalledAt: e.InstalledAt,
	}
}

func printEntriesTable(w io.Writer, entries []registry.Entry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "NAME\tVERSION\tDESCRIPTION")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Manifest.Name, e.Manifest.Version, truncate(e.Manifest.Description, 60))
	}
	return tw.Flush()
}

func printEntriesJSON(w io.Writer, entries []registry.Entry) error {
	views := make([]entryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, viewOf(e))
	}
	return printJSON(w, views)
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func printEntryDetails(w io.Writer, e registry.Entry) error {
	m := e.Manifest
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Name:\t%s\n", m.Name)
	fmt.Fprintf(tw, "Version:\t%s\n", m.Version)
	fmt.Fprintf(tw, "Description:\t%s\n", m.Description)
	if m.Author != "" {
		fmt.Fprintf(tw, "Author:\t%s\n", m.Author)
	}
	if m.License != "" {
		fmt.Fprintf(tw, "License:\t%s\n", m.License)
	}
	if len(m.Tags) > 0 {
		fmt.Fprintf(tw, "Tags:\t%s\n", strings.Join(m.Tags, ", "))
	}
	if m.Repository != "" {
		fmt.Fprintf(tw, "Repository:\t%s\n", m.Repository)
	}
	if m.Homepage != "" {
		fmt.Fprintf(tw, "Homepage:\t%s\n", m.Homepage)
	}
	fmt.Fprintf(tw, "Source:\t%s\n", e.SourcePath)
	fmt.Fprintf(tw, "Installed:\t%s\n", e.InstalledAt.Format(time.RFC3339))
	return tw.Flush()
}

func printDiff(w io.Writer, d *registry.Diff) {
	if d.Clean() {
		fmt.Fprintln(w, "Index is in sync with the packages directory.")
		return
	}
	for _, c := range d.Installable {
		fmt.Fprintf(w, "+ %s\t%s (not indexed)\n", c.Manifest.Name, c.Path)
	}
	for _, s := range d.Stale {
		fmt.Fprintf(w, "- %s\t%s (%v)\n", s.Entry.Name(), s.Entry.SourcePath, s.Err)
	}
	for _, c := range d.Changed {
		fmt.Fprintf(w, "~ %s\t%s -> %s (%s)\n", c.Entry.Name(), c.Entry.Manifest.Version, c.Disk.Version, c.Direction)
	}
	for _, c := range d.Invalid {
		fmt.Fprintf(w, "! %s\t%v\n", c.Path, c.Err)
	}
}

// truncate shortens s to at most max runes.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
