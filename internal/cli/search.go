package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/faizmokh/timesheets/internal/batch"
	"github.com/faizmokh/timesheets/internal/timesheet"
	"github.com/faizmokh/timesheets/internal/ui"
)

func newSearchCommand(ctx context.Context, a *app) *cobra.Command {
	var (
		caseSensitive bool
		outputJSON    bool
		includeNotes  bool
	)

	cmd := &cobra.Command{
		Use:   "search <term> [document...]",
		Short: "Search entries by project, time code or label.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			term := strings.TrimSpace(args[0])
			if term == "" {
				return fmt.Errorf("term is required")
			}
			results, err := a.parseAll(ctx, args[1:], cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			matches := filterEntriesByTerm(results, term, caseSensitive, includeNotes)
			if outputJSON {
				return printSearchResultsJSON(cmd, matches)
			}
			return printSearchResultsText(cmd, term, matches)
		},
	}

	cmd.Flags().BoolVar(&caseSensitive, "case-sensitive", false, "Match term with case sensitivity")
	cmd.Flags().BoolVar(&outputJSON, "json", false, "Emit results as JSON objects")
	cmd.Flags().BoolVar(&includeNotes, "include-notes", false, "Also match note text")

	return cmd
}

type searchResult struct {
	path  string
	entry timesheet.TimeEntry
}

func filterEntriesByTerm(results []batch.Result, term string, caseSensitive bool, includeNotes bool) []searchResult {
	var matches []searchResult
	for _, res := range results {
		if res.Record == nil {
			continue
		}
		for _, entry := range res.Record.Entries {
			if matchesEntry(entry, term, caseSensitive, includeNotes) {
				matches = append(matches, searchResult{path: res.Path, entry: entry})
			}
		}
	}
	return matches
}

func matchesEntry(entry timesheet.TimeEntry, needle string, caseSensitive bool, includeNotes bool) bool {
	fields := []string{entry.Project, entry.TimeCode, entry.TimeType, entry.Label}
	if includeNotes {
		for _, n := range entry.Notes {
			fields = append(fields, n.Text)
		}
	}
	if !caseSensitive {
		needle = strings.ToLower(needle)
	}
	for _, field := range fields {
		if !caseSensitive {
			field = strings.ToLower(field)
		}
		if field != "" && strings.Contains(field, needle) {
			return true
		}
	}
	return false
}

func printSearchResultsText(cmd *cobra.Command, term string, results []searchResult) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Results for %q\n", term)
	if len(results) == 0 {
		fmt.Fprintln(out, "(no matches)")
		return nil
	}

	for _, res := range results {
		fmt.Fprintf(out, "%s %s\n", res.path, ui.FormatEntry(&res.entry))
	}
	return nil
}

func printSearchResultsJSON(cmd *cobra.Command, results []searchResult) error {
	type dto struct {
		Path  string              `json:"path"`
		Entry timesheet.TimeEntry `json:"entry"`
	}

	list := make([]dto, 0, len(results))
	for _, res := range results {
		list = append(list, dto{Path: res.path, Entry: res.entry})
	}
	return printJSON(cmd.OutOrStdout(), list)
}
