package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/faizmokh/timesheets/internal/batch"
	"github.com/faizmokh/timesheets/internal/store"
	"github.com/faizmokh/timesheets/internal/timesheet"
	"github.com/faizmokh/timesheets/internal/ui"
)

// documents returns args when given, otherwise every document in the home.
func (a *app) documents(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	return a.manager.Documents()
}

// parseAll parses the documents named by args and reports per-document
// failures on errOut without failing the command.
func (a *app) parseAll(ctx context.Context, args []string, errOut io.Writer) ([]batch.Result, error) {
	paths, err := a.documents(args)
	if err != nil {
		return nil, err
	}
	results, err := a.runner().Run(ctx, paths)
	if err != nil {
		return nil, err
	}
	for _, res := range results {
		if res.Err != nil {
			fmt.Fprintf(errOut, "skipped: %v\n", res.Err)
		}
	}
	return results, nil
}

func (a *app) openStore(ctx context.Context) (*store.Store, error) {
	dsn := a.config.Database
	if dsn == "" {
		if err := a.manager.Ensure(); err != nil {
			return nil, err
		}
		dsn = a.manager.ArchivePath()
	}
	return store.Open(ctx, dsn, a.parser.Layout(), a.logger)
}

// create opens path for writing, or returns stdout for "-".
func create(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "-" {
		return stdout, func() error { return nil }, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create directories: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, f.Close, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printRecord(w io.Writer, path string, rec *timesheet.Record) {
	h := rec.Header
	fmt.Fprintf(w, "%s\n", path)
	fmt.Fprintf(w, "  [%s] %s  %s  %s\n", h.EmployeeID, h.EmployeeName, h.Period, h.Status)
	if len(rec.Entries) == 0 {
		fmt.Fprintln(w, "  (no entries)")
	}
	for i := range rec.Entries {
		fmt.Fprintf(w, "  %s\n", ui.FormatEntry(&rec.Entries[i]))
	}
	if len(rec.Issues) == 0 {
		fmt.Fprintln(w, "  no issues")
		return
	}
	fmt.Fprintf(w, "  %d issue%s:\n", len(rec.Issues), plural(len(rec.Issues)))
	for _, is := range rec.Issues {
		fmt.Fprintf(w, "    %s\n", is)
	}
}

func plural(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}
