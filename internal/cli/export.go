package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/faizmokh/timesheets/internal/batch"
	"github.com/faizmokh/timesheets/internal/export"
	"github.com/faizmokh/timesheets/internal/layout"
	"github.com/faizmokh/timesheets/internal/timesheet"
)

type writerFunc func(io.Writer, *layout.Layout, []*timesheet.Record) error

var exportFormats = map[string]writerFunc{
	"csv":  export.WriteCSV,
	"json": export.WriteJSON,
	"xlsx": export.WriteXLSX,
}

func newExportCommand(ctx context.Context, a *app) *cobra.Command {
	var (
		formatFlag string
		outFlag    string
		nameFlag   string
	)

	cmd := &cobra.Command{
		Use:   "export [document...]",
		Short: "Export hours as (key, date, hours) rows.",
		RunE: func(cmd *cobra.Command, args []string) error {
			write, ok := exportFormats[formatFlag]
			if !ok {
				return fmt.Errorf("invalid format %q (expected csv|json|xlsx)", formatFlag)
			}
			results, err := a.parseAll(ctx, args, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			path := outFlag
			if path == "" {
				path = a.manager.ExportPath(nameFlag, formatFlag)
			}
			w, closeFn, err := create(path, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if err := write(w, a.parser.Layout(), batch.Records(results)); err != nil {
				closeFn()
				return err
			}
			if err := closeFn(); err != nil {
				return err
			}
			if path != "-" {
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&formatFlag, "format", "f", "csv", "Output format: csv|json|xlsx")
	cmd.Flags().StringVarP(&outFlag, "out", "o", "", "Output path, - for stdout (default: exports/<name>.<format> in the home)")
	cmd.Flags().StringVar(&nameFlag, "name", "hours", "Export file name used when --out is not set")

	return cmd
}

func newTotalsCommand(ctx context.Context, a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "totals [document...]",
		Short: "Sum hours per project or time code.",
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := a.parseAll(ctx, args, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			records := batch.Records(results)
			out := cmd.OutOrStdout()

			from, to, ok := export.Range(records)
			if !ok {
				fmt.Fprintln(out, "No hours found")
				return nil
			}
			fmt.Fprintf(out, "Hours from %s to %s\n", from.Format("2006-01-02"), to.Format("2006-01-02"))

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, t := range export.Totals(a.parser.Layout(), records) {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", t.Key, t.Label, t.Hours.StringFixed(2))
			}
			return tw.Flush()
		},
	}

	return cmd
}
