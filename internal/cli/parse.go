package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/faizmokh/timesheets/internal/batch"
	"github.com/faizmokh/timesheets/internal/source"
)

func newParseCommand(ctx context.Context, a *app) *cobra.Command {
	var (
		outputJSON bool
		strict     bool
	)

	cmd := &cobra.Command{
		Use:   "parse [document...]",
		Short: "Parse documents and print entries and issues.",
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := a.parseAll(ctx, args, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			if outputJSON {
				if err := printJSON(cmd.OutOrStdout(), batch.Records(results)); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				first := true
				for _, res := range results {
					if res.Record == nil {
						continue
					}
					if !first {
						fmt.Fprintln(out)
					}
					first = false
					printRecord(out, res.Path, res.Record)
				}
			}

			if strict {
				flagged := 0
				for _, res := range results {
					if res.Err != nil || (res.Record != nil && len(res.Record.Issues) > 0) {
						flagged++
					}
				}
				if flagged > 0 {
					return fmt.Errorf("%d of %d document%s failed or have issues", flagged, len(results), plural(len(results)))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&outputJSON, "json", false, "Emit records as JSON")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when any document fails or has issues")

	return cmd
}

func newTokensCommand(ctx context.Context, a *app) *cobra.Command {
	var outFlag string

	cmd := &cobra.Command{
		Use:   "tokens <document>",
		Short: "Dump a document's positioned tokens as CSV.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := source.Open(ctx, args[0])
			if err != nil {
				return err
			}

			path := outFlag
			if path == "" {
				path = a.manager.TokenDumpPath(args[0])
			}
			w, closeFn, err := create(path, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if err := source.WriteCSV(w, doc); err != nil {
				closeFn()
				return err
			}
			if err := closeFn(); err != nil {
				return err
			}
			if path != "-" {
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d page%s to %s\n", len(doc.Pages), plural(len(doc.Pages)), path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outFlag, "out", "o", "", "Output path, - for stdout (default: tokens/<name>.tokens.csv in the home)")

	return cmd
}
