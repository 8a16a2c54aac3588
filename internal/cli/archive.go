package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newArchiveCommand(ctx context.Context, a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive [document...]",
		Short: "Parse documents and save their records to the archive.",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := a.parseAll(ctx, args, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			s, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			for _, res := range results {
				if res.Record == nil {
					continue
				}
				id, err := s.Save(ctx, res.Path, res.Record)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Archived %s as %s (%d issue%s)\n",
					res.Path, id, len(res.Record.Issues), plural(len(res.Record.Issues)))
			}
			return nil
		},
	}

	cmd.AddCommand(
		newArchiveListCommand(ctx, a),
		newArchiveShowCommand(ctx, a),
		newArchiveHoursCommand(ctx, a),
	)
	return cmd
}

func newArchiveListCommand(ctx context.Context, a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List archived documents, newest first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			docs, err := s.List(ctx)
			if err != nil {
				return err
			}
			if len(docs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Archive is empty")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, d := range docs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s..%s\t%d entries\t%d issues\n",
					d.ID, d.Path, d.EmployeeName, d.PeriodStart, d.PeriodEnd, d.Entries, d.Issues)
			}
			return tw.Flush()
		},
	}
}

func newArchiveShowCommand(ctx context.Context, a *app) *cobra.Command {
	var outputJSON bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print one archived record.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("parse id: %w", err)
			}
			s, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			doc, err := s.Get(ctx, id)
			if err != nil {
				return err
			}
			if outputJSON {
				return printJSON(cmd.OutOrStdout(), doc.Record)
			}
			printRecord(cmd.OutOrStdout(), doc.Path, doc.Record)
			return nil
		},
	}

	cmd.Flags().BoolVar(&outputJSON, "json", false, "Emit the record as JSON")
	return cmd
}

func newArchiveHoursCommand(ctx context.Context, a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "hours <key>",
		Short: "List archived hours charged to a project or time code.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			rows, err := s.Hours(ctx, args[0])
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No hours for %s\n", args[0])
				return nil
			}
			for _, r := range rows {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", r.Day, r.Hours, r.DocumentID)
			}
			return nil
		},
	}
}
