package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/faizmokh/timesheets/internal/batch"
	"github.com/faizmokh/timesheets/internal/config"
	"github.com/faizmokh/timesheets/internal/files"
	"github.com/faizmokh/timesheets/internal/source"
	"github.com/faizmokh/timesheets/internal/timesheet"
	"github.com/faizmokh/timesheets/internal/ui"
)

// app carries the collaborators every command needs.
type app struct {
	manager *files.Manager
	config  *config.Config
	logger  *slog.Logger
	parser  *timesheet.Parser
}

func newApp(cfg *config.Config, manager *files.Manager, logger *slog.Logger) *app {
	return &app{
		manager: manager,
		config:  cfg,
		logger:  logger,
		parser:  timesheet.NewParser(timesheet.WithLogger(logger)),
	}
}

func (a *app) runner() *batch.Runner {
	return &batch.Runner{
		Workers: a.config.Workers,
		Open:    source.Open,
		Parser:  a.parser,
		Logger:  a.logger,
	}
}

// NewRootCommand creates the top-level Cobra command to host subcommands and TUI launcher.
func NewRootCommand(ctx context.Context, a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timesheets",
		Short: "Reconstruct and check timesheet PDFs from your terminal.",
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := a.documents(args)
			if err != nil {
				return err
			}
			m := ui.NewModel(ctx, a.runner(), paths)
			if _, err := tea.NewProgram(m).Run(); err != nil {
				return fmt.Errorf("run TUI: %w", err)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		newParseCommand(ctx, a),
		newTokensCommand(ctx, a),
		newExportCommand(ctx, a),
		newTotalsCommand(ctx, a),
		newSearchCommand(ctx, a),
		newArchiveCommand(ctx, a),
		newVersionCommand(),
	)

	return cmd
}

// ExecuteCommand loads configuration and executes the Cobra root command.
func ExecuteCommand(ctx context.Context) error {
	cfg, err := config.Load("")
	if err != nil {
		return err
	}
	logger := cfg.Logger(os.Stderr)
	slog.SetDefault(logger)

	manager, err := files.NewManager(cfg.Home)
	if err != nil {
		return err
	}
	cmd := NewRootCommand(ctx, newApp(cfg, manager, logger))
	return cmd.ExecuteContext(ctx)
}

// Main is a helper used by cmd/timesheets/main.go to keep wiring contained in one package.
func Main(ctx context.Context) {
	if err := ExecuteCommand(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
