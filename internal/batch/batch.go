// Package batch parses many documents in parallel.
package batch

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/faizmokh/timesheets/internal/timesheet"
	"github.com/faizmokh/timesheets/internal/token"
)

// OpenFunc loads one document. source.Open satisfies it.
type OpenFunc func(ctx context.Context, path string) (token.Document, error)

// Result is the outcome for one path. Exactly one of Record and Err is set.
type Result struct {
	Path   string
	Record *timesheet.Record
	Err    error
}

// Runner parses documents with at most Workers in flight. A Parser is
// stateless per call, so one is shared by every worker.
type Runner struct {
	Workers int
	Open    OpenFunc
	Parser  *timesheet.Parser
	Logger  *slog.Logger
}

// Run parses paths and returns results in input order. A failing document
// is reported in its Result and does not stop the others; only cancellation
// of ctx aborts the run, between documents.
func (r *Runner) Run(ctx context.Context, paths []string) ([]Result, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	parser := r.Parser
	if parser == nil {
		parser = timesheet.NewParser(timesheet.WithLogger(logger))
	}

	results := make([]Result, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.Workers, 1))

	for i, path := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = Result{Path: path}

			doc, err := r.Open(gctx, path)
			if err != nil {
				results[i].Err = fmt.Errorf("open %s: %w", path, err)
				logger.Warn("batch.document.failed", "path", path, "err", err)
				return nil
			}
			rec, err := parser.Parse(doc)
			if err != nil {
				results[i].Err = fmt.Errorf("parse %s: %w", path, err)
				logger.Warn("batch.document.failed", "path", path, "err", err)
				return nil
			}
			results[i].Record = rec
			logger.Debug("batch.document.ok", "path", path, "entries", len(rec.Entries), "issues", len(rec.Issues))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

// Records returns the successfully parsed records in input order.
func Records(results []Result) []*timesheet.Record {
	var out []*timesheet.Record
	for _, res := range results {
		if res.Record != nil {
			out = append(out, res.Record)
		}
	}
	return out
}
