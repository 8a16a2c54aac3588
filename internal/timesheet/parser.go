// Package timesheet turns a positioned token stream into a timesheet record:
// header, time entries with day-by-day hours, and an issue log.
package timesheet

import (
	"log/slog"

	"github.com/faizmokh/timesheets/internal/layout"
	"github.com/faizmokh/timesheets/internal/repair"
	"github.com/faizmokh/timesheets/internal/token"
)

// Parser holds the read-only tables a parse needs. It is safe for concurrent
// use; every Parse call owns its own state.
type Parser struct {
	layout  *layout.Layout
	rules   []repair.Rule
	classes *Classifier
	logger  *slog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithLayout replaces the built-in layout tables.
func WithLayout(l *layout.Layout) Option {
	return func(p *Parser) { p.layout = l }
}

// WithRules replaces the repair catalogue.
func WithRules(rules []repair.Rule) Option {
	return func(p *Parser) { p.rules = rules }
}

// WithLogger sets the logger for debug events.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) { p.logger = logger }
}

// NewParser builds a Parser over the default layout unless overridden.
func NewParser(opts ...Option) *Parser {
	p := &Parser{layout: layout.Default(), logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	if p.rules == nil {
		p.rules = repair.DefaultRules(p.layout)
	}
	p.classes = NewClassifier(p.layout)
	return p
}

// Layout returns the tables the parser was built with.
func (p *Parser) Layout() *layout.Layout {
	return p.layout
}

// Parse reconstructs one document. Pages are processed in order because
// entry state carries across page breaks. Only a broken input contract is
// returned as an error (wrapping ErrInvalidInput); everything else lands in
// Record.Issues.
func (p *Parser) Parse(doc token.Document) (*Record, error) {
	if err := token.Validate(doc); err != nil {
		return nil, err
	}

	s := &parseState{
		layout:  p.layout,
		classes: p.classes,
		record:  &Record{Name: doc.Name},
	}

	for _, page := range doc.Pages {
		s.page = page.Number
		first := page.First()

		m := p.layout.MatchPage(token.ReadingOrder(page.Tokens), first)
		for _, f := range m.Findings {
			s.issue(IssueStructure, "%s", f.Message)
		}

		repaired, fired := repair.Apply(p.rules, repair.Page{First: first, Header: m.HeaderRun(), Body: m.Body})
		for _, f := range fired {
			p.logger.Debug("repair.fired", "document", doc.Name, "page", page.Number, "rule", f.Rule)
			s.issue(IssueRepair, "%s: %s", f.Rule, f.Note)
		}

		s.readHeader(repaired.Header, p.layout.Template(first), first)
		s.checkFooter(m, len(doc.Pages))

		for _, tok := range repaired.Body {
			if s.sectionEnded {
				break
			}
			if tok.Text == p.layout.Markers.Footer {
				s.sectionEnded = true
				break
			}
			s.step(tok)
		}
	}
	s.finish()

	p.logger.Debug("parse.ok",
		"document", doc.Name,
		"pages", len(doc.Pages),
		"entries", len(s.record.Entries),
		"issues", len(s.record.Issues),
	)
	return s.record, nil
}
