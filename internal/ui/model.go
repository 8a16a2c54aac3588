package ui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/faizmokh/timesheets/internal/batch"
	"github.com/faizmokh/timesheets/internal/timesheet"
)

// Model owns Bubble Tea state for browsing parsed documents.
type Model struct {
	ctx    context.Context
	runner *batch.Runner
	paths  []string

	results  []batch.Result
	selected int
	view     view
	tab      tab
	cursor   int

	keys keyMap
	help help.Model

	loading    bool
	statusLine string
	errorLine  string
}

type view uint8

const (
	viewDocuments view = iota
	viewRecord
)

type tab uint8

const (
	tabEntries tab = iota
	tabIssues
)

type parsedMsg struct {
	results []batch.Result
	err     error
}

// NewModel seeds a model that parses paths with runner on start.
func NewModel(ctx context.Context, runner *batch.Runner, paths []string) Model {
	return Model{
		ctx:        ctx,
		runner:     runner,
		paths:      paths,
		keys:       newKeyMap(),
		help:       help.New(),
		loading:    true,
		statusLine: fmt.Sprintf("Parsing %d document%s...", len(paths), plural(len(paths))),
	}
}

// Init starts the first parse.
func (m Model) Init() tea.Cmd {
	return m.parseCmd()
}

// Update wires TUI state transitions from user input and async commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil
	case parsedMsg:
		return m.handleParsed(msg)
	default:
		return m, nil
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Reload):
		if m.loading {
			return m, nil
		}
		m.loading = true
		m.statusLine = "Reparsing..."
		m.errorLine = ""
		return m, m.parseCmd()
	}

	if m.loading {
		return m, nil
	}

	switch m.view {
	case viewDocuments:
		switch {
		case key.Matches(msg, m.keys.Down):
			if m.selected < len(m.results)-1 {
				m.selected++
			}
		case key.Matches(msg, m.keys.Up):
			if m.selected > 0 {
				m.selected--
			}
		case key.Matches(msg, m.keys.Open):
			if len(m.results) == 0 {
				return m, nil
			}
			if err := m.results[m.selected].Err; err != nil {
				m.errorLine = err.Error()
				return m, nil
			}
			m.view = viewRecord
			m.tab = tabEntries
			m.cursor = 0
			m.errorLine = ""
		}
	case viewRecord:
		switch {
		case key.Matches(msg, m.keys.Back):
			m.view = viewDocuments
		case key.Matches(msg, m.keys.Switch):
			if m.tab == tabEntries {
				m.tab = tabIssues
			} else {
				m.tab = tabEntries
			}
			m.cursor = 0
		case key.Matches(msg, m.keys.Down):
			if m.cursor < m.rowCount()-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		}
	}
	return m, nil
}

func (m Model) handleParsed(msg parsedMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	if msg.err != nil {
		m.errorLine = msg.err.Error()
		m.statusLine = ""
		return m, nil
	}
	m.results = msg.results
	if m.selected >= len(m.results) {
		m.selected = max(len(m.results)-1, 0)
	}
	if m.view == viewRecord && (len(m.results) == 0 || m.results[m.selected].Record == nil) {
		m.view = viewDocuments
	}
	failed := 0
	for _, res := range m.results {
		if res.Err != nil {
			failed++
		}
	}
	m.statusLine = fmt.Sprintf("Parsed %d document%s, %d failed.", len(m.results), plural(len(m.results)), failed)
	return m, nil
}

func (m Model) parseCmd() tea.Cmd {
	runner := m.runner
	ctx := m.ctx
	paths := m.paths
	return func() tea.Msg {
		results, err := runner.Run(ctx, paths)
		return parsedMsg{results: results, err: err}
	}
}

func (m Model) record() *timesheet.Record {
	if m.selected < len(m.results) {
		return m.results[m.selected].Record
	}
	return nil
}

func (m Model) rowCount() int {
	rec := m.record()
	if rec == nil {
		return 0
	}
	if m.tab == tabIssues {
		return len(rec.Issues)
	}
	return len(rec.Entries)
}

// View renders the frame.
func (m Model) View() string {
	var b strings.Builder

	switch {
	case m.loading:
		b.WriteString(titleStyle.Render("Timesheets"))
		b.WriteString("\n\nLoading...\n")
	case m.view == viewRecord && m.record() != nil:
		m.renderRecord(&b, m.record())
	default:
		m.renderDocuments(&b)
	}

	if m.errorLine != "" {
		b.WriteString(sectionMargin.Render(errorStyle.Render("! " + m.errorLine)))
		b.WriteByte('\n')
	} else if m.statusLine != "" {
		b.WriteString(sectionMargin.Render(dimStyle.Render(m.statusLine)))
		b.WriteByte('\n')
	}

	b.WriteString(sectionMargin.Render(m.help.View(m.keys)))
	b.WriteByte('\n')
	return b.String()
}

func (m Model) renderDocuments(b *strings.Builder) {
	b.WriteString(titleStyle.Render("Timesheets"))
	b.WriteString("\n\n")
	if len(m.results) == 0 {
		b.WriteString("(no documents)\n")
		return
	}
	for i, res := range m.results {
		line := filepath.Base(res.Path)
		switch {
		case res.Err != nil:
			line += "  " + errorStyle.Render("failed")
		case len(res.Record.Issues) > 0:
			line += "  " + issueStyle.Render(fmt.Sprintf("%d issue%s", len(res.Record.Issues), plural(len(res.Record.Issues))))
		default:
			line += "  " + okStyle.Render("ok")
		}
		b.WriteString(cursorFor(i == m.selected))
		b.WriteString(line)
		b.WriteByte('\n')
	}
}

func (m Model) renderRecord(b *strings.Builder, rec *timesheet.Record) {
	h := rec.Header
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s  [%s] %s", rec.Name, h.EmployeeID, h.EmployeeName)))
	b.WriteByte('\n')
	b.WriteString(dimStyle.Render(fmt.Sprintf("%s  %s  total %s", h.Period, h.Status, h.TotalHours.StringFixed(2))))
	b.WriteString("\n\n")

	entries := fmt.Sprintf("Entries (%d)", len(rec.Entries))
	issues := fmt.Sprintf("Issues (%d)", len(rec.Issues))
	if m.tab == tabEntries {
		b.WriteString(activeTab.Render(entries) + "  " + inactiveTab.Render(issues))
	} else {
		b.WriteString(inactiveTab.Render(entries) + "  " + activeTab.Render(issues))
	}
	b.WriteString("\n\n")

	if m.tab == tabIssues {
		if len(rec.Issues) == 0 {
			b.WriteString("(no issues)\n")
		}
		for i, is := range rec.Issues {
			b.WriteString(cursorFor(i == m.cursor))
			b.WriteString(issueStyle.Render(is.String()))
			b.WriteByte('\n')
		}
		return
	}

	if len(rec.Entries) == 0 {
		b.WriteString("(no entries)\n")
	}
	for i := range rec.Entries {
		e := &rec.Entries[i]
		b.WriteString(cursorFor(i == m.cursor))
		b.WriteString(FormatEntry(e))
		b.WriteByte('\n')
		if i == m.cursor {
			for _, d := range e.Dates() {
				b.WriteString(dimStyle.Render(fmt.Sprintf("      %s %s  %s", d.Weekday().String()[:3], d, e.Hours[d].StringFixed(2))))
				b.WriteByte('\n')
			}
			for _, n := range e.Notes {
				b.WriteString(dimStyle.Render("      note: " + n.Text))
				b.WriteByte('\n')
			}
		}
	}
}

// FormatEntry renders one entry on a single line.
func FormatEntry(e *timesheet.TimeEntry) string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "%3d %-4s", e.Line, e.TimeCode)
	if e.Project != "" {
		builder.WriteByte(' ')
		builder.WriteString(e.Project)
	}
	if e.TimeType != "" {
		builder.WriteString(" [")
		builder.WriteString(e.TimeType)
		builder.WriteByte(']')
	}
	if e.Label != "" {
		builder.WriteString(" ")
		builder.WriteString(e.Label)
	}
	fmt.Fprintf(&builder, " (%s h)", e.TotalHours().StringFixed(2))
	return builder.String()
}

func cursorFor(selected bool) string {
	if selected {
		return cursorStyle.Render(">") + " "
	}
	return "  "
}

func plural(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}
