package timesheet

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/faizmokh/timesheets/internal/layout"
	"github.com/faizmokh/timesheets/internal/token"
)

type state uint8

const (
	seekingEntry state = iota
	buildingEntry
)

// phase tracks what the current entry expects next.
type phase uint8

const (
	phaseTimeCode phase = iota
	phaseProject
	phaseLabel
	phaseHours
	phaseNotes
	phaseApproval
)

const maxNotes = 2

// parseState is the scratch state of one Parse call. Nothing in it outlives
// the call or is shared between documents.
type parseState struct {
	layout  *layout.Layout
	classes *Classifier
	record  *Record
	page    int

	state    state
	phase    phase
	entry    *TimeEntry
	lastLine int

	reference         Date
	hasReference      bool
	awaitingReference bool
	pendingLineTotal  bool
	noteOpen          bool

	sectionEnded bool
}

func (s *parseState) issue(kind IssueKind, format string, args ...any) {
	s.record.Issues = append(s.record.Issues, Issue{
		Kind:    kind,
		Page:    s.page,
		Message: fmt.Sprintf(format, args...),
	})
}

func (s *parseState) checkColumn(column string, tok token.Token) {
	if s.layout.CheckColumn(column, tok.X) {
		return
	}
	want, _ := s.layout.ColumnX(column)
	s.issue(IssueStructure, "%s %q at x=%.0f, expected x=%.0f", column, tok.Text, tok.X, want)
}

// step advances the machine by one body token.
func (s *parseState) step(tok token.Token) {
	c := s.classes.Classify(tok.Text)
	// A small number outside the line column is text, not an entry start.
	if c.Kind == KindLineID && !s.layout.CheckColumn(layout.ColumnLine, tok.X) {
		c.Kind = KindText
	}
	if s.state == seekingEntry && c.Kind != KindLineID {
		s.issue(IssueAnchor, "%q appears before any entry start", tok.Text)
		return
	}

	if s.phase == phaseNotes || s.phase == phaseApproval {
		switch c.Kind {
		case KindText, KindTimeCode, KindProjectTimeType, KindProject, KindTimeType:
			s.noteText(tok.Text)
			return
		}
	}

	switch c.Kind {
	case KindLineID:
		s.openEntry(tok)
	case KindTimeCode:
		s.timeCode(tok)
	case KindProjectTimeType:
		if s.project(tok, c.Parts[0]) {
			s.timeType(token.Token{Text: c.Parts[1], X: tok.X, Y: tok.Y}, false)
		}
	case KindProject:
		s.project(tok, tok.Text)
	case KindTimeType:
		s.timeType(tok, true)
	case KindWeek:
		s.week(c.Parts[0])
	case KindWeekTotal:
		s.pendingLineTotal = false
	case KindLineTotal:
		s.pendingLineTotal = true
	case KindNotes:
		s.phase = phaseNotes
		s.noteOpen = false
	case KindApproved:
		if s.phase == phaseNotes {
			s.phase = phaseApproval
		}
	case KindDate:
		s.date(tok, c.Parts[0])
	case KindEndDate:
		s.endDate(tok, c.Parts[0])
	case KindSeparator:
	case KindHours:
		s.hours(tok, c.Parts)
	default:
		s.text(tok)
	}
}

func (s *parseState) openEntry(tok token.Token) {
	s.closeEntry()
	line, _ := strconv.Atoi(tok.Text)
	if line != s.lastLine+1 {
		s.issue(IssueStructure, "line %d follows line %d", line, s.lastLine)
	}
	s.lastLine = line

	s.entry = &TimeEntry{Line: line, Hours: make(map[Date]decimal.Decimal)}
	s.state = buildingEntry
	s.phase = phaseTimeCode
	s.hasReference = false
	s.awaitingReference = false
	s.pendingLineTotal = false
	s.noteOpen = false
}

func (s *parseState) closeEntry() {
	if s.entry == nil {
		return
	}
	e := s.entry
	if tc, ok := s.layout.TimeCode(e.TimeCode); ok && tc.Project && e.Project == "" {
		s.issue(IssueStructure, "line %d: time code %s has no project", e.Line, e.TimeCode)
	}
	if e.TimeCode == "" {
		s.issue(IssueStructure, "line %d has no time code", e.Line)
	}
	s.record.Entries = append(s.record.Entries, *e)
	s.entry = nil
	s.state = seekingEntry
}

func (s *parseState) timeCode(tok token.Token) {
	if s.phase != phaseTimeCode {
		s.issue(IssueUnclassified, "line %d: unexpected time code %q discarded", s.entry.Line, tok.Text)
		return
	}
	s.checkColumn(layout.ColumnTimeCode, tok)
	s.entry.TimeCode = tok.Text
	if tc, _ := s.layout.TimeCode(tok.Text); tc.Project {
		s.phase = phaseProject
		return
	}
	s.phase = phaseHours
}

func (s *parseState) project(tok token.Token, code string) bool {
	if s.phase != phaseProject {
		s.issue(IssueUnclassified, "line %d: unexpected project %q discarded", s.entry.Line, code)
		return false
	}
	s.checkColumn(layout.ColumnProject, tok)
	s.entry.Project = code
	s.phase = phaseLabel
	return true
}

func (s *parseState) timeType(tok token.Token, checkColumn bool) {
	if s.entry.Project == "" || s.entry.TimeType != "" || s.phase > phaseLabel {
		s.issue(IssueUnclassified, "line %d: unexpected time type %q discarded", s.entry.Line, tok.Text)
		return
	}
	if checkColumn {
		s.checkColumn(layout.ColumnTimeType, tok)
	}
	s.entry.TimeType = tok.Text
}

func (s *parseState) text(tok token.Token) {
	switch {
	case s.phase == phaseNotes || s.phase == phaseApproval:
		s.noteText(tok.Text)
	case s.entry.Label == "":
		s.checkColumn(layout.ColumnLabel, tok)
		s.entry.Label = tok.Text
		s.phase = max(s.phase, phaseHours)
	default:
		s.issue(IssueUnclassified, "line %d: %q discarded, label already %q", s.entry.Line, tok.Text, s.entry.Label)
	}
}

func (s *parseState) week(date string) {
	s.pendingLineTotal = false
	s.phase = max(s.phase, phaseHours)
	if date == "" {
		s.hasReference = false
		s.awaitingReference = true
		return
	}
	s.setReference(date)
}

func (s *parseState) setReference(text string) {
	d, err := ParseDate(s.layout.DateLayout, text)
	if err != nil {
		s.hasReference = false
		s.issue(IssueStructure, "line %d: week date %q: %v", s.entry.Line, text, err)
		return
	}
	if d.Weekday() != time.Monday {
		s.issue(IssueStructure, "line %d: week beginning %s is a %s", s.entry.Line, d, d.Weekday())
	}
	s.reference = d
	s.hasReference = true
	s.awaitingReference = false
}

func (s *parseState) date(tok token.Token, text string) {
	switch {
	case s.phase == phaseNotes || s.phase == phaseApproval:
		d, ok := s.noteDate(text)
		if !ok {
			return
		}
		if s.noteOpen {
			if n := s.currentNote(); n.End == nil && n.Text == "" && n.Start != nil {
				n.End = &d
				return
			}
		}
		s.addNote(Note{Start: &d})
	case s.awaitingReference:
		s.setReference(text)
	default:
		s.issue(IssueUnclassified, "line %d: stray date %q discarded", s.entry.Line, tok.Text)
	}
}

func (s *parseState) endDate(tok token.Token, text string) {
	if s.phase != phaseNotes && s.phase != phaseApproval {
		s.issue(IssueUnclassified, "line %d: stray end date %q discarded", s.entry.Line, tok.Text)
		return
	}
	d, ok := s.noteDate(text)
	if !ok {
		return
	}
	if s.noteOpen {
		if n := s.currentNote(); n.End == nil && n.Text == "" {
			n.End = &d
			return
		}
	}
	s.addNote(Note{End: &d})
}

func (s *parseState) noteDate(text string) (Date, bool) {
	d, err := ParseDate(s.layout.DateLayout, text)
	if err != nil {
		s.issue(IssueStructure, "line %d: note date %q: %v", s.entry.Line, text, err)
		return Date{}, false
	}
	return d, true
}

func (s *parseState) noteText(text string) {
	if s.noteOpen && s.currentNote().Text == "" {
		s.currentNote().Text = text
	} else {
		s.addNote(Note{Text: text})
	}
	s.noteOpen = false
	s.phase = phaseNotes
}

func (s *parseState) addNote(n Note) {
	if len(s.entry.Notes) == maxNotes {
		s.issue(IssueStructure, "line %d has more than %d notes", s.entry.Line, maxNotes)
	}
	s.entry.Notes = append(s.entry.Notes, n)
	s.noteOpen = true
}

func (s *parseState) currentNote() *Note {
	return &s.entry.Notes[len(s.entry.Notes)-1]
}

func (s *parseState) hours(tok token.Token, values []string) {
	if s.phase == phaseNotes || s.phase == phaseApproval {
		s.noteText(tok.Text)
		return
	}
	s.phase = max(s.phase, phaseHours)

	if s.layout.IsTotalColumn(tok.X) {
		s.total(tok, values)
		return
	}

	offset, ok := s.layout.DayOffset(tok.X)
	if !ok {
		s.issue(IssueStructure, "line %d: hours %q at x=%.0f match no day column", s.entry.Line, tok.Text, tok.X)
		return
	}
	if !s.hasReference {
		s.issue(IssueAnchor, "line %d: hours %q with no week reference date", s.entry.Line, tok.Text)
		return
	}
	for i, v := range values {
		day := offset + i
		if day >= len(s.layout.DayColumns) {
			s.issue(IssueStructure, "line %d: hours %q run past the last day column", s.entry.Line, tok.Text)
			return
		}
		s.attribute(s.reference.AddDays(day), v)
	}
}

func (s *parseState) attribute(day Date, text string) {
	h, err := decimal.NewFromString(text)
	if err != nil {
		s.issue(IssueStructure, "line %d: hours %q: %v", s.entry.Line, text, err)
		return
	}
	if !s.layout.OnQuantum(h) {
		s.issue(IssueArithmetic, "line %d: %s hours on %s is not a quarter-hour value", s.entry.Line, text, day)
	}
	if prev, ok := s.entry.Hours[day]; ok {
		s.issue(IssueStructure, "line %d: duplicate hours for %s (kept %s, ignored %s)", s.entry.Line, day, prev.StringFixed(2), text)
		return
	}
	s.entry.Hours[day] = h
}

func (s *parseState) total(tok token.Token, values []string) {
	if len(values) != 1 {
		s.issue(IssueStructure, "line %d: total column holds %q", s.entry.Line, tok.Text)
		return
	}
	total, err := decimal.NewFromString(values[0])
	if err != nil {
		s.issue(IssueStructure, "line %d: total %q: %v", s.entry.Line, tok.Text, err)
		return
	}
	if s.pendingLineTotal {
		s.pendingLineTotal = false
		s.checkLine(total)
		return
	}
	s.checkWeek(total)
}

// finish closes the last entry and reports missing anchors.
func (s *parseState) finish() {
	s.closeEntry()
	if !s.sectionEnded {
		s.page = 0
		s.issue(IssueAnchor, "marker %q not found; per-entry section may be incomplete", s.layout.Markers.Footer)
	}
	if len(s.record.Entries) == 0 {
		s.page = 0
		s.issue(IssueAnchor, "no time entries found")
	}
}
