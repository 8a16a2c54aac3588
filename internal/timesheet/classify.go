package timesheet

import (
	"regexp"
	"strings"

	"github.com/faizmokh/timesheets/internal/layout"
)

// Kind is the closed set of token classes the state machine understands.
type Kind uint8

const (
	KindText Kind = iota
	KindLineID
	KindTimeCode
	KindProjectTimeType
	KindProject
	KindTimeType
	KindWeek
	KindWeekTotal
	KindLineTotal
	KindNotes
	KindApproved
	KindEndDate
	KindDate
	KindSeparator
	KindHours
)

var kindNames = [...]string{
	"text", "line-id", "time-code", "project+time-type", "project", "time-type",
	"week", "week-total", "line-total", "notes", "approved", "end-date", "date",
	"separator", "hours",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Class is a classified token. Parts holds the captured pieces: project and
// time type, the week's date (possibly empty), a date, or the hours values.
type Class struct {
	Kind  Kind
	Text  string
	Parts []string
}

type matcher struct {
	kind Kind
	re   *regexp.Regexp
}

// Classifier assigns tokens to a Kind by checking an ordered list of
// patterns; the first match wins.
type Classifier struct {
	matchers []matcher
}

// NewClassifier builds the priority list from the layout's grammars.
func NewClassifier(l *layout.Layout) *Classifier {
	p := l.Patterns
	m := l.Markers
	codes := make([]string, len(l.TimeCodes))
	for i, tc := range l.TimeCodes {
		codes[i] = regexp.QuoteMeta(tc.Code)
	}
	exact := func(s string) string { return "^" + regexp.QuoteMeta(s) + "$" }

	table := []struct {
		kind Kind
		expr string
	}{
		{KindLineID, `^(` + p.Line + `)$`},
		{KindTimeCode, `^(` + strings.Join(codes, "|") + `)$`},
		{KindProjectTimeType, `^(` + p.Project + `) (` + p.TimeType + `)$`},
		{KindProject, `^(` + p.Project + `)$`},
		{KindTimeType, `^(` + p.TimeType + `)$`},
		{KindWeek, `^` + regexp.QuoteMeta(m.Week) + `(?: (` + p.Date + `))?$`},
		{KindWeekTotal, exact(m.WeekTotal)},
		{KindLineTotal, exact(m.LineTotal)},
		{KindNotes, exact(m.Notes)},
		{KindApproved, exact(m.Approved)},
		{KindEndDate, `^- (` + p.Date + `)$`},
		{KindDate, `^(` + p.Date + `)$`},
		{KindSeparator, `^-$`},
		{KindHours, `^` + p.Hours + `(?: ` + p.Hours + `)*$`},
	}

	c := &Classifier{matchers: make([]matcher, len(table))}
	for i, row := range table {
		c.matchers[i] = matcher{kind: row.kind, re: regexp.MustCompile(row.expr)}
	}
	return c
}

// Classify returns the first matching class, or KindText.
func (c *Classifier) Classify(text string) Class {
	for _, m := range c.matchers {
		sub := m.re.FindStringSubmatch(text)
		if sub == nil {
			continue
		}
		parts := sub[1:]
		if m.kind == KindHours {
			parts = strings.Fields(text)
		}
		return Class{Kind: m.kind, Text: text, Parts: parts}
	}
	return Class{Kind: KindText, Text: text}
}
