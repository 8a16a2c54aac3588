// Package layout holds the fixed format tables of the timesheet document:
// coordinate templates, column positions, time codes and token grammars.
// The tables ship as embedded JSON and are validated against a schema on load.
package layout

import (
	"bytes"
	"cmp"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/shopspring/decimal"
)

//go:embed default.json
var defaultJSON []byte

//go:embed schema.json
var schemaJSON []byte

// ErrInvalidLayout is returned when layout tables fail schema or semantic checks.
var ErrInvalidLayout = errors.New("invalid layout")

// Kind tells whether a slot holds a fixed label or a variable value.
type Kind uint8

const (
	KindLabel Kind = iota
	KindValue
)

func (k Kind) String() string {
	if k == KindLabel {
		return "label"
	}
	return "value"
}

// Slot is one named position in a coordinate template.
type Slot struct {
	Role     string
	Kind     Kind
	X, Y     float64
	TolX     float64
	TolY     float64
	Text     string
	Allow    []string
	Pattern  *regexp.Regexp
	Indexed  bool
	Optional bool
	Repeat   bool
}

// Contains reports whether (x, y) falls inside the slot's tolerance window.
func (s *Slot) Contains(x, y float64) bool {
	return math.Abs(x-s.X) <= s.TolX && math.Abs(y-s.Y) <= s.TolY
}

// Accepts reports whether text is a permitted rendering for the slot. Slots
// without an expected text, allow-list or pattern accept anything.
func (s *Slot) Accepts(text string) bool {
	if len(s.Allow) > 0 {
		if !slices.Contains(s.Allow, text) {
			return false
		}
	} else if s.Text != "" && text != s.Text {
		return false
	}
	if s.Pattern != nil && !s.Pattern.MatchString(text) {
		return false
	}
	return true
}

func (s *Slot) expectation() string {
	switch {
	case len(s.Allow) == 1:
		return fmt.Sprintf("%q", s.Allow[0])
	case len(s.Allow) > 1:
		return "one of " + strings.Join(quoteAll(s.Allow), ", ")
	case s.Text != "":
		return fmt.Sprintf("%q", s.Text)
	case s.Pattern != nil:
		return "like " + s.Pattern.String()
	}
	return "anything"
}

// Template is the set of slots rendered on one kind of page.
type Template struct {
	Name    string
	Slots   []Slot
	indexed []*Slot
}

// Match returns the first slot whose window contains (x, y).
func (t *Template) Match(x, y float64) (*Slot, bool) {
	for i := range t.Slots {
		if t.Slots[i].Contains(x, y) {
			return &t.Slots[i], true
		}
	}
	return nil, false
}

// Indexed returns the slots of the fixed header run in canonical reading order.
func (t *Template) Indexed() []*Slot {
	return t.indexed
}

// Slot looks a slot up by role.
func (t *Template) Slot(role string) (*Slot, bool) {
	for i := range t.Slots {
		if t.Slots[i].Role == role {
			return &t.Slots[i], true
		}
	}
	return nil, false
}

// TimeCode is one member of the closed time-code set.
type TimeCode struct {
	Code    string
	Name    string
	Project bool
}

// Patterns are the unanchored token grammars.
type Patterns struct {
	Line     string `json:"line"`
	Project  string `json:"project"`
	TimeType string `json:"time_type"`
	Date     string `json:"date"`
	Hours    string `json:"hours"`
}

// Markers are the fixed texts that steer entry parsing.
type Markers struct {
	Week      string `json:"week"`
	WeekTotal string `json:"week_total"`
	LineTotal string `json:"line_total"`
	Notes     string `json:"notes"`
	Approved  string `json:"approved"`
	Footer    string `json:"footer"`
}

// Entry column names used with ColumnX and CheckColumn.
const (
	ColumnLine     = "line"
	ColumnTimeCode = "time_code"
	ColumnProject  = "project"
	ColumnTimeType = "time_type"
	ColumnLabel    = "label"
)

// Layout bundles every format table the engine consults. A Layout is
// read-only after Load and safe to share.
type Layout struct {
	First           *Template
	Continuation    *Template
	DayColumns      []float64
	TotalColumn     float64
	ColumnTolerance float64
	EntryColumns    map[string]float64
	EntryTolerance  float64
	TimeCodes       []TimeCode
	Patterns        Patterns
	DateLayout      string
	Quanta          []decimal.Decimal
	Markers         Markers
}

// Template picks the page-1 or continuation template.
func (l *Layout) Template(first bool) *Template {
	if first {
		return l.First
	}
	return l.Continuation
}

// DayOffset maps an x-coordinate to a day column (0 = first day of the week).
func (l *Layout) DayOffset(x float64) (int, bool) {
	for i, col := range l.DayColumns {
		if math.Abs(x-col) <= l.ColumnTolerance {
			return i, true
		}
	}
	return 0, false
}

// IsTotalColumn reports whether x falls in the week/line total column.
func (l *Layout) IsTotalColumn(x float64) bool {
	return math.Abs(x-l.TotalColumn) <= l.ColumnTolerance
}

// ColumnX returns the nominal x of an entry column.
func (l *Layout) ColumnX(column string) (float64, bool) {
	x, ok := l.EntryColumns[column]
	return x, ok
}

// CheckColumn reports whether x sits in the named entry column. Unknown
// columns always pass.
func (l *Layout) CheckColumn(column string, x float64) bool {
	want, ok := l.EntryColumns[column]
	if !ok {
		return true
	}
	return math.Abs(x-want) <= l.EntryTolerance
}

// TimeCode looks up a code from the closed set.
func (l *Layout) TimeCode(code string) (TimeCode, bool) {
	for _, tc := range l.TimeCodes {
		if tc.Code == code {
			return tc, true
		}
	}
	return TimeCode{}, false
}

// OnQuantum reports whether the fractional part of d is one of the allowed quanta.
func (l *Layout) OnQuantum(d decimal.Decimal) bool {
	frac := d.Sub(d.Floor())
	for _, q := range l.Quanta {
		if frac.Equal(q) {
			return true
		}
	}
	return false
}

// Default returns the built-in layout.
var Default = sync.OnceValue(func() *Layout {
	l, err := Load(defaultJSON)
	if err != nil {
		panic(fmt.Sprintf("layout: embedded default: %v", err))
	}
	return l
})

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("layout.schema.json", bytes.NewReader(schemaJSON)); err != nil {
		return nil, err
	}
	return compiler.Compile("layout.schema.json")
})

// Load parses and validates layout tables.
func Load(data []byte) (*Layout, error) {
	schema, err := compiledSchema()
	if err != nil {
		return nil, fmt.Errorf("compile layout schema: %w", err)
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLayout, err)
	}
	if err := schema.Validate(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLayout, err)
	}

	var spec fileSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLayout, err)
	}
	return spec.build()
}

type fileSpec struct {
	Tolerance struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	} `json:"tolerance"`
	Templates struct {
		First        []slotSpec `json:"first"`
		Continuation []slotSpec `json:"continuation"`
	} `json:"templates"`
	DayColumns      []float64          `json:"day_columns"`
	TotalColumn     float64            `json:"total_column"`
	ColumnTolerance float64            `json:"column_tolerance"`
	EntryColumns    map[string]float64 `json:"entry_columns"`
	EntryTolerance  float64            `json:"entry_tolerance"`
	TimeCodes       []struct {
		Code    string `json:"code"`
		Name    string `json:"name"`
		Project bool   `json:"project"`
	} `json:"time_codes"`
	Patterns   Patterns `json:"patterns"`
	DateLayout string   `json:"date_layout"`
	Quanta     []string `json:"quanta"`
	Markers    Markers  `json:"markers"`
}

type slotSpec struct {
	Role     string   `json:"role"`
	Kind     string   `json:"kind"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	TolX     float64  `json:"tol_x"`
	TolY     float64  `json:"tol_y"`
	Text     string   `json:"text"`
	Allow    []string `json:"allow"`
	Pattern  string   `json:"pattern"`
	Indexed  bool     `json:"indexed"`
	Optional bool     `json:"optional"`
	Repeat   bool     `json:"repeat"`
}

func (f fileSpec) build() (*Layout, error) {
	first, err := f.template("first", f.Templates.First)
	if err != nil {
		return nil, err
	}
	cont, err := f.template("continuation", f.Templates.Continuation)
	if err != nil {
		return nil, err
	}

	for name, expr := range map[string]string{
		"line":      f.Patterns.Line,
		"project":   f.Patterns.Project,
		"time_type": f.Patterns.TimeType,
		"date":      f.Patterns.Date,
		"hours":     f.Patterns.Hours,
	} {
		if _, err := regexp.Compile(expr); err != nil {
			return nil, fmt.Errorf("%w: pattern %s: %v", ErrInvalidLayout, name, err)
		}
	}

	l := &Layout{
		First:           first,
		Continuation:    cont,
		DayColumns:      f.DayColumns,
		TotalColumn:     f.TotalColumn,
		ColumnTolerance: f.ColumnTolerance,
		EntryColumns:    f.EntryColumns,
		EntryTolerance:  f.EntryTolerance,
		Patterns:        f.Patterns,
		DateLayout:      f.DateLayout,
		Markers:         f.Markers,
	}
	for _, tc := range f.TimeCodes {
		l.TimeCodes = append(l.TimeCodes, TimeCode{Code: tc.Code, Name: tc.Name, Project: tc.Project})
	}
	for _, q := range f.Quanta {
		d, err := decimal.NewFromString(q)
		if err != nil {
			return nil, fmt.Errorf("%w: quantum %q: %v", ErrInvalidLayout, q, err)
		}
		l.Quanta = append(l.Quanta, d)
	}
	return l, nil
}

func (f fileSpec) template(name string, specs []slotSpec) (*Template, error) {
	t := &Template{Name: name, Slots: make([]Slot, 0, len(specs))}
	for _, s := range specs {
		slot := Slot{
			Role:     s.Role,
			Kind:     KindValue,
			X:        s.X,
			Y:        s.Y,
			TolX:     cmp.Or(s.TolX, f.Tolerance.X),
			TolY:     cmp.Or(s.TolY, f.Tolerance.Y),
			Text:     s.Text,
			Allow:    s.Allow,
			Indexed:  s.Indexed,
			Optional: s.Optional,
			Repeat:   s.Repeat,
		}
		if s.Kind == "label" {
			slot.Kind = KindLabel
		}
		if s.Pattern != "" {
			re, err := regexp.Compile("^(?:" + s.Pattern + ")$")
			if err != nil {
				return nil, fmt.Errorf("%w: %s slot %s: %v", ErrInvalidLayout, name, s.Role, err)
			}
			slot.Pattern = re
		}
		t.Slots = append(t.Slots, slot)
	}

	for i := range t.Slots {
		if t.Slots[i].Indexed {
			t.indexed = append(t.indexed, &t.Slots[i])
		}
	}
	slices.SortStableFunc(t.indexed, func(a, b *Slot) int {
		if c := cmp.Compare(b.Y, a.Y); c != 0 {
			return c
		}
		return cmp.Compare(a.X, b.X)
	})
	return t, nil
}

func quoteAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = fmt.Sprintf("%q", v)
	}
	return out
}
