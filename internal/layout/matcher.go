package layout

import (
	"fmt"

	"github.com/faizmokh/timesheets/internal/token"
)

// Field is a token consumed by a template slot.
type Field struct {
	Slot  *Slot
	Token token.Token
}

// Finding is a template deviation noticed while matching.
type Finding struct {
	Role    string
	Message string
}

// Match is the result of running a page through its template.
type Match struct {
	Fields   []Field
	Body     []token.Token
	Findings []Finding
}

// HeaderRun returns the consumed tokens in reading order.
func (m Match) HeaderRun() []token.Token {
	run := make([]token.Token, len(m.Fields))
	for i, f := range m.Fields {
		run[i] = f.Token
	}
	return run
}

// Lookup returns the first token consumed by role.
func (m Match) Lookup(role string) (token.Token, bool) {
	for _, f := range m.Fields {
		if f.Slot.Role == role {
			return f.Token, true
		}
	}
	return token.Token{}, false
}

// MatchPage pulls header and footer tokens out of a page. tokens must already
// be in reading order; the returned Fields and Body preserve that order.
// Value slots and free-standing labels are checked against their expected
// text as they are consumed. Indexed labels are left to the caller, which
// checks them by position once the header run has been repaired.
func (l *Layout) MatchPage(tokens []token.Token, first bool) Match {
	tmpl := l.Template(first)
	seen := make(map[string]int, len(tmpl.Slots))

	var m Match
	for _, tok := range tokens {
		slot, ok := tmpl.Match(tok.X, tok.Y)
		if !ok {
			m.Body = append(m.Body, tok)
			continue
		}

		seen[slot.Role]++
		m.Fields = append(m.Fields, Field{Slot: slot, Token: tok})
		if seen[slot.Role] > 1 && !slot.Repeat {
			m.Findings = append(m.Findings, Finding{
				Role:    slot.Role,
				Message: fmt.Sprintf("%s matched more than once, extra %q", slot.Role, tok.Text),
			})
			continue
		}
		if slot.Kind == KindLabel && slot.Indexed {
			continue
		}
		if !slot.Accepts(tok.Text) {
			m.Findings = append(m.Findings, Finding{
				Role:    slot.Role,
				Message: fmt.Sprintf("%s should be %s, is %q", slot.Role, slot.expectation(), tok.Text),
			})
		}
	}

	for i := range tmpl.Slots {
		slot := &tmpl.Slots[i]
		if !slot.Optional && seen[slot.Role] == 0 {
			m.Findings = append(m.Findings, Finding{
				Role:    slot.Role,
				Message: fmt.Sprintf("%s missing from %s page template", slot.Role, tmpl.Name),
			})
		}
	}
	return m
}
