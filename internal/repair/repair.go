// Package repair canonicalizes a page's token order before field extraction.
// Each rule is data: a detect predicate over exact indices and texts, and a
// fix that rewrites the token list. Fixes locate their targets in the list as
// it stands after earlier rules, so no rule depends on another's offsets.
package repair

import (
	"slices"

	"github.com/faizmokh/timesheets/internal/token"
)

// Target selects which token list of a page a rule inspects.
type Target uint8

const (
	// Header is the run of tokens consumed by the coordinate template.
	Header Target = iota
	// Body is everything the template left for entry parsing.
	Body
)

// Scope restricts a rule to page-1 or continuation pages.
type Scope uint8

const (
	AnyPage Scope = iota
	FirstPage
	ContinuationPage
)

func (s Scope) applies(first bool) bool {
	switch s {
	case FirstPage:
		return first
	case ContinuationPage:
		return !first
	}
	return true
}

// Rule is one catalogued extractor defect.
type Rule struct {
	Name   string
	Target Target
	Scope  Scope
	Detect func(toks []token.Token) bool
	// Fix returns the repaired list and a short audit note.
	Fix func(toks []token.Token) ([]token.Token, string)
}

// Page is the pair of token lists a rule set runs against.
type Page struct {
	First  bool
	Header []token.Token
	Body   []token.Token
}

// Firing records one rule application for the audit log.
type Firing struct {
	Rule string
	Note string
}

// Apply runs rules in order. Each rule is evaluated once against the current
// state of its target; a rule that does not match is a no-op. The input slices
// are not modified.
func Apply(rules []Rule, p Page) (Page, []Firing) {
	out := Page{First: p.First, Header: slices.Clone(p.Header), Body: slices.Clone(p.Body)}

	var fired []Firing
	for _, rule := range rules {
		if !rule.Scope.applies(out.First) {
			continue
		}
		target := &out.Header
		if rule.Target == Body {
			target = &out.Body
		}
		if !rule.Detect(*target) {
			continue
		}
		var note string
		*target, note = rule.Fix(*target)
		fired = append(fired, Firing{Rule: rule.Name, Note: note})
	}
	return out, fired
}

func at(toks []token.Token, i int, text string) bool {
	return i >= 0 && i < len(toks) && toks[i].Text == text
}

func indexOf(toks []token.Token, text string) int {
	return slices.IndexFunc(toks, func(t token.Token) bool { return t.Text == text })
}

// moveRun relocates n tokens starting at from so the first of them lands at
// index to of the result. Everything else keeps its relative order.
func moveRun(toks []token.Token, from, n, to int) []token.Token {
	if from < 0 || n <= 0 || from+n > len(toks) {
		return toks
	}
	run := slices.Clone(toks[from : from+n])
	rest := slices.Delete(slices.Clone(toks), from, from+n)
	to = min(max(to, 0), len(rest))
	return slices.Insert(rest, to, run...)
}
