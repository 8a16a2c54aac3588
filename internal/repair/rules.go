package repair

import (
	"fmt"
	"regexp"
	"slices"

	"github.com/faizmokh/timesheets/internal/layout"
	"github.com/faizmokh/timesheets/internal/token"
)

// DefaultRules returns the catalogue of known extractor defects for l, in the
// order they must run.
func DefaultRules(l *layout.Layout) []Rule {
	first := l.First
	var (
		location    = labelText(first, "location_label")
		function    = labelText(first, "function_label")
		postStatus  = labelText(first, "post_status_label")
		percent     = labelText(first, "percent_label")
		docNo       = labelText(first, "doc_no_label")
		percentSlot = indexOfRole(first, "percent_label")
	)
	headings := []string{
		labelText(first, "column_id"),
		labelText(first, "column_time_code"),
		labelText(first, "column_project"),
		labelText(first, "column_time_type"),
	}

	rules := []Rule{
		{
			Name:   "drop-document-number",
			Target: Header,
			Scope:  FirstPage,
			// The optional pair sorts into the percent label's slot.
			Detect: func(toks []token.Token) bool {
				return at(toks, percentSlot, docNo) && percentSlot+1 < len(toks) && digits.MatchString(toks[percentSlot+1].Text)
			},
			Fix: func(toks []token.Token) ([]token.Token, string) {
				i := indexOf(toks, docNo)
				value := toks[i+1].Text
				return slices.Delete(slices.Clone(toks), i, i+2), fmt.Sprintf("dropped document number %s", value)
			},
		},
		floatAbove("function-floats-above-row", function, location, 2),
		floatAbove("post-status-floats-above-row", postStatus, function, 2),
		{
			Name:   "percent-label-floats-below-value",
			Target: Header,
			Scope:  FirstPage,
			Detect: func(toks []token.Token) bool {
				return at(toks, percentSlot+1, percent)
			},
			Fix: func(toks []token.Token) ([]token.Token, string) {
				i := indexOf(toks, percent)
				return moveRun(toks, i, 1, i-1), "moved percent billability label ahead of its value"
			},
		},
	}

	// Day labels plus the Total label sit between the headings and their
	// canonical slot when the headings float down. Tue and Wed sometimes
	// render as one token, hence two widths.
	for _, page := range []struct {
		tmpl  *layout.Template
		scope Scope
	}{{l.First, FirstPage}, {l.Continuation, ContinuationPage}} {
		slot := indexOfRole(page.tmpl, "column_id")
		for _, width := range []int{8, 7} {
			rules = append(rules, headingsFloat(page.scope, headings, slot, slot+width))
		}
	}

	return append(rules, splitMergedProject(l))
}

var digits = regexp.MustCompile(`^[0-9]+$`)

// floatAbove handles a label/value pair rendered slightly above its row, so
// it sorts ahead of the row's first pair. The pair belongs right after the
// value that follows anchor.
func floatAbove(name, label, anchor string, canonicalFirst int) Rule {
	return Rule{
		Name:   name,
		Target: Header,
		Scope:  FirstPage,
		Detect: func(toks []token.Token) bool {
			return at(toks, canonicalFirst, label)
		},
		Fix: func(toks []token.Token) ([]token.Token, string) {
			i := indexOf(toks, label)
			if i+2 > len(toks) {
				return toks, fmt.Sprintf("left %q in place, value missing", label)
			}
			rest := slices.Delete(slices.Clone(toks), i, i+2)
			j := indexOf(rest, anchor)
			if j < 0 {
				return toks, fmt.Sprintf("left %q in place, %q not found", label, anchor)
			}
			return slices.Insert(rest, j+2, toks[i:i+2]...), fmt.Sprintf("moved %q after %q", label, anchor)
		},
	}
}

func headingsFloat(scope Scope, headings []string, canonical, found int) Rule {
	return Rule{
		Name:   fmt.Sprintf("column-headings-float-below-days-%d", found-canonical),
		Target: Header,
		Scope:  scope,
		Detect: func(toks []token.Token) bool {
			for k, text := range headings {
				if !at(toks, found+k, text) {
					return false
				}
			}
			return true
		},
		Fix: func(toks []token.Token) ([]token.Token, string) {
			i := indexOf(toks, headings[0])
			return moveRun(toks, i, len(headings), canonical), "moved column headings ahead of the day labels"
		},
	}
}

// splitMergedProject separates "<project> <time type>" tokens found in the
// project column. It fires once per page and splits every such token there.
func splitMergedProject(l *layout.Layout) Rule {
	merged := regexp.MustCompile(`^(` + l.Patterns.Project + `) (` + l.Patterns.TimeType + `)$`)
	timeTypeX, _ := l.ColumnX(layout.ColumnTimeType)
	isMerged := func(tok token.Token) bool {
		return l.CheckColumn(layout.ColumnProject, tok.X) && merged.MatchString(tok.Text)
	}

	return Rule{
		Name:   "split-merged-project",
		Target: Body,
		Scope:  AnyPage,
		Detect: func(toks []token.Token) bool {
			return slices.ContainsFunc(toks, isMerged)
		},
		Fix: func(toks []token.Token) ([]token.Token, string) {
			out := make([]token.Token, 0, len(toks)+1)
			var count int
			for _, tok := range toks {
				if !isMerged(tok) {
					out = append(out, tok)
					continue
				}
				parts := merged.FindStringSubmatch(tok.Text)
				out = append(out,
					token.Token{Text: parts[1], X: tok.X, Y: tok.Y},
					token.Token{Text: parts[2], X: timeTypeX, Y: tok.Y},
				)
				count++
			}
			return out, fmt.Sprintf("split %d merged project/time type token(s)", count)
		},
	}
}

func labelText(t *layout.Template, role string) string {
	slot, ok := t.Slot(role)
	if !ok {
		return ""
	}
	return slot.Text
}

func indexOfRole(t *layout.Template, role string) int {
	return slices.IndexFunc(t.Indexed(), func(s *layout.Slot) bool { return s.Role == role })
}
