package token

import (
	"cmp"
	"slices"
	"strings"
)

// Row is a run of tokens sharing one y-coordinate, ordered left to right.
type Row struct {
	Y      float64
	Tokens []Token
}

// Assemble orders a page's tokens into reading-order rows, top of page first.
// The result does not depend on arrival order: tokens are stable-sorted by
// (-y, x) and consecutive tokens with the same y form a row. Blank tokens are
// dropped.
func Assemble(tokens []Token) []Row {
	sorted := make([]Token, 0, len(tokens))
	for _, tok := range tokens {
		tok.Text = strings.TrimSpace(tok.Text)
		if tok.Text == "" {
			continue
		}
		sorted = append(sorted, tok)
	}
	slices.SortStableFunc(sorted, func(a, b Token) int {
		if c := cmp.Compare(b.Y, a.Y); c != 0 {
			return c
		}
		return cmp.Compare(a.X, b.X)
	})

	var rows []Row
	for _, tok := range sorted {
		if n := len(rows); n > 0 && rows[n-1].Y == tok.Y {
			rows[n-1].Tokens = append(rows[n-1].Tokens, tok)
			continue
		}
		rows = append(rows, Row{Y: tok.Y, Tokens: []Token{tok}})
	}
	return rows
}

// Flatten concatenates rows back into one reading-order slice.
func Flatten(rows []Row) []Token {
	var out []Token
	for _, row := range rows {
		out = append(out, row.Tokens...)
	}
	return out
}

// ReadingOrder is Flatten(Assemble(tokens)).
func ReadingOrder(tokens []Token) []Token {
	return Flatten(Assemble(tokens))
}
