package source

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/unicode/norm"

	"github.com/faizmokh/timesheets/internal/token"
)

const (
	// Glyphs further apart than this share of the font size start a new box.
	boxGapRatio = 0.6
	// Gaps wider than this share of the font size read as a space.
	spaceGapRatio = 0.15
	baselineSlack = 0.5

	// The title prints on two lines that the layout reads as one box,
	// positioned at its lower line.
	titleLead     = "Timesheet"
	stackSlackX   = 2.0
	stackMaxLeadY = 20.0
)

// ReadPDF extracts positioned text boxes from every page of a PDF.
func ReadPDF(path string) (token.Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return token.Document{}, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	doc := token.Document{Name: DocumentName(path)}
	for i := 1; i <= r.NumPage(); i++ {
		texts, err := pageTexts(r, i)
		if err != nil {
			return token.Document{}, err
		}
		doc.Pages = append(doc.Pages, token.Page{Number: i, Tokens: joinStackedTitle(mergeGlyphs(texts))})
	}
	return doc, nil
}

func pageTexts(r *pdf.Reader, n int) (texts []pdf.Text, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("read pdf page %d: %v", n, p)
		}
	}()
	page := r.Page(n)
	if page.V.IsNull() {
		return nil, nil
	}
	return page.Content().Text, nil
}

// mergeGlyphs joins glyph runs on one baseline into text boxes, the unit the
// layout templates are written against.
func mergeGlyphs(glyphs []pdf.Text) []token.Token {
	sorted := slices.Clone(glyphs)
	slices.SortStableFunc(sorted, func(a, b pdf.Text) int {
		if math.Abs(a.Y-b.Y) > baselineSlack {
			return cmp.Compare(b.Y, a.Y)
		}
		return cmp.Compare(a.X, b.X)
	})

	var (
		out   []token.Token
		box   strings.Builder
		start pdf.Text
		end   float64
		open  bool
	)
	flush := func() {
		if !open {
			return
		}
		text := strings.Join(strings.Fields(norm.NFKC.String(box.String())), " ")
		if text != "" {
			out = append(out, token.Token{Text: text, X: round(start.X), Y: round(start.Y)})
		}
		box.Reset()
		open = false
	}

	for _, g := range sorted {
		size := max(g.FontSize, 1)
		if open {
			gap := g.X - end
			sameLine := math.Abs(g.Y-start.Y) <= baselineSlack
			if !sameLine || gap > size*boxGapRatio {
				flush()
			} else if gap > size*spaceGapRatio {
				box.WriteByte(' ')
			}
		}
		if !open {
			start = g
			open = true
		}
		box.WriteString(g.S)
		end = g.X + g.W
	}
	flush()
	return out
}

func round(v float64) float64 {
	return math.Round(v*100) / 100
}

// joinStackedTitle folds the line under a bare title word into the title
// token. Tokens must be in reading order.
func joinStackedTitle(tokens []token.Token) []token.Token {
	for i, tok := range tokens {
		if tok.Text != titleLead {
			continue
		}
		for j := i + 1; j < len(tokens); j++ {
			next := tokens[j]
			if tok.Y-next.Y > stackMaxLeadY {
				break
			}
			if next.Y < tok.Y && math.Abs(next.X-tok.X) <= stackSlackX {
				merged := token.Token{Text: tok.Text + " " + next.Text, X: tok.X, Y: next.Y}
				out := slices.Clone(tokens)
				out = slices.Delete(out, j, j+1)
				out[i] = merged
				return token.ReadingOrder(out)
			}
		}
		break
	}
	return tokens
}
