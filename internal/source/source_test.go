package source

import (
	"bytes"
	"context"
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ledongthuc/pdf"

	"github.com/faizmokh/timesheets/internal/timesheet/timesheettest"
	"github.com/faizmokh/timesheets/internal/token"
)

func TestCSVRoundTripKeepsPagesAndPositions(t *testing.T) {
	doc := timesheettest.New().Entry(1, "HOL", "", "").NewPage().Summary().Document()

	var buf bytes.Buffer
	if err := WriteCSV(&buf, doc); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "page,x,y,text\n") {
		t.Fatalf("csv header = %q", strings.SplitN(buf.String(), "\n", 2)[0])
	}

	got, err := ReadCSV(&buf, "synthetic")
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(got.Pages) != 2 {
		t.Fatalf("len(Pages) = %d, want 2", len(got.Pages))
	}
	for i, page := range doc.Pages {
		want := token.ReadingOrder(page.Tokens)
		if len(got.Pages[i].Tokens) != len(want) {
			t.Fatalf("page %d: %d tokens, want %d", i+1, len(got.Pages[i].Tokens), len(want))
		}
		for j := range want {
			if got.Pages[i].Tokens[j] != want[j] {
				t.Fatalf("page %d token %d = %v, want %v", i+1, j, got.Pages[i].Tokens[j], want[j])
			}
		}
	}
}

func TestReadCSVMissingCoordinateIsInvalid(t *testing.T) {
	doc, err := ReadCSV(strings.NewReader("page,x,y,text\n1,,399,ID\n"), "bad")
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if !math.IsNaN(doc.Pages[0].Tokens[0].X) {
		t.Fatalf("X = %v, want NaN", doc.Pages[0].Tokens[0].X)
	}
	if err := token.Validate(doc); !errors.Is(err, token.ErrInvalidInput) {
		t.Fatalf("Validate() = %v, want ErrInvalidInput", err)
	}
}

func TestOpenRejectsUnknownExtension(t *testing.T) {
	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "sheet.docx"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("Open() error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestMergeGlyphsBuildsBoxes(t *testing.T) {
	glyph := func(s string, x, y float64) pdf.Text {
		return pdf.Text{S: s, X: x, Y: y, W: 5, FontSize: 10}
	}
	glyphs := []pdf.Text{
		glyph("S", 40, 300), glyph("T", 45, 300),
		glyph("1", 20, 300),
		glyph("W", 40, 288), glyph("k", 45, 288), glyph("8", 52, 288),
		glyph("ﬁ", 120, 300),
	}

	got := mergeGlyphs(glyphs)
	want := []token.Token{
		{Text: "1", X: 20, Y: 300},
		{Text: "ST", X: 40, Y: 300},
		{Text: "fi", X: 120, Y: 300},
		{Text: "Wk 8", X: 40, Y: 288},
	}
	if len(got) != len(want) {
		t.Fatalf("mergeGlyphs = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("mergeGlyphs[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestJoinStackedTitle(t *testing.T) {
	tokens := []token.Token{
		{Text: "Timesheet", X: 335, Y: 536},
		{Text: "[109015] Doe, Jane", X: 335, Y: 524},
		{Text: "Location:", X: 20, Y: 481},
	}
	got := joinStackedTitle(tokens)
	want := []token.Token{
		{Text: "Timesheet [109015] Doe, Jane", X: 335, Y: 524},
		{Text: "Location:", X: 20, Y: 481},
	}
	if len(got) != len(want) {
		t.Fatalf("joinStackedTitle = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("joinStackedTitle[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	single := []token.Token{{Text: "Timesheet [109015] Doe, Jane", X: 335, Y: 524}}
	if got := joinStackedTitle(single); len(got) != 1 || got[0] != single[0] {
		t.Fatalf("joinStackedTitle(single) = %v", got)
	}
}
