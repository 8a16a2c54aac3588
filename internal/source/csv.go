package source

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/faizmokh/timesheets/internal/token"
)

// tokenRow is one line of a token dump. Coordinates stay strings so an empty
// cell surfaces as a missing coordinate instead of a silent zero.
type tokenRow struct {
	Page int    `csv:"page"`
	X    string `csv:"x"`
	Y    string `csv:"y"`
	Text string `csv:"text"`
}

// ReadCSV decodes a token dump. Rows must be grouped by page; a page number
// that reappears later starts a new page, which token.Validate then rejects.
func ReadCSV(r io.Reader, name string) (token.Document, error) {
	var rows []*tokenRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return token.Document{}, fmt.Errorf("decode token csv: %w", err)
	}

	doc := token.Document{Name: name}
	for _, row := range rows {
		if n := len(doc.Pages); n == 0 || doc.Pages[n-1].Number != row.Page {
			doc.Pages = append(doc.Pages, token.Page{Number: row.Page})
		}
		page := &doc.Pages[len(doc.Pages)-1]
		page.Tokens = append(page.Tokens, token.Token{
			Text: row.Text,
			X:    coordinate(row.X),
			Y:    coordinate(row.Y),
		})
	}
	return doc, nil
}

// ReadCSVFile reads a token dump from disk.
func ReadCSVFile(path string) (token.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return token.Document{}, fmt.Errorf("open token csv: %w", err)
	}
	defer f.Close()
	return ReadCSV(f, DocumentName(path))
}

// WriteCSV dumps a document's tokens, page by page, in reading order.
func WriteCSV(w io.Writer, doc token.Document) error {
	var rows []*tokenRow
	for _, page := range doc.Pages {
		for _, tok := range token.ReadingOrder(page.Tokens) {
			rows = append(rows, &tokenRow{
				Page: page.Number,
				X:    strconv.FormatFloat(tok.X, 'f', -1, 64),
				Y:    strconv.FormatFloat(tok.Y, 'f', -1, 64),
				Text: tok.Text,
			})
		}
	}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("encode token csv: %w", err)
	}
	return nil
}

func coordinate(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
