// Package timesheettest builds synthetic token streams laid out like a real
// timesheet, for tests across packages.
package timesheettest

import (
	"fmt"
	"strconv"

	"github.com/faizmokh/timesheets/internal/layout"
	"github.com/faizmokh/timesheets/internal/token"
)

// Header values rendered on page 1.
const (
	Title    = "Timesheet [109015] Doe, Jane"
	Period   = "Sep 2, 2019 - Sep 15, 2019"
	Printed  = "Sep 16, 2019 09:14"
	Timezone = "(GMT-05:00) Eastern Time (US & Canada)"
)

// HeaderValues maps value roles to the text HeaderTokens renders for them.
var HeaderValues = map[string]string{
	"title":            Title,
	"period":           Period,
	"location":         "[E01] Headquarters",
	"department":       "[3200] Advanced Analytics",
	"employee_type":    "[1] Annual Salary",
	"default_location": "[LOCAL] Location",
	"function":         "[1] Full Time",
	"exempt":           "Yes",
	"status":           "Approved",
	"post_status":      "Posted",
	"validation":       "Passed",
	"timestamp":        "Sep 16, 2019 09:14",
	"total":            "8.00",
	"standard":         "80.00",
	"billable":         "8.00",
	"percent":          "100.00%",
	"printed_at":       Printed,
	"timezone":         Timezone,
}

// DayLabels are rendered one per day column.
var DayLabels = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

const rowStep = 12

// HeaderTokens renders every required template slot of page `page` of `pages`.
func HeaderTokens(l *layout.Layout, page, pages int) []token.Token {
	tmpl := l.Template(page == 1)
	var out []token.Token
	for _, slot := range tmpl.Slots {
		var text string
		switch {
		case slot.Optional:
			continue
		case slot.Role == "column_day":
			for i, day := range DayLabels {
				out = append(out, token.Token{Text: day, X: l.DayColumns[i], Y: slot.Y})
			}
			continue
		case slot.Role == "page_number":
			text = fmt.Sprintf("Page %d", page)
		case slot.Role == "page_count":
			text = fmt.Sprintf("of %d", pages)
		case slot.Kind == layout.KindLabel:
			text = slot.Text
		default:
			text = HeaderValues[slot.Role]
		}
		out = append(out, token.Token{Text: text, X: slot.X, Y: slot.Y})
	}
	return out
}

// Cell is one body token on the builder's current row.
type Cell struct {
	X    float64
	Text string
}

// Builder lays out body rows top to bottom beneath the column headings.
type Builder struct {
	layout *layout.Layout
	pages  [][]token.Token
	y      float64
}

// New starts a document on page 1 using the default layout.
func New() *Builder {
	b := &Builder{layout: layout.Default()}
	b.pages = [][]token.Token{nil}
	b.y = b.top(true)
	return b
}

func (b *Builder) top(first bool) float64 {
	slot, _ := b.layout.Template(first).Slot("column_id")
	return slot.Y - 14
}

// NewPage starts a continuation page.
func (b *Builder) NewPage() *Builder {
	b.pages = append(b.pages, nil)
	b.y = b.top(false)
	return b
}

// Row places cells on the current row and advances to the next one.
func (b *Builder) Row(cells ...Cell) *Builder {
	page := len(b.pages) - 1
	for _, c := range cells {
		b.pages[page] = append(b.pages[page], token.Token{Text: c.Text, X: c.X, Y: b.y})
	}
	b.y -= rowStep
	return b
}

func (b *Builder) column(name string) float64 {
	x, _ := b.layout.ColumnX(name)
	return x
}

// Entry renders an entry-start row. Empty project or time type cells are omitted.
func (b *Builder) Entry(line int, code, project, timeType string) *Builder {
	cells := []Cell{
		{X: b.column(layout.ColumnLine), Text: strconv.Itoa(line)},
		{X: b.column(layout.ColumnTimeCode), Text: code},
	}
	if project != "" {
		cells = append(cells, Cell{X: b.column(layout.ColumnProject), Text: project})
	}
	if timeType != "" {
		cells = append(cells, Cell{X: b.column(layout.ColumnTimeType), Text: timeType})
	}
	return b.Row(cells...)
}

// Label renders an entry description row.
func (b *Builder) Label(text string) *Builder {
	return b.Row(Cell{X: b.column(layout.ColumnLabel), Text: text})
}

// Week renders a week row. date may be empty for a bare marker; empty hours
// cells and an empty total are omitted.
func (b *Builder) Week(date string, hours []string, total string) *Builder {
	marker := b.layout.Markers.Week
	if date != "" {
		marker += " " + date
	}
	cells := []Cell{{X: b.column(layout.ColumnTimeCode), Text: marker}}
	for i, h := range hours {
		if h != "" && i < len(b.layout.DayColumns) {
			cells = append(cells, Cell{X: b.layout.DayColumns[i], Text: h})
		}
	}
	if total != "" {
		cells = append(cells, Cell{X: b.layout.TotalColumn, Text: total})
	}
	return b.Row(cells...)
}

// LineTotal renders the per-entry total row.
func (b *Builder) LineTotal(total string) *Builder {
	return b.Row(
		Cell{X: b.column(layout.ColumnTimeCode), Text: b.layout.Markers.LineTotal},
		Cell{X: b.layout.TotalColumn, Text: total},
	)
}

// Notes renders the notes marker row.
func (b *Builder) Notes() *Builder {
	return b.Row(Cell{X: b.column(layout.ColumnTimeCode), Text: b.layout.Markers.Notes})
}

// Note renders a dated note run.
func (b *Builder) Note(start, end, text string, approved bool) *Builder {
	cells := []Cell{{X: 40, Text: start}}
	if end != "" {
		cells = append(cells, Cell{X: 99, Text: "- " + end})
	}
	if approved {
		cells = append(cells, Cell{X: 160, Text: b.layout.Markers.Approved})
	}
	if text != "" {
		cells = append(cells, Cell{X: 220, Text: text})
	}
	return b.Row(cells...)
}

// LineNote renders a single free-text note line.
func (b *Builder) LineNote(text string) *Builder {
	return b.Row(Cell{X: 40, Text: text})
}

// Summary renders the marker that ends the per-entry section, followed by an
// aggregate row the engine must ignore.
func (b *Builder) Summary() *Builder {
	b.Row(Cell{X: 40, Text: b.layout.Markers.Footer})
	return b.Row(Cell{X: 40, Text: "HOL"}, Cell{X: b.layout.TotalColumn, Text: "999.00"})
}

// Document renders every page with its header and footer.
func (b *Builder) Document() token.Document {
	doc := token.Document{Name: "synthetic"}
	for i, body := range b.pages {
		tokens := HeaderTokens(b.layout, i+1, len(b.pages))
		tokens = append(tokens, body...)
		doc.Pages = append(doc.Pages, token.Page{Number: i + 1, Tokens: tokens})
	}
	return doc
}
