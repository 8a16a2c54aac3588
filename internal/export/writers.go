package export

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"

	"github.com/faizmokh/timesheets/internal/layout"
	"github.com/faizmokh/timesheets/internal/timesheet"
)

// WriteCSV writes the long (key, date, hours) table with a header row.
func WriteCSV(w io.Writer, l *layout.Layout, records []*timesheet.Record) error {
	rows := Rows(l, records)
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// WriteJSON writes {key: {YYYY-MM-DD: hours}} with hours as numbers.
func WriteJSON(w io.Writer, l *layout.Layout, records []*timesheet.Record) error {
	out := make(map[string]map[string]json.Number)
	for key, days := range Nested(l, records) {
		m := make(map[string]json.Number, len(days))
		for d, h := range days {
			m[d.String()] = json.Number(h.StringFixed(2))
		}
		out[key] = m
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

const (
	hoursSheet  = "Hours"
	totalsSheet = "Totals"
	issuesSheet = "Issues"
)

// WriteXLSX writes a workbook with hours, totals and the issue log of every
// record.
func WriteXLSX(w io.Writer, l *layout.Layout, records []*timesheet.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", hoursSheet); err != nil {
		return fmt.Errorf("xlsx sheet: %w", err)
	}
	for _, name := range []string{totalsSheet, issuesSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("xlsx sheet: %w", err)
		}
	}

	sheets := []struct {
		name   string
		header []any
		rows   [][]any
		widths []float64
	}{
		{hoursSheet, []any{"Key", "Date", "Hours"}, hourCells(Rows(l, records)), []float64{22, 14, 10}},
		{totalsSheet, []any{"Key", "Label", "Hours"}, totalCells(Totals(l, records)), []float64{22, 48, 10}},
		{issuesSheet, []any{"Document", "Page", "Kind", "Message"}, issueCells(records), []float64{28, 8, 14, 80}},
	}
	for _, s := range sheets {
		if err := writeSheet(f, s.name, s.header, s.rows); err != nil {
			return err
		}
		for i, width := range s.widths {
			col, _ := excelize.ColumnNumberToName(i + 1)
			_ = f.SetColWidth(s.name, col, col, width)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, header []any, rows [][]any) error {
	for i, row := range slices.Insert(rows, 0, header) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("xlsx %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func hourCells(rows []Row) [][]any {
	out := make([][]any, 0, len(rows))
	for _, r := range rows {
		out = append(out, []any{r.Key, r.Day, r.Hours.InexactFloat64()})
	}
	return out
}

func totalCells(totals []Total) [][]any {
	out := make([][]any, 0, len(totals))
	for _, t := range totals {
		out = append(out, []any{t.Key, t.Label, t.Hours.InexactFloat64()})
	}
	return out
}

func issueCells(records []*timesheet.Record) [][]any {
	var out [][]any
	for _, rec := range records {
		for _, is := range rec.Issues {
			out = append(out, []any{rec.Name, is.Page, is.Kind.String(), is.Message})
		}
	}
	return out
}
