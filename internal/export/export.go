// Package export flattens parsed records into the tabular shapes downstream
// tools consume: (key, date, hours) rows and per-key totals.
package export

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/faizmokh/timesheets/internal/layout"
	"github.com/faizmokh/timesheets/internal/timesheet"
)

// DateLayout is how dates are written in row exports.
const DateLayout = "01/02/2006"

// Row is one day of hours charged to a key.
type Row struct {
	Key   string          `csv:"key"`
	Date  timesheet.Date  `csv:"-"`
	Day   string          `csv:"date"`
	Hours decimal.Decimal `csv:"-"`
	Value string          `csv:"hours"`
}

// Total is the sum of hours charged to one key.
type Total struct {
	Key   string
	Label string
	Hours decimal.Decimal
}

// Key is the project an entry charges, or its time code when the code
// books no project (holiday, vacation and the like).
func Key(l *layout.Layout, e *timesheet.TimeEntry) string {
	if tc, ok := l.TimeCode(e.TimeCode); (ok && !tc.Project) || e.Project == "" {
		return e.TimeCode
	}
	return e.Project
}

// Rows flattens records in document order, each entry's days in calendar order.
func Rows(l *layout.Layout, records []*timesheet.Record) []Row {
	var rows []Row
	for _, rec := range records {
		for i := range rec.Entries {
			e := &rec.Entries[i]
			key := Key(l, e)
			for _, d := range e.Dates() {
				h := e.Hours[d]
				rows = append(rows, Row{
					Key:   key,
					Date:  d,
					Day:   d.Time().Format(DateLayout),
					Hours: h,
					Value: h.StringFixed(2),
				})
			}
		}
	}
	return rows
}

// Nested groups hours as key -> date -> hours. Hours for the same key and
// day from different entries are added.
func Nested(l *layout.Layout, records []*timesheet.Record) map[string]map[timesheet.Date]decimal.Decimal {
	out := make(map[string]map[timesheet.Date]decimal.Decimal)
	for _, r := range Rows(l, records) {
		days, ok := out[r.Key]
		if !ok {
			days = make(map[timesheet.Date]decimal.Decimal)
			out[r.Key] = days
		}
		days[r.Date] = days[r.Date].Add(r.Hours)
	}
	return out
}

// Totals sums hours per key in first-seen order. The label is taken from the
// first entry charging the key.
func Totals(l *layout.Layout, records []*timesheet.Record) []Total {
	var totals []Total
	for _, rec := range records {
		for i := range rec.Entries {
			e := &rec.Entries[i]
			key := Key(l, e)
			j := slices.IndexFunc(totals, func(t Total) bool { return t.Key == key })
			if j < 0 {
				totals = append(totals, Total{Key: key, Label: e.Label})
				j = len(totals) - 1
			}
			totals[j].Hours = totals[j].Hours.Add(e.TotalHours())
		}
	}
	return totals
}

// Range is the first and last day with hours across records.
func Range(records []*timesheet.Record) (from, to time.Time, ok bool) {
	for _, rec := range records {
		for i := range rec.Entries {
			for d := range rec.Entries[i].Hours {
				t := d.Time()
				if !ok || t.Before(from) {
					from = t
				}
				if !ok || t.After(to) {
					to = t
				}
				ok = true
			}
		}
	}
	return from, to, ok
}
