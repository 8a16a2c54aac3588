package timesheet

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/faizmokh/timesheets/internal/layout"
	"github.com/faizmokh/timesheets/internal/timesheet/timesheettest"
	"github.com/faizmokh/timesheets/internal/token"
)

var monday = Date{Year: 2019, Month: time.September, Day: 2}

func parse(t *testing.T, doc token.Document) *Record {
	t.Helper()
	rec, err := NewParser().Parse(doc)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return rec
}

func issuesOf(rec *Record, kind IssueKind) []Issue {
	var out []Issue
	for _, is := range rec.Issues {
		if is.Kind == kind {
			out = append(out, is)
		}
	}
	return out
}

func requireNoIssues(t *testing.T, rec *Record) {
	t.Helper()
	if len(rec.Issues) != 0 {
		t.Fatalf("Issues = %v, want none", rec.Issues)
	}
}

func hours(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestHolidayEntryEndToEnd(t *testing.T) {
	doc := timesheettest.New().
		Entry(1, "HOL", "", "").
		Week("Sep 2, 2019", []string{"8.00"}, "8.00").
		LineTotal("8.00").
		Summary().
		Document()

	rec := parse(t, doc)
	requireNoIssues(t, rec)

	if len(rec.Entries) != 1 {
		t.Fatalf("len(Entries) = %d, want 1", len(rec.Entries))
	}
	e := rec.Entries[0]
	if e.TimeCode != "HOL" || e.Project != "" {
		t.Fatalf("entry = %+v, want HOL with no project", e)
	}
	if len(e.Hours) != 1 || !e.Hours[monday].Equal(hours("8.00")) {
		t.Fatalf("Hours = %v, want {%s: 8.00}", e.Hours, monday)
	}
}

func TestHeaderIsRead(t *testing.T) {
	rec := parse(t, timesheettest.New().Entry(1, "HOL", "", "").Summary().Document())
	h := rec.Header

	if h.EmployeeID != "109015" || h.EmployeeName != "Doe, Jane" {
		t.Fatalf("employee = %q %q", h.EmployeeID, h.EmployeeName)
	}
	if h.PeriodStart != monday || h.PeriodEnd != (Date{2019, time.September, 15}) {
		t.Fatalf("period = %s..%s", h.PeriodStart, h.PeriodEnd)
	}
	if h.Department != "[3200] Advanced Analytics" || !h.Exempt || h.PostingStatus != "Posted" {
		t.Fatalf("header = %+v", h)
	}
	if !h.StandardHours.Equal(hours("80")) {
		t.Fatalf("StandardHours = %s, want 80", h.StandardHours)
	}
	if h.Timestamp.Hour() != 9 || h.Timestamp.Minute() != 14 {
		t.Fatalf("Timestamp = %v", h.Timestamp)
	}
}

func TestWeekReconciliationIsExact(t *testing.T) {
	tests := []struct {
		name   string
		days   []string
		total  string
		issues int
	}{
		{"five days", []string{"8.00", "8.00", "8.00", "8.00", "8.00", "0.00", "0.00"}, "40.00", 0},
		{"four days", []string{"8.00", "8.00", "8.00", "8.00", "0.00", "0.00", "0.00"}, "32.00", 0},
		{"quarter hour off", []string{"8.00", "8.25", "8.00", "8.00", "8.00", "0.00", "0.00"}, "40.00", 1},
		{"quarter hour under", []string{"8.00", "8.00", "8.00", "7.75", "0.00", "0.00", "0.00"}, "32.00", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := timesheettest.New().
				Entry(1, "ST", "20032.001.20.005", "100").
				Label("Data pipeline maintenance").
				Week("Sep 2, 2019", tt.days, tt.total).
				Summary().
				Document()

			rec := parse(t, doc)
			if got := len(issuesOf(rec, IssueArithmetic)); got != tt.issues {
				t.Fatalf("arithmetic issues = %d, want %d (%v)", got, tt.issues, rec.Issues)
			}
			if len(rec.Issues) != tt.issues {
				t.Fatalf("Issues = %v, want %d", rec.Issues, tt.issues)
			}
		})
	}
}

func TestLineReconciliation(t *testing.T) {
	build := func(lineTotal string) token.Document {
		return timesheettest.New().
			Entry(1, "ST", "20032.001.20.005", "100").
			Label("Data pipeline maintenance").
			Week("Sep 2, 2019", []string{"8.00", "8.00"}, "16.00").
			Week("Sep 9, 2019", []string{"4.00"}, "4.00").
			LineTotal(lineTotal).
			Summary().
			Document()
	}

	requireNoIssues(t, parse(t, build("20.00")))

	rec := parse(t, build("24.00"))
	if got := issuesOf(rec, IssueArithmetic); len(got) != 1 || !strings.Contains(got[0].Message, "line total") {
		t.Fatalf("arithmetic issues = %v, want one line check", got)
	}
}

func TestMergedHoursSplitAcrossAdjacentDays(t *testing.T) {
	l := layout.Default()
	doc := timesheettest.New().
		Entry(1, "HOL", "", "").
		Week("Sep 2, 2019", nil, "").
		Row(timesheettest.Cell{X: l.DayColumns[2], Text: "4.00 4.00"}).
		Summary().
		Document()

	rec := parse(t, doc)
	requireNoIssues(t, rec)
	got := rec.Entries[0].Hours
	if len(got) != 2 || !got[monday.AddDays(2)].Equal(hours("4")) || !got[monday.AddDays(3)].Equal(hours("4")) {
		t.Fatalf("Hours = %v, want 4.00 on offsets 2 and 3", got)
	}
}

func TestDayColumnRoundTrip(t *testing.T) {
	l := layout.Default()
	for offset, x := range l.DayColumns {
		doc := timesheettest.New().
			Entry(1, "VAC", "", "").
			Week("Sep 2, 2019", nil, "").
			Row(timesheettest.Cell{X: x + 3, Text: "1.50"}).
			Summary().
			Document()

		rec := parse(t, doc)
		requireNoIssues(t, rec)
		dates := rec.Entries[0].Dates()
		if len(dates) != 1 || dates[0] != monday.AddDays(offset) {
			t.Fatalf("x=%v: dates = %v, want %s", x, dates, monday.AddDays(offset))
		}
	}
}

func TestEntryIsolation(t *testing.T) {
	doc := timesheettest.New().
		Entry(1, "ST", "20032.001.20.005", "100").
		Label("First").
		Week("Sep 2, 2019", []string{"8.00"}, "8.00").
		Entry(2, "ST", "20032.001.20.006", "100").
		Label("Second").
		Label("Stray text").
		Week("Sep 2, 2019", []string{"2.00", "3.00"}, "5.00").
		Notes().
		LineNote("note for second").
		Summary().
		Document()

	rec := parse(t, doc)
	if len(rec.Entries) != 2 {
		t.Fatalf("len(Entries) = %d, want 2", len(rec.Entries))
	}
	first := rec.Entries[0]
	if first.Label != "First" || first.Project != "20032.001.20.005" || len(first.Notes) != 0 {
		t.Fatalf("first entry = %+v", first)
	}
	if len(first.Hours) != 1 || !first.Hours[monday].Equal(hours("8")) {
		t.Fatalf("first entry hours = %v", first.Hours)
	}

	second := rec.Entries[1]
	if second.Label != "Second" || len(second.Notes) != 1 || !second.TotalHours().Equal(hours("5")) {
		t.Fatalf("second entry = %+v", second)
	}
	if got := issuesOf(rec, IssueUnclassified); len(got) != 1 || !strings.Contains(got[0].Message, "Stray text") {
		t.Fatalf("unclassified issues = %v, want the stray label", got)
	}
}

func TestNotes(t *testing.T) {
	doc := timesheettest.New().
		Entry(1, "ST", "20032.001.20.005", "100").
		Label("Data pipeline maintenance").
		Notes().
		Note("Sep 2, 2019", "Sep 6, 2019", "Worked on ingestion", true).
		LineNote("Follow up with client").
		LineNote("One too many").
		Summary().
		Document()

	rec := parse(t, doc)
	e := rec.Entries[0]
	if e.Label != "Data pipeline maintenance" {
		t.Fatalf("Label = %q, notes must not overwrite it", e.Label)
	}
	if len(e.Notes) != 3 {
		t.Fatalf("len(Notes) = %d, want 3", len(e.Notes))
	}
	n := e.Notes[0]
	if n.Start == nil || *n.Start != monday || n.End == nil || *n.End != monday.AddDays(4) || n.Text != "Worked on ingestion" {
		t.Fatalf("dated note = %+v", n)
	}
	if e.Notes[1].Start != nil || e.Notes[1].Text != "Follow up with client" {
		t.Fatalf("line note = %+v", e.Notes[1])
	}
	if got := issuesOf(rec, IssueStructure); len(got) != 1 || !strings.Contains(got[0].Message, "more than 2 notes") {
		t.Fatalf("structure issues = %v, want the third note flagged", got)
	}
}

func TestHoursWithoutReferenceDate(t *testing.T) {
	l := layout.Default()
	doc := timesheettest.New().
		Entry(1, "HOL", "", "").
		Week("", []string{"8.00"}, "").
		Row(timesheettest.Cell{X: 40, Text: "Sep 9, 2019"}, timesheettest.Cell{X: l.DayColumns[1], Text: "2.00"}).
		Summary().
		Document()

	rec := parse(t, doc)
	if got := issuesOf(rec, IssueAnchor); len(got) != 1 || !strings.Contains(got[0].Message, "no week reference date") {
		t.Fatalf("anchor issues = %v", got)
	}
	got := rec.Entries[0].Hours
	if len(got) != 1 || !got[Date{2019, time.September, 10}].Equal(hours("2")) {
		t.Fatalf("Hours = %v, want only 2.00 on Sep 10", got)
	}
}

func TestDuplicateDateKeepsFirstValue(t *testing.T) {
	doc := timesheettest.New().
		Entry(1, "HOL", "", "").
		Week("Sep 2, 2019", []string{"8.00"}, "").
		Week("Sep 2, 2019", []string{"4.00"}, "").
		Summary().
		Document()

	rec := parse(t, doc)
	if got := issuesOf(rec, IssueStructure); len(got) != 1 || !strings.Contains(got[0].Message, "duplicate") {
		t.Fatalf("structure issues = %v", got)
	}
	if !rec.Entries[0].Hours[monday].Equal(hours("8")) {
		t.Fatalf("Hours = %v, want the first value kept", rec.Entries[0].Hours)
	}
}

func TestHoursOutsideDayColumnsAreDropped(t *testing.T) {
	doc := timesheettest.New().
		Entry(1, "HOL", "", "").
		Week("Sep 2, 2019", nil, "").
		Row(timesheettest.Cell{X: 300, Text: "8.00"}).
		Summary().
		Document()

	rec := parse(t, doc)
	if len(rec.Entries[0].Hours) != 0 {
		t.Fatalf("Hours = %v, want none", rec.Entries[0].Hours)
	}
	if got := issuesOf(rec, IssueStructure); len(got) != 1 || !strings.Contains(got[0].Message, "no day column") {
		t.Fatalf("structure issues = %v", got)
	}
}

func TestMissingSectionMarkerStillReturnsRecord(t *testing.T) {
	doc := timesheettest.New().
		Entry(1, "HOL", "", "").
		Week("Sep 2, 2019", []string{"8.00"}, "8.00").
		Document()

	rec := parse(t, doc)
	if len(rec.Entries) != 1 {
		t.Fatalf("len(Entries) = %d, want the partial entry", len(rec.Entries))
	}
	if got := issuesOf(rec, IssueAnchor); len(got) != 1 {
		t.Fatalf("anchor issues = %v, want one", got)
	}
}

func TestSummarySectionIsIgnored(t *testing.T) {
	doc := timesheettest.New().
		Entry(1, "HOL", "", "").
		Summary().
		NewPage().
		Entry(2, "ST", "20032.001.20.005", "100").
		Document()

	rec := parse(t, doc)
	if len(rec.Entries) != 1 {
		t.Fatalf("len(Entries) = %d, want entries after the marker ignored", len(rec.Entries))
	}
}

func TestEntryContinuesAcrossPages(t *testing.T) {
	doc := timesheettest.New().
		Entry(1, "ST", "20032.001.20.005", "100").
		Label("Data pipeline maintenance").
		Week("Sep 2, 2019", []string{"8.00"}, "8.00").
		NewPage().
		Week("Sep 9, 2019", []string{"8.00"}, "8.00").
		LineTotal("16.00").
		Summary().
		Document()

	rec := parse(t, doc)
	requireNoIssues(t, rec)
	if len(rec.Entries) != 1 || !rec.Entries[0].TotalHours().Equal(hours("16")) {
		t.Fatalf("Entries = %+v", rec.Entries)
	}
}

func TestMergedProjectIsRepairedAndAudited(t *testing.T) {
	doc := timesheettest.New().
		Row(
			timesheettest.Cell{X: 20, Text: "1"},
			timesheettest.Cell{X: 40, Text: "ST"},
			timesheettest.Cell{X: 120, Text: "20032.001.20.005 100"},
		).
		Label("Data pipeline maintenance").
		Summary().
		Document()

	rec := parse(t, doc)
	e := rec.Entries[0]
	if e.Project != "20032.001.20.005" || e.TimeType != "100" || e.Label != "Data pipeline maintenance" {
		t.Fatalf("entry = %+v", e)
	}
	if got := issuesOf(rec, IssueRepair); len(got) != 1 || len(rec.Issues) != 1 {
		t.Fatalf("Issues = %v, want a single repair audit", rec.Issues)
	}
}

func TestDocumentNumberIsDroppedFromHeader(t *testing.T) {
	doc := timesheettest.New().Entry(1, "HOL", "", "").Summary().Document()
	doc.Pages[0].Tokens = append(doc.Pages[0].Tokens,
		token.Token{Text: "Doc.No.", X: 230, Y: 437},
		token.Token{Text: "1", X: 304, Y: 437},
	)

	rec := parse(t, doc)
	if got := issuesOf(rec, IssueRepair); len(got) != 1 || len(rec.Issues) != 1 {
		t.Fatalf("Issues = %v, want a single repair audit", rec.Issues)
	}
	if rec.Header.PercentBillability != "100.00%" {
		t.Fatalf("PercentBillability = %q", rec.Header.PercentBillability)
	}
}

func TestHeaderDeviationsAreIssues(t *testing.T) {
	doc := timesheettest.New().Entry(1, "HOL", "", "").Summary().NewPage().Document()
	for i, tok := range doc.Pages[0].Tokens {
		if tok.Text == "[3200] Advanced Analytics" {
			doc.Pages[0].Tokens[i].Text = "[9999] Sales"
		}
	}
	for i, tok := range doc.Pages[1].Tokens {
		if tok.Text == timesheettest.Period {
			doc.Pages[1].Tokens[i].Text = "Sep 16, 2019 - Sep 29, 2019"
		}
	}

	rec := parse(t, doc)
	got := issuesOf(rec, IssueStructure)
	if len(got) != 2 {
		t.Fatalf("structure issues = %v, want department and period", got)
	}
	if got[0].Page != 1 || got[1].Page != 2 {
		t.Fatalf("issue pages = %d, %d, want 1, 2", got[0].Page, got[1].Page)
	}
	if rec.Header.Department != "[9999] Sales" {
		t.Fatalf("Department = %q, want text taken at face value", rec.Header.Department)
	}
}

func TestInvalidInputIsFatal(t *testing.T) {
	doc := timesheettest.New().Entry(1, "HOL", "", "").NewPage().Summary().Document()
	doc.Pages[0], doc.Pages[1] = doc.Pages[1], doc.Pages[0]

	rec, err := NewParser().Parse(doc)
	if !errors.Is(err, ErrInvalidInput) || rec != nil {
		t.Fatalf("Parse() = %v, %v, want ErrInvalidInput", rec, err)
	}

	doc = timesheettest.New().Entry(1, "HOL", "", "").Summary().Document()
	doc.Pages[0].Tokens[0].Y = math.Inf(1)
	if _, err := NewParser().Parse(doc); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("Parse() error = %v, want ErrInvalidInput", err)
	}
}

func TestTokensBeforeFirstEntry(t *testing.T) {
	doc := timesheettest.New().
		Label("Orphan").
		Entry(1, "HOL", "", "").
		Summary().
		Document()

	rec := parse(t, doc)
	if got := issuesOf(rec, IssueAnchor); len(got) != 1 || !strings.Contains(got[0].Message, "Orphan") {
		t.Fatalf("anchor issues = %v", got)
	}
}

func TestNumericNoteLinesStayNotes(t *testing.T) {
	doc := timesheettest.New().
		Entry(1, "HOL", "", "").
		Week("Sep 2, 2019", []string{"8.00"}, "8.00").
		LineTotal("8.00").
		Notes().
		LineNote("15").
		LineNote("HOL").
		Summary().
		Document()

	rec := parse(t, doc)
	requireNoIssues(t, rec)
	if len(rec.Entries) != 1 {
		t.Fatalf("len(Entries) = %d, want 1", len(rec.Entries))
	}
	notes := rec.Entries[0].Notes
	if len(notes) != 2 || notes[0].Text != "15" || notes[1].Text != "HOL" {
		t.Fatalf("Notes = %+v, want [15 HOL]", notes)
	}
}

func TestOffQuarterHoursAndNonMondayWeek(t *testing.T) {
	doc := timesheettest.New().
		Entry(1, "HOL", "", "").
		Week("Sep 3, 2019", []string{"8.10"}, "8.10").
		LineTotal("8.10").
		Summary().
		Document()

	rec := parse(t, doc)
	if got := issuesOf(rec, IssueArithmetic); len(got) != 1 || !strings.Contains(got[0].Message, "not a quarter-hour") {
		t.Fatalf("arithmetic issues = %v", got)
	}
	if got := issuesOf(rec, IssueStructure); len(got) != 1 || !strings.Contains(got[0].Message, "is a Tuesday") {
		t.Fatalf("structure issues = %v", got)
	}
	tuesday := monday.AddDays(1)
	if h := rec.Entries[0].Hours[tuesday]; !h.Equal(hours("8.10")) {
		t.Fatalf("Hours[%s] = %s, want 8.10", tuesday, h)
	}
}
