package timesheet

import (
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Date is a calendar day with no clock or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses s with a time layout and keeps only the day.
func ParseDate(layout, s string) (Date, error) {
	t, err := time.Parse(layout, s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// Time returns midnight UTC of d.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// AddDays returns d shifted by n days.
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) Before(other Date) bool {
	return d.Time().Before(other.Time())
}

func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

func (d Date) String() string {
	return d.Time().Format(time.DateOnly)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(time.DateOnly, string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Header is the page-1 metadata block.
type Header struct {
	EmployeeID         string          `json:"employee_id"`
	EmployeeName       string          `json:"employee_name"`
	Period             string          `json:"period"`
	PeriodStart        Date            `json:"period_start"`
	PeriodEnd          Date            `json:"period_end"`
	Location           string          `json:"location"`
	Department         string          `json:"department"`
	EmploymentType     string          `json:"employment_type"`
	DefaultLocation    string          `json:"default_location"`
	Function           string          `json:"function"`
	Exempt             bool            `json:"exempt"`
	Status             string          `json:"status"`
	PostingStatus      string          `json:"posting_status"`
	ValidationStatus   string          `json:"validation_status"`
	Timestamp          time.Time       `json:"timestamp"`
	TotalHours         decimal.Decimal `json:"total_hours"`
	StandardHours      decimal.Decimal `json:"standard_hours"`
	BillableHours      decimal.Decimal `json:"billable_hours"`
	PercentBillability string          `json:"percent_billability"`
}

// Note is one note block of an entry. Line notes carry text only.
type Note struct {
	Start *Date  `json:"start,omitempty"`
	End   *Date  `json:"end,omitempty"`
	Text  string `json:"text"`
}

// TimeEntry is one reported line of time.
type TimeEntry struct {
	Line     int                      `json:"line"`
	TimeCode string                   `json:"time_code,omitempty"`
	Project  string                   `json:"project"`
	TimeType string                   `json:"time_type,omitempty"`
	Label    string                   `json:"label"`
	Hours    map[Date]decimal.Decimal `json:"hours"`
	Notes    []Note                   `json:"notes,omitempty"`
}

// Dates returns the days with hours in calendar order.
func (e *TimeEntry) Dates() []Date {
	dates := make([]Date, 0, len(e.Hours))
	for d := range e.Hours {
		dates = append(dates, d)
	}
	slices.SortFunc(dates, func(a, b Date) int { return a.Time().Compare(b.Time()) })
	return dates
}

// TotalHours sums every attributed day.
func (e *TimeEntry) TotalHours() decimal.Decimal {
	sum := decimal.Zero
	for _, h := range e.Hours {
		sum = sum.Add(h)
	}
	return sum
}

// IssueKind groups issues for filtering and display.
type IssueKind uint8

const (
	IssueStructure IssueKind = iota
	IssueArithmetic
	IssueRepair
	IssueUnclassified
	IssueAnchor
)

var issueKindNames = [...]string{"structure", "arithmetic", "repair", "unclassified", "anchor"}

func (k IssueKind) String() string {
	if int(k) < len(issueKindNames) {
		return issueKindNames[k]
	}
	return fmt.Sprintf("IssueKind(%d)", k)
}

func (k IssueKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *IssueKind) UnmarshalText(b []byte) error {
	i := slices.Index(issueKindNames[:], string(b))
	if i < 0 {
		return fmt.Errorf("unknown issue kind %q", b)
	}
	*k = IssueKind(i)
	return nil
}

// Issue is one diagnostic from a parse. Issues never abort parsing.
type Issue struct {
	Kind    IssueKind `json:"kind"`
	Page    int       `json:"page,omitempty"`
	Message string    `json:"message"`
}

func (i Issue) String() string {
	if i.Page > 0 {
		return fmt.Sprintf("page %d: %s: %s", i.Page, i.Kind, i.Message)
	}
	return fmt.Sprintf("%s: %s", i.Kind, i.Message)
}

// Record is everything recovered from one document.
type Record struct {
	Name    string      `json:"name"`
	Header  Header      `json:"header"`
	Entries []TimeEntry `json:"entries"`
	Issues  []Issue     `json:"issues"`
}
