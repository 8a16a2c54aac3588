package timesheet

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/faizmokh/timesheets/internal/layout"
	"github.com/faizmokh/timesheets/internal/token"
)

var titlePattern = regexp.MustCompile(`^Timesheet(?:\s+\[([0-9]+)\]\s+(.+))?$`)

// readHeader walks the repaired header run against the template's indexed
// slots: labels must sit at their index, values are read from theirs.
func (s *parseState) readHeader(run []token.Token, tmpl *layout.Template, first bool) {
	for i, slot := range tmpl.Indexed() {
		if i >= len(run) {
			return
		}
		text := run[i].Text
		if slot.Kind == layout.KindLabel {
			if text != slot.Text {
				s.issue(IssueStructure, "header item %d should be %q, is %q", i, slot.Text, text)
			}
			continue
		}
		if first {
			s.setHeader(slot.Role, text)
			continue
		}
		s.checkContinuation(slot.Role, text)
	}
}

func (s *parseState) setHeader(role, text string) {
	h := &s.record.Header
	switch role {
	case "title":
		m := titlePattern.FindStringSubmatch(text)
		if m == nil {
			s.issue(IssueStructure, "title %q does not name a timesheet", text)
			return
		}
		h.EmployeeID, h.EmployeeName = m[1], m[2]
	case "period":
		h.Period = text
		start, end, ok := strings.Cut(text, " - ")
		if !ok {
			s.issue(IssueStructure, "period %q is not a date range", text)
			return
		}
		var err error
		if h.PeriodStart, err = ParseDate(s.layout.DateLayout, start); err != nil {
			s.issue(IssueStructure, "period start %q: %v", start, err)
		}
		if h.PeriodEnd, err = ParseDate(s.layout.DateLayout, end); err != nil {
			s.issue(IssueStructure, "period end %q: %v", end, err)
		}
	case "location":
		h.Location = text
	case "department":
		h.Department = text
	case "employee_type":
		h.EmploymentType = text
	case "default_location":
		h.DefaultLocation = text
	case "function":
		h.Function = text
	case "exempt":
		h.Exempt = text == "Yes"
	case "status":
		h.Status = text
	case "post_status":
		h.PostingStatus = text
	case "validation":
		h.ValidationStatus = text
	case "timestamp":
		ts, err := time.Parse(s.layout.DateLayout+" 15:04", text)
		if err != nil {
			s.issue(IssueStructure, "timestamp %q: %v", text, err)
			return
		}
		h.Timestamp = ts
	case "total":
		h.TotalHours = s.headerHours(role, text)
	case "standard":
		h.StandardHours = s.headerHours(role, text)
		if !h.StandardHours.Mod(decimal.NewFromInt(8)).IsZero() {
			s.issue(IssueArithmetic, "standard hours %s are not a multiple of 8", text)
		}
	case "billable":
		h.BillableHours = s.headerHours(role, text)
	case "percent":
		h.PercentBillability = text
	}
}

func (s *parseState) headerHours(role, text string) decimal.Decimal {
	d, err := decimal.NewFromString(text)
	if err != nil {
		s.issue(IssueStructure, "%s %q is not a number of hours", role, text)
		return decimal.Zero
	}
	return d
}

// checkContinuation compares a repeated header value with page 1.
func (s *parseState) checkContinuation(role, text string) {
	var want string
	switch role {
	case "period":
		want = s.record.Header.Period
	case "title":
		want = fmt.Sprintf("Timesheet [%s] %s", s.record.Header.EmployeeID, s.record.Header.EmployeeName)
		if s.record.Header.EmployeeID == "" {
			return
		}
	default:
		return
	}
	if text != want {
		s.issue(IssueStructure, "%s %q differs from page 1 %q", role, text, want)
	}
}

// checkFooter verifies the page's "Page N" and "of M" against its position.
func (s *parseState) checkFooter(m layout.Match, pages int) {
	if tok, ok := m.Lookup("page_number"); ok {
		var n int
		if _, err := fmt.Sscanf(tok.Text, "Page %d", &n); err == nil && n != s.page {
			s.issue(IssueStructure, "footer says %q on page %d", tok.Text, s.page)
		}
	}
	if tok, ok := m.Lookup("page_count"); ok {
		var n int
		if _, err := fmt.Sscanf(tok.Text, "of %d", &n); err == nil && n != pages {
			s.issue(IssueStructure, "footer says %q in a %d page document", tok.Text, pages)
		}
	}
}
