package timesheet

import "github.com/shopspring/decimal"

// checkWeek compares the seven days of the reference week with the reported total.
func (s *parseState) checkWeek(total decimal.Decimal) {
	if !s.hasReference {
		s.issue(IssueAnchor, "line %d: week total %s with no week reference date", s.entry.Line, total.StringFixed(2))
		return
	}
	sum := weekSum(s.entry.Hours, s.reference, len(s.layout.DayColumns))
	if !sum.Equal(total) {
		s.issue(IssueArithmetic, "line %d: week of %s sums to %s, document reports %s",
			s.entry.Line, s.reference, sum.StringFixed(2), total.StringFixed(2))
	}
}

// checkLine compares everything attributed to the entry so far with the reported line total.
func (s *parseState) checkLine(total decimal.Decimal) {
	sum := s.entry.TotalHours()
	if !sum.Equal(total) {
		s.issue(IssueArithmetic, "line %d: hours sum to %s, document reports line total %s",
			s.entry.Line, sum.StringFixed(2), total.StringFixed(2))
	}
}

func weekSum(hours map[Date]decimal.Decimal, start Date, days int) decimal.Decimal {
	sum := decimal.Zero
	for i := range days {
		if h, ok := hours[start.AddDays(i)]; ok {
			sum = sum.Add(h)
		}
	}
	return sum
}
