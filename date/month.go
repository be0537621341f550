package date

import (
	"encoding/json"
	"fmt"
	"time"
)

// MonthFormat is the layout of a calendar month identifier.
const MonthFormat = "2006-01"

// Month is a calendar month of a given year.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the calendar month that contains d.
func MonthOf(d Date) Month { return Month{d.y, d.m} }

// ThisMonth returns the calendar month that contains t.
func ThisMonth(t time.Time) Month { return MonthOf(Of(t)) }

// First returns the first day of the month.
func (m Month) First() Date { return New(m.Year, m.Month, 1) }

// Last returns the last day of the month.
func (m Month) Last() Date { return New(m.Year, m.Month+1, 0) }

// Range returns the range of days of the month.
func (m Month) Range() Range { return Range{From: m.First(), To: m.Last()} }

// Prev returns the previous calendar month.
func (m Month) Prev() Month { return MonthOf(m.First().AddMonth(-1)) }

// Next returns the next calendar month.
func (m Month) Next() Month { return MonthOf(m.First().AddMonth(1)) }

// Contains reports whether d falls in m.
func (m Month) Contains(d Date) bool { return d.y == m.Year && d.m == m.Month }

// Before reports whether m is strictly before n.
func (m Month) Before(n Month) bool {
	if m.Year != n.Year {
		return m.Year < n.Year
	}
	return m.Month < n.Month
}

// String returns the "YYYY-MM" identifier of the month.
func (m Month) String() string { return m.First().Format(MonthFormat) }

func (m Month) MarshalJSON() ([]byte, error) { return json.Marshal(m.String()) }

func (m *Month) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	var err error
	*m, err = ParseMonth(s)
	return err
}

// ParseMonth parses a "YYYY-MM" month identifier. A full date is accepted too.
func ParseMonth(str string) (Month, error) {
	t, err := time.Parse("2006-1", str)
	if err == nil {
		return ThisMonth(t), nil
	}
	d, derr := Parse(str)
	if derr != nil {
		return Month{}, fmt.Errorf("invalid month %q want format %q: %w", str, MonthFormat, err)
	}
	return MonthOf(d), nil
}
