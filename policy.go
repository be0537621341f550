package pocket

import (
	"fmt"
	"time"

	"github.com/etnz/pocket/date"
)

// IsEditable reports whether a record dated recordDate can still be created or
// deleted at now: it must fall in the same calendar month.
func IsEditable(recordDate date.Date, now time.Time) bool {
	return date.ThisMonth(now).Contains(recordDate)
}

// checkEditable returns an error wrapping ErrMonthClosed if what, dated on, is not editable at now.
func checkEditable(what string, on date.Date, now time.Time) error {
	if IsEditable(on, now) {
		return nil
	}
	return fmt.Errorf("cannot modify %s dated %s in %s: %w", what, on, date.ThisMonth(now), ErrMonthClosed)
}
