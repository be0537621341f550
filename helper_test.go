package pocket

import (
	"time"

	"github.com/etnz/pocket/date"
)

// EUR is a helper for test to create euro money from const
func EUR(v float64) Money { return M(v, "EUR") }

// NO is a helper for test to create money from const with no currency set
func NO(v float64) Money { return M(v, "") }

// at returns the instant of a "2006-01-02" date at noon UTC.
func at(day string) time.Time { return date.MustParse(day).In(time.UTC).Add(12 * time.Hour) }
