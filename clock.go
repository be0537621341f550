package pocket

import (
	"time"

	"github.com/etnz/pocket/date"
)

// SettingSimulatedNow is the setting key of the simulated "now", stored as an RFC 3339 timestamp.
const SettingSimulatedNow = "simulatedNow"

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

// RealClock is the wall clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant. It is used to simulate a date.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }

// Today returns the current calendar date of c.
func Today(c Clock) date.Date { return date.Of(c.Now()) }

// ClockFromSetting returns the clock described by the persisted simulated-now value.
// An empty or invalid value yields the real clock.
func ClockFromSetting(value string) Clock {
	if value == "" {
		return RealClock{}
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return RealClock{}
	}
	return FixedClock(t)
}

// NextMonth returns the first day of the month after now, at 9am, in now's location.
func NextMonth(now time.Time) time.Time {
	first := date.ThisMonth(now).Next().First()
	return time.Date(first.Year(), first.Month(), first.Day(), 9, 0, 0, 0, now.Location())
}
