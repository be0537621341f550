package pocket

import "errors"

var (
	// ErrMonthClosed is returned when a record is created or deleted outside
	// the calendar month of "now".
	ErrMonthClosed = errors.New("month closed")

	// ErrNotFound is returned when a record identifier is unknown.
	ErrNotFound = errors.New("not found")

	// ErrInvalid is returned when a record fails validation.
	ErrInvalid = errors.New("invalid record")
)
