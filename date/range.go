package date

// Range represents a range of dates, boundaries included.
// The zero Range contains every date.
type Range struct{ From, To Date }

// IsZero reports whether r is the unbounded range.
func (r Range) IsZero() bool { return r == Range{} }

// Contains return true date is included in the range (boundaries included)
func (r Range) Contains(date Date) bool {
	if !r.From.IsZero() && date.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && date.After(r.To) {
		return false
	}
	return true
}

// String returns "from..to", leaving out the unbounded sides.
func (r Range) String() string { return r.From.String() + ".." + r.To.String() }
