package date

import "testing"

// TestTime assert that the time() is cannonical and gives comparable times.
func TestTime(t *testing.T) {
	d1 := New(2025, 7, 31)
	d2 := New(2025, 7, 31)

	if d1.time() != d2.time() {
		// Note that usually time.Time are not comparable (there is a pointer for the timezone) this
		// tests also checks that the property remain true
		t.Errorf("invalid time() function same day gives two different time")
	}
}

func TestSub(t *testing.T) {
	testCases := []struct {
		name string
		a, b Date
		want int
	}{
		{"same day", New(2025, 3, 1), New(2025, 3, 1), 0},
		{"one year", New(2026, 1, 1), New(2025, 1, 1), 365},
		{"leap year", New(2025, 1, 1), New(2024, 1, 1), 366},
		{"backward", New(2025, 2, 27), New(2025, 3, 1), -2},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Sub(tc.b); got != tc.want {
				t.Errorf("%v.Sub(%v) = %d, want %d", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestParseRelative(t *testing.T) {
	today := New(2025, 9, 15)
	testCases := []struct {
		in   string
		want Date
	}{
		{"", today},
		{"0d", today},
		{"-1d", New(2025, 9, 14)},
		{"+2w", New(2025, 9, 29)},
		{"-1m", New(2025, 8, 15)},
		{"-1q", New(2025, 6, 15)},
		{"+1y", New(2026, 9, 15)},
		{"3", New(2025, 9, 3)},
		{"8-31", New(2025, 8, 31)},
		{"2024-2-29", New(2024, 2, 29)},
		{"2025-07-01T10:00:00Z", New(2025, 7, 1)},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseRelative(tc.in, today)
			if err != nil {
				t.Fatalf("ParseRelative(%q) error = %v", tc.in, err)
			}
			if got != tc.want {
				t.Errorf("ParseRelative(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}

	if _, err := ParseRelative("yesterday", today); err == nil {
		t.Errorf("ParseRelative(%q) expected an error", "yesterday")
	}
}

func TestDate_JSON(t *testing.T) {
	var d Date
	if err := d.UnmarshalJSON([]byte(`"2025-1-5"`)); err != nil {
		t.Fatalf("UnmarshalJSON() error = %v", err)
	}
	got, err := d.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}
	if want := `"2025-01-05"`; string(got) != want {
		t.Errorf("MarshalJSON() = %s, want %s", got, want)
	}

	var zero Date
	if err := zero.UnmarshalJSON([]byte(`""`)); err != nil {
		t.Fatalf("UnmarshalJSON(empty) error = %v", err)
	}
	if !zero.IsZero() {
		t.Errorf("UnmarshalJSON(empty) = %v, want zero date", zero)
	}
}
