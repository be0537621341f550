package pocket

import (
	"testing"
	"time"

	"github.com/etnz/pocket/date"
)

func TestParseReceipt(t *testing.T) {
	text := `
Fecha 12/09/2025
Pan 1,20
Nómina septiembre 1.850,00 €
Comisión -3.20
`
	got := ParseReceipt(text, date.Month{Year: 2025, Month: time.October}, date.MustParse("2025-10-05"), "EUR")

	want := []struct {
		kind        Kind
		amount      Money
		description string
	}{
		{Expense, EUR(1.2), "Pan"},
		{Income, EUR(1850), "Nómina septiembre"},
		{Expense, EUR(3.2), "Comisión"},
	}
	if len(got) != len(want) {
		t.Fatalf("ParseReceipt() returned %d transactions, want %d: %v", len(got), len(want), got)
	}
	for i, w := range want {
		g := got[i]
		if g.Type != w.kind || !g.Amount.Equal(w.amount) || g.Description != w.description {
			t.Errorf("ParseReceipt()[%d] = %s %v %q, want %s %v %q", i, g.Type, g.Amount, g.Description, w.kind, w.amount, w.description)
		}
		if want := date.MustParse("2025-09-12"); g.Date != want {
			t.Errorf("ParseReceipt()[%d].Date = %s, want %s", i, g.Date, want)
		}
		if g.Category != ReceiptCategory {
			t.Errorf("ParseReceipt()[%d].Category = %q, want %q", i, g.Category, ReceiptCategory)
		}
	}
}

func TestParseReceipt_Dates(t *testing.T) {
	today := date.MustParse("2025-03-31")
	feb := date.Month{Year: 2025, Month: time.February}
	tests := []struct {
		name string
		text string
		want string
	}{
		{"fallback clamps the day", "Cafe 2,50", "2025-02-28"},
		{"short year", "Ticket 03-01-24\nCafe 2,50", "2024-01-03"},
		{"without year", "Compra 2/9\nCafe 2,50", "2025-09-02"},
		{"impossible date", "Ticket 31/02/2025\nCafe 2,50", "2025-02-28"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseReceipt(tc.text, feb, today, "EUR")
			if len(got) == 0 {
				t.Fatalf("ParseReceipt(%q) returned nothing", tc.text)
			}
			if want := date.MustParse(tc.want); got[0].Date != want {
				t.Errorf("ParseReceipt(%q).Date = %s, want %s", tc.text, got[0].Date, want)
			}
		})
	}
}

func TestParseReceipt_Description(t *testing.T) {
	got := ParseReceipt("X 5", date.Month{Year: 2025, Month: time.May}, date.MustParse("2025-05-02"), "EUR")
	if len(got) != 1 || got[0].Description != UnknownDescription {
		t.Errorf("ParseReceipt(\"X 5\") = %v, want one %q", got, UnknownDescription)
	}
}

func TestParseReceipt_Nothing(t *testing.T) {
	if got := ParseReceipt("Gracias por su visita", date.Month{Year: 2025, Month: time.May}, date.MustParse("2025-05-02"), "EUR"); len(got) != 0 {
		t.Errorf("ParseReceipt() = %v, want nothing", got)
	}
}

func TestParseReceipt_YearOfMonth(t *testing.T) {
	// a receipt of December read in January
	got := ParseReceipt("Compra 28/12\nCafe 2,50", date.Month{Year: 2024, Month: time.December}, date.MustParse("2025-01-03"), "EUR")
	if len(got) == 0 {
		t.Fatal("ParseReceipt() returned nothing")
	}
	if want := date.MustParse("2024-12-28"); got[0].Date != want {
		t.Errorf("ParseReceipt().Date = %s, want %s", got[0].Date, want)
	}
}
