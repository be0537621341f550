package pocket

import (
	"testing"

	"github.com/etnz/pocket/date"
)

func TestAccrue(t *testing.T) {
	loan := Loan{ID: "l", Borrower: "Ana", Principal: EUR(1000), AnnualRate: 5, StartDate: date.MustParse("2024-03-01")}
	payment := LoanPayment{ID: "p", LoanID: "l", Date: date.MustParse("2024-06-01"), Amount: EUR(200)}
	other := LoanPayment{ID: "q", LoanID: "other", Date: date.MustParse("2024-06-01"), Amount: EUR(999)}

	tests := []struct {
		name        string
		now         string
		payments    []LoanPayment
		days        int
		accrued     Money
		outstanding Money
	}{
		{"one year", "2025-03-01", nil, 365, EUR(50), EUR(1050)},
		{"after a payment", "2025-03-01", []LoanPayment{payment, other}, 365, EUR(50), EUR(850)},
		{"start day", "2024-03-01", nil, 0, EUR(0), EUR(1000)},
		{"before start", "2024-02-01", nil, 0, EUR(0), EUR(1000)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Accrue(loan, tc.payments, at(tc.now))
			if got.DaysElapsed != tc.days {
				t.Errorf("DaysElapsed = %d, want %d", got.DaysElapsed, tc.days)
			}
			if !got.AccruedInterest.Equal(tc.accrued) {
				t.Errorf("AccruedInterest = %v, want %v", got.AccruedInterest, tc.accrued)
			}
			if !got.Outstanding.Equal(tc.outstanding) {
				t.Errorf("Outstanding = %v, want %v", got.Outstanding, tc.outstanding)
			}
		})
	}
}

func TestAccrue_ReceivedIsSumOfPayments(t *testing.T) {
	loan := Loan{ID: "l", Principal: EUR(500), AnnualRate: 0, StartDate: date.MustParse("2025-01-01")}
	payments := []LoanPayment{
		{LoanID: "l", Date: date.MustParse("2025-03-01"), Amount: EUR(100)},
		{LoanID: "l", Date: date.MustParse("2025-02-01"), Amount: EUR(50.5)},
	}
	got := Accrue(loan, payments, at("2025-04-01"))
	if want := EUR(150.5); !got.Received.Equal(want) {
		t.Errorf("Received = %v, want %v", got.Received, want)
	}
	if want := EUR(349.5); !got.Outstanding.Equal(want) {
		t.Errorf("Outstanding = %v, want %v", got.Outstanding, want)
	}
	if got.Payments[0].Date != date.MustParse("2025-02-01") {
		t.Errorf("Payments are not sorted by date: %v", got.Payments)
	}
}
