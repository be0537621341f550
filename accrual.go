package pocket

import (
	"slices"
	"time"

	"github.com/etnz/pocket/date"
)

// LoanStatus is the state of a loan evaluated at a given time.
type LoanStatus struct {
	Loan            Loan          `json:"loan"`
	Payments        []LoanPayment `json:"payments"` // sorted by date
	DaysElapsed     int           `json:"daysElapsed"`
	AccruedInterest Money         `json:"accruedInterest"`
	Received        Money         `json:"received"`
	Outstanding     Money         `json:"outstanding"` // Principal + AccruedInterest - Received
}

// Accrue evaluates loan at now with simple interest on a 365 days year.
// Payments that do not belong to loan are ignored.
func Accrue(loan Loan, payments []LoanPayment, now time.Time) LoanStatus {
	days := date.Of(now).Sub(loan.StartDate)
	if days < 0 {
		days = 0
	}

	s := LoanStatus{
		Loan:        loan,
		DaysElapsed: days,
		Received:    M(0, loan.Principal.Currency()),
	}
	for _, p := range payments {
		if p.LoanID != loan.ID {
			continue
		}
		s.Payments = append(s.Payments, p)
		s.Received = s.Received.Add(p.Amount)
	}
	slices.SortStableFunc(s.Payments, func(a, b LoanPayment) int { return a.Date.Sub(b.Date) })

	s.AccruedInterest = loan.Principal.Mul(Q(loan.AnnualRate.Decimal())).Mul(Q(days)).Div(Q(36500))
	s.Outstanding = loan.Principal.Add(s.AccruedInterest).Sub(s.Received)
	return s
}
