package pocket

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/etnz/pocket/date"
)

// Loan is money lent to a borrower, accruing simple interest from StartDate.
type Loan struct {
	ID         ID        `json:"id"`
	Borrower   string    `json:"borrower"`
	Principal  Money     `json:"principal"`
	AnnualRate Percent   `json:"annualRate"`
	StartDate  date.Date `json:"startDate"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"createdAt,omitzero"`
}

func (l Loan) Validate() error {
	switch {
	case strings.TrimSpace(l.Borrower) == "":
		return fmt.Errorf("loan has no borrower: %w", ErrInvalid)
	case !l.Principal.IsPositive():
		return fmt.Errorf("loan to %q must have a positive principal, got %v: %w", l.Borrower, l.Principal, ErrInvalid)
	case l.AnnualRate < 0:
		return fmt.Errorf("loan to %q has a negative rate %v: %w", l.Borrower, l.AnnualRate, ErrInvalid)
	case l.StartDate.IsZero():
		return fmt.Errorf("loan to %q has no start date: %w", l.Borrower, ErrInvalid)
	}
	return nil
}

// LoanPayment is an amount received back from a borrower.
type LoanPayment struct {
	ID        ID        `json:"id"`
	LoanID    ID        `json:"loanId"`
	Date      date.Date `json:"date"`
	Amount    Money     `json:"amount"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

func (p LoanPayment) Validate() error {
	switch {
	case p.LoanID == "":
		return fmt.Errorf("payment is not attached to a loan: %w", ErrInvalid)
	case p.Date.IsZero():
		return fmt.Errorf("payment has no date: %w", ErrInvalid)
	case !p.Amount.IsPositive():
		return fmt.Errorf("payment must be positive, got %v: %w", p.Amount, ErrInvalid)
	}
	return nil
}

// PaymentRecord is a payment denormalized with the loan it belongs to.
// Remote copies have no stable loan identifier, the loan is found again by borrower and start date.
type PaymentRecord struct {
	LoanPayment
	Borrower  string
	LoanStart date.Date
}

func (r PaymentRecord) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(r.LoanPayment)
	w.Append("loanBorrower", r.Borrower)
	w.Append("loanStartDate", r.LoanStart)
	return w.MarshalJSON()
}

func (r *PaymentRecord) UnmarshalJSON(data []byte) error {
	var loan struct {
		Borrower  string    `json:"loanBorrower"`
		LoanStart date.Date `json:"loanStartDate"`
	}
	if err := json.Unmarshal(data, &loan); err != nil {
		return err
	}
	if err := json.Unmarshal(data, &r.LoanPayment); err != nil {
		return err
	}
	r.Borrower, r.LoanStart = loan.Borrower, loan.LoanStart
	return nil
}
