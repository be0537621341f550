package store

import (
	"database/sql"
	"fmt"

	"github.com/etnz/pocket"
)

const (
	loanColumns    = `id, borrower, principal, annual_rate, start_date, notes, created_at`
	paymentColumns = `id, loan_id, date, amount, created_at`
)

func (s *DB) scanLoan(row rowScanner) (pocket.Loan, error) {
	var (
		l                        pocket.Loan
		id, principal, start, ca string
		rate                     float64
	)
	if err := row.Scan(&id, &l.Borrower, &principal, &rate, &start, &l.Notes, &ca); err != nil {
		return l, err
	}
	var err error
	l.ID, l.AnnualRate = pocket.ID(id), pocket.Percent(rate)
	if l.Principal, err = s.money(principal); err != nil {
		return l, err
	}
	if l.StartDate, err = parseDate(start); err != nil {
		return l, err
	}
	if l.CreatedAt, err = parseTime(ca); err != nil {
		return l, err
	}
	return l, nil
}

func (s *DB) scanPayment(row rowScanner) (pocket.LoanPayment, error) {
	var (
		p                        pocket.LoanPayment
		id, loan, on, amount, ca string
	)
	if err := row.Scan(&id, &loan, &on, &amount, &ca); err != nil {
		return p, err
	}
	var err error
	p.ID, p.LoanID = pocket.ID(id), pocket.ID(loan)
	if p.Date, err = parseDate(on); err != nil {
		return p, err
	}
	if p.Amount, err = s.money(amount); err != nil {
		return p, err
	}
	if p.CreatedAt, err = parseTime(ca); err != nil {
		return p, err
	}
	return p, nil
}

// Loans returns every loan, sorted by start date.
func (s *DB) Loans() ([]pocket.Loan, error) {
	rows, err := s.db.Query(`SELECT ` + loanColumns + ` FROM loans ORDER BY start_date, created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query loans: %w", err)
	}
	defer rows.Close()

	var loans []pocket.Loan
	for rows.Next() {
		l, err := s.scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		loans = append(loans, l)
	}
	return loans, rows.Err()
}

// Loan returns the loan id.
func (s *DB) Loan(id pocket.ID) (pocket.Loan, error) {
	l, err := s.scanLoan(s.db.QueryRow(`SELECT `+loanColumns+` FROM loans WHERE id = ?`, string(id)))
	if err != nil {
		return pocket.Loan{}, notFound(err, "loan", id)
	}
	return l, nil
}

func insertLoans(tx *sql.Tx, loans []pocket.Loan) error {
	stmt, err := tx.Prepare(`INSERT INTO loans (` + loanColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("error preparing insert statement: %w", err)
	}
	defer stmt.Close()
	for _, l := range loans {
		_, err := stmt.Exec(string(l.ID), l.Borrower, l.Principal.Decimal().String(), float64(l.AnnualRate),
			l.StartDate.String(), l.Notes, formatTime(l.CreatedAt))
		if err != nil {
			return fmt.Errorf("failed to insert loan to %q: %w", l.Borrower, err)
		}
	}
	return nil
}

// InsertLoan inserts l.
func (s *DB) InsertLoan(l pocket.Loan) error {
	return s.inTx(func(tx *sql.Tx) error { return insertLoans(tx, []pocket.Loan{l}) })
}

// DeleteLoan deletes the loan id and its payments.
func (s *DB) DeleteLoan(id pocket.ID) error {
	return s.inTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM loan_payments WHERE loan_id = ?`, string(id)); err != nil {
			return fmt.Errorf("failed to delete payments of loan %q: %w", id, err)
		}
		res, err := tx.Exec(`DELETE FROM loans WHERE id = ?`, string(id))
		if err != nil {
			return fmt.Errorf("failed to delete loan %q: %w", id, err)
		}
		return mustAffect(res, "loan", id)
	})
}

// Payments returns every loan payment, sorted by date.
func (s *DB) Payments() ([]pocket.LoanPayment, error) {
	rows, err := s.db.Query(`SELECT ` + paymentColumns + ` FROM loan_payments ORDER BY date, created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var payments []pocket.LoanPayment
	for rows.Next() {
		p, err := s.scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// Payment returns the payment id.
func (s *DB) Payment(id pocket.ID) (pocket.LoanPayment, error) {
	p, err := s.scanPayment(s.db.QueryRow(`SELECT `+paymentColumns+` FROM loan_payments WHERE id = ?`, string(id)))
	if err != nil {
		return pocket.LoanPayment{}, notFound(err, "payment", id)
	}
	return p, nil
}

func insertPayments(tx *sql.Tx, payments []pocket.LoanPayment) error {
	stmt, err := tx.Prepare(`INSERT INTO loan_payments (` + paymentColumns + `) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("error preparing insert statement: %w", err)
	}
	defer stmt.Close()
	for _, p := range payments {
		_, err := stmt.Exec(string(p.ID), string(p.LoanID), p.Date.String(), p.Amount.Decimal().String(), formatTime(p.CreatedAt))
		if err != nil {
			return fmt.Errorf("failed to insert payment on loan %q: %w", p.LoanID, err)
		}
	}
	return nil
}

// InsertPayment inserts p. Its loan must exist.
func (s *DB) InsertPayment(p pocket.LoanPayment) error {
	return s.inTx(func(tx *sql.Tx) error {
		var n int
		if err := tx.QueryRow(`SELECT COUNT(*) FROM loans WHERE id = ?`, string(p.LoanID)).Scan(&n); err != nil {
			return fmt.Errorf("failed to read loan %q: %w", p.LoanID, err)
		}
		if n == 0 {
			return fmt.Errorf("loan %q: %w", p.LoanID, pocket.ErrNotFound)
		}
		return insertPayments(tx, []pocket.LoanPayment{p})
	})
}

// DeletePayment deletes the payment id.
func (s *DB) DeletePayment(id pocket.ID) error {
	res, err := s.db.Exec(`DELETE FROM loan_payments WHERE id = ?`, string(id))
	if err != nil {
		return fmt.Errorf("failed to delete payment %q: %w", id, err)
	}
	return mustAffect(res, "payment", id)
}

// ReplaceLoans replaces every loan and payment.
func (s *DB) ReplaceLoans(loans []pocket.Loan, payments []pocket.LoanPayment) error {
	return s.inTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM loan_payments`); err != nil {
			return fmt.Errorf("failed to clear payments: %w", err)
		}
		if _, err := tx.Exec(`DELETE FROM loans`); err != nil {
			return fmt.Errorf("failed to clear loans: %w", err)
		}
		if err := insertLoans(tx, loans); err != nil {
			return err
		}
		return insertPayments(tx, payments)
	})
}
