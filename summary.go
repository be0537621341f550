package pocket

import (
	"time"

	"github.com/etnz/pocket/date"
)

// MonthlySummary totals the transactions of a month.
type MonthlySummary struct {
	Month            date.Month `json:"month"`
	TotalIncome      Money      `json:"totalIncome"`
	TotalExpenses    Money      `json:"totalExpenses"`
	Balance          Money      `json:"balance"`
	TransactionCount int        `json:"transactionCount"`
}

// Summarize totals the transactions of txs that fall in month.
func Summarize(month date.Month, txs []Transaction, currency string) MonthlySummary {
	s := MonthlySummary{
		Month:         month,
		TotalIncome:   M(0, currency),
		TotalExpenses: M(0, currency),
	}
	for _, tx := range txs {
		if !month.Contains(tx.Date) {
			continue
		}
		switch tx.Type {
		case Income:
			s.TotalIncome = s.TotalIncome.Add(tx.Amount)
		case Expense:
			s.TotalExpenses = s.TotalExpenses.Add(tx.Amount)
		}
		s.TransactionCount++
	}
	s.Balance = s.TotalIncome.Sub(s.TotalExpenses)
	return s
}

// CloseMonth reduces the transactions of month into its snapshot.
// It returns the identifiers of the folded transactions, and false if there was none.
func CloseMonth(month date.Month, txs []Transaction, closedAt time.Time, currency string) (MonthlySnapshot, []ID, bool) {
	var ids []ID
	for _, tx := range txs {
		if month.Contains(tx.Date) {
			ids = append(ids, tx.ID)
		}
	}
	if len(ids) == 0 {
		return MonthlySnapshot{}, nil, false
	}
	s := Summarize(month, txs, currency)
	return MonthlySnapshot{
		Month:            month,
		TotalIncome:      s.TotalIncome,
		TotalExpenses:    s.TotalExpenses,
		Balance:          s.Balance,
		TransactionCount: s.TransactionCount,
		ClosedAt:         closedAt,
	}, ids, true
}
