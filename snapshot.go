package pocket

import (
	"encoding/json"
	"time"

	"github.com/etnz/pocket/date"
)

// MonthlySnapshot is the frozen summary of a closed month.
type MonthlySnapshot struct {
	Month            date.Month
	TotalIncome      Money
	TotalExpenses    Money
	Balance          Money // TotalIncome - TotalExpenses
	TransactionCount int
	ClosedAt         time.Time
}

func (s MonthlySnapshot) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("year", s.Month.Year)
	w.Append("month", int(s.Month.Month))
	w.Append("totalIncome", s.TotalIncome)
	w.Append("totalExpenses", s.TotalExpenses)
	w.Append("balance", s.Balance)
	w.Append("transactionCount", s.TransactionCount)
	w.Append("closedAt", s.ClosedAt)
	return w.MarshalJSON()
}

func (s *MonthlySnapshot) UnmarshalJSON(data []byte) error {
	var js struct {
		Year             int       `json:"year"`
		Month            int       `json:"month"`
		TotalIncome      Money     `json:"totalIncome"`
		TotalExpenses    Money     `json:"totalExpenses"`
		Balance          Money     `json:"balance"`
		TransactionCount int       `json:"transactionCount"`
		ClosedAt         time.Time `json:"closedAt"`
	}
	if err := json.Unmarshal(data, &js); err != nil {
		return err
	}
	*s = MonthlySnapshot{
		Month:            date.Month{Year: js.Year, Month: time.Month(js.Month)},
		TotalIncome:      js.TotalIncome,
		TotalExpenses:    js.TotalExpenses,
		Balance:          js.Balance,
		TransactionCount: js.TransactionCount,
		ClosedAt:         js.ClosedAt,
	}
	return nil
}
