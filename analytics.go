package pocket

import (
	"slices"

	"github.com/shopspring/decimal"
)

// YearTotal sums the snapshots of a year.
type YearTotal struct {
	Year          int   `json:"year"`
	Months        int   `json:"months"`
	TotalIncome   Money `json:"totalIncome"`
	TotalExpenses Money `json:"totalExpenses"`
	Balance       Money `json:"balance"`
}

// Analytics are the indicators computed over closed months.
type Analytics struct {
	Months          int             `json:"months"` // number of closed months
	AverageIncome   Money           `json:"averageIncome"`
	AverageExpenses Money           `json:"averageExpenses"`
	AverageBalance  Money           `json:"averageBalance"` // averages over the last three closed months
	Best            MonthlySnapshot `json:"best"`
	Worst           MonthlySnapshot `json:"worst"`
	SavingsRate     Percent         `json:"savingsRate"` // 0 when there is no average income
	Years           []YearTotal     `json:"years"`
}

// Analyze computes the indicators of the snapshots.
func Analyze(snapshots []MonthlySnapshot, currency string) Analytics {
	a := Analytics{
		Months:          len(snapshots),
		AverageIncome:   M(0, currency),
		AverageExpenses: M(0, currency),
		AverageBalance:  M(0, currency),
	}
	if len(snapshots) == 0 {
		return a
	}
	sorted := slices.Clone(snapshots)
	slices.SortFunc(sorted, func(x, y MonthlySnapshot) int {
		switch {
		case x.Month.Before(y.Month):
			return -1
		case y.Month.Before(x.Month):
			return 1
		}
		return 0
	})

	last := sorted[max(0, len(sorted)-3):]
	for _, s := range last {
		a.AverageIncome = a.AverageIncome.Add(s.TotalIncome)
		a.AverageExpenses = a.AverageExpenses.Add(s.TotalExpenses)
		a.AverageBalance = a.AverageBalance.Add(s.Balance)
	}
	n := Q(len(last))
	a.AverageIncome = a.AverageIncome.Div(n)
	a.AverageExpenses = a.AverageExpenses.Div(n)
	a.AverageBalance = a.AverageBalance.Div(n)

	if a.AverageIncome.IsPositive() {
		ratio := a.AverageExpenses.Decimal().Div(a.AverageIncome.Decimal())
		rate := decimal.NewFromInt(1).Sub(ratio).Mul(decimal.NewFromInt(100))
		a.SavingsRate = Percent(rate.InexactFloat64())
	}

	a.Best, a.Worst = sorted[0], sorted[0]
	for _, s := range sorted {
		if s.Balance.GreaterThan(a.Best.Balance) {
			a.Best = s
		}
		if s.Balance.LessThan(a.Worst.Balance) {
			a.Worst = s
		}

		if len(a.Years) == 0 || a.Years[len(a.Years)-1].Year != s.Month.Year {
			a.Years = append(a.Years, YearTotal{
				Year:          s.Month.Year,
				TotalIncome:   M(0, currency),
				TotalExpenses: M(0, currency),
				Balance:       M(0, currency),
			})
		}
		y := &a.Years[len(a.Years)-1]
		y.Months++
		y.TotalIncome = y.TotalIncome.Add(s.TotalIncome)
		y.TotalExpenses = y.TotalExpenses.Add(s.TotalExpenses)
		y.Balance = y.Balance.Add(s.Balance)
	}
	return a
}
