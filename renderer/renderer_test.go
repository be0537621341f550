package renderer

import (
	"strings"
	"testing"
	"time"

	"github.com/etnz/pocket"
	"github.com/etnz/pocket/date"
)

var (
	now = time.Date(2025, 4, 10, 12, 0, 0, 0, time.UTC)
	apr = date.Month{Year: 2025, Month: time.April}
)

func contains(t *testing.T, got string, want ...string) {
	t.Helper()
	if strings.HasPrefix(got, "error ") {
		t.Fatalf("rendering failed: %s", got)
	}
	for _, w := range want {
		if !strings.Contains(got, w) {
			t.Errorf("output does not contain %q:\n%s", w, got)
		}
	}
}

func TestRenderMonth(t *testing.T) {
	txs := []pocket.Transaction{
		{ID: "t1", Date: date.MustParse("2025-04-01"), Type: pocket.Income, Description: "Nómina", Amount: pocket.M(2000, "EUR"), Category: "Salario"},
		{ID: "t2", Date: date.MustParse("2025-04-03"), Type: pocket.Expense, Description: "Cena | amigos", Amount: pocket.M(45.5, "EUR")},
	}
	s := pocket.Summarize(apr, txs, "EUR")
	got := RenderMonth(Month{Summary: s, Transactions: txs, Now: now})
	contains(t, got,
		"# 2025-04",
		"| "+s.TotalIncome.String()+" | "+s.TotalExpenses.String()+" | "+s.Balance.SignedString()+" | 2 |",
		"| 2025-04-03 | Cena \\| amigos | - | "+txs[1].Signed().SignedString()+" | t2 |",
	)
	if strings.Contains(got, "Closed") {
		t.Errorf("open month rendered as closed:\n%s", got)
	}

	snap := pocket.MonthlySnapshot{Month: apr.Prev(), TotalIncome: pocket.M(10, "EUR"), TotalExpenses: pocket.M(0, "EUR"), Balance: pocket.M(10, "EUR"), TransactionCount: 1, ClosedAt: now.Add(-72 * time.Hour)}
	got = RenderMonth(Month{
		Summary: pocket.MonthlySummary{Month: snap.Month, TotalIncome: snap.TotalIncome, TotalExpenses: snap.TotalExpenses, Balance: snap.Balance, TransactionCount: 1},
		Closed:  &snap,
		Now:     now,
	})
	contains(t, got, "# 2025-03", "Closed 3 days ago")
	if strings.Contains(got, "| Date |") {
		t.Errorf("closed month lists transactions:\n%s", got)
	}
}

func TestRenderTransactions_Empty(t *testing.T) {
	if got := RenderTransactions(nil); strings.TrimSpace(got) != "No transactions." {
		t.Errorf("RenderTransactions(nil) = %q, want %q", got, "No transactions.")
	}
}

func TestRenderPositions(t *testing.T) {
	ps := pocket.Positions([]pocket.PortfolioTx{
		{Date: date.MustParse("2025-04-01"), Asset: "Apple", Symbol: "AAPL", Category: pocket.Stock, Price: pocket.M(100, "EUR"), Quantity: pocket.Q(10)},
		{Date: date.MustParse("2025-04-02"), Asset: "Apple", Symbol: "AAPL", Category: pocket.Stock, Price: pocket.M(200, "EUR"), Quantity: pocket.Q(5)},
	})
	got := RenderPositions(ps, "EUR")
	contains(t, got, "| Apple | AAPL | accion | 15 |", "Total invested: **"+pocket.M(2000, "EUR").String()+"**")

	if got := RenderPositions(nil, "EUR"); !strings.Contains(got, "No position.") {
		t.Errorf("RenderPositions(nil) = %q, want no position", got)
	}
}

func TestRenderLoans(t *testing.T) {
	loan := pocket.Loan{ID: "l1", Borrower: "Ana", Principal: pocket.M(1000, "EUR"), AnnualRate: 5, StartDate: date.MustParse("2024-04-10")}
	payments := []pocket.LoanPayment{{ID: "p1", LoanID: "l1", Date: date.MustParse("2025-01-01"), Amount: pocket.M(200, "EUR")}}
	s := pocket.Accrue(loan, payments, now)
	got := RenderLoans([]pocket.LoanStatus{s})
	contains(t, got,
		"## Ana",
		"at 5.00% on 2024-04-10, 365 days ago",
		"| "+s.AccruedInterest.String()+" | "+s.Received.String()+" | "+s.Outstanding.String()+" |",
		"| 2025-01-01 | "+pocket.M(200, "EUR").String()+" | p1 |",
	)
}

func TestRenderSnapshots(t *testing.T) {
	ss := []pocket.MonthlySnapshot{{Month: apr.Prev(), TotalIncome: pocket.M(1000, "EUR"), TotalExpenses: pocket.M(400, "EUR"), Balance: pocket.M(600, "EUR"), TransactionCount: 1234, ClosedAt: now.Add(-48 * time.Hour)}}
	contains(t, RenderSnapshots(ss, now), "| 2025-03 |", "| 1,234 | 2 days ago |")
	contains(t, RenderSnapshots(nil, now), "No closed month.")
}

func TestRenderAnalytics(t *testing.T) {
	ss := []pocket.MonthlySnapshot{
		{Month: date.Month{Year: 2025, Month: time.January}, TotalIncome: pocket.M(1000, "EUR"), TotalExpenses: pocket.M(500, "EUR"), Balance: pocket.M(500, "EUR")},
		{Month: date.Month{Year: 2025, Month: time.February}, TotalIncome: pocket.M(1000, "EUR"), TotalExpenses: pocket.M(900, "EUR"), Balance: pocket.M(100, "EUR")},
	}
	a := pocket.Analyze(ss, "EUR")
	contains(t, RenderAnalytics(a), "out of 2", "Best month: 2025-01", "Worst month: 2025-02", "| 2025 | 2 |", a.SavingsRate.String())
	contains(t, RenderAnalytics(pocket.Analyze(nil, "EUR")), "No closed month yet.")
}

func TestRenderNotes(t *testing.T) {
	ns := []pocket.Note{
		{ID: "n1", Title: "Seguro", Content: "Renovar", ReminderDate: date.MustParse("2025-05-01"), UpdatedAt: now.Add(-time.Hour)},
		{ID: "n2", Content: "Sin título", UpdatedAt: now},
	}
	got := RenderNotes(ns, now)
	contains(t, got, "## Seguro", "Reminder on 2025-05-01.", "## Note n2", "Sin título")
}

func TestHTML(t *testing.T) {
	got, err := HTML(RenderTransactions([]pocket.Transaction{{ID: "t1", Date: date.MustParse("2025-04-01"), Type: pocket.Expense, Description: "Pan", Amount: pocket.M(1, "EUR")}}))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "<table>") || !strings.Contains(got, "<td>Pan</td>") {
		t.Errorf("HTML() = %s, want a table", got)
	}
}
