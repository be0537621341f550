package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/etnz/pocket"
	"github.com/etnz/pocket/date"
)

func openTest(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "pocket.db"), "EUR")
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func tx(id, on string, kind pocket.Kind, amount float64) pocket.Transaction {
	return pocket.Transaction{
		ID:          pocket.ID(id),
		Date:        date.MustParse(on),
		Type:        kind,
		Description: "tx " + id,
		Amount:      pocket.M(amount, "EUR"),
		CreatedAt:   time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pocket.db")
	db, err := Open(path, "EUR")
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if err := db.SetSetting("k", "v"); err != nil {
		t.Fatalf("SetSetting() failed: %v", err)
	}
	db.Close()

	// migrations are already applied
	db, err = Open(path, "EUR")
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer db.Close()
	got, ok, err := db.Setting("k")
	if err != nil || !ok || got != "v" {
		t.Errorf("Setting(k) = %q, %v, %v, want %q, true, nil", got, ok, err, "v")
	}
}

func TestTransactions(t *testing.T) {
	db := openTest(t)
	if err := db.InsertTransactions(
		tx("a", "2025-01-31", pocket.Expense, 10),
		tx("b", "2025-02-01", pocket.Income, 1200.5),
		tx("c", "2025-02-15", pocket.Expense, 30.25),
	); err != nil {
		t.Fatalf("InsertTransactions() failed: %v", err)
	}

	feb := date.Month{Year: 2025, Month: time.February}
	got, err := db.Transactions(feb.Range())
	if err != nil {
		t.Fatalf("Transactions() failed: %v", err)
	}
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "c" {
		t.Fatalf("Transactions(feb) = %v, want b and c", got)
	}
	if want := pocket.M(1200.5, "EUR"); !got[0].Amount.Equal(want) {
		t.Errorf("Amount = %v, want %v", got[0].Amount, want)
	}
	if got[0].Type != pocket.Income {
		t.Errorf("Type = %q, want %q", got[0].Type, pocket.Income)
	}

	all, err := db.Transactions(date.Range{})
	if err != nil {
		t.Fatalf("Transactions() failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("len(Transactions(all)) = %d, want 3", len(all))
	}

	if err := db.DeleteTransaction("a"); err != nil {
		t.Errorf("DeleteTransaction(a) failed: %v", err)
	}
	if err := db.DeleteTransaction("a"); !errors.Is(err, pocket.ErrNotFound) {
		t.Errorf("DeleteTransaction(a) twice = %v, want ErrNotFound", err)
	}
	if _, err := db.Transaction("a"); !errors.Is(err, pocket.ErrNotFound) {
		t.Errorf("Transaction(a) = %v, want ErrNotFound", err)
	}
}

func TestInsertTransactions_AllOrNothing(t *testing.T) {
	db := openTest(t)
	if err := db.InsertTransactions(tx("a", "2025-01-01", pocket.Expense, 1)); err != nil {
		t.Fatal(err)
	}
	// "a" is a duplicate key, "b" must not be inserted.
	if err := db.InsertTransactions(tx("b", "2025-01-02", pocket.Expense, 1), tx("a", "2025-01-03", pocket.Expense, 1)); err == nil {
		t.Fatal("InsertTransactions() with a duplicate succeeded, want error")
	}
	if _, err := db.Transaction("b"); !errors.Is(err, pocket.ErrNotFound) {
		t.Errorf("Transaction(b) = %v, want ErrNotFound", err)
	}
}

func TestCloseMonth(t *testing.T) {
	db := openTest(t)
	if err := db.InsertTransactions(
		tx("a", "2025-01-10", pocket.Income, 100),
		tx("b", "2025-01-20", pocket.Expense, 40),
		tx("c", "2025-02-01", pocket.Expense, 5),
	); err != nil {
		t.Fatal(err)
	}
	jan := date.Month{Year: 2025, Month: time.January}
	snap := pocket.MonthlySnapshot{
		Month:            jan,
		TotalIncome:      pocket.M(100, "EUR"),
		TotalExpenses:    pocket.M(40, "EUR"),
		Balance:          pocket.M(60, "EUR"),
		TransactionCount: 2,
		ClosedAt:         time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC),
	}
	if err := db.CloseMonth(snap, []pocket.ID{"a", "b"}); err != nil {
		t.Fatalf("CloseMonth() failed: %v", err)
	}

	got, ok, err := db.Snapshot(jan)
	if err != nil || !ok {
		t.Fatalf("Snapshot(jan) = %v, %v, want a snapshot", ok, err)
	}
	if !got.Balance.Equal(snap.Balance) || got.TransactionCount != 2 || !got.ClosedAt.Equal(snap.ClosedAt) {
		t.Errorf("Snapshot(jan) = %+v, want %+v", got, snap)
	}
	left, _ := db.Transactions(date.Range{})
	if len(left) != 1 || left[0].ID != "c" {
		t.Errorf("transactions after closing = %v, want only c", left)
	}

	// second close of the same month changes nothing
	if err := db.InsertTransactions(tx("d", "2025-01-31", pocket.Expense, 1)); err != nil {
		t.Fatal(err)
	}
	err = db.CloseMonth(snap, []pocket.ID{"d"})
	if !errors.Is(err, pocket.ErrMonthClosed) {
		t.Errorf("CloseMonth() twice = %v, want ErrMonthClosed", err)
	}
	if _, err := db.Transaction("d"); err != nil {
		t.Errorf("Transaction(d) after a failed close = %v, want it kept", err)
	}
	snapshots, _ := db.Snapshots()
	if len(snapshots) != 1 {
		t.Errorf("len(Snapshots()) = %d, want 1", len(snapshots))
	}
}

func TestLoans(t *testing.T) {
	db := openTest(t)
	loan := pocket.Loan{ID: "l1", Borrower: "Ana", Principal: pocket.M(1000, "EUR"), AnnualRate: 5, StartDate: date.MustParse("2025-03-01")}
	if err := db.InsertLoan(loan); err != nil {
		t.Fatalf("InsertLoan() failed: %v", err)
	}
	if err := db.InsertPayment(pocket.LoanPayment{ID: "p1", LoanID: "nope", Date: date.MustParse("2025-03-02"), Amount: pocket.M(1, "EUR")}); !errors.Is(err, pocket.ErrNotFound) {
		t.Errorf("InsertPayment(unknown loan) = %v, want ErrNotFound", err)
	}
	if err := db.InsertPayment(pocket.LoanPayment{ID: "p1", LoanID: "l1", Date: date.MustParse("2025-03-02"), Amount: pocket.M(200, "EUR")}); err != nil {
		t.Fatalf("InsertPayment() failed: %v", err)
	}

	got, err := db.Loan("l1")
	if err != nil {
		t.Fatalf("Loan() failed: %v", err)
	}
	if got.Borrower != "Ana" || !got.AnnualRate.Equal(5) || !got.Principal.Equal(loan.Principal) {
		t.Errorf("Loan() = %+v, want %+v", got, loan)
	}

	if err := db.DeleteLoan("l1"); err != nil {
		t.Fatalf("DeleteLoan() failed: %v", err)
	}
	payments, err := db.Payments()
	if err != nil {
		t.Fatal(err)
	}
	if len(payments) != 0 {
		t.Errorf("payments after DeleteLoan() = %v, want none", payments)
	}
}

func TestOutbox(t *testing.T) {
	db := openTest(t)
	t0 := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	db.now = func() time.Time { return t0 }

	in := pocket.Intent{Op: pocket.OpInsert, Table: pocket.TableNotes, Payload: []byte(`{"content":"x"}`)}
	if err := db.Enqueue(in, in); err != nil {
		t.Fatalf("Enqueue() failed: %v", err)
	}
	due, err := db.Outbox(t0, 10)
	if err != nil {
		t.Fatalf("Outbox() failed: %v", err)
	}
	if len(due) != 2 {
		t.Fatalf("len(Outbox()) = %d, want 2", len(due))
	}
	if got := string(due[0].Intent.Payload); got != `{"content":"x"}` {
		t.Errorf("Payload = %s, want the queued one", got)
	}

	if err := db.Retry(due[0].ID, "boom", t0.Add(time.Minute)); err != nil {
		t.Fatal(err)
	}
	if err := db.Delivered(due[1].ID); err != nil {
		t.Fatal(err)
	}
	if due, _ := db.Outbox(t0, 10); len(due) != 0 {
		t.Errorf("Outbox(t0) after retry = %v, want nothing due", due)
	}
	later, _ := db.Outbox(t0.Add(time.Minute), 10)
	if len(later) != 1 || later[0].Attempts != 1 || later[0].LastError != "boom" {
		t.Errorf("Outbox(t0+1m) = %+v, want one entry with 1 attempt", later)
	}
	if n, _ := db.Pending(); n != 1 {
		t.Errorf("Pending() = %d, want 1", n)
	}
}

func TestWipe(t *testing.T) {
	db := openTest(t)
	if empty, _ := db.IsEmpty(); !empty {
		t.Fatal("new database is not empty")
	}
	if err := db.InsertNotes(pocket.Note{ID: "n", Content: "hello"}); err != nil {
		t.Fatal(err)
	}
	if err := db.SetSetting(pocket.SettingDeviceID, "dev"); err != nil {
		t.Fatal(err)
	}
	if empty, _ := db.IsEmpty(); empty {
		t.Error("IsEmpty() = true with a note")
	}
	if err := db.Wipe(); err != nil {
		t.Fatalf("Wipe() failed: %v", err)
	}
	if empty, _ := db.IsEmpty(); !empty {
		t.Error("IsEmpty() = false after Wipe()")
	}
	if got, ok, _ := db.Setting(pocket.SettingDeviceID); !ok || got != "dev" {
		t.Errorf("device id after Wipe() = %q, %v, want it kept", got, ok)
	}
}
