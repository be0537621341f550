package pocket

import (
	"encoding/json"
	"time"

	"github.com/etnz/pocket/date"
)

// Store persists the records of a book.
//
// Methods that target a single record by its identifier return an error
// wrapping ErrNotFound when it does not exist.
type Store interface {
	Transactions(r date.Range) ([]Transaction, error) // sorted by date then creation
	Transaction(id ID) (Transaction, error)
	InsertTransactions(txs ...Transaction) error
	DeleteTransaction(id ID) error
	ReplaceTransactions(txs []Transaction) error

	Notes() ([]Note, error) // most recent first
	Note(id ID) (Note, error)
	InsertNotes(notes ...Note) error
	UpdateNote(n Note) error
	DeleteNote(id ID) error
	ReplaceNotes(notes []Note) error

	Portfolio() ([]PortfolioTx, error) // sorted by date then creation
	PortfolioTx(id ID) (PortfolioTx, error)
	InsertPortfolio(entries ...PortfolioTx) error
	DeletePortfolioTx(id ID) error
	ReplacePortfolio(entries []PortfolioTx) error

	Loans() ([]Loan, error) // sorted by start date
	Loan(id ID) (Loan, error)
	InsertLoan(l Loan) error
	DeleteLoan(id ID) error // and its payments
	Payments() ([]LoanPayment, error)
	Payment(id ID) (LoanPayment, error)
	InsertPayment(p LoanPayment) error
	DeletePayment(id ID) error
	ReplaceLoans(loans []Loan, payments []LoanPayment) error

	Snapshot(m date.Month) (MonthlySnapshot, bool, error)
	Snapshots() ([]MonthlySnapshot, error) // chronological
	// CloseMonth inserts s and deletes the transactions ids atomically.
	// It fails if a snapshot of the same month already exists.
	CloseMonth(s MonthlySnapshot, ids []ID) error

	Setting(key string) (string, bool, error)
	SetSetting(key, value string) error
	DeleteSetting(key string) error

	Enqueue(intents ...Intent) error
	Outbox(now time.Time, limit int) ([]OutboxEntry, error) // due entries, oldest first
	Delivered(id int64) error
	Retry(id int64, lastErr string, next time.Time) error
	Pending() (int, error)

	IsEmpty() (bool, error) // no transaction, note, portfolio entry, loan nor payment
	Wipe() error            // records, snapshots and outbox, settings are kept
}

// Op is the operation of a replication intent.
type Op string

const (
	OpInsert Op = "insert"
	OpDelete Op = "delete"
)

// Remote table names.
const (
	TableTransactions = "transactions"
	TableNotes        = "notes"
	TablePortfolio    = "portfolio"
	TableLoans        = "loans"
	TablePayments     = "loan_payments"
)

// Tables lists the mirrored tables.
var Tables = []string{TableTransactions, TableNotes, TablePortfolio, TableLoans, TablePayments}

// Intent is a local write to replicate on the remote mirror.
// Payload is the JSON encoding of the record, a [PaymentRecord] for payments.
type Intent struct {
	Op      Op
	Table   string
	Payload json.RawMessage
}

// NewIntent encodes record into an intent.
func NewIntent(op Op, table string, record any) (Intent, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return Intent{}, err
	}
	return Intent{Op: op, Table: table, Payload: data}, nil
}

// OutboxEntry is a queued intent and its delivery state.
type OutboxEntry struct {
	ID            int64
	Intent        Intent
	Attempts      int
	NextAttemptAt time.Time
	LastError     string
	CreatedAt     time.Time
}
