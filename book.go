package pocket

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/etnz/pocket/date"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

// SettingDeviceID is the setting key of the identifier partitioning this book's remote backup.
const SettingDeviceID = "deviceID"

const positionsKey = "positions"

// Fetcher reads back the remote copy of a device's records.
type Fetcher interface {
	Fetch(ctx context.Context, deviceID string) (Dataset, error)
}

// Book is the personal finance book. Every user operation goes through it:
// it applies the month edit policy, writes to the store and queues the
// replication intents for the remote mirror.
type Book struct {
	store    Store
	currency string
	log      logrus.FieldLogger
	memo     *cache.Cache

	mu       sync.RWMutex
	clock    Clock
	fixClock bool // clock given by the caller, the simulated now setting is ignored
}

// Option configures a Book.
type Option func(*Book)

// WithClock forces the clock of the book.
func WithClock(c Clock) Option {
	return func(b *Book) { b.clock, b.fixClock = c, true }
}

// WithCurrency sets the currency of every amount in the book.
func WithCurrency(currency string) Option {
	return func(b *Book) { b.currency = currency }
}

// WithLogger sets the logger used for background events.
func WithLogger(l logrus.FieldLogger) Option {
	return func(b *Book) { b.log = l }
}

// NewBook returns a book over s. Unless a clock is given, it runs on the
// simulated now stored in s, or on the real clock.
func NewBook(s Store, opts ...Option) (*Book, error) {
	discard := logrus.New()
	discard.SetOutput(io.Discard)
	b := &Book{
		store:    s,
		currency: DefaultCurrency,
		log:      discard,
		memo:     cache.New(cache.NoExpiration, 0),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.fixClock {
		return b, nil
	}

	v, ok, err := s.Setting(SettingSimulatedNow)
	if err != nil {
		return nil, fmt.Errorf("failed to read the simulated now: %w", err)
	}
	b.clock = ClockFromSetting(v)
	if _, isReal := b.clock.(RealClock); ok && isReal {
		b.log.WithField("value", v).Warn("ignoring invalid simulated now")
	}
	return b, nil
}

// Open runs the startup tasks: the restore of an empty book from f, if not
// nil, then the closing of the previous month. Restore failures are logged.
func (b *Book) Open(ctx context.Context, f Fetcher) error {
	if f != nil {
		if _, err := b.RestoreIfEmpty(ctx, f); err != nil {
			b.log.WithError(err).Warn("restore from the remote backup failed")
		}
	}
	if _, _, err := b.ClosePreviousMonth(); err != nil {
		return err
	}
	return nil
}

// Now returns the current time of the book.
func (b *Book) Now() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.clock.Now()
}

// Today returns the current date of the book.
func (b *Book) Today() date.Date { return date.Of(b.Now()) }

// Currency returns the currency of the book.
func (b *Book) Currency() string { return b.currency }

// Store returns the underlying store.
func (b *Book) Store() Store { return b.store }

func (b *Book) setClock(c Clock) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clock = c
}

// amount attaches the book currency to m, or fails if m is in another currency.
func (b *Book) amount(m Money) (Money, error) {
	m = m.In(b.currency)
	if m.Currency() != b.currency {
		return Money{}, fmt.Errorf("amount %v is not in %s: %w", m, b.currency, ErrInvalid)
	}
	return m, nil
}

// enqueue queues the replication of record. Failures are logged, the local write is done.
func (b *Book) enqueue(op Op, table string, record any) {
	log := b.log.WithFields(logrus.Fields{"op": op, "table": table})
	intent, err := NewIntent(op, table, record)
	if err != nil {
		log.WithError(err).Error("cannot encode replication intent")
		return
	}
	if err := b.store.Enqueue(intent); err != nil {
		log.WithError(err).Error("cannot queue replication intent")
	}
}

// Transactions

func (b *Book) newTransaction(tx Transaction, now time.Time) (Transaction, error) {
	if tx.ID == "" {
		tx.ID = NewID()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = now
	}
	tx.Description = strings.TrimSpace(tx.Description)
	tx.Category = strings.TrimSpace(tx.Category)
	var err error
	if tx.Amount, err = b.amount(tx.Amount); err != nil {
		return Transaction{}, err
	}
	return tx, tx.Validate()
}

// AddTransaction records tx. Its date must be in the current month.
func (b *Book) AddTransaction(tx Transaction) (Transaction, error) {
	txs, err := b.AddTransactions(tx)
	if err != nil {
		return Transaction{}, err
	}
	return txs[0], nil
}

// AddTransactions records all txs, or none if one of them is invalid or not in the current month.
func (b *Book) AddTransactions(txs ...Transaction) ([]Transaction, error) {
	now := b.Now()
	out := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		tx, err := b.newTransaction(tx, now)
		if err != nil {
			return nil, err
		}
		if err := checkEditable("transaction", tx.Date, now); err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, b.insertTransactions(out)
}

// Backfill records txs whatever their date, as long as their month has no
// snapshot yet. It is the restore path for history coming from outside the
// book, like a bank statement.
func (b *Book) Backfill(txs ...Transaction) ([]Transaction, error) {
	now := b.Now()
	out := make([]Transaction, 0, len(txs))
	closed := map[date.Month]bool{}
	for _, tx := range txs {
		tx, err := b.newTransaction(tx, now)
		if err != nil {
			return nil, err
		}
		month := date.MonthOf(tx.Date)
		isClosed, seen := closed[month]
		if !seen {
			_, isClosed, err = b.store.Snapshot(month)
			if err != nil {
				return nil, fmt.Errorf("failed to read the snapshot of %s: %w", month, err)
			}
			closed[month] = isClosed
		}
		if isClosed {
			return nil, fmt.Errorf("cannot backfill transaction of %s: %s is already closed: %w", tx.Date, month, ErrMonthClosed)
		}
		out = append(out, tx)
	}
	return out, b.insertTransactions(out)
}

func (b *Book) insertTransactions(txs []Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	if err := b.store.InsertTransactions(txs...); err != nil {
		return fmt.Errorf("failed to add transactions: %w", err)
	}
	for _, tx := range txs {
		b.enqueue(OpInsert, TableTransactions, tx)
	}
	return nil
}

// DeleteTransaction deletes a transaction of the current month.
func (b *Book) DeleteTransaction(id ID) error {
	tx, err := b.store.Transaction(id)
	if err != nil {
		return err
	}
	if err := checkEditable("transaction", tx.Date, b.Now()); err != nil {
		return err
	}
	if err := b.store.DeleteTransaction(id); err != nil {
		return fmt.Errorf("failed to delete transaction %s: %w", id, err)
	}
	b.enqueue(OpDelete, TableTransactions, tx)
	return nil
}

// Transactions returns the transactions in r, the zero range means all.
func (b *Book) Transactions(r date.Range) ([]Transaction, error) {
	return b.store.Transactions(r)
}

// MonthSummary totals month, from its snapshot if the month is closed.
func (b *Book) MonthSummary(month date.Month) (MonthlySummary, error) {
	s, ok, err := b.store.Snapshot(month)
	if err != nil {
		return MonthlySummary{}, err
	}
	if ok {
		return MonthlySummary{
			Month:            s.Month,
			TotalIncome:      s.TotalIncome,
			TotalExpenses:    s.TotalExpenses,
			Balance:          s.Balance,
			TransactionCount: s.TransactionCount,
		}, nil
	}
	txs, err := b.store.Transactions(month.Range())
	if err != nil {
		return MonthlySummary{}, err
	}
	return Summarize(month, txs, b.currency), nil
}

// Notes

// Notes returns all notes, most recent first.
func (b *Book) Notes() ([]Note, error) { return b.store.Notes() }

// AddNote records a note.
func (b *Book) AddNote(n Note) (Note, error) {
	n = n.normalize()
	if err := n.Validate(); err != nil {
		return Note{}, err
	}
	if n.ID == "" {
		n.ID = NewID()
	}
	now := b.Now()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
	n.UpdatedAt = now
	if err := b.store.InsertNotes(n); err != nil {
		return Note{}, fmt.Errorf("failed to add note: %w", err)
	}
	b.enqueue(OpInsert, TableNotes, n)
	return n, nil
}

// UpdateNote replaces the title, content and reminder of the note n.ID.
func (b *Book) UpdateNote(n Note) (Note, error) {
	old, err := b.store.Note(n.ID)
	if err != nil {
		return Note{}, err
	}
	n = n.normalize()
	if err := n.Validate(); err != nil {
		return Note{}, err
	}
	n.CreatedAt = old.CreatedAt
	n.UpdatedAt = b.Now()
	if err := b.store.UpdateNote(n); err != nil {
		return Note{}, fmt.Errorf("failed to update note %s: %w", n.ID, err)
	}
	// the remote copy has no identifier, it is replaced.
	b.enqueue(OpDelete, TableNotes, old)
	b.enqueue(OpInsert, TableNotes, n)
	return n, nil
}

// DeleteNote deletes a note.
func (b *Book) DeleteNote(id ID) error {
	n, err := b.store.Note(id)
	if err != nil {
		return err
	}
	if err := b.store.DeleteNote(id); err != nil {
		return fmt.Errorf("failed to delete note %s: %w", id, err)
	}
	b.enqueue(OpDelete, TableNotes, n)
	return nil
}

// Portfolio

// Portfolio returns all portfolio entries.
func (b *Book) Portfolio() ([]PortfolioTx, error) { return b.store.Portfolio() }

// AddPortfolioTx records a buy or a sell dated in the current month.
func (b *Book) AddPortfolioTx(p PortfolioTx) (PortfolioTx, error) {
	now := b.Now()
	if p.ID == "" {
		p.ID = NewID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.Category == "" {
		p.Category = Other
	}
	p.Asset, p.Symbol = strings.TrimSpace(p.Asset), strings.ToUpper(strings.TrimSpace(p.Symbol))
	var err error
	if p.Price, err = b.amount(p.Price); err != nil {
		return PortfolioTx{}, err
	}
	if err := p.Validate(); err != nil {
		return PortfolioTx{}, err
	}
	if err := checkEditable("portfolio entry", p.Date, now); err != nil {
		return PortfolioTx{}, err
	}
	if err := b.store.InsertPortfolio(p); err != nil {
		return PortfolioTx{}, fmt.Errorf("failed to add portfolio entry: %w", err)
	}
	b.memo.Delete(positionsKey)
	b.enqueue(OpInsert, TablePortfolio, p)
	return p, nil
}

// DeletePortfolioTx deletes a portfolio entry of the current month.
func (b *Book) DeletePortfolioTx(id ID) error {
	p, err := b.store.PortfolioTx(id)
	if err != nil {
		return err
	}
	if err := checkEditable("portfolio entry", p.Date, b.Now()); err != nil {
		return err
	}
	if err := b.store.DeletePortfolioTx(id); err != nil {
		return fmt.Errorf("failed to delete portfolio entry %s: %w", id, err)
	}
	b.memo.Delete(positionsKey)
	b.enqueue(OpDelete, TablePortfolio, p)
	return nil
}

// Positions returns the current positions of the portfolio.
func (b *Book) Positions() ([]Position, error) {
	if v, ok := b.memo.Get(positionsKey); ok {
		return slices.Clone(v.([]Position)), nil
	}
	entries, err := b.store.Portfolio()
	if err != nil {
		return nil, err
	}
	positions := Positions(entries)
	b.memo.Set(positionsKey, positions, cache.DefaultExpiration)
	return slices.Clone(positions), nil
}

// Loans

// AddLoan records a loan starting in the current month.
func (b *Book) AddLoan(l Loan) (Loan, error) {
	now := b.Now()
	if l.ID == "" {
		l.ID = NewID()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	l.Borrower, l.Notes = strings.TrimSpace(l.Borrower), strings.TrimSpace(l.Notes)
	var err error
	if l.Principal, err = b.amount(l.Principal); err != nil {
		return Loan{}, err
	}
	if err := l.Validate(); err != nil {
		return Loan{}, err
	}
	if err := checkEditable("loan", l.StartDate, now); err != nil {
		return Loan{}, err
	}
	if err := b.store.InsertLoan(l); err != nil {
		return Loan{}, fmt.Errorf("failed to add loan: %w", err)
	}
	b.enqueue(OpInsert, TableLoans, l)
	return l, nil
}

// DeleteLoan deletes a loan started in the current month, and its payments.
func (b *Book) DeleteLoan(id ID) error {
	l, err := b.store.Loan(id)
	if err != nil {
		return err
	}
	if err := checkEditable("loan", l.StartDate, b.Now()); err != nil {
		return err
	}
	payments, err := b.store.Payments()
	if err != nil {
		return err
	}
	if err := b.store.DeleteLoan(id); err != nil {
		return fmt.Errorf("failed to delete loan %s: %w", id, err)
	}
	for _, p := range payments {
		if p.LoanID == id {
			b.enqueue(OpDelete, TablePayments, PaymentRecord{LoanPayment: p, Borrower: l.Borrower, LoanStart: l.StartDate})
		}
	}
	b.enqueue(OpDelete, TableLoans, l)
	return nil
}

// Loans returns the status of every loan now.
func (b *Book) Loans() ([]LoanStatus, error) {
	loans, err := b.store.Loans()
	if err != nil {
		return nil, err
	}
	payments, err := b.store.Payments()
	if err != nil {
		return nil, err
	}
	now := b.Now()
	statuses := make([]LoanStatus, 0, len(loans))
	for _, l := range loans {
		statuses = append(statuses, Accrue(l, payments, now))
	}
	return statuses, nil
}

// Loan returns the status of the loan id now.
func (b *Book) Loan(id ID) (LoanStatus, error) {
	l, err := b.store.Loan(id)
	if err != nil {
		return LoanStatus{}, err
	}
	payments, err := b.store.Payments()
	if err != nil {
		return LoanStatus{}, err
	}
	return Accrue(l, payments, b.Now()), nil
}

// AddPayment records a payment dated in the current month on an existing loan.
func (b *Book) AddPayment(p LoanPayment) (LoanPayment, error) {
	l, err := b.store.Loan(p.LoanID)
	if err != nil {
		return LoanPayment{}, fmt.Errorf("payment on loan %q: %w", p.LoanID, err)
	}
	now := b.Now()
	if p.ID == "" {
		p.ID = NewID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.Amount, err = b.amount(p.Amount); err != nil {
		return LoanPayment{}, err
	}
	if err := p.Validate(); err != nil {
		return LoanPayment{}, err
	}
	if err := checkEditable("payment", p.Date, now); err != nil {
		return LoanPayment{}, err
	}
	if err := b.store.InsertPayment(p); err != nil {
		return LoanPayment{}, fmt.Errorf("failed to add payment: %w", err)
	}
	b.enqueue(OpInsert, TablePayments, PaymentRecord{LoanPayment: p, Borrower: l.Borrower, LoanStart: l.StartDate})
	return p, nil
}

// DeletePayment deletes a payment dated in the current month.
func (b *Book) DeletePayment(id ID) error {
	p, err := b.store.Payment(id)
	if err != nil {
		return err
	}
	if err := checkEditable("payment", p.Date, b.Now()); err != nil {
		return err
	}
	l, err := b.store.Loan(p.LoanID)
	if err != nil {
		return err
	}
	if err := b.store.DeletePayment(id); err != nil {
		return fmt.Errorf("failed to delete payment %s: %w", id, err)
	}
	b.enqueue(OpDelete, TablePayments, PaymentRecord{LoanPayment: p, Borrower: l.Borrower, LoanStart: l.StartDate})
	return nil
}

// Month closing

// ClosePreviousMonth closes the month before the current one, see [Book.CloseMonth].
func (b *Book) ClosePreviousMonth() (MonthlySnapshot, bool, error) {
	return b.closeMonth(date.ThisMonth(b.Now()).Prev())
}

// CloseMonth folds the transactions of a past month into its snapshot and
// purges them. It reports whether a snapshot was created.
//
// If the month is already closed, the transactions left in it are purged.
// A month without transactions gets no snapshot.
func (b *Book) CloseMonth(month date.Month) (MonthlySnapshot, bool, error) {
	if current := date.ThisMonth(b.Now()); !month.Before(current) {
		return MonthlySnapshot{}, false, fmt.Errorf("month %s is not over yet: %w", month, ErrInvalid)
	}
	return b.closeMonth(month)
}

func (b *Book) closeMonth(month date.Month) (MonthlySnapshot, bool, error) {
	log := b.log.WithField("month", month.String())
	txs, err := b.store.Transactions(month.Range())
	if err != nil {
		return MonthlySnapshot{}, false, fmt.Errorf("failed to read transactions of %s: %w", month, err)
	}

	existing, closed, err := b.store.Snapshot(month)
	if err != nil {
		return MonthlySnapshot{}, false, fmt.Errorf("failed to read snapshot of %s: %w", month, err)
	}
	if closed {
		return existing, false, b.purge(log, txs)
	}

	s, ids, ok := CloseMonth(month, txs, b.Now(), b.currency)
	if !ok {
		return MonthlySnapshot{}, false, nil
	}
	err = b.store.CloseMonth(s, ids)
	if errors.Is(err, ErrMonthClosed) {
		// closed concurrently
		existing, _, err := b.store.Snapshot(month)
		return existing, false, err
	}
	if err != nil {
		return MonthlySnapshot{}, false, fmt.Errorf("failed to close %s: %w", month, err)
	}
	log.WithFields(logrus.Fields{"transactions": len(ids), "balance": s.Balance.String()}).Info("month closed")
	return s, true, nil
}

// purge deletes transactions left in a closed month.
func (b *Book) purge(log logrus.FieldLogger, txs []Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	log.WithField("transactions", len(txs)).Warn("purging transactions left in a closed month")
	for _, tx := range txs {
		if err := b.store.DeleteTransaction(tx.ID); err != nil && !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("failed to purge transaction %s: %w", tx.ID, err)
		}
	}
	return nil
}

// Snapshots returns the snapshots of every closed month, in chronological order.
func (b *Book) Snapshots() ([]MonthlySnapshot, error) { return b.store.Snapshots() }

// Snapshot returns the snapshot of month, ok is false while the month is open.
func (b *Book) Snapshot(month date.Month) (s MonthlySnapshot, ok bool, err error) {
	return b.store.Snapshot(month)
}

// Analytics computes the indicators over closed months.
func (b *Book) Analytics() (Analytics, error) {
	snapshots, err := b.store.Snapshots()
	if err != nil {
		return Analytics{}, err
	}
	return Analyze(snapshots, b.currency), nil
}

// Backup

// Export writes the transactions and notes of the book to w.
func (b *Book) Export(w io.Writer) error {
	txs, err := b.store.Transactions(date.Range{})
	if err != nil {
		return err
	}
	notes, err := b.store.Notes()
	if err != nil {
		return err
	}
	return Export(w, Backup{ExportedAt: b.Now(), Transactions: txs, Notes: notes})
}

// Import reads a backup from r and replaces the transactions and the notes
// with the ones it holds. A table whose array is absent is left untouched.
func (b *Book) Import(r io.Reader) error {
	backup, err := DecodeBackup(r)
	if err != nil {
		return err
	}
	now := b.Now()
	if backup.Transactions != nil {
		txs, err := b.restoredTransactions(backup.Transactions, now)
		if err != nil {
			return err
		}
		if err := b.store.ReplaceTransactions(txs); err != nil {
			return fmt.Errorf("failed to import transactions: %w", err)
		}
	}
	if backup.Notes != nil {
		if err := b.store.ReplaceNotes(restoredNotes(backup.Notes, now)); err != nil {
			return fmt.Errorf("failed to import notes: %w", err)
		}
	}
	return nil
}

func (b *Book) restoredTransactions(txs []Transaction, now time.Time) ([]Transaction, error) {
	out := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		tx, err := b.newTransaction(tx, now)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, nil
}

func restoredNotes(notes []Note, now time.Time) []Note {
	out := make([]Note, 0, len(notes))
	for _, n := range notes {
		n = n.normalize()
		if n.ID == "" {
			n.ID = NewID()
		}
		if n.CreatedAt.IsZero() {
			n.CreatedAt = now
		}
		if n.UpdatedAt.IsZero() {
			n.UpdatedAt = n.CreatedAt
		}
		out = append(out, n)
	}
	return out
}

// Restore replaces every table present in ds, one table at a time.
// Payments are attached to the restored loan with the same borrower and start date.
// Every table is attempted, the errors are joined.
func (b *Book) Restore(ds Dataset) error {
	now := b.Now()
	defer b.memo.Flush()

	var errs []error
	if len(ds.Transactions) > 0 {
		txs, err := b.restoredTransactions(ds.Transactions, now)
		if err == nil {
			err = b.store.ReplaceTransactions(txs)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to restore transactions: %w", err))
		}
	}
	if len(ds.Notes) > 0 {
		if err := b.store.ReplaceNotes(restoredNotes(ds.Notes, now)); err != nil {
			errs = append(errs, fmt.Errorf("failed to restore notes: %w", err))
		}
	}
	if len(ds.Portfolio) > 0 {
		if err := b.restorePortfolio(ds.Portfolio, now); err != nil {
			errs = append(errs, fmt.Errorf("failed to restore portfolio: %w", err))
		}
	}
	if len(ds.Loans) > 0 {
		if err := b.restoreLoans(ds.Loans, ds.Payments, now); err != nil {
			errs = append(errs, fmt.Errorf("failed to restore loans: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (b *Book) restorePortfolio(entries []PortfolioTx, now time.Time) error {
	out := make([]PortfolioTx, 0, len(entries))
	for _, p := range entries {
		if p.ID == "" {
			p.ID = NewID()
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		if p.Category == "" {
			p.Category = Other
		}
		var err error
		if p.Price, err = b.amount(p.Price); err != nil {
			return err
		}
		if err := p.Validate(); err != nil {
			return err
		}
		out = append(out, p)
	}
	return b.store.ReplacePortfolio(out)
}

func (b *Book) restoreLoans(loans []Loan, records []PaymentRecord, now time.Time) error {
	index := make(map[string]ID, len(loans))
	out := make([]Loan, 0, len(loans))
	for _, l := range loans {
		if l.ID == "" {
			l.ID = NewID()
		}
		if l.CreatedAt.IsZero() {
			l.CreatedAt = now
		}
		var err error
		if l.Principal, err = b.amount(l.Principal); err != nil {
			return err
		}
		if err := l.Validate(); err != nil {
			return err
		}
		index[l.Borrower+"|"+l.StartDate.String()] = l.ID
		out = append(out, l)
	}

	payments := make([]LoanPayment, 0, len(records))
	for _, r := range records {
		loanID, ok := index[r.Borrower+"|"+r.LoanStart.String()]
		if !ok {
			b.log.WithFields(logrus.Fields{"borrower": r.Borrower, "start": r.LoanStart.String()}).Warn("dropping payment of an unknown loan")
			continue
		}
		p := r.LoanPayment
		p.LoanID = loanID
		if p.ID == "" {
			p.ID = NewID()
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		var err error
		if p.Amount, err = b.amount(p.Amount); err != nil {
			return err
		}
		if err := p.Validate(); err != nil {
			return err
		}
		payments = append(payments, p)
	}
	return b.store.ReplaceLoans(out, payments)
}

// RestoreIfEmpty restores the remote copy of this device from f, only if the
// book holds no record at all. It reports whether something was restored.
func (b *Book) RestoreIfEmpty(ctx context.Context, f Fetcher) (bool, error) {
	empty, err := b.store.IsEmpty()
	if err != nil || !empty {
		return false, err
	}
	device, err := b.DeviceID()
	if err != nil {
		return false, err
	}
	// tables are fetched independently, restore whatever came back
	ds, fetchErr := f.Fetch(ctx, device)
	if ds.IsEmpty() {
		if fetchErr != nil {
			return false, fmt.Errorf("failed to fetch the backup of device %s: %w", device, fetchErr)
		}
		return false, nil
	}
	if fetchErr != nil {
		b.log.WithError(fetchErr).WithField("device", device).Warn("partial remote backup")
	}
	b.log.WithField("device", device).Info("restoring the remote backup")
	return true, errors.Join(b.Restore(ds), fetchErr)
}

// RestoreDevice replaces the book content with the remote copy of device.
func (b *Book) RestoreDevice(ctx context.Context, f Fetcher, device string) error {
	ds, err := f.Fetch(ctx, device)
	if err != nil {
		return fmt.Errorf("failed to fetch the backup of device %s: %w", device, err)
	}
	if ds.IsEmpty() {
		return fmt.Errorf("no backup for device %s: %w", device, ErrNotFound)
	}
	return b.Restore(ds)
}

// Settings

// DeviceID returns the identifier of this book on the remote mirror,
// generating it on first use.
func (b *Book) DeviceID() (string, error) {
	id, ok, err := b.store.Setting(SettingDeviceID)
	if err != nil {
		return "", fmt.Errorf("failed to read the device id: %w", err)
	}
	if ok && id != "" {
		return id, nil
	}
	id = uuid.NewString()
	if err := b.store.SetSetting(SettingDeviceID, id); err != nil {
		return "", fmt.Errorf("failed to save the device id: %w", err)
	}
	return id, nil
}

// SimulatedNow returns the simulated now, if any.
func (b *Book) SimulatedNow() (time.Time, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	c, ok := b.clock.(FixedClock)
	return time.Time(c), ok
}

// SetSimulatedNow makes the book run at t, and persists it.
func (b *Book) SetSimulatedNow(t time.Time) error {
	if err := b.store.SetSetting(SettingSimulatedNow, t.Format(time.RFC3339)); err != nil {
		return fmt.Errorf("failed to save the simulated now: %w", err)
	}
	b.setClock(FixedClock(t))
	b.log.WithField("now", t.Format(time.RFC3339)).Info("simulated now set")
	return nil
}

// ClearSimulatedNow makes the book run on the real clock again.
func (b *Book) ClearSimulatedNow() error {
	if err := b.store.DeleteSetting(SettingSimulatedNow); err != nil {
		return fmt.Errorf("failed to clear the simulated now: %w", err)
	}
	b.setClock(RealClock{})
	return nil
}

// Wipe deletes every record, snapshot and queued intent, and clears the simulated now.
// The device id is kept.
func (b *Book) Wipe() error {
	if err := b.store.Wipe(); err != nil {
		return fmt.Errorf("failed to wipe the book: %w", err)
	}
	b.memo.Flush()
	return b.ClearSimulatedNow()
}
