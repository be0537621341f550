// Package store persists a pocket book in a local SQLite database.
//
// The schema is created and upgraded by the migrations embedded in the
// package. Amounts are stored as decimal strings, dates as YYYY-MM-DD and
// instants as fixed width UTC timestamps so that they sort as text.
package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/etnz/pocket"
	"github.com/etnz/pocket/date"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// timeLayout sorts lexically in UTC.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// DB is a [pocket.Store] over a SQLite database.
type DB struct {
	db       *sql.DB
	currency string
	now      func() time.Time // outbox scheduling
}

var _ pocket.Store = (*DB)(nil)

// Open opens or creates the database file at path and migrates it to the
// latest schema. Amounts read from it are in currency.
func Open(path, currency string) (*DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", path, err)
	}
	// SQLite serializes writes, a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database at %s: %w", path, err)
	}
	return &DB{db: db, currency: currency, now: time.Now}, nil
}

func migrateUp(db *sql.DB) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return err
	}
	drv, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", drv)
	if err != nil {
		return err
	}
	// m.Close would close db.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Close closes the database.
func (s *DB) Close() error { return s.db.Close() }

// rowScanner is either a *sql.Row or *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(timeLayout, s)
}

func parseDate(s string) (date.Date, error) {
	if s == "" {
		return date.Date{}, nil
	}
	return date.Parse(s)
}

func (s *DB) money(v string) (pocket.Money, error) {
	d, err := decimal.NewFromString(v)
	if err != nil {
		return pocket.Money{}, fmt.Errorf("invalid amount %q: %w", v, err)
	}
	return pocket.M(d, s.currency), nil
}

// mustAffect turns a statement that changed no row into ErrNotFound.
func mustAffect(res sql.Result, what string, id pocket.ID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %q: %w", what, id, pocket.ErrNotFound)
	}
	return nil
}

// notFound turns sql.ErrNoRows into ErrNotFound.
func notFound(err error, what string, id pocket.ID) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %q: %w", what, id, pocket.ErrNotFound)
	}
	return fmt.Errorf("failed to read %s %q: %w", what, id, err)
}

// inTx runs f in a database transaction, committed if f succeeds.
func (s *DB) inTx(f func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("error beginning database transaction: %w", err)
	}
	defer tx.Rollback()
	if err := f(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing database transaction: %w", err)
	}
	return nil
}

// IsEmpty reports whether the database holds no record at all.
func (s *DB) IsEmpty() (bool, error) {
	var n int
	err := s.db.QueryRow(`
		SELECT (SELECT COUNT(*) FROM transactions)
		     + (SELECT COUNT(*) FROM notes)
		     + (SELECT COUNT(*) FROM portfolio)
		     + (SELECT COUNT(*) FROM loans)
		     + (SELECT COUNT(*) FROM loan_payments)`).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to count records: %w", err)
	}
	return n == 0, nil
}

// Wipe deletes every record, snapshot and outbox entry. Settings are kept.
func (s *DB) Wipe() error {
	return s.inTx(func(tx *sql.Tx) error {
		for _, table := range []string{"loan_payments", "loans", "portfolio", "notes", "transactions", "monthly_snapshots", "outbox"} {
			if _, err := tx.Exec("DELETE FROM " + table); err != nil {
				return fmt.Errorf("failed to wipe %s: %w", table, err)
			}
		}
		return nil
	})
}
