package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/etnz/pocket"
	"github.com/etnz/pocket/date"
)

const snapshotColumns = `year, month, total_income, total_expenses, balance, transaction_count, closed_at`

func (s *DB) scanSnapshot(row rowScanner) (pocket.MonthlySnapshot, error) {
	var (
		snap                                pocket.MonthlySnapshot
		year, month                         int
		income, expenses, balance, closedAt string
	)
	if err := row.Scan(&year, &month, &income, &expenses, &balance, &snap.TransactionCount, &closedAt); err != nil {
		return snap, err
	}
	var err error
	snap.Month = date.Month{Year: year, Month: time.Month(month)}
	if snap.TotalIncome, err = s.money(income); err != nil {
		return snap, err
	}
	if snap.TotalExpenses, err = s.money(expenses); err != nil {
		return snap, err
	}
	if snap.Balance, err = s.money(balance); err != nil {
		return snap, err
	}
	if snap.ClosedAt, err = parseTime(closedAt); err != nil {
		return snap, err
	}
	return snap, nil
}

// Snapshot returns the snapshot of m, if m is closed.
func (s *DB) Snapshot(m date.Month) (pocket.MonthlySnapshot, bool, error) {
	row := s.db.QueryRow(`SELECT `+snapshotColumns+` FROM monthly_snapshots WHERE year = ? AND month = ?`, m.Year, int(m.Month))
	snap, err := s.scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return pocket.MonthlySnapshot{}, false, nil
	}
	if err != nil {
		return pocket.MonthlySnapshot{}, false, fmt.Errorf("failed to read snapshot of %s: %w", m, err)
	}
	return snap, true, nil
}

// Snapshots returns every snapshot in chronological order.
func (s *DB) Snapshots() ([]pocket.MonthlySnapshot, error) {
	rows, err := s.db.Query(`SELECT ` + snapshotColumns + ` FROM monthly_snapshots ORDER BY year, month`)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []pocket.MonthlySnapshot
	for rows.Next() {
		snap, err := s.scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, rows.Err()
}

// CloseMonth inserts snap and deletes the transactions ids in a single
// database transaction. If the month already has a snapshot nothing changes
// and the error wraps pocket.ErrMonthClosed.
func (s *DB) CloseMonth(snap pocket.MonthlySnapshot, ids []pocket.ID) error {
	return s.inTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(`INSERT INTO monthly_snapshots (`+snapshotColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (year, month) DO NOTHING`,
			snap.Month.Year, int(snap.Month.Month),
			snap.TotalIncome.Decimal().String(), snap.TotalExpenses.Decimal().String(), snap.Balance.Decimal().String(),
			snap.TransactionCount, formatTime(snap.ClosedAt))
		if err != nil {
			return fmt.Errorf("failed to insert snapshot of %s: %w", snap.Month, err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return fmt.Errorf("snapshot of %s exists: %w", snap.Month, pocket.ErrMonthClosed)
		}

		stmt, err := tx.Prepare(`DELETE FROM transactions WHERE id = ?`)
		if err != nil {
			return fmt.Errorf("error preparing delete statement: %w", err)
		}
		defer stmt.Close()
		for _, id := range ids {
			if _, err := stmt.Exec(string(id)); err != nil {
				return fmt.Errorf("failed to purge transaction %q: %w", id, err)
			}
		}
		return nil
	})
}
