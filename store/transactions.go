package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/etnz/pocket"
	"github.com/etnz/pocket/date"
)

const transactionColumns = `id, date, type, description, amount, category, created_at`

func (s *DB) scanTransaction(row rowScanner) (pocket.Transaction, error) {
	var (
		tx                   pocket.Transaction
		id, on, kind, amount string
		createdAt            string
	)
	if err := row.Scan(&id, &on, &kind, &tx.Description, &amount, &tx.Category, &createdAt); err != nil {
		return tx, err
	}
	var err error
	tx.ID, tx.Type = pocket.ID(id), pocket.Kind(kind)
	if tx.Date, err = parseDate(on); err != nil {
		return tx, err
	}
	if tx.Amount, err = s.money(amount); err != nil {
		return tx, err
	}
	if tx.CreatedAt, err = parseTime(createdAt); err != nil {
		return tx, err
	}
	return tx, nil
}

// Transactions returns the transactions dated in r, sorted by date then creation.
func (s *DB) Transactions(r date.Range) ([]pocket.Transaction, error) {
	var (
		where []string
		args  []any
	)
	if !r.From.IsZero() {
		where, args = append(where, "date >= ?"), append(args, r.From.String())
	}
	if !r.To.IsZero() {
		where, args = append(where, "date <= ?"), append(args, r.To.String())
	}
	query := `SELECT ` + transactionColumns + ` FROM transactions`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY date, created_at, id`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txs []pocket.Transaction
	for rows.Next() {
		tx, err := s.scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// Transaction returns the transaction id.
func (s *DB) Transaction(id pocket.ID) (pocket.Transaction, error) {
	row := s.db.QueryRow(`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, string(id))
	tx, err := s.scanTransaction(row)
	if err != nil {
		return pocket.Transaction{}, notFound(err, "transaction", id)
	}
	return tx, nil
}

func insertTransactions(tx *sql.Tx, txs []pocket.Transaction) error {
	stmt, err := tx.Prepare(`INSERT INTO transactions (` + transactionColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("error preparing insert statement: %w", err)
	}
	defer stmt.Close()
	for _, t := range txs {
		_, err := stmt.Exec(string(t.ID), t.Date.String(), string(t.Type), t.Description, t.Amount.Decimal().String(), t.Category, formatTime(t.CreatedAt))
		if err != nil {
			return fmt.Errorf("failed to insert transaction %q: %w", t.Description, err)
		}
	}
	return nil
}

// InsertTransactions inserts all txs or none.
func (s *DB) InsertTransactions(txs ...pocket.Transaction) error {
	return s.inTx(func(tx *sql.Tx) error { return insertTransactions(tx, txs) })
}

// DeleteTransaction deletes the transaction id.
func (s *DB) DeleteTransaction(id pocket.ID) error {
	res, err := s.db.Exec(`DELETE FROM transactions WHERE id = ?`, string(id))
	if err != nil {
		return fmt.Errorf("failed to delete transaction %q: %w", id, err)
	}
	return mustAffect(res, "transaction", id)
}

// ReplaceTransactions replaces every transaction with txs.
func (s *DB) ReplaceTransactions(txs []pocket.Transaction) error {
	return s.inTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM transactions`); err != nil {
			return fmt.Errorf("failed to clear transactions: %w", err)
		}
		return insertTransactions(tx, txs)
	})
}
