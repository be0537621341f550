package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/etnz/pocket"
)

// Enqueue queues intents, due immediately.
func (s *DB) Enqueue(intents ...pocket.Intent) error {
	now := formatTime(s.now())
	return s.inTx(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`INSERT INTO outbox (op, table_name, payload, next_attempt_at, created_at) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("error preparing insert statement: %w", err)
		}
		defer stmt.Close()
		for _, in := range intents {
			if _, err := stmt.Exec(string(in.Op), in.Table, string(in.Payload), now, now); err != nil {
				return fmt.Errorf("failed to queue %s on %s: %w", in.Op, in.Table, err)
			}
		}
		return nil
	})
}

// Outbox returns at most limit entries due at now, oldest first.
func (s *DB) Outbox(now time.Time, limit int) ([]pocket.OutboxEntry, error) {
	rows, err := s.db.Query(`
		SELECT id, op, table_name, payload, attempts, next_attempt_at, last_error, created_at
		FROM outbox
		WHERE next_attempt_at <= ?
		ORDER BY id
		LIMIT ?`, formatTime(now), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query outbox: %w", err)
	}
	defer rows.Close()

	var entries []pocket.OutboxEntry
	for rows.Next() {
		var (
			e             pocket.OutboxEntry
			op, payload   string
			next, created string
		)
		if err := rows.Scan(&e.ID, &op, &e.Intent.Table, &payload, &e.Attempts, &next, &e.LastError, &created); err != nil {
			return nil, fmt.Errorf("failed to scan outbox entry: %w", err)
		}
		e.Intent.Op, e.Intent.Payload = pocket.Op(op), []byte(payload)
		if e.NextAttemptAt, err = parseTime(next); err != nil {
			return nil, err
		}
		if e.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Delivered removes the entry id.
func (s *DB) Delivered(id int64) error {
	if _, err := s.db.Exec(`DELETE FROM outbox WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to remove outbox entry %d: %w", id, err)
	}
	return nil
}

// Retry records a failed attempt of the entry id, and when to try again.
func (s *DB) Retry(id int64, lastErr string, next time.Time) error {
	_, err := s.db.Exec(`UPDATE outbox SET attempts = attempts + 1, last_error = ?, next_attempt_at = ? WHERE id = ?`,
		lastErr, formatTime(next), id)
	if err != nil {
		return fmt.Errorf("failed to reschedule outbox entry %d: %w", id, err)
	}
	return nil
}

// Pending counts the queued entries, due or not.
func (s *DB) Pending() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM outbox`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count outbox entries: %w", err)
	}
	return n, nil
}
