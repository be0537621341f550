package store

import (
	"database/sql"
	"fmt"

	"github.com/etnz/pocket"
)

const noteColumns = `id, title, content, reminder_date, created_at, updated_at`

func scanNote(row rowScanner) (pocket.Note, error) {
	var (
		n                              pocket.Note
		id, reminder, created, updated string
	)
	if err := row.Scan(&id, &n.Title, &n.Content, &reminder, &created, &updated); err != nil {
		return n, err
	}
	var err error
	n.ID = pocket.ID(id)
	if n.ReminderDate, err = parseDate(reminder); err != nil {
		return n, err
	}
	if n.CreatedAt, err = parseTime(created); err != nil {
		return n, err
	}
	if n.UpdatedAt, err = parseTime(updated); err != nil {
		return n, err
	}
	return n, nil
}

// Notes returns every note, most recent first.
func (s *DB) Notes() ([]pocket.Note, error) {
	rows, err := s.db.Query(`SELECT ` + noteColumns + ` FROM notes ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer rows.Close()

	var notes []pocket.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// Note returns the note id.
func (s *DB) Note(id pocket.ID) (pocket.Note, error) {
	n, err := scanNote(s.db.QueryRow(`SELECT `+noteColumns+` FROM notes WHERE id = ?`, string(id)))
	if err != nil {
		return pocket.Note{}, notFound(err, "note", id)
	}
	return n, nil
}

func insertNotes(tx *sql.Tx, notes []pocket.Note) error {
	stmt, err := tx.Prepare(`INSERT INTO notes (` + noteColumns + `) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("error preparing insert statement: %w", err)
	}
	defer stmt.Close()
	for _, n := range notes {
		_, err := stmt.Exec(string(n.ID), n.Title, n.Content, n.ReminderDate.String(), formatTime(n.CreatedAt), formatTime(n.UpdatedAt))
		if err != nil {
			return fmt.Errorf("failed to insert note %q: %w", n.Title, err)
		}
	}
	return nil
}

// InsertNotes inserts all notes or none.
func (s *DB) InsertNotes(notes ...pocket.Note) error {
	return s.inTx(func(tx *sql.Tx) error { return insertNotes(tx, notes) })
}

// UpdateNote replaces the title, content, reminder and update time of the note n.ID.
func (s *DB) UpdateNote(n pocket.Note) error {
	res, err := s.db.Exec(`UPDATE notes SET title = ?, content = ?, reminder_date = ?, updated_at = ? WHERE id = ?`,
		n.Title, n.Content, n.ReminderDate.String(), formatTime(n.UpdatedAt), string(n.ID))
	if err != nil {
		return fmt.Errorf("failed to update note %q: %w", n.ID, err)
	}
	return mustAffect(res, "note", n.ID)
}

// DeleteNote deletes the note id.
func (s *DB) DeleteNote(id pocket.ID) error {
	res, err := s.db.Exec(`DELETE FROM notes WHERE id = ?`, string(id))
	if err != nil {
		return fmt.Errorf("failed to delete note %q: %w", id, err)
	}
	return mustAffect(res, "note", id)
}

// ReplaceNotes replaces every note with notes.
func (s *DB) ReplaceNotes(notes []pocket.Note) error {
	return s.inTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM notes`); err != nil {
			return fmt.Errorf("failed to clear notes: %w", err)
		}
		return insertNotes(tx, notes)
	})
}
