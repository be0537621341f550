package pocket

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// this file contains functions to handle the backup import/export format.
// It is a single JSON document, meant to be downloaded and uploaded by hand.

// BackupVersion is the version of the backup format written by Export.
const BackupVersion = 1

// Backup is the content of a backup file.
//
// On import, a nil slice means the array was absent from the file and the
// corresponding table is left untouched.
type Backup struct {
	Version      int
	ExportedAt   time.Time
	Transactions []Transaction
	Notes        []Note
}

// Export writes b to w in the backup format.
func Export(w io.Writer, b Backup) error {
	if b.Transactions == nil {
		b.Transactions = []Transaction{}
	}
	if b.Notes == nil {
		b.Notes = []Note{}
	}
	var jw jsonObjectWriter
	jw.Append("version", BackupVersion)
	jw.Append("exportedAt", b.ExportedAt)
	jw.Append("transactions", b.Transactions)
	jw.Append("notes", b.Notes)
	data, err := jw.MarshalJSON()
	if err != nil {
		return fmt.Errorf("cannot encode backup: %w", err)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(json.RawMessage(data)); err != nil {
		return fmt.Errorf("cannot write backup: %w", err)
	}
	return nil
}

// DecodeBackup reads a backup document from r.
func DecodeBackup(r io.Reader) (Backup, error) {
	var jb struct {
		Version      int           `json:"version"`
		ExportedAt   time.Time     `json:"exportedAt"`
		Transactions []Transaction `json:"transactions"`
		Notes        []Note        `json:"notes"`
	}
	if err := json.NewDecoder(r).Decode(&jb); err != nil {
		return Backup{}, fmt.Errorf("cannot parse backup: %w: %w", ErrInvalid, err)
	}
	if jb.Version > BackupVersion {
		return Backup{}, fmt.Errorf("unsupported backup version %d, want at most %d: %w", jb.Version, BackupVersion, ErrInvalid)
	}
	for i, tx := range jb.Transactions {
		if err := tx.Validate(); err != nil {
			return Backup{}, fmt.Errorf("transaction #%d: %w", i, err)
		}
	}
	return Backup{
		Version:      jb.Version,
		ExportedAt:   jb.ExportedAt,
		Transactions: jb.Transactions,
		Notes:        jb.Notes,
	}, nil
}

// Dataset is the full content of a book, as exchanged with the remote mirror.
type Dataset struct {
	Transactions []Transaction
	Notes        []Note
	Portfolio    []PortfolioTx
	Loans        []Loan
	Payments     []PaymentRecord
}

// IsEmpty reports whether d holds no record at all.
func (d Dataset) IsEmpty() bool {
	return len(d.Transactions) == 0 && len(d.Notes) == 0 && len(d.Portfolio) == 0 && len(d.Loans) == 0 && len(d.Payments) == 0
}
