package pocket

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/etnz/pocket/date"
)

func TestExport(t *testing.T) {
	b := Backup{
		ExportedAt:   time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC),
		Transactions: []Transaction{{ID: "t1", Date: date.MustParse("2025-04-30"), Type: Expense, Description: "Pan", Amount: EUR(1.2), Category: "Comida"}},
	}
	var buf bytes.Buffer
	if err := Export(&buf, b); err != nil {
		t.Fatalf("Export() failed: %v", err)
	}
	want := `{
  "version": 1,
  "exportedAt": "2025-05-01T10:00:00Z",
  "transactions": [
    {
      "id": "t1",
      "date": "2025-04-30",
      "type": "expense",
      "description": "Pan",
      "amount": 1.2,
      "category": "Comida"
    }
  ],
  "notes": []
}
`
	if got := buf.String(); got != want {
		t.Errorf("Export() =\n%s\nwant\n%s", got, want)
	}
}

func TestDecodeBackup(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantTxs   bool
		wantNotes bool
		wantErr   error
	}{
		{"both", `{"version":1,"transactions":[],"notes":[]}`, true, true, nil},
		{"notes only", `{"version":1,"notes":[{"id":3,"content":"hi"}]}`, false, true, nil},
		{"future version", `{"version":2}`, false, false, ErrInvalid},
		{"negative amount", `{"version":1,"transactions":[{"date":"2025-01-01","type":"income","amount":-1}]}`, false, false, ErrInvalid},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b, err := DecodeBackup(strings.NewReader(tc.input))
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("DecodeBackup() error = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeBackup() failed: %v", err)
			}
			if got := b.Transactions != nil; got != tc.wantTxs {
				t.Errorf("transactions present = %v, want %v", got, tc.wantTxs)
			}
			if got := b.Notes != nil; got != tc.wantNotes {
				t.Errorf("notes present = %v, want %v", got, tc.wantNotes)
			}
		})
	}
}

func TestDecodeBackup_LegacyValues(t *testing.T) {
	b, err := DecodeBackup(strings.NewReader(`{"version":1,"transactions":[{"id":12,"date":"2025-01-02T00:00:00.000Z","type":"expense","description":"Bus","amount":"1.50"}]}`))
	if err != nil {
		t.Fatalf("DecodeBackup() failed: %v", err)
	}
	tx := b.Transactions[0]
	if tx.ID != "12" {
		t.Errorf("ID = %q, want %q", tx.ID, "12")
	}
	if want := date.MustParse("2025-01-02"); tx.Date != want {
		t.Errorf("Date = %s, want %s", tx.Date, want)
	}
	if want := NO(1.5); !tx.Amount.Equal(want) {
		t.Errorf("Amount = %v, want %v", tx.Amount, want)
	}
}
