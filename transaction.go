package pocket

import (
	"fmt"
	"strings"
	"time"

	"github.com/etnz/pocket/date"
)

// Kind is the direction of a transaction.
type Kind string

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

// ParseKind parses "income" or "expense".
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case Income, Expense:
		return k, nil
	default:
		return "", fmt.Errorf("unknown transaction type %q, want %q or %q: %w", s, Income, Expense, ErrInvalid)
	}
}

// Categories are the transaction categories offered to the user. Any other label is accepted.
var Categories = []string{"Comida", "Transporte", "Ocio", "Salud", "Compras", "Servicios", "Inversiones", "Salario", "Freelance", "Otros"}

// Transaction is an income or an expense.
type Transaction struct {
	ID          ID        `json:"id"`
	Date        date.Date `json:"date"`
	Type        Kind      `json:"type"`
	Description string    `json:"description"`
	Amount      Money     `json:"amount"` // non-negative, the sign is given by Type
	Category    string    `json:"category,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
}

// Validate checks the transaction fields.
func (t Transaction) Validate() error {
	if t.Date.IsZero() {
		return fmt.Errorf("transaction %q has no date: %w", t.Description, ErrInvalid)
	}
	if t.Type != Income && t.Type != Expense {
		return fmt.Errorf("transaction %q has an unknown type %q: %w", t.Description, t.Type, ErrInvalid)
	}
	if t.Amount.IsNegative() {
		return fmt.Errorf("transaction %q has a negative amount %v: %w", t.Description, t.Amount, ErrInvalid)
	}
	return nil
}

// Signed returns the amount, negative for an expense.
func (t Transaction) Signed() Money {
	if t.Type == Expense {
		return t.Amount.Neg()
	}
	return t.Amount
}
