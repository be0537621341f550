package assist

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/etnz/pocket"
	"github.com/etnz/pocket/date"
)

// canned answers always the same text.
type canned struct {
	answer string
	err    error
	system string
}

func (c *canned) Generate(ctx context.Context, system, prompt string) (string, error) {
	c.system = system
	return c.answer, c.err
}

func TestParser_Parse(t *testing.T) {
	today := date.MustParse("2025-09-17") // a Wednesday
	tests := []struct {
		name, answer string
		want         pocket.Transaction
		recurring    bool
	}{
		{
			name:   "plain",
			answer: `{"type": "expense", "amount": 25, "category": "Comida", "description": "Gasto en comida", "date": "2025-09-16", "isRecurring": false}`,
			want:   pocket.Transaction{Date: date.MustParse("2025-09-16"), Type: pocket.Expense, Description: "Gasto en comida", Amount: pocket.M(25, "EUR"), Category: "Comida"},
		},
		{
			name:      "fenced, string amount, unknown category",
			answer:    "```json\n{\"type\": \"income\", \"amount\": \"1200,50\", \"category\": \"Bonus\", \"description\": \"Paga\", \"isRecurring\": true}\n```",
			want:      pocket.Transaction{Date: today, Type: pocket.Income, Description: "Paga", Amount: pocket.M(1200.5, "EUR"), Category: "Otros"},
			recurring: true,
		},
		{
			name:   "defaults",
			answer: `{"type": "expense", "amount": 6, "category": "comida", "date": "pronto"}`,
			want:   pocket.Transaction{Date: today, Type: pocket.Expense, Description: "compré patatas por 6 euros", Amount: pocket.M(6, "EUR"), Category: "Comida"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Parser{Model: &canned{answer: tt.answer}, Currency: "EUR"}
			got, err := p.Parse(context.Background(), "compré patatas por 6 euros", today)
			if err != nil {
				t.Fatalf("Parse() failed: %v", err)
			}
			if got.Date != tt.want.Date || got.Type != tt.want.Type || got.Description != tt.want.Description || got.Category != tt.want.Category || !got.Amount.Equal(tt.want.Amount) {
				t.Errorf("Parse() = %+v, want %+v", got.Transaction, tt.want)
			}
			if got.Recurring != tt.recurring {
				t.Errorf("Recurring = %v, want %v", got.Recurring, tt.recurring)
			}
		})
	}
}

func TestParser_Parse_Errors(t *testing.T) {
	today := date.MustParse("2025-09-17")
	tests := []struct {
		name  string
		model *canned
	}{
		{"model error", &canned{err: errors.New("quota exceeded")}},
		{"no json", &canned{answer: "no entiendo"}},
		{"bad type", &canned{answer: `{"type": "gift", "amount": 3}`}},
		{"no amount", &canned{answer: `{"type": "expense"}`}},
		{"zero amount", &canned{answer: `{"type": "expense", "amount": 0}`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Parser{Model: tt.model, Currency: "EUR"}
			if got, err := p.Parse(context.Background(), "algo", today); err == nil {
				t.Errorf("Parse() = %+v, want an error", got)
			}
		})
	}
}

func TestInstructions(t *testing.T) {
	m := &canned{answer: `{"type": "expense", "amount": 1}`}
	p := &Parser{Model: m}
	if _, err := p.Parse(context.Background(), "ayer 1 euro", date.MustParse("2025-09-17")); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"FECHA ACTUAL: 2025-09-17 (miércoles)",
		`"ayer" → 2025-09-16`,
		`"el lunes" → 2025-09-15`,
		`"el miércoles" → 2025-09-10`,
		"Comida, Transporte, Entretenimiento, Servicios, Salario, Freelance, Otros",
	} {
		if !strings.Contains(m.system, want) {
			t.Errorf("instructions do not contain %q:\n%s", want, m.system)
		}
	}
}

func TestLastWeekday(t *testing.T) {
	wed := date.MustParse("2025-09-17")
	tests := []struct {
		wd   time.Weekday
		want string
	}{
		{time.Tuesday, "2025-09-16"},
		{time.Wednesday, "2025-09-10"},
		{time.Thursday, "2025-09-11"},
		{time.Sunday, "2025-09-14"},
	}
	for _, tt := range tests {
		if got := lastWeekday(wed, tt.wd); got != date.MustParse(tt.want) {
			t.Errorf("lastWeekday(%s, %s) = %s, want %s", wed, tt.wd, got, tt.want)
		}
	}
}
