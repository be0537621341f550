// Package assist turns a sentence like "ayer gasté 25 euros en comida" into a
// draft transaction, using a Gemini model.
package assist

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/pocket"
	"github.com/etnz/pocket/date"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Categories are the categories the assistant may choose from.
var Categories = []string{"Comida", "Transporte", "Entretenimiento", "Servicios", "Salario", "Freelance", "Otros"}

// fallback is the category of anything else.
const fallback = "Otros"

// Model generates a text answer to prompt, following the system instructions.
type Model interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// Draft is a transaction proposed by the assistant, not recorded yet.
type Draft struct {
	pocket.Transaction
	Recurring bool
}

// Parser reads transactions out of natural language.
type Parser struct {
	Model    Model
	Currency string
	Log      logrus.FieldLogger // optional
}

var objectRE = regexp.MustCompile(`(?s)\{.*\}`)

// Parse asks the model for the transaction described by text. Dates are relative to today.
func (p *Parser) Parse(ctx context.Context, text string, today date.Date) (Draft, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Draft{}, fmt.Errorf("nothing to parse: %w", pocket.ErrInvalid)
	}
	answer, err := p.Model.Generate(ctx, instructions(today), text)
	if err != nil {
		return Draft{}, fmt.Errorf("failed to ask the model: %w", err)
	}
	if p.Log != nil {
		p.Log.WithField("text", text).Debugf("model answered %q", answer)
	}

	// models sometimes wrap the object in prose or code fences
	obj := objectRE.FindString(answer)
	if obj == "" {
		return Draft{}, fmt.Errorf("no JSON object in the answer %q: %w", answer, pocket.ErrInvalid)
	}
	var v any
	if err := json.Unmarshal([]byte(obj), &v); err != nil {
		return Draft{}, fmt.Errorf("invalid JSON in the answer: %w", err)
	}
	return draft(v, text, today, p.Currency)
}

// get returns the value at path in v, nil if there is none.
func get(path string, v any) any {
	x, err := jsonpath.Get(path, v)
	if err != nil {
		return nil
	}
	return x
}

func getString(path string, v any) string {
	s, _ := get(path, v).(string)
	return strings.TrimSpace(s)
}

func draft(v any, text string, today date.Date, currency string) (Draft, error) {
	kind, err := pocket.ParseKind(getString("$.type", v))
	if err != nil {
		return Draft{}, err
	}

	var amount decimal.Decimal
	switch x := get("$.amount", v).(type) {
	case float64:
		amount = decimal.NewFromFloat(x)
	case string:
		if amount, err = decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(x), ",", ".")); err != nil {
			return Draft{}, fmt.Errorf("invalid amount %q: %w", x, pocket.ErrInvalid)
		}
	}
	if !amount.IsPositive() {
		return Draft{}, fmt.Errorf("the answer has no positive amount: %w", pocket.ErrInvalid)
	}

	on := today
	if s := getString("$.date", v); s != "" {
		if on, err = date.Parse(s); err != nil {
			on = today
		}
	}

	description := getString("$.description", v)
	if description == "" {
		description = text
	}
	recurring, _ := get("$.isRecurring", v).(bool)

	return Draft{
		Transaction: pocket.Transaction{
			Date:        on,
			Type:        kind,
			Description: description,
			Amount:      pocket.M(amount, currency),
			Category:    category(getString("$.category", v)),
		},
		Recurring: recurring,
	}, nil
}

// category returns the known category matching c, ignoring case.
func category(c string) string {
	for _, known := range Categories {
		if strings.EqualFold(c, known) {
			return known
		}
	}
	return fallback
}

// lastWeekday returns the latest day strictly before today falling on wd.
func lastWeekday(today date.Date, wd time.Weekday) date.Date {
	diff := int(today.Weekday()) - int(wd)
	if diff <= 0 {
		diff += 7
	}
	return today.Add(-diff)
}

func instructions(today date.Date) string {
	var b strings.Builder
	fmt.Fprintf(&b, `Eres un asistente financiero especializado en español. Convierte cualquier texto sobre dinero en una transacción.

Responde SOLO con un objeto JSON, sin explicaciones:
{"type": "income|expense", "amount": NUMERO, "category": "CATEGORIA", "description": "DESCRIPCION", "date": "YYYY-MM-DD", "isRecurring": boolean}

FECHA ACTUAL: %s (%s)

Fechas relativas:
- "ayer" → %s
- "hace 3 días" → %s
- "la semana pasada" → %s
`, today, weekdays[today.Weekday()], today.Add(-1), today.Add(-3), today.Add(-7))
	for _, wd := range []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday} {
		fmt.Fprintf(&b, "- \"el %s\" → %s\n", weekdays[wd], lastWeekday(today, wd))
	}
	fmt.Fprintf(&b, `
Si no se menciona ninguna fecha usa la fecha actual: %s

CATEGORÍAS: %s
`, today, strings.Join(Categories, ", "))
	return b.String()
}

var weekdays = map[time.Weekday]string{
	time.Monday:    "lunes",
	time.Tuesday:   "martes",
	time.Wednesday: "miércoles",
	time.Thursday:  "jueves",
	time.Friday:    "viernes",
	time.Saturday:  "sábado",
	time.Sunday:    "domingo",
}
