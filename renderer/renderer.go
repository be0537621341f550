// Package renderer formats the book reports as markdown.
package renderer

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
	"time"

	"github.com/etnz/pocket"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed templates/*.md
var templates embed.FS

// Month is the report of a month: its totals and, while it is open, its transactions.
type Month struct {
	Summary      pocket.MonthlySummary
	Closed       *pocket.MonthlySnapshot // nil while the month is open
	Transactions []pocket.Transaction
	Now          time.Time
}

// RenderMonth renders the report of a month.
func RenderMonth(m Month) string {
	partials := map[string]string{
		"month_totals": "month_totals.md",
		"transactions": "transactions.md",
	}
	return renderTemplate("month", "month.md", partials, m)
}

// RenderTransactions renders a list of transactions.
func RenderTransactions(txs []pocket.Transaction) string {
	partials := map[string]string{
		"transactions": "transactions.md",
	}
	return renderTemplate("list", "list.md", partials, txs)
}

type positions struct {
	Positions []pocket.Position
	Total     pocket.Money
}

// RenderPositions renders the portfolio positions and the total cost basis.
func RenderPositions(ps []pocket.Position, currency string) string {
	data := positions{Positions: ps, Total: pocket.M(0, currency)}
	for _, p := range ps {
		data.Total = data.Total.Add(p.CostBasis)
	}
	return renderTemplate("positions", "positions.md", nil, data)
}

// RenderLoans renders the loans with their accrued interest and payments.
func RenderLoans(loans []pocket.LoanStatus) string {
	return renderTemplate("loans", "loans.md", nil, loans)
}

type snapshots struct {
	Snapshots []pocket.MonthlySnapshot
	Now       time.Time
}

// RenderSnapshots renders the closed months.
func RenderSnapshots(ss []pocket.MonthlySnapshot, now time.Time) string {
	return renderTemplate("snapshots", "snapshots.md", nil, snapshots{ss, now})
}

// RenderAnalytics renders the indicators over closed months.
func RenderAnalytics(a pocket.Analytics) string {
	return renderTemplate("analytics", "analytics.md", nil, a)
}

type notes struct {
	Notes []pocket.Note
	Now   time.Time
}

// RenderNotes renders the notes.
func RenderNotes(ns []pocket.Note, now time.Time) string {
	return renderTemplate("notes", "notes.md", nil, notes{ns, now})
}

// HTML converts a rendered report to an HTML fragment.
func HTML(markdown string) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, "templates/"+mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Funcs(funcs).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		content, err := fs.ReadFile(templates, "templates/"+file)
		if err != nil {
			return fmt.Sprintf("error reading partial template %q: %v", file, err)
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
