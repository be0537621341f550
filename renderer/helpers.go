package renderer

import (
	"strings"
	"text/template"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/etnz/pocket"
)

var funcs = template.FuncMap{
	"money":  func(m pocket.Money) string { return m.String() },
	"signed": func(m pocket.Money) string { return m.SignedString() },
	"count":  func(n int) string { return humanize.Comma(int64(n)) },
	"ago":    ago,
	"cell":   cell,
}

// ago tells how long before now t was, like "3 days ago".
func ago(t, now time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// cell makes s safe inside a markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\n", " ")
	if s == "" {
		return "-"
	}
	return s
}
