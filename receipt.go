package pocket

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/etnz/pocket/date"
	"github.com/shopspring/decimal"
)

// UnknownDescription is the description of a receipt line with no readable label.
const UnknownDescription = "Concepto no identificado"

// ReceiptCategory is the category given to transactions read from a receipt.
const ReceiptCategory = "Otros"

var (
	fullDateRE  = regexp.MustCompile(`(\d{1,2})[/.\-](\d{1,2})[/.\-](\d{2,4})`)
	shortDateRE = regexp.MustCompile(`(\d{1,2})/(\d{1,2})(?:[^/\d]|$)`)
	slashDateRE = regexp.MustCompile(`\b\d{1,2}/\d{1,2}\b`)
	amountRE    = regexp.MustCompile(`([+\-−]?)\s*(\d{1,3}(?:[.,]\d{3})+|\d+)(?:[.,](\d{1,2}))?\s*€?`)
	incomeRE    = regexp.MustCompile(`(?i)(abono|inter[eé]s|n[oó]mina|ingreso)`)
	totalRE     = regexp.MustCompile(`(?i)(total|importe|a\s*pagar)`)
)

// ParseReceipt reads draft transactions out of the text of a receipt or a bank
// statement, as extracted by an OCR.
//
// Each line holding a positive amount becomes a transaction. The first date
// found in the text is used for all of them, otherwise the day of today in
// month. When no line yields a transaction, a TOTAL line becomes a single
// expense.
func ParseReceipt(text string, month date.Month, today date.Date, currency string) []Transaction {
	lines := nonEmptyLines(text)

	on, ok := detectDate(lines, month.Year)
	if !ok {
		on = date.New(month.Year, month.Month, min(today.Day(), month.Last().Day()))
	}

	var txs []Transaction
	for _, line := range lines {
		amount, sign, rest, ok := trailingAmount(stripDates(line))
		if !ok || !amount.IsPositive() {
			continue
		}
		txs = append(txs, Transaction{
			Date:        on,
			Type:        inferKind(sign, line),
			Description: describe(rest),
			Amount:      M(amount, currency),
			Category:    ReceiptCategory,
		})
	}
	if len(txs) > 0 {
		return txs
	}

	for _, line := range lines {
		if !totalRE.MatchString(line) {
			continue
		}
		amount, _, _, ok := trailingAmount(stripDates(line))
		if !ok {
			continue
		}
		header := strings.Join(lines[:min(3, len(lines))], " ")
		if header == "" {
			header = UnknownDescription
		}
		return []Transaction{{
			Date:        on,
			Type:        Expense,
			Description: truncate(header, 60),
			Amount:      M(amount, currency),
			Category:    ReceiptCategory,
		}}
	}
	return nil
}

// detectDate returns the first dd/mm/yyyy or dd/mm date found in lines, a
// date without year is in year.
// Without a year only the slash is accepted, "3.05" is an amount.
func detectDate(lines []string, year int) (date.Date, bool) {
	for _, line := range lines {
		if m := fullDateRE.FindStringSubmatch(line); m != nil {
			y := m[3]
			if len(y) == 2 {
				y = "20" + y
			}
			if d, ok := validDate(y, m[2], m[1]); ok {
				return d, true
			}
		}
		if m := shortDateRE.FindStringSubmatch(line); m != nil {
			if d, ok := validDate(strconv.Itoa(year), m[2], m[1]); ok {
				return d, true
			}
		}
	}
	return date.Date{}, false
}

func validDate(y, m, d string) (date.Date, bool) {
	year, _ := strconv.Atoi(y)
	month, _ := strconv.Atoi(m)
	day, _ := strconv.Atoi(d)
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return date.Date{}, false
	}
	on := date.New(year, time.Month(month), day)
	if on.Day() != day {
		return date.Date{}, false // like 31/02
	}
	return on, true
}

// stripDates removes the dates from line so that they are not read as amounts.
func stripDates(line string) string {
	line = fullDateRE.ReplaceAllString(line, " ")
	return slashDateRE.ReplaceAllString(line, " ")
}

// trailingAmount finds the last amount of line, in euro notation ("1.234,56", "12,50 €", "-3.20").
// It returns the sign written before it and the line without it.
func trailingAmount(line string) (amount decimal.Decimal, sign string, rest string, ok bool) {
	all := amountRE.FindAllStringSubmatchIndex(line, -1)
	if len(all) == 0 {
		return decimal.Decimal{}, "", line, false
	}
	m := all[len(all)-1]
	integer := line[m[4]:m[5]]
	integer = strings.NewReplacer(".", "", ",", "").Replace(integer)
	fraction := "00"
	if m[6] >= 0 {
		fraction = line[m[6]:m[7]]
		if len(fraction) == 1 {
			fraction += "0"
		}
	}
	amount, err := decimal.NewFromString(integer + "." + fraction)
	if err != nil {
		return decimal.Decimal{}, "", line, false
	}
	sign = line[m[2]:m[3]]
	rest = line[:m[0]] + line[m[1]:]
	return amount, sign, rest, true
}

func inferKind(sign, line string) Kind {
	switch sign {
	case "+":
		return Income
	case "-", "−":
		return Expense
	}
	if incomeRE.MatchString(line) {
		return Income
	}
	return Expense
}

func describe(rest string) string {
	rest = strings.Join(strings.Fields(rest), " ")
	rest = strings.TrimSpace(strings.TrimRight(rest, "+-−€ "))
	if utf8.RuneCountInString(rest) < 3 {
		return UnknownDescription
	}
	return truncate(rest, 60)
}

func nonEmptyLines(s string) []string {
	raw := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		if t := strings.TrimSpace(r); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
