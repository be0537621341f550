// Package statement reads bank statements into draft transactions.
package statement

import (
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
	"github.com/etnz/pocket"
	"github.com/etnz/pocket/date"
)

// Category is the category of imported transactions.
const Category = "Otros"

// ParseCamt053 reads the booked entries of an ISO 20022 camt.053 statement.
// Credits are incomes, debits are expenses, reversals swap them.
// Pending and informational entries are skipped.
func ParseCamt053(r io.Reader) ([]pocket.Transaction, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}
	if doc.FindElement("//BkToCstmrStmt") == nil {
		return nil, fmt.Errorf("not a camt.053 statement: %w", pocket.ErrInvalid)
	}

	var txs []pocket.Transaction
	for i, ntry := range doc.FindElements("//Stmt/Ntry") {
		switch status(ntry) {
		case "PDNG", "INFO":
			continue
		}
		tx, err := entry(ntry)
		if err != nil {
			return nil, fmt.Errorf("entry #%d: %w", i+1, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// status reads Sts, a bare code in older versions and a Cd child in newer ones.
func status(ntry *etree.Element) string {
	if cd := ntry.FindElement("./Sts/Cd"); cd != nil {
		return strings.TrimSpace(cd.Text())
	}
	return text(ntry, "./Sts")
}

func text(e *etree.Element, path string) string {
	if x := e.FindElement(path); x != nil {
		return strings.TrimSpace(x.Text())
	}
	return ""
}

func entry(ntry *etree.Element) (pocket.Transaction, error) {
	amt := ntry.FindElement("./Amt")
	if amt == nil {
		return pocket.Transaction{}, fmt.Errorf("no amount: %w", pocket.ErrInvalid)
	}
	amount, err := pocket.ParseMoney(strings.TrimSpace(amt.Text()), amt.SelectAttrValue("Ccy", ""))
	if err != nil {
		return pocket.Transaction{}, fmt.Errorf("invalid amount %q: %w", amt.Text(), err)
	}

	var kind pocket.Kind
	switch ind := text(ntry, "./CdtDbtInd"); ind {
	case "CRDT":
		kind = pocket.Income
	case "DBIT":
		kind = pocket.Expense
	default:
		return pocket.Transaction{}, fmt.Errorf("unknown credit/debit indicator %q: %w", ind, pocket.ErrInvalid)
	}
	if text(ntry, "./RvslInd") == "true" {
		kind = swap(kind)
	}
	if amount.IsNegative() {
		amount, kind = amount.Neg(), swap(kind)
	}

	on, err := booked(ntry)
	if err != nil {
		return pocket.Transaction{}, err
	}

	return pocket.Transaction{
		Date:        on,
		Type:        kind,
		Description: describe(ntry, kind),
		Amount:      amount,
		Category:    Category,
	}, nil
}

func swap(k pocket.Kind) pocket.Kind {
	if k == pocket.Income {
		return pocket.Expense
	}
	return pocket.Income
}

// booked returns the booking date, or the value date.
func booked(ntry *etree.Element) (date.Date, error) {
	for _, path := range []string{"./BookgDt/Dt", "./BookgDt/DtTm", "./ValDt/Dt", "./ValDt/DtTm"} {
		if s := text(ntry, path); s != "" {
			d, err := date.Parse(s)
			if err != nil {
				return date.Date{}, fmt.Errorf("invalid date %q: %w", s, pocket.ErrInvalid)
			}
			return d, nil
		}
	}
	return date.Date{}, fmt.Errorf("entry has no date: %w", pocket.ErrInvalid)
}

func describe(ntry *etree.Element, kind pocket.Kind) string {
	if s := text(ntry, "./AddtlNtryInf"); s != "" {
		return strings.Join(strings.Fields(s), " ")
	}
	var ustrd []string
	for _, e := range ntry.FindElements("./NtryDtls/TxDtls/RmtInf/Ustrd") {
		if s := strings.TrimSpace(e.Text()); s != "" {
			ustrd = append(ustrd, s)
		}
	}
	if len(ustrd) > 0 {
		return strings.Join(strings.Fields(strings.Join(ustrd, " ")), " ")
	}
	// the counterparty
	party := "./NtryDtls/TxDtls/RltdPties/Cdtr/Nm"
	if kind == pocket.Income {
		party = "./NtryDtls/TxDtls/RltdPties/Dbtr/Nm"
	}
	if s := text(ntry, party); s != "" {
		return s
	}
	return pocket.UnknownDescription
}
