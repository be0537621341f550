package mirror

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/etnz/pocket"
	"github.com/etnz/pocket/date"
	"github.com/shopspring/decimal"
)

// Row is a remote record, column name to value. Values are strings, or nil for NULL.
type Row map[string]any

// DeviceColumn partitions every remote table.
const DeviceColumn = "device_id"

// Columns lists the columns of each remote table, without DeviceColumn.
var Columns = map[string][]string{
	pocket.TableTransactions: {"date", "type", "description", "amount", "category"},
	pocket.TableNotes:        {"title", "content", "reminder_date", "created_at"},
	pocket.TablePortfolio:    {"date", "asset", "symbol", "category", "price", "quantity", "notes"},
	pocket.TableLoans:        {"borrower", "principal", "annual_rate", "start_date", "notes"},
	pocket.TablePayments:     {"loan_borrower", "loan_start_date", "date", "amount"},
}

// keys lists the columns identifying a remote record, there is no stable remote identifier.
var keys = map[string][]string{
	pocket.TableTransactions: {"date", "type", "description", "amount"},
	pocket.TableNotes:        {"created_at"},
	pocket.TablePortfolio:    {"date", "asset", "price", "quantity"},
	pocket.TableLoans:        {"borrower", "start_date"},
	pocket.TablePayments:     {"loan_borrower", "loan_start_date", "date", "amount"},
}

func checkTable(table string) error {
	if _, ok := Columns[table]; !ok {
		return fmt.Errorf("unknown table %q", table)
	}
	return nil
}

// nullable maps the empty string to NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// RowOf converts the payload of an intent to the remote row.
func RowOf(in pocket.Intent) (Row, error) {
	switch in.Table {
	case pocket.TableTransactions:
		var tx pocket.Transaction
		if err := json.Unmarshal(in.Payload, &tx); err != nil {
			return nil, err
		}
		return Row{
			"date":        tx.Date.String(),
			"type":        string(tx.Type),
			"description": tx.Description,
			"amount":      tx.Amount.Decimal().String(),
			"category":    nullable(tx.Category),
		}, nil
	case pocket.TableNotes:
		var n pocket.Note
		if err := json.Unmarshal(in.Payload, &n); err != nil {
			return nil, err
		}
		return Row{
			"title":         nullable(n.Title),
			"content":       n.Content,
			"reminder_date": nullable(n.ReminderDate.String()),
			"created_at":    n.CreatedAt.UTC().Format(time.RFC3339Nano),
		}, nil
	case pocket.TablePortfolio:
		var p pocket.PortfolioTx
		if err := json.Unmarshal(in.Payload, &p); err != nil {
			return nil, err
		}
		return Row{
			"date":     p.Date.String(),
			"asset":    p.Asset,
			"symbol":   nullable(p.Symbol),
			"category": string(p.Category),
			"price":    p.Price.Decimal().String(),
			"quantity": p.Quantity.String(),
			"notes":    nullable(p.Notes),
		}, nil
	case pocket.TableLoans:
		var l pocket.Loan
		if err := json.Unmarshal(in.Payload, &l); err != nil {
			return nil, err
		}
		return Row{
			"borrower":    l.Borrower,
			"principal":   l.Principal.Decimal().String(),
			"annual_rate": l.AnnualRate.Decimal().String(),
			"start_date":  l.StartDate.String(),
			"notes":       nullable(l.Notes),
		}, nil
	case pocket.TablePayments:
		var p pocket.PaymentRecord
		if err := json.Unmarshal(in.Payload, &p); err != nil {
			return nil, err
		}
		return Row{
			"loan_borrower":   p.Borrower,
			"loan_start_date": p.LoanStart.String(),
			"date":            p.Date.String(),
			"amount":          p.Amount.Decimal().String(),
		}, nil
	}
	return nil, checkTable(in.Table)
}

// KeyOf returns the columns of row that identify it in table.
func KeyOf(table string, row Row) Row {
	key := make(Row, len(keys[table]))
	for _, c := range keys[table] {
		key[c] = row[c]
	}
	return key
}

// str reads a remote value as a string.
func str(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

// remoteDate reads a date, remote dates may come as timestamps.
func remoteDate(v any) (date.Date, error) {
	s := str(v)
	if s == "" {
		return date.Date{}, nil
	}
	if len(s) > 10 {
		s = s[:10]
	}
	return date.Parse(s)
}

func remoteDecimal(v any) (decimal.Decimal, error) {
	s := str(v)
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func remoteTime(v any) (time.Time, error) {
	s := str(v)
	if s == "" {
		return time.Time{}, nil
	}
	// postgres text output, fractional seconds are accepted after the seconds
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05-07", "2006-01-02 15:04:05-07:00", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

// decoder reads typed values out of rows, keeping the first error.
type decoder struct {
	err error
}

func (d *decoder) date(v any) date.Date {
	x, err := remoteDate(v)
	if d.err == nil && err != nil {
		d.err = err
	}
	return x
}

func (d *decoder) decimal(v any) decimal.Decimal {
	x, err := remoteDecimal(v)
	if d.err == nil && err != nil {
		d.err = fmt.Errorf("invalid number %q: %w", str(v), err)
	}
	return x
}

func (d *decoder) time(v any) time.Time {
	x, err := remoteTime(v)
	if d.err == nil && err != nil {
		d.err = err
	}
	return x
}

// Records converts the remote rows of every table to a dataset.
// Amounts have no currency, the book sets it.
func Records(rows map[string][]Row) (pocket.Dataset, error) {
	var (
		ds pocket.Dataset
		d  decoder
	)
	for _, r := range rows[pocket.TableTransactions] {
		ds.Transactions = append(ds.Transactions, pocket.Transaction{
			Date:        d.date(r["date"]),
			Type:        pocket.Kind(str(r["type"])),
			Description: str(r["description"]),
			Amount:      pocket.M(d.decimal(r["amount"]), ""),
			Category:    str(r["category"]),
		})
	}
	for _, r := range rows[pocket.TableNotes] {
		created := d.time(r["created_at"])
		ds.Notes = append(ds.Notes, pocket.Note{
			Title:        str(r["title"]),
			Content:      str(r["content"]),
			ReminderDate: d.date(r["reminder_date"]),
			CreatedAt:    created,
			UpdatedAt:    created,
		})
	}
	for _, r := range rows[pocket.TablePortfolio] {
		ds.Portfolio = append(ds.Portfolio, pocket.PortfolioTx{
			Date:     d.date(r["date"]),
			Asset:    str(r["asset"]),
			Symbol:   str(r["symbol"]),
			Category: pocket.AssetCategory(str(r["category"])),
			Price:    pocket.M(d.decimal(r["price"]), ""),
			Quantity: pocket.Q(d.decimal(r["quantity"])),
			Notes:    str(r["notes"]),
		})
	}
	for _, r := range rows[pocket.TableLoans] {
		ds.Loans = append(ds.Loans, pocket.Loan{
			Borrower:   str(r["borrower"]),
			Principal:  pocket.M(d.decimal(r["principal"]), ""),
			AnnualRate: pocket.Percent(d.decimal(r["annual_rate"]).InexactFloat64()),
			StartDate:  d.date(r["start_date"]),
			Notes:      str(r["notes"]),
		})
	}
	for _, r := range rows[pocket.TablePayments] {
		ds.Payments = append(ds.Payments, pocket.PaymentRecord{
			LoanPayment: pocket.LoanPayment{
				Date:   d.date(r["date"]),
				Amount: pocket.M(d.decimal(r["amount"]), ""),
			},
			Borrower:  str(r["loan_borrower"]),
			LoanStart: d.date(r["loan_start_date"]),
		})
	}
	return ds, d.err
}
