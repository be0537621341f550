package store

import (
	"database/sql"
	"fmt"

	"github.com/etnz/pocket"
	"github.com/shopspring/decimal"
)

const portfolioColumns = `id, date, asset, symbol, category, price, quantity, notes, created_at`

func (s *DB) scanPortfolioTx(row rowScanner) (pocket.PortfolioTx, error) {
	var (
		p                                 pocket.PortfolioTx
		id, on, category, price, quantity string
		created                           string
	)
	if err := row.Scan(&id, &on, &p.Asset, &p.Symbol, &category, &price, &quantity, &p.Notes, &created); err != nil {
		return p, err
	}
	var err error
	p.ID, p.Category = pocket.ID(id), pocket.AssetCategory(category)
	if p.Date, err = parseDate(on); err != nil {
		return p, err
	}
	if p.Price, err = s.money(price); err != nil {
		return p, err
	}
	q, err := decimal.NewFromString(quantity)
	if err != nil {
		return p, fmt.Errorf("invalid quantity %q: %w", quantity, err)
	}
	p.Quantity = pocket.Q(q)
	if p.CreatedAt, err = parseTime(created); err != nil {
		return p, err
	}
	return p, nil
}

// Portfolio returns every portfolio entry, sorted by date then creation.
func (s *DB) Portfolio() ([]pocket.PortfolioTx, error) {
	rows, err := s.db.Query(`SELECT ` + portfolioColumns + ` FROM portfolio ORDER BY date, created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio: %w", err)
	}
	defer rows.Close()

	var entries []pocket.PortfolioTx
	for rows.Next() {
		p, err := s.scanPortfolioTx(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan portfolio entry: %w", err)
		}
		entries = append(entries, p)
	}
	return entries, rows.Err()
}

// PortfolioTx returns the portfolio entry id.
func (s *DB) PortfolioTx(id pocket.ID) (pocket.PortfolioTx, error) {
	p, err := s.scanPortfolioTx(s.db.QueryRow(`SELECT `+portfolioColumns+` FROM portfolio WHERE id = ?`, string(id)))
	if err != nil {
		return pocket.PortfolioTx{}, notFound(err, "portfolio entry", id)
	}
	return p, nil
}

func insertPortfolio(tx *sql.Tx, entries []pocket.PortfolioTx) error {
	stmt, err := tx.Prepare(`INSERT INTO portfolio (` + portfolioColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("error preparing insert statement: %w", err)
	}
	defer stmt.Close()
	for _, p := range entries {
		_, err := stmt.Exec(string(p.ID), p.Date.String(), p.Asset, p.Symbol, string(p.Category),
			p.Price.Decimal().String(), p.Quantity.String(), p.Notes, formatTime(p.CreatedAt))
		if err != nil {
			return fmt.Errorf("failed to insert portfolio entry %q: %w", p.Asset, err)
		}
	}
	return nil
}

// InsertPortfolio inserts all entries or none.
func (s *DB) InsertPortfolio(entries ...pocket.PortfolioTx) error {
	return s.inTx(func(tx *sql.Tx) error { return insertPortfolio(tx, entries) })
}

// DeletePortfolioTx deletes the portfolio entry id.
func (s *DB) DeletePortfolioTx(id pocket.ID) error {
	res, err := s.db.Exec(`DELETE FROM portfolio WHERE id = ?`, string(id))
	if err != nil {
		return fmt.Errorf("failed to delete portfolio entry %q: %w", id, err)
	}
	return mustAffect(res, "portfolio entry", id)
}

// ReplacePortfolio replaces every portfolio entry with entries.
func (s *DB) ReplacePortfolio(entries []pocket.PortfolioTx) error {
	return s.inTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM portfolio`); err != nil {
			return fmt.Errorf("failed to clear portfolio: %w", err)
		}
		return insertPortfolio(tx, entries)
	})
}
