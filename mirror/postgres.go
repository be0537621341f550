package mirror

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

//go:embed schema.sql
var schema string

// Postgres is a remote mirror in a PostgreSQL database.
type Postgres struct {
	db *sql.DB
}

// OpenPostgres connects to the database at dsn, a "postgres://" URL, and
// creates the mirror tables if needed.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the mirror: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping the mirror: %w", err)
	}
	p := &Postgres{db: db}
	if err := p.CreateTables(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return p, nil
}

func (p *Postgres) Close() error { return p.db.Close() }

// CreateTables creates the mirror tables if they don't exist.
func (p *Postgres) CreateTables(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create mirror tables: %w", err)
	}
	return nil
}

func (p *Postgres) Insert(ctx context.Context, table, device string, row Row) error {
	if err := checkTable(table); err != nil {
		return err
	}
	cols := append([]string{DeviceColumn}, Columns[table]...)
	names := make([]string, len(cols))
	params := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		names[i] = pq.QuoteIdentifier(c)
		params[i] = fmt.Sprintf("$%d", i+1)
		args[i] = row[c]
	}
	args[0] = device

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		pq.QuoteIdentifier(table), strings.Join(names, ", "), strings.Join(params, ", "))
	if _, err := p.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	return nil
}

func (p *Postgres) Delete(ctx context.Context, table, device string, key Row) error {
	if err := checkTable(table); err != nil {
		return err
	}
	where := []string{pq.QuoteIdentifier(DeviceColumn) + " = $1"}
	args := []any{device}
	for _, c := range keys[table] {
		args = append(args, key[c])
		where = append(where, fmt.Sprintf("%s IS NOT DISTINCT FROM $%d", pq.QuoteIdentifier(c), len(args)))
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s`, pq.QuoteIdentifier(table), strings.Join(where, " AND "))
	if _, err := p.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	return nil
}

func (p *Postgres) Select(ctx context.Context, table, device string) ([]Row, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	cols := Columns[table]
	selected := make([]string, len(cols))
	for i, c := range cols {
		selected[i] = pq.QuoteIdentifier(c) + "::text"
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY id`,
		strings.Join(selected, ", "), pq.QuoteIdentifier(table), pq.QuoteIdentifier(DeviceColumn))
	rows, err := p.db.QueryContext(ctx, query, device)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	var out []Row
	values := make([]sql.NullString, len(cols))
	dest := make([]any, len(cols))
	for i := range values {
		dest[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", table, err)
		}
		row := make(Row, len(cols))
		for i, c := range cols {
			if values[i].Valid {
				row[c] = values[i].String
			} else {
				row[c] = nil
			}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
