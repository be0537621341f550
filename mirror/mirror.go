// Package mirror replicates a book to a remote database, one device at a time.
//
// Local writes are queued as intents in the store outbox, a [Worker] delivers
// them to a [Remote]. A [Mirror] reads the remote copy back for restores.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/etnz/pocket"
	"github.com/sirupsen/logrus"
)

// Remote is a database holding the copy of every device, partitioned by device id.
type Remote interface {
	Insert(ctx context.Context, table, device string, row Row) error
	// Delete removes the rows of device matching every column of key.
	Delete(ctx context.Context, table, device string, key Row) error
	Select(ctx context.Context, table, device string) ([]Row, error)
}

// Open returns the remote at addr, a PostgreSQL database for "postgres://"
// URLs and a PostgREST endpoint for "http(s)://" ones.
func Open(ctx context.Context, addr, key string, log logrus.FieldLogger) (Remote, error) {
	switch {
	case strings.HasPrefix(addr, "postgres://"), strings.HasPrefix(addr, "postgresql://"):
		return OpenPostgres(ctx, addr)
	case strings.HasPrefix(addr, "http://"), strings.HasPrefix(addr, "https://"):
		return NewREST(addr, key, log), nil
	}
	return nil, fmt.Errorf("unsupported remote %q", addr)
}

// Mirror reads the remote copy of a device.
type Mirror struct {
	Remote Remote
}

var _ pocket.Fetcher = Mirror{}

// Fetch reads every table of device. Tables are independent: a failing table
// is reported in the joined error, and the others are still returned.
func (m Mirror) Fetch(ctx context.Context, device string) (pocket.Dataset, error) {
	var (
		errs []error
		rows = make(map[string][]Row, len(pocket.Tables))
	)
	for _, table := range pocket.Tables {
		r, err := m.Remote.Select(ctx, table, device)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		rows[table] = r
	}
	ds, err := Records(rows)
	if err != nil {
		errs = append(errs, err)
	}
	return ds, errors.Join(errs...)
}
