package mirror

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/etnz/pocket"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Queue is the outbox the worker drains.
type Queue interface {
	Outbox(now time.Time, limit int) ([]pocket.OutboxEntry, error)
	Delivered(id int64) error
	Retry(id int64, lastErr string, next time.Time) error
}

const (
	backoffBase = 5 * time.Second
	backoffMax  = time.Hour
)

// Backoff is the delay before the next attempt of an entry that failed attempts times.
func Backoff(attempts int) time.Duration {
	d := backoffBase
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= backoffMax {
			return backoffMax
		}
	}
	return d
}

// Worker delivers the outbox to a remote.
type Worker struct {
	Queue    Queue
	Remote   Remote
	DeviceID string

	Log       logrus.FieldLogger // optional
	Limiter   *rate.Limiter      // paces remote calls, optional
	Now       func() time.Time   // defaults to time.Now
	BatchSize int                // defaults to 50
}

func (w *Worker) now() time.Time {
	if w.Now == nil {
		return time.Now()
	}
	return w.Now()
}

func (w *Worker) log() logrus.FieldLogger {
	if w.Log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		return l
	}
	return w.Log
}

// Drain delivers every due entry once. Failed entries are rescheduled, they
// don't make Drain fail. It returns the count of delivered and failed entries.
func (w *Worker) Drain(ctx context.Context) (delivered, failed int, err error) {
	size := w.BatchSize
	if size <= 0 {
		size = 50
	}
	log := w.log()
	for {
		entries, err := w.Queue.Outbox(w.now(), size)
		if err != nil {
			return delivered, failed, fmt.Errorf("failed to read the outbox: %w", err)
		}
		for _, e := range entries {
			if w.Limiter != nil {
				if err := w.Limiter.Wait(ctx); err != nil {
					return delivered, failed, err
				}
			}
			fields := logrus.Fields{"id": e.ID, "op": e.Intent.Op, "table": e.Intent.Table}
			if err := w.deliver(ctx, e.Intent); err != nil {
				if ctx.Err() != nil {
					return delivered, failed, ctx.Err()
				}
				failed++
				attempts := e.Attempts + 1
				next := w.now().Add(Backoff(attempts))
				log.WithFields(fields).WithField("attempts", attempts).WithError(err).Warn("mirror delivery failed")
				if err := w.Queue.Retry(e.ID, err.Error(), next); err != nil {
					return delivered, failed, err
				}
				continue
			}
			if err := w.Queue.Delivered(e.ID); err != nil {
				return delivered, failed, err
			}
			delivered++
			log.WithFields(fields).Debug("mirrored")
		}
		if len(entries) < size {
			return delivered, failed, nil
		}
	}
}

func (w *Worker) deliver(ctx context.Context, in pocket.Intent) error {
	row, err := RowOf(in)
	if err != nil {
		return fmt.Errorf("invalid intent: %w", err)
	}
	switch in.Op {
	case pocket.OpInsert:
		return w.Remote.Insert(ctx, in.Table, w.DeviceID, row)
	case pocket.OpDelete:
		return w.Remote.Delete(ctx, in.Table, w.DeviceID, KeyOf(in.Table, row))
	}
	return fmt.Errorf("unknown operation %q", in.Op)
}
