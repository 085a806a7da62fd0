package storage

// This file implements a generic, batched loader that drains rows from a
// channel and invokes a provided bulk-insert function (CopyFn) per batch.
//
// Backends implement CopyFn with their most efficient primitive: Postgres
// COPY, SQL Server bulk copy, multi-row INSERT for SQLite and MySQL.
//
// Logging: on every successful flush, a debug line is emitted with running
// totals and instantaneous rows/sec since the previous flush.

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"ecompipe/pkg/records"
)

// CopyFn abstracts a backend's bulk insert capability. Implementations should
// insert the provided rows (aligned to 'columns' order) and return the number
// of rows reported as inserted. The rows slice is reused after the call
// returns and must not be retained.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// LoadBatches drains rows from 'in', groups them into batches of size
// 'batchSize', and calls 'copyFn' for each non-empty batch. It returns the
// total number of rows reported by copyFn and the first error encountered.
//
// Cancellation: returns (total, ctx.Err()) when canceled.
func LoadBatches(
	ctx context.Context,
	log logrus.FieldLogger,
	columns []string,
	in <-chan []any,
	batchSize int,
	copyFn CopyFn,
) (int64, error) {
	if batchSize <= 0 {
		return 0, fmt.Errorf("batchSize must be > 0")
	}
	if copyFn == nil {
		return 0, fmt.Errorf("copyFn must not be nil")
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	var (
		total       int64
		batches     int64
		batch       = make([][]any, 0, batchSize)
		start       = time.Now()
		lastFlushTS = start
		lastTotal   int64
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := copyFn(ctx, columns, batch)
		total += n

		batch = batch[:0]

		if err != nil {
			log.WithError(err).WithFields(logrus.Fields{"inserted": n, "total": total}).Error("loader: copy failed")
			return err
		}

		batches++
		now := time.Now()
		sinceLast := now.Sub(lastFlushTS)
		rps := float64(0)
		if sinceLast > 0 {
			rps = float64(total-lastTotal) / sinceLast.Seconds()
		}
		log.WithFields(logrus.Fields{
			"batch":      batches,
			"rps":        int64(rps),
			"inserted":   n,
			"total":      total,
			"elapsed":    now.Sub(start).Truncate(time.Millisecond),
			"since_last": sinceLast.Truncate(time.Millisecond),
		}).Debug("loader: batch flushed")
		lastFlushTS = now
		lastTotal = total
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return total, ctx.Err()

		case row, ok := <-in:
			if !ok {
				if err := flush(); err != nil {
					return total, err
				}
				return total, nil
			}
			batch = append(batch, row)
			if len(batch) >= batchSize {
				if err := flush(); err != nil {
					return total, err
				}
			}
		}
	}
}

// LoadTable streams every row of t into table through repo.CopyFrom in
// batches of batchSize. Cell values pass through SQLValue first.
func LoadTable(
	ctx context.Context,
	log logrus.FieldLogger,
	repo Repository,
	table string,
	t records.Table,
	batchSize int,
) (int64, error) {
	if batchSize <= 0 {
		return 0, fmt.Errorf("batchSize must be > 0")
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	in := make(chan []any, batchSize)
	go func() {
		defer close(in)
		for _, r := range t.Rows {
			row := make([]any, len(t.Columns))
			for i, c := range t.Columns {
				row[i] = SQLValue(r[c])
			}
			select {
			case in <- row:
			case <-ctx.Done():
				return
			}
		}
	}()

	if log != nil {
		log = log.WithField("table", table)
	}
	return LoadBatches(ctx, log, t.Columns, in, batchSize,
		func(ctx context.Context, columns []string, rows [][]any) (int64, error) {
			return repo.CopyFrom(ctx, table, columns, rows)
		})
}
