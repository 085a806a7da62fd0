// Package output persists a run: CSV files, an XLSX workbook, SQL tables and
// the JSON run report.
//
// Sinks run concurrently and independently. A failure in one sink cancels
// the others, and files already written stay on disk.
package output

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"ecompipe/pkg/records"
)

// DefaultWorkbook is the XLSX file name used when Options.Workbook is empty.
const DefaultWorkbook = "metrics.xlsx"

// Options selects and configures the sinks.
type Options struct {
	// Dir receives every file output. It is created when missing.
	Dir string
	// CSV writes one <name>.csv per derived table.
	CSV bool
	// XLSX writes every derived table as a sheet of Workbook.
	XLSX     bool
	Workbook string
	// SQL loads the derived tables into a database. Nil disables it.
	SQL *SQLOptions

	Logger logrus.FieldLogger
}

// Bundle is what one run hands to Write.
type Bundle struct {
	// Raw tables are written as <name>_raw.csv whenever non-empty.
	Raw []records.Table
	// Derived tables go to every enabled sink when PersistDerived is set.
	Derived        []records.Table
	PersistDerived bool
}

// Result lists what Write produced.
type Result struct {
	Files     []string
	SQLRows   map[string]int64
	Persisted bool
}

// Write runs every enabled sink for b.
func Write(ctx context.Context, opt Options, b Bundle) (*Result, error) {
	log := opt.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	if opt.Dir == "" {
		return nil, fmt.Errorf("output: directory must not be empty")
	}
	if err := os.MkdirAll(opt.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("output: %w", err)
	}

	var (
		mu  sync.Mutex
		res = &Result{Persisted: b.PersistDerived}
	)
	addFile := func(p string) {
		mu.Lock()
		res.Files = append(res.Files, p)
		mu.Unlock()
	}

	g, ctx := errgroup.WithContext(ctx)

	for _, t := range b.Raw {
		t := t
		g.Go(func() error {
			p, err := WriteCSV(ctx, opt.Dir, t.Name+"_raw", t)
			if err != nil {
				return err
			}
			addFile(p)
			return nil
		})
	}

	if b.PersistDerived {
		if opt.CSV {
			for _, t := range b.Derived {
				t := t
				g.Go(func() error {
					p, err := WriteCSV(ctx, opt.Dir, t.Name, t)
					if err != nil {
						return err
					}
					addFile(p)
					return nil
				})
			}
		}
		if opt.XLSX && len(b.Derived) > 0 {
			g.Go(func() error {
				name := opt.Workbook
				if name == "" {
					name = DefaultWorkbook
				}
				p := filepath.Join(opt.Dir, name)
				if err := WriteXLSX(p, b.Derived); err != nil {
					return err
				}
				addFile(p)
				return nil
			})
		}
		if opt.SQL != nil {
			g.Go(func() error {
				start := time.Now()
				n, err := WriteSQL(ctx, log, *opt.SQL, b.Derived)
				if err != nil {
					return err
				}
				mu.Lock()
				res.SQLRows = n
				mu.Unlock()
				log.WithFields(logrus.Fields{
					"kind":    opt.SQL.Kind,
					"tables":  len(n),
					"elapsed": time.Since(start).Truncate(time.Millisecond),
				}).Info("output: sql load complete")
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Strings(res.Files)
	return res, nil
}
