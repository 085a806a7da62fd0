package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// InsertRows writes rows into table with multi-row INSERT statements inside
// one transaction. table is emitted verbatim, so callers pass it quoted.
// Placeholders are written as '?' and rebound to the driver's bindvar style
// by sqlx. Each statement carries at most maxParams parameters; drivers cap
// this (SQLite 32766, MySQL 65535).
func InsertRows(
	ctx context.Context,
	db *sqlx.DB,
	quote func(string) string,
	table string,
	columns []string,
	rows [][]any,
	maxParams int,
) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("insert %s: columns must not be empty", table)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	per := maxParams / len(columns)
	if per < 1 {
		per = 1
	}

	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quote(c)
	}
	head := fmt.Sprintf("INSERT INTO %s (%s) VALUES ", table, strings.Join(quoted, ", "))
	tuple := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}

	var inserted int64
	for start := 0; start < len(rows); start += per {
		end := start + per
		if end > len(rows) {
			end = len(rows)
		}
		chunk := rows[start:end]

		var sb strings.Builder
		sb.WriteString(head)
		args := make([]any, 0, len(chunk)*len(columns))
		for i, row := range chunk {
			if len(row) != len(columns) {
				_ = tx.Rollback()
				return 0, fmt.Errorf("insert %s: row length %d != columns length %d", table, len(row), len(columns))
			}
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(tuple)
			args = append(args, row...)
		}

		res, err := tx.ExecContext(ctx, tx.Rebind(sb.String()), args...)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("insert %s: %w", table, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			n = int64(len(chunk))
		}
		inserted += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}
