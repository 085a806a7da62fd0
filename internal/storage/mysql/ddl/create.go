// Package ddl provides MySQL-specific helpers for generating CREATE TABLE
// statements from the generic ddl.TableDef model.
//
// The builder here:
//   - Quotes identifiers with backticks: `schema`.`table`, `col`.
//   - Emits CREATE TABLE IF NOT EXISTS.
package ddl

import (
	"context"
	"strings"

	gddl "ecompipe/internal/ddl"
	"ecompipe/internal/storage"
	"ecompipe/pkg/records"
)

// BuildCreateTableSQL returns a MySQL CREATE TABLE IF NOT EXISTS statement.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	return gddl.BuildCreateTableSQL(t, gddl.RenderOptions{QuoteIdent: QuoteIdent, IfNotExists: true})
}

// FromTable derives a MySQL table definition named name from the values of t.
func FromTable(name string, t records.Table) (gddl.TableDef, error) {
	return gddl.FromTable(name, t, MapType)
}

// EnsureTable creates the target table if it does not exist.
func EnsureTable(ctx context.Context, repo storage.Repository, def gddl.TableDef) error {
	sql, err := BuildCreateTableSQL(def)
	if err != nil {
		return err
	}
	return repo.Exec(ctx, sql)
}

// QuoteIdent wraps one identifier in backticks, doubling embedded backticks.
func QuoteIdent(id string) string {
	return "`" + strings.ReplaceAll(id, "`", "``") + "`"
}

// QuoteFQN quotes each dotted segment of a table name.
func QuoteFQN(fqn string) string { return gddl.QuoteFQN(fqn, QuoteIdent) }
