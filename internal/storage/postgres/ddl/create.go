// Package ddl renders Postgres DDL for the output tables: double-quoted
// identifiers and CREATE TABLE IF NOT EXISTS.
package ddl

import (
	"context"
	"strings"

	gddl "ecompipe/internal/ddl"
	"ecompipe/internal/storage"
	"ecompipe/pkg/records"
)

// BuildCreateTableSQL returns a Postgres CREATE TABLE IF NOT EXISTS statement
// for the given table definition, with double-quoted identifiers.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	return gddl.BuildCreateTableSQL(t, gddl.RenderOptions{QuoteIdent: quoteIdent, IfNotExists: true})
}

// FromTable derives a Postgres table definition named name from the values of t.
func FromTable(name string, t records.Table) (gddl.TableDef, error) {
	return gddl.FromTable(name, t, MapType)
}

// EnsureTable issues the CREATE TABLE IF NOT EXISTS for def.
func EnsureTable(ctx context.Context, repo storage.Repository, def gddl.TableDef) error {
	sql, err := BuildCreateTableSQL(def)
	if err != nil {
		return err
	}
	return repo.Exec(ctx, sql)
}

func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// QuoteFQN quotes a possibly schema-qualified name like "public.ecom_unified"
// to "public"."ecom_unified"; empty segments are dropped.
func QuoteFQN(fqn string) string { return gddl.QuoteFQN(fqn, quoteIdent) }
