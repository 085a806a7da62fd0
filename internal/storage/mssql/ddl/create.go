// Package ddl renders SQL Server DDL for the output tables.
//
// T-SQL has no CREATE TABLE IF NOT EXISTS, so the generic statement is
// wrapped in an IF OBJECT_ID(...) IS NULL guard. Identifiers use bracket
// quoting: [schema].[table], [col].
package ddl

import (
	"context"
	"fmt"
	"strings"

	gddl "ecompipe/internal/ddl"
	"ecompipe/internal/storage"
	"ecompipe/pkg/records"
)

// BuildCreateTableSQL returns a guarded T-SQL script:
//
//	IF OBJECT_ID(N'[dbo].[ecom_unified]', N'U') IS NULL
//	BEGIN
//	CREATE TABLE [dbo].[ecom_unified] (
//	  [product_id] NVARCHAR(MAX) NOT NULL,
//	  ...
//	);
//	END;
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	create, err := gddl.BuildCreateTableSQL(t, gddl.RenderOptions{QuoteIdent: QuoteIdent})
	if err != nil {
		return "", fmt.Errorf("mssql %w", err)
	}
	// N'...' literal: single quotes double.
	name := strings.ReplaceAll(QuoteFQN(t.FQN), "'", "''")
	return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NULL\nBEGIN\n%s\nEND;", name, create), nil
}

// FromTable derives a SQL Server table definition named name from the values
// of t.
func FromTable(name string, t records.Table) (gddl.TableDef, error) {
	return gddl.FromTable(name, t, MapType)
}

// EnsureTable creates def unless it already exists. Safe to repeat.
func EnsureTable(ctx context.Context, repo storage.Repository, def gddl.TableDef) error {
	sql, err := BuildCreateTableSQL(def)
	if err != nil {
		return err
	}
	return repo.Exec(ctx, sql)
}

// QuoteIdent brackets one identifier; a closing bracket doubles.
func QuoteIdent(id string) string {
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}

// QuoteFQN quotes each dotted segment: dbo.ecom_unified -> [dbo].[ecom_unified].
func QuoteFQN(fqn string) string { return gddl.QuoteFQN(fqn, QuoteIdent) }
