// Package ddl defines a small, backend-agnostic model for SQL DDL, infers it
// from in-memory tables and renders simple CREATE TABLE statements.
//
// Backend-specific packages (internal/storage/<backend>/ddl) supply the type
// mapping and identifier quoting for their dialect and either call
// BuildCreateTableSQL with their RenderOptions or render the statement
// themselves (SQL Server has no IF NOT EXISTS).
package ddl

import (
	"fmt"
	"strings"
)

// RenderOptions adapts BuildCreateTableSQL to a dialect.
type RenderOptions struct {
	// QuoteIdent quotes one identifier segment. Nil emits names verbatim.
	QuoteIdent func(string) string
	// IfNotExists emits CREATE TABLE IF NOT EXISTS.
	IfNotExists bool
}

func (o RenderOptions) ident(s string) string {
	if o.QuoteIdent == nil {
		return s
	}
	return o.QuoteIdent(s)
}

// QuoteFQN quotes each dotted segment of fqn with quote.
func QuoteFQN(fqn string, quote func(string) string) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if quote != nil {
			p = quote(p)
		}
		out = append(out, p)
	}
	return strings.Join(out, ".")
}

// BuildCreateTableSQL renders a CREATE TABLE statement from a TableDef.
//
// Rules:
//
//   - t.FQN must be non-empty; each dotted segment is quoted separately.
//
//   - Each column must have a non-empty Name and SQLType.
//
//   - A column is rendered as:
//
//     <Name> <SQLType> [NOT NULL] [DEFAULT <Default>]
//
//     where NOT NULL is added when Nullable == false or PrimaryKey == true.
//
//   - Columns with PrimaryKey == true are collected and rendered as a separate
//     PRIMARY KEY (<col1>, <col2>, ...) clause at the end of the column list.
//
//   - The resulting statement has the form:
//
//     CREATE TABLE [IF NOT EXISTS] <FQN> (
//     <col1-def>,
//     <col2-def>,
//     ...,
//     [PRIMARY KEY (<pk-cols>)]
//     );
func BuildCreateTableSQL(t TableDef, opt RenderOptions) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("ddl: table FQN must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("ddl: at least one column is required")
	}

	cols := make([]string, 0, len(t.Columns)+1)
	pks := make([]string, 0, len(t.Columns))

	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("ddl: column with empty name in table %s", fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", fmt.Errorf("ddl: column %s missing SQLType", name)
		}

		var sb strings.Builder
		sb.WriteString(opt.ident(name))
		sb.WriteByte(' ')
		sb.WriteString(typ)

		if !c.Nullable || c.PrimaryKey {
			sb.WriteString(" NOT NULL")
		}

		if def := strings.TrimSpace(c.Default); def != "" {
			sb.WriteString(" DEFAULT ")
			sb.WriteString(def)
		}

		cols = append(cols, sb.String())

		if c.PrimaryKey {
			pks = append(pks, opt.ident(name))
		}
	}

	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	create := "CREATE TABLE "
	if opt.IfNotExists {
		create += "IF NOT EXISTS "
	}
	stmt := fmt.Sprintf(
		"%s%s (\n  %s\n);",
		create,
		QuoteFQN(fqn, opt.QuoteIdent),
		strings.Join(cols, ",\n  "),
	)

	return stmt, nil
}
