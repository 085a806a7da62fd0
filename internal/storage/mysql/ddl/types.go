// Package ddl contains MySQL-specific helpers for generating DDL.
package ddl

import "strings"

// MapType maps a logical type string into a MySQL column type.
//
//	"int"/"integer"/"bigint"       -> BIGINT
//	"bool"/"boolean"               -> BOOLEAN (TINYINT(1))
//	"float"/"double"/"real"        -> DOUBLE
//	"numeric"/"decimal"            -> DECIMAL(38, 10)
//	"date"                         -> DATE
//	"timestamp"/"datetime"         -> DATETIME(6)
//	everything else                -> TEXT
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "int", "integer", "bigint":
		return "BIGINT"
	case "bool", "boolean":
		return "BOOLEAN"
	case "float", "double", "real":
		return "DOUBLE"
	case "numeric", "decimal":
		return "DECIMAL(38, 10)"
	case "date":
		return "DATE"
	case "timestamp", "datetime", "timestamptz":
		return "DATETIME(6)"
	default:
		return "TEXT"
	}
}
