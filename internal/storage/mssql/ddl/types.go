package ddl

import gddl "ecompipe/internal/ddl"

// MapType maps an inferred column kind onto a SQL Server type. Text and
// unknown kinds become NVARCHAR(MAX).
func MapType(kind string) string {
	switch kind {
	case gddl.KindInt:
		return "BIGINT"
	case gddl.KindFloat:
		return "FLOAT"
	case gddl.KindBool:
		return "BIT"
	case gddl.KindTimestamp:
		return "DATETIME2"
	default:
		return "NVARCHAR(MAX)"
	}
}
