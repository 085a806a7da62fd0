package ddl

import gddl "ecompipe/internal/ddl"

// MapType maps an inferred column kind onto a SQLite type affinity. Bools
// are stored as 0/1 and timestamps as ISO-8601 text.
func MapType(kind string) string {
	switch kind {
	case gddl.KindInt, gddl.KindBool:
		return "INTEGER"
	case gddl.KindFloat:
		return "REAL"
	default:
		return "TEXT"
	}
}
