package ddl

import (
	"strings"

	gddl "ecompipe/internal/ddl"
)

// MapType maps an inferred column kind onto a Postgres type. A few common
// SQL spellings are accepted as well; anything else is TEXT.
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case gddl.KindInt, "integer", "bigint":
		return "BIGINT"
	case gddl.KindFloat, "double", "real":
		return "DOUBLE PRECISION"
	case "numeric", "decimal":
		return "NUMERIC"
	case gddl.KindBool, "boolean":
		return "BOOLEAN"
	case gddl.KindTimestamp, "timestamptz":
		return "TIMESTAMPTZ"
	default:
		return "TEXT"
	}
}
