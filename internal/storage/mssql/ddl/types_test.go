package ddl

import (
	"testing"

	gddl "ecompipe/internal/ddl"
)

func TestMapType(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		gddl.KindInt:       "BIGINT",
		gddl.KindFloat:     "FLOAT",
		gddl.KindBool:      "BIT",
		gddl.KindTimestamp: "DATETIME2",
		gddl.KindText:      "NVARCHAR(MAX)",
		"":                 "NVARCHAR(MAX)",
	}
	for kind, want := range tests {
		if got := MapType(kind); got != want {
			t.Errorf("MapType(%q) = %q, want %q", kind, got, want)
		}
	}
}
