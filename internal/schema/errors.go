package schema

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingColumn reports a required column that an input table lacks.
	ErrMissingColumn = errors.New("missing column")

	// ErrDuplicateColumn reports two source columns that canonicalize to the
	// same name.
	ErrDuplicateColumn = errors.New("duplicate column")
)

// Error identifies the table and column a schema problem was found in.
// It unwraps to one of the sentinel errors above.
type Error struct {
	Table  string
	Column string
	Err    error
}

func (e *Error) Error() string {
	table := e.Table
	if table == "" {
		table = "<unnamed>"
	}
	return fmt.Sprintf("schema: table %s: %v %q", table, e.Err, e.Column)
}

func (e *Error) Unwrap() error { return e.Err }

// RequireColumns returns a *Error for the first of cols the table lacks.
func RequireColumns(table string, columns []string, cols ...string) error {
	have := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		have[c] = struct{}{}
	}
	for _, c := range cols {
		if _, ok := have[c]; !ok {
			return &Error{Table: table, Column: c, Err: ErrMissingColumn}
		}
	}
	return nil
}
