package csv

import (
	"encoding/csv"
	"fmt"
	"io"

	"ecompipe/pkg/records"
)

// WriteTable writes t as CSV with a header row in column order. Null cells
// are written as empty fields.
func WriteTable(w io.Writer, t records.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("csv: write %s header: %w", t.Name, err)
	}
	row := make([]string, len(t.Columns))
	for _, r := range t.Rows {
		for i, c := range t.Columns {
			row[i] = records.String(r[c])
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("csv: write %s: %w", t.Name, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("csv: flush %s: %w", t.Name, err)
	}
	return nil
}
