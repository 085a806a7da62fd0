package output

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"ecompipe/pkg/records"
)

// WriteXLSX writes each table to its own sheet of a new workbook at path.
// Sheets are named after the tables, in order.
func WriteXLSX(path string, tables []records.Table) error {
	if len(tables) == 0 {
		return fmt.Errorf("output: xlsx %s: no tables", path)
	}
	f := excelize.NewFile()
	defer f.Close()

	for i, t := range tables {
		sheet := t.Name
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
				return fmt.Errorf("output: xlsx sheet %s: %w", sheet, err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("output: xlsx sheet %s: %w", sheet, err)
		}

		header := make([]any, len(t.Columns))
		for j, c := range t.Columns {
			header[j] = c
		}
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return fmt.Errorf("output: xlsx %s header: %w", sheet, err)
		}

		for r, rec := range t.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return err
			}
			row := make([]any, len(t.Columns))
			for j, c := range t.Columns {
				row[j] = cellValue(rec[c])
			}
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				return fmt.Errorf("output: xlsx %s row %d: %w", sheet, r+1, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("output: xlsx %s: %w", path, err)
	}
	return nil
}

// cellValue maps a record value onto a type excelize renders natively.
func cellValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case string, bool, int, int64, int32, float64, float32, time.Time:
		return x
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	default:
		return records.String(x)
	}
}
