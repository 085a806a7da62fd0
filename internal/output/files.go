package output

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"

	pcsv "ecompipe/internal/parser/csv"
	"ecompipe/pkg/records"
)

// WriteCSV writes t to dir/<name>.csv and returns the path. The file is
// written to a temporary name first and renamed into place.
func WriteCSV(ctx context.Context, dir, name string, t records.Table) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path := filepath.Join(dir, name+".csv")
	err := writeAtomic(path, func(f *os.File) error {
		w := bufio.NewWriter(f)
		if err := pcsv.WriteTable(w, t); err != nil {
			return err
		}
		return w.Flush()
	})
	if err != nil {
		return "", fmt.Errorf("output: %s: %w", path, err)
	}
	return path, nil
}

func writeAtomic(path string, fill func(*os.File) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := fill(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
