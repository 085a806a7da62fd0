// Package file implements a local filesystem-backed data source.
package file

import (
	"context"
	"fmt"
	"io"
	"os"

	"ecompipe/internal/datasource"
)

// Local opens one file from the local disk.
type Local struct{ path string }

// NewLocal returns a Local bound to path. Safe for concurrent use.
func NewLocal(path string) *Local { return &Local{path: path} }

// Path returns the bound path.
func (l *Local) Path() string { return l.path }

// Format infers the file format from its extension.
func (l *Local) Format() datasource.Format { return datasource.FormatOf(l.path) }

// Open returns ctx.Err() without touching the disk when ctx is already done.
// Filesystem errors are wrapped with the path and keep errors.Is working
// (e.g. os.ErrNotExist).
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	return f, nil
}
