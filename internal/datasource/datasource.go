// Package datasource defines where input bytes come from. Parsers never open
// files or sockets themselves; they read from a Source.
package datasource

import (
	"context"
	"io"
	"path/filepath"
	"strings"
)

// Source yields a fresh reader over its bytes on every Open.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Format names how a source's bytes are encoded.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// FormatOf infers the format from a path or URL extension. Anything that is
// not .json is treated as CSV.
func FormatOf(name string) Format {
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return FormatJSON
	default:
		return FormatCSV
	}
}
