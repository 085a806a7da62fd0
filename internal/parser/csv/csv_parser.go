// Package csv parses delimited text into records.Table and writes tables back
// out as CSV.
//
// The header row is required. Header cells are kept verbatim apart from a
// leading UTF-8 BOM; canonicalization belongs to the schema normalizer. Empty
// cells become nil. Short rows are padded with nil, over-long rows are
// skipped and counted.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"ecompipe/internal/parser"
	"ecompipe/pkg/records"
)

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\uFEFF"

// ErrDuplicateHeader reports two header cells with identical text.
var ErrDuplicateHeader = errors.New("csv: duplicate header")

// Options configures the CSV parser. Zero values are usable.
type Options struct {
	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// Encoding names the input character set: "", "utf-8", "latin1" or
	// "windows-1252".
	Encoding string

	// TrimSpace trims surrounding whitespace from each cell.
	TrimSpace bool

	// LazyQuotes relaxes quote handling for hand-edited exports.
	LazyQuotes bool
}

// Parser parses CSV input according to Options. A Parser holds no per-input
// state and may be shared.
type Parser struct{ opt Options }

var _ parser.Parser = (*Parser)(nil)

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// Decoder returns the decoder for a configured encoding name.
func Decoder(name string) (*encoding.Decoder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "latin1", "iso-8859-1":
		return charmap.ISO8859_1.NewDecoder(), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder(), nil
	default:
		return nil, fmt.Errorf("csv: unsupported encoding %q", name)
	}
}

// ParseTable reads the whole input into a table called name.
func (p *Parser) ParseTable(name string, r io.Reader) (records.Table, parser.Stats, error) {
	var st parser.Stats

	dec, err := Decoder(p.opt.Encoding)
	if err != nil {
		return records.Table{}, st, err
	}
	if dec != nil {
		r = transform.NewReader(r, dec)
	}

	cr := csv.NewReader(r)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.LazyQuotes = p.opt.LazyQuotes
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	h, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return records.Table{}, st, fmt.Errorf("csv: %s: empty input, header row required", name)
		}
		return records.Table{}, st, fmt.Errorf("csv: %s: read header: %w", name, err)
	}
	headers, err := headerRow(h)
	if err != nil {
		return records.Table{}, st, fmt.Errorf("csv: %s: %w", name, err)
	}

	var rows []records.Record
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return records.Table{}, st, fmt.Errorf("csv: %s: %w", name, err)
		}
		if isBlank(row) {
			continue
		}
		if len(row) > len(headers) {
			st.Skipped++
			continue
		}
		if len(row) < len(headers) {
			st.Padded++
		}

		rec := make(records.Record, len(headers))
		for i, col := range headers {
			if i >= len(row) {
				rec[col] = nil
				continue
			}
			val := row[i]
			if p.opt.TrimSpace {
				val = strings.TrimSpace(val)
			}
			rec[col] = emptyToNil(val)
		}
		rows = append(rows, rec)
	}
	st.Rows = len(rows)
	return records.NewTable(name, headers, rows), st, nil
}

// headerRow copies the header cells, strips a BOM from the first one and
// rejects exact duplicates.
func headerRow(h []string) ([]string, error) {
	out := make([]string, len(h))
	seen := make(map[string]struct{}, len(h))
	for i, c := range h {
		if i == 0 {
			c = strings.TrimPrefix(c, utf8BOM)
		}
		if _, dup := seen[c]; dup {
			return nil, fmt.Errorf("%w %q", ErrDuplicateHeader, c)
		}
		seen[c] = struct{}{}
		out[i] = c
	}
	return out, nil
}

// isBlank reports a row whose cells are all empty, such as a trailing line of
// delimiters.
func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// emptyToNil converts an empty string to nil; all other values are returned as-is.
func emptyToNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}
