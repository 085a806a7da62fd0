// Package json turns JSON documents into records.Table.
//
// Accepted inputs:
//
//   - a top-level array of objects (the shape product APIs return)
//   - a single object
//   - a stream of objects (NDJSON)
//
// Nested objects are flattened into dotted column names ("rating.rate"), and
// arrays are kept as compact JSON text. Column order follows first appearance
// in the document. Numbers are decoded as json.Number so that callers decide
// how to coerce them.
package json

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"ecompipe/internal/parser"
	"ecompipe/pkg/records"
)

// Options configures the JSON parser.
type Options struct {
	// Separator joins nested keys. Defaults to ".".
	Separator string
}

// Parser implements parser.Parser for JSON input.
type Parser struct{ opt Options }

var _ parser.Parser = (*Parser)(nil)

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser {
	if opt.Separator == "" {
		opt.Separator = "."
	}
	return &Parser{opt: opt}
}

// ParseTable decodes every object in r into one row of a table called name.
func (p *Parser) ParseTable(name string, r io.Reader) (records.Table, parser.Stats, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	b := &builder{sep: p.opt.Separator, seen: map[string]struct{}{}}
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return records.Table{}, parser.Stats{}, fmt.Errorf("json: %s: %w", name, err)
		}
		switch tok {
		case json.Delim('['):
			for i := 0; dec.More(); i++ {
				open, err := dec.Token()
				if err != nil {
					return records.Table{}, parser.Stats{}, fmt.Errorf("json: %s: element %d: %w", name, i, err)
				}
				if open != json.Delim('{') {
					return records.Table{}, parser.Stats{}, fmt.Errorf("json: %s: element %d is not an object", name, i)
				}
				if err := b.row(dec); err != nil {
					return records.Table{}, parser.Stats{}, fmt.Errorf("json: %s: element %d: %w", name, i, err)
				}
			}
			if _, err := dec.Token(); err != nil {
				return records.Table{}, parser.Stats{}, fmt.Errorf("json: %s: %w", name, err)
			}
		case json.Delim('{'):
			if err := b.row(dec); err != nil {
				return records.Table{}, parser.Stats{}, fmt.Errorf("json: %s: %w", name, err)
			}
		default:
			return records.Table{}, parser.Stats{}, fmt.Errorf("json: %s: unsupported top-level value %v", name, tok)
		}
	}

	// objects lacking a column get an explicit nil
	for _, r := range b.rows {
		for _, c := range b.cols {
			if _, ok := r[c]; !ok {
				r[c] = nil
			}
		}
	}
	return records.NewTable(name, b.cols, b.rows), parser.Stats{Rows: len(b.rows)}, nil
}

type builder struct {
	sep  string
	cols []string
	seen map[string]struct{}
	rows []records.Record
}

// row reads the remainder of an object whose '{' was already consumed.
func (b *builder) row(dec *json.Decoder) error {
	rec := records.Record{}
	if err := b.object(dec, "", rec); err != nil {
		return err
	}
	b.rows = append(b.rows, rec)
	return nil
}

func (b *builder) object(dec *json.Decoder, prefix string, rec records.Record) error {
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := kt.(string)
		if !ok {
			return fmt.Errorf("unexpected key %v", kt)
		}
		col := prefix + key

		vt, err := dec.Token()
		if err != nil {
			return err
		}
		switch vt {
		case json.Delim('{'):
			if err := b.object(dec, col+b.sep, rec); err != nil {
				return err
			}
			continue
		case json.Delim('['):
			arr, err := array(dec)
			if err != nil {
				return err
			}
			enc, err := json.Marshal(arr)
			if err != nil {
				return err
			}
			b.set(rec, col, string(enc))
		default:
			b.set(rec, col, vt)
		}
	}
	_, err := dec.Token() // '}'
	return err
}

func (b *builder) set(rec records.Record, col string, v any) {
	if _, ok := b.seen[col]; !ok {
		b.seen[col] = struct{}{}
		b.cols = append(b.cols, col)
	}
	rec[col] = v
}

// array reads the remainder of an array whose '[' was already consumed.
func array(dec *json.Decoder) ([]any, error) {
	out := []any{}
	for dec.More() {
		v, err := value(dec)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	_, err := dec.Token() // ']'
	return out, err
}

func value(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch tok {
	case json.Delim('['):
		return array(dec)
	case json.Delim('{'):
		m := map[string]any{}
		for dec.More() {
			kt, err := dec.Token()
			if err != nil {
				return nil, err
			}
			k, _ := kt.(string)
			v, err := value(dec)
			if err != nil {
				return nil, err
			}
			m[k] = v
		}
		_, err := dec.Token()
		return m, err
	default:
		return tok, nil
	}
}
