// Package parser defines the contract shared by the input parsers: bytes in,
// one named records.Table out.
package parser

import (
	"io"

	"ecompipe/pkg/records"
)

// Stats reports what a parser did with rows it could not take verbatim.
type Stats struct {
	Rows    int
	Skipped int
	Padded  int
}

// Parser turns a byte stream into a table.
type Parser interface {
	ParseTable(name string, r io.Reader) (records.Table, Stats, error)
}
