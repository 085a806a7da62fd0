// Package schema canonicalizes the column names of raw input tables before
// they are joined.
//
// Policy: every column name is trimmed of surrounding whitespace (and a UTF-8
// BOM), composed to Unicode NFC and, under CaseLower, lower-cased. One
// Normalizer is built per run and applied to all three inputs so that a
// "Product_ID" in one file and a "product_id" in another land on the same join
// key.
package schema

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"ecompipe/pkg/records"
)

// ProductID is the shared join key across catalog, sales and inventory.
const ProductID = "product_id"

// catalogIDAlias is the catalog's alternative spelling of ProductID, as
// served by product APIs.
const catalogIDAlias = "id"

const utf8BOM = "\uFEFF"

// Case selects the case policy applied after trimming.
type Case string

const (
	// CaseLower trims and lower-cases column names. Default.
	CaseLower Case = "lower"
	// CasePreserve only trims column names.
	CasePreserve Case = "preserve"
)

// ParseCase maps a config value onto a Case. Unknown or empty values yield
// CaseLower.
func ParseCase(s string) Case {
	switch Case(strings.ToLower(strings.TrimSpace(s))) {
	case CasePreserve:
		return CasePreserve
	default:
		return CaseLower
	}
}

// Normalizer canonicalizes column names under a single Case policy.
type Normalizer struct {
	Case Case
}

// NewNormalizer returns a Normalizer for c.
func NewNormalizer(c Case) Normalizer {
	return Normalizer{Case: ParseCase(string(c))}
}

// Canonical returns the canonical form of one column name.
func (n Normalizer) Canonical(col string) string {
	s := strings.TrimPrefix(col, utf8BOM)
	s = strings.TrimFunc(s, unicode.IsSpace)
	s = norm.NFC.String(s)
	if n.Case != CasePreserve {
		s = strings.ToLower(s)
	}
	return s
}

// Normalize returns a copy of t with canonical column names. The caller's
// table is never modified. Two columns that collapse onto the same canonical
// name are reported as ErrDuplicateColumn rather than silently merged.
func (n Normalizer) Normalize(t records.Table) (records.Table, error) {
	canon := make([]string, len(t.Columns))
	seen := make(map[string]string, len(t.Columns))
	for i, c := range t.Columns {
		cc := n.Canonical(c)
		if prev, dup := seen[cc]; dup {
			return records.Table{}, &Error{
				Table:  t.Name,
				Column: prev + "|" + c,
				Err:    ErrDuplicateColumn,
			}
		}
		seen[cc] = c
		canon[i] = cc
	}

	out := records.Table{
		Name:    t.Name,
		Columns: canon,
		Rows:    make([]records.Record, len(t.Rows)),
	}
	for ri, r := range t.Rows {
		nr := make(records.Record, len(r))
		for i, c := range t.Columns {
			if v, ok := r[c]; ok {
				nr[canon[i]] = v
			}
		}
		out.Rows[ri] = nr
	}
	return out, nil
}

// NormalizeCatalog normalizes the catalog and then resolves the one
// structural alias: "id" becomes "product_id" when the latter is absent.
func (n Normalizer) NormalizeCatalog(t records.Table) (records.Table, error) {
	out, err := n.Normalize(t)
	if err != nil {
		return records.Table{}, err
	}
	if out.Has(catalogIDAlias) && !out.Has(ProductID) {
		out = out.Rename(catalogIDAlias, ProductID)
	}
	return out, nil
}
