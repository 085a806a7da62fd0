package builtin

import (
	"strings"

	"ecompipe/pkg/records"
)

// Normalize cleans string cells: NO-BREAK SPACE becomes a plain space,
// surrounding whitespace is trimmed and a cell left empty becomes nil so that
// coercion treats it as missing. Non-string values are left alone.
type Normalize struct{}

func (Normalize) Apply(in []records.Record) []records.Record {
	for _, r := range in {
		for k, v := range r {
			s, ok := v.(string)
			if !ok {
				continue
			}
			if strings.ContainsRune(s, '\u00a0') {
				s = strings.ReplaceAll(s, "\u00a0", " ")
			}
			s = strings.TrimSpace(s)
			if s == "" {
				r[k] = nil
				continue
			}
			r[k] = s
		}
	}
	return in
}
