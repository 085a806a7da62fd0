// Package builtin contains reusable record transformers.
//
// DeDup collapses records that share a key and keeps one winner per key:
//
//   - "keep-first"   : the earliest occurrence (default)
//   - "keep-last"    : the latest occurrence
//   - "most-complete": the record with the most non-null fields; ties break
//     towards the earliest occurrence
//
// Keys are built from records.KeyString so that 1 and "1" collide. Records
// whose key has a null part are passed through untouched: a null key never
// joins, so there is nothing to collapse.
package builtin

import (
	"sort"
	"strings"

	"ecompipe/pkg/records"
)

// DeDup implements a configurable, in-memory de-duplication policy.
type DeDup struct {
	// Keys are the field names forming the key, e.g. ["product_id"].
	Keys []string

	// Policy selects the winner among duplicates.
	Policy string
}

// Apply returns the winning records in original input order.
func (d DeDup) Apply(in []records.Record) []records.Record {
	kept, _ := d.Split(in)
	return kept
}

// Split returns the winners (in input order) and the records that lost to
// them (in input order).
func (d DeDup) Split(in []records.Record) (kept, dropped []records.Record) {
	if len(in) == 0 || len(d.Keys) == 0 {
		return in, nil
	}

	policy := strings.ToLower(strings.TrimSpace(d.Policy))
	if policy == "" {
		policy = "keep-first"
	}

	type slot struct {
		index int
		score int
	}
	winners := make(map[string]slot, len(in))

	for i, r := range in {
		key, ok := d.keyOf(r)
		if !ok {
			continue
		}
		prev, exists := winners[key]
		switch policy {
		case "keep-last":
			winners[key] = slot{index: i}
		case "most-complete":
			s := slot{index: i, score: completeness(r)}
			if !exists || s.score > prev.score {
				winners[key] = s
			}
		default:
			if !exists {
				winners[key] = slot{index: i}
			}
		}
	}

	win := make([]int, 0, len(winners))
	for _, s := range winners {
		win = append(win, s.index)
	}
	sort.Ints(win)

	kept = make([]records.Record, 0, len(in))
	next := 0
	for i, r := range in {
		if _, ok := d.keyOf(r); !ok {
			kept = append(kept, r)
			continue
		}
		if next < len(win) && win[next] == i {
			kept = append(kept, r)
			next++
			continue
		}
		dropped = append(dropped, r)
	}
	return kept, dropped
}

func (d DeDup) keyOf(r records.Record) (string, bool) {
	var b strings.Builder
	for i, k := range d.Keys {
		s, ok := records.KeyString(r[k])
		if !ok {
			return "", false
		}
		if i > 0 {
			b.WriteByte('\x1f')
		}
		b.WriteString(s)
	}
	return b.String(), true
}

func completeness(r records.Record) int {
	n := 0
	for _, v := range r {
		if !records.IsNull(v) {
			n++
		}
	}
	return n
}
