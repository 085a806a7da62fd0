// Package diag carries non-fatal findings out of the core stages.
//
// The normalizer, reconciler, coercion and analytics code never log. They
// return a List, and the caller decides how to report it (log lines, the run
// report, metrics).
package diag

import "fmt"

// Diagnostic is a single counted finding.
type Diagnostic struct {
	Stage  string `json:"stage"`
	Code   string `json:"code"`
	Count  int    `json:"count"`
	Detail string `json:"detail,omitempty"`
}

func (d Diagnostic) String() string {
	if d.Detail != "" {
		return fmt.Sprintf("%s/%s=%d (%s)", d.Stage, d.Code, d.Count, d.Detail)
	}
	return fmt.Sprintf("%s/%s=%d", d.Stage, d.Code, d.Count)
}

// List is an ordered collection of diagnostics.
type List []Diagnostic

// Add appends a diagnostic when count is positive. Zero counts are noise.
func (l *List) Add(stage, code string, count int, detail string) {
	if count <= 0 {
		return
	}
	*l = append(*l, Diagnostic{Stage: stage, Code: code, Count: count, Detail: detail})
}

// Extend appends all of other.
func (l *List) Extend(other List) {
	*l = append(*l, other...)
}

// Count returns the count recorded for stage/code, or 0.
func (l List) Count(stage, code string) int {
	n := 0
	for _, d := range l {
		if d.Stage == stage && d.Code == code {
			n += d.Count
		}
	}
	return n
}
