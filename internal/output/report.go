package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/xxh3"

	"ecompipe/internal/diag"
	"ecompipe/internal/quality"
	"ecompipe/internal/reconcile"
	"ecompipe/pkg/records"
)

// Report is the JSON summary of one run.
type Report struct {
	RunID      string    `json:"run_id"`
	Job        string    `json:"job"`
	RunAt      time.Time `json:"run_at"`
	FinishedAt time.Time `json:"finished_at"`
	DurationMS int64     `json:"duration_ms"`

	CatalogOrigin string         `json:"catalog_origin"`
	Inputs        map[string]int `json:"inputs"`
	RowsMerged    int            `json:"rows_merged"`
	Unmatched     UnmatchedKeys  `json:"unmatched"`

	Tables []TableSummary `json:"tables"`

	QC           map[string]quality.Result `json:"qc"`
	GatePassed   bool                      `json:"gate_passed"`
	FailedChecks []string                  `json:"failed_checks,omitempty"`
	Persisted    bool                      `json:"persisted"`

	Files       []string         `json:"files,omitempty"`
	SQLRows     map[string]int64 `json:"sql_rows,omitempty"`
	Diagnostics diag.List        `json:"diagnostics"`
}

// UnmatchedKeys reports both joins of the reconciliation.
type UnmatchedKeys struct {
	Catalog   reconcile.Unmatched `json:"catalog"`
	Inventory reconcile.Unmatched `json:"inventory"`
}

// TableSummary identifies one derived table by size and content.
type TableSummary struct {
	Name        string `json:"name"`
	Rows        int    `json:"rows"`
	Fingerprint string `json:"fingerprint"`
}

// NewReport starts a report with a fresh run id.
func NewReport(job string, runAt time.Time) *Report {
	return &Report{
		RunID:  uuid.NewString(),
		Job:    job,
		RunAt:  runAt.UTC(),
		Inputs: map[string]int{},
	}
}

// Finish stamps the end time and duration.
func (r *Report) Finish(at time.Time) {
	r.FinishedAt = at.UTC()
	r.DurationMS = r.FinishedAt.Sub(r.RunAt).Milliseconds()
}

// SetQuality copies the gate outcome into the report.
func (r *Report) SetQuality(q quality.Report) {
	r.QC = q.Map()
	r.GatePassed = q.Passed()
	r.FailedChecks = q.Failed()
}

// Summarize returns name, row count and fingerprint for each table.
func Summarize(tables []records.Table) []TableSummary {
	out := make([]TableSummary, len(tables))
	for i, t := range tables {
		out[i] = TableSummary{Name: t.Name, Rows: t.Len(), Fingerprint: Fingerprint(t)}
	}
	return out
}

// Fingerprint is an xxh3 hash of the columns and cells of t, in order, as a
// 16-digit hex string. Two runs over the same inputs produce the same
// fingerprint; null and empty string cells hash differently.
func Fingerprint(t records.Table) string {
	h := xxh3.New()
	for _, c := range t.Columns {
		io.WriteString(h, c)
		h.Write([]byte{0x1f})
	}
	h.Write([]byte{0x1e})
	for _, r := range t.Rows {
		for _, c := range t.Columns {
			v := r[c]
			if v == nil {
				h.Write([]byte{0x00})
			} else {
				io.WriteString(h, records.String(v))
			}
			h.Write([]byte{0x1f})
		}
		h.Write([]byte{0x1e})
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

// WriteReport writes r as indented JSON to path, creating parent directories.
func WriteReport(path string, r *Report) error {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("output: encode report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	err = writeAtomic(path, func(f *os.File) error {
		_, err := f.Write(append(b, '\n'))
		return err
	})
	if err != nil {
		return fmt.Errorf("output: write report %s: %w", path, err)
	}
	return nil
}
