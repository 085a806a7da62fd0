package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"ecompipe/internal/analytics"
	"ecompipe/internal/config"
	"ecompipe/internal/datasource/httpds"
	"ecompipe/internal/diag"
	"ecompipe/internal/ingest"
	"ecompipe/internal/metrics"
	"ecompipe/internal/output"
	pcsv "ecompipe/internal/parser/csv"
	"ecompipe/internal/quality"
	"ecompipe/internal/reconcile"
	"ecompipe/internal/schema"
	"ecompipe/pkg/records"
)

// run executes one pipeline pass and writes the report. A returned error
// means the run was aborted; a failed quality gate is reported, not returned.
func run(ctx context.Context, cfg *config.Pipeline, log logrus.FieldLogger) (*output.Report, error) {
	report := output.NewReport(cfg.Job, time.Now())
	log = log.WithFields(logrus.Fields{"job": cfg.Job, "run_id": report.RunID})
	log.Info("pipeline started")

	norm := schema.NewNormalizer(schema.ParseCase(cfg.Processing.ColumnCase))

	// ingest
	var in *ingest.Inputs
	err := metrics.Time(cfg.Job, metrics.StepIngest, func() error {
		var err error
		in, err = ingest.Load(ctx, ingestOptions(cfg, norm, log))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	report.CatalogOrigin = string(in.CatalogOrigin)
	report.Inputs[ingest.CatalogTable] = in.Catalog.Len()
	report.Inputs[ingest.SalesTable] = in.Sales.Len()
	report.Inputs[ingest.InventoryTable] = in.Inventory.Len()
	report.Diagnostics.Extend(in.Diagnostics)
	metrics.RecordRow(cfg.Job, metrics.RowsSales, int64(in.Sales.Len()))
	log.WithFields(logrus.Fields{
		"catalog_origin": in.CatalogOrigin,
		"catalog":        humanize.Comma(int64(in.Catalog.Len())),
		"sales":          humanize.Comma(int64(in.Sales.Len())),
		"inventory":      humanize.Comma(int64(in.Inventory.Len())),
		"elapsed":        in.LoadTime.Truncate(time.Millisecond),
	}).Info("inputs loaded")
	if in.CatalogOrigin == ingest.OriginDerived {
		log.Warn("catalog derived from sales; prices are unknown")
	}

	// normalize
	var catalog, sales, inventory records.Table
	err = metrics.Time(cfg.Job, metrics.StepNormalize, func() error {
		var err error
		if catalog, err = norm.NormalizeCatalog(in.Catalog); err != nil {
			return err
		}
		if sales, err = norm.Normalize(in.Sales); err != nil {
			return err
		}
		inventory, err = norm.Normalize(in.Inventory)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}

	// reconcile
	var rec *reconcile.Result
	err = metrics.Time(cfg.Job, metrics.StepReconcile, func() error {
		var err error
		rec, err = reconcile.Reconcile(catalog, sales, inventory, reconcile.DefaultOptions())
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("reconcile: %w", err)
	}
	report.RowsMerged = rec.Unified.Len()
	report.Unmatched = output.UnmatchedKeys{Catalog: rec.CatalogMisses, Inventory: rec.InventoryMisses}
	report.Diagnostics.Extend(rec.Diagnostics)
	metrics.RecordRow(cfg.Job, metrics.RowsMerged, int64(rec.Unified.Len()))
	metrics.RecordRow(cfg.Job, metrics.RowsUnmatchedCatalog, int64(rec.CatalogMisses.Rows))
	metrics.RecordRow(cfg.Job, metrics.RowsUnmatchedInventory, int64(rec.InventoryMisses.Rows))
	log.WithFields(logrus.Fields{
		"rows_merged":         humanize.Comma(int64(rec.Unified.Len())),
		"unmatched_catalog":   rec.CatalogMisses.Rows,
		"unmatched_inventory": rec.InventoryMisses.Rows,
	}).Info("datasets reconciled")

	// analytics
	var res *analytics.Result
	err = metrics.Time(cfg.Job, metrics.StepAnalytics, func() error {
		var err error
		res, err = analytics.Compute(rec.Unified, analytics.Options{
			CriticalStockThreshold: cfg.Processing.CriticalStockThreshold,
			CostRatio:              cfg.Processing.CostRatio,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("analytics: %w", err)
	}
	report.Diagnostics.Extend(res.Diagnostics)
	log.WithFields(logrus.Fields{
		"grand_total":    res.GrandTotal.StringFixed(2),
		"categories":     len(res.SalesByCategory),
		"critical_stock": len(res.CriticalStock),
	}).Info("metrics computed")

	// quality
	qcStart := time.Now()
	valid := cfg.Quality.ValidCategories
	if len(valid) == 0 {
		valid = quality.DistinctCategories(res.Unified)
		log.Warn("quality: no valid_categories configured; using the categories present in the data")
	}
	// Headers were canonicalized on ingest, so the configured column is too.
	qc := quality.Run(res.Unified, quality.Params{
		ValidCategories: valid,
		DateColumn:      norm.Canonical(cfg.Quality.DateColumn),
		DateLayouts:     cfg.Quality.DateLayouts,
	})
	metrics.RecordStep(cfg.Job, metrics.StepQuality, nil, time.Since(qcStart))
	report.SetQuality(qc)
	metrics.RecordRow(cfg.Job, metrics.RowsQualityFailed, int64(len(report.FailedChecks)))
	for _, c := range qc.Checks {
		entry := log.WithFields(logrus.Fields{"check": c.Name, "passed": c.Passed, "result": c.Diagnostic})
		if c.Passed {
			entry.Info("quality check")
		} else {
			entry.Warn("quality check")
		}
	}

	persist := report.GatePassed || !cfg.Quality.Enforce
	if !persist {
		log.WithField("failed_checks", report.FailedChecks).Warn("quality gate failed; derived outputs are not persisted")
	}

	// output
	var written *output.Result
	err = metrics.Time(cfg.Job, metrics.StepOutput, func() error {
		var err error
		written, err = output.Write(ctx, outputOptions(cfg, log), output.Bundle{
			Raw:            rawTables(cfg, in),
			Derived:        derivedTables(res),
			PersistDerived: persist,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("output: %w", err)
	}

	report.Tables = output.Summarize(derivedTables(res))
	report.Persisted = written.Persisted
	report.Files = written.Files
	report.SQLRows = written.SQLRows
	for table, n := range written.SQLRows {
		metrics.RecordSQLRows(cfg.Job, table, n)
	}
	logDiagnostics(log, report.Diagnostics)

	report.Finish(time.Now())
	if err := output.WriteReport(cfg.Outputs.ReportPath, report); err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"files":       len(report.Files),
		"gate_passed": report.GatePassed,
		"report":      cfg.Outputs.ReportPath,
	}).Info("outputs written")
	return report, nil
}

func ingestOptions(cfg *config.Pipeline, norm schema.Normalizer, log logrus.FieldLogger) ingest.Options {
	var headers http.Header
	if len(cfg.API.Headers) > 0 {
		headers = make(http.Header, len(cfg.API.Headers))
		for k, v := range cfg.API.Headers {
			headers.Set(k, v)
		}
	}
	comma := ','
	if cfg.DataSources.Delimiter != "" {
		comma = rune(cfg.DataSources.Delimiter[0])
	}
	return ingest.Options{
		CatalogURL:     cfg.API.URL,
		CatalogHeaders: headers,
		Client: httpds.NewClient(httpds.Config{
			Timeout:        cfg.API.TimeoutDuration(),
			MaxRetries:     cfg.API.Retries,
			InitialBackoff: cfg.API.Backoff,
		}),
		FallbackFile:  cfg.DataSources.ProductsFallbackFile,
		SalesFile:     cfg.DataSources.SalesFile,
		InventoryFile: cfg.DataSources.InventoryFile,
		CSV: pcsv.Options{
			Comma:    comma,
			Encoding: cfg.DataSources.Encoding,
		},
		Normalizer: norm,
		Logger:     log.WithField("step", metrics.StepIngest),
	}
}

func outputOptions(cfg *config.Pipeline, log logrus.FieldLogger) output.Options {
	opt := output.Options{
		Dir:      cfg.Processing.OutputPath,
		CSV:      cfg.Outputs.CSV,
		XLSX:     cfg.Outputs.XLSX,
		Workbook: output.DefaultWorkbook,
		Logger:   log.WithField("step", metrics.StepOutput),
	}
	if cfg.Storage.Kind != "" && cfg.Storage.Kind != "none" {
		opt.SQL = &output.SQLOptions{
			Kind:        cfg.Storage.Kind,
			DSN:         cfg.Storage.DSN,
			TablePrefix: cfg.Storage.TablePrefix,
			AutoCreate:  cfg.Storage.AutoCreateTable,
			Truncate:    cfg.Storage.Truncate,
			BatchSize:   cfg.Storage.BatchSize,
		}
	}
	return opt
}

func rawTables(cfg *config.Pipeline, in *ingest.Inputs) []records.Table {
	if !cfg.Outputs.RawSnapshots {
		return nil
	}
	return []records.Table{in.Sales, in.Inventory, in.Catalog}
}

// derivedTables returns the analytics tables in output order.
func derivedTables(res *analytics.Result) []records.Table {
	byName := res.Tables()
	out := make([]records.Table, 0, len(analytics.TableNames))
	for _, name := range analytics.TableNames {
		out = append(out, byName[name])
	}
	return out
}

func logDiagnostics(log logrus.FieldLogger, l diag.List) {
	for _, d := range l {
		f := logrus.Fields{"stage": d.Stage, "code": d.Code, "count": d.Count}
		if d.Detail != "" {
			f["detail"] = d.Detail
		}
		log.WithFields(f).Warn("diagnostic")
	}
}
