package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding for a Pipeline.
//
// Path is a dotted path into the YAML document (e.g. "storage.dsn").
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue has SeverityError.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// structValidator returns a validator that reports fields by their YAML name.
func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// ValidatePipeline performs static validation / linting of a Pipeline.
//
// Struct-tag rules become errors. Combinations that run but probably do not
// do what the operator wants become warnings. The pipeline is not mutated.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if err := structValidator().Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return []Issue{{Severity: SeverityError, Path: "", Message: err.Error()}}
		}
		for _, fe := range verrs {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     issuePath(fe.Namespace()),
				Message:  describe(fe),
			})
		}
	}

	issues = append(issues, lintCatalog(p)...)
	issues = append(issues, lintProcessing(p.Processing)...)
	issues = append(issues, lintQuality(p.Quality)...)
	issues = append(issues, lintOutputs(p)...)
	issues = append(issues, lintMetrics(p.Metrics)...)
	return issues
}

// issuePath drops the root struct name from a validator namespace.
func issuePath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be empty"
	case "required_unless":
		return fmt.Sprintf("must not be empty unless %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %q", fe.Param(), fmt.Sprint(fe.Value()))
	case "url":
		return fmt.Sprintf("must be a valid URL, got %q", fmt.Sprint(fe.Value()))
	case "len":
		return fmt.Sprintf("must have length %s", fe.Param())
	case "gte", "gt", "lte":
		return fmt.Sprintf("must be %s %s, got %v", fe.Tag(), fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}

func lintCatalog(p Pipeline) []Issue {
	var issues []Issue
	api := strings.TrimSpace(p.API.URL)
	fallback := strings.TrimSpace(p.DataSources.ProductsFallbackFile)
	if api == "" && fallback == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "api.url",
			Message:  "no api.url and no data_sources.products_fallback_file; the catalog will be derived from sales with price 0",
		})
	}
	if api != "" && p.API.Timeout == 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "api.timeout",
			Message:  "timeout=0 disables the request deadline",
		})
	}
	return issues
}

func lintProcessing(pr Processing) []Issue {
	var issues []Issue
	if pr.CriticalStockThreshold == 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "processing.critical_stock_threshold",
			Message:  "threshold 0 never flags critical stock",
		})
	}
	if pr.CostRatio >= 1 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "processing.cost_ratio",
			Message:  fmt.Sprintf("cost_ratio=%v estimates cost at or above price; profit will be non-positive", pr.CostRatio),
		})
	}
	return issues
}

func lintQuality(q Quality) []Issue {
	if len(q.ValidCategories) > 0 {
		return nil
	}
	return []Issue{{
		Severity: SeverityWarning,
		Path:     "quality.valid_categories",
		Message:  "no valid categories configured; categories_exist will only flag null categories",
	}}
}

func lintOutputs(p Pipeline) []Issue {
	var issues []Issue
	if !p.Outputs.CSV && !p.Outputs.XLSX && p.Storage.Kind == "none" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "outputs",
			Message:  "csv and xlsx disabled and storage.kind=none; only the report will be written",
		})
	}
	if p.Storage.Kind != "none" && !p.Storage.AutoCreateTable {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.auto_create_table",
			Message:  "auto_create_table=false; destination tables must already exist",
		})
	}
	return issues
}

func lintMetrics(m Metrics) []Issue {
	switch {
	case m.Backend == "pushgateway" && strings.TrimSpace(m.PushgatewayURL) == "":
		return []Issue{{
			Severity: SeverityError,
			Path:     "metrics.pushgateway_url",
			Message:  "pushgateway backend requires a pushgateway_url",
		}}
	case m.Backend == "datadog" && strings.TrimSpace(m.DatadogAddr) == "":
		return []Issue{{
			Severity: SeverityError,
			Path:     "metrics.datadog_addr",
			Message:  "datadog backend requires a datadog_addr",
		}}
	}
	return nil
}
