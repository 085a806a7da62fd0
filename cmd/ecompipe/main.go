// Command ecompipe runs the catalog/sales/inventory reconciliation pipeline:
// ingest, normalize, reconcile, compute business tables, check quality and
// write the outputs and the run report.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"ecompipe/internal/config"
	"ecompipe/internal/logging"
	"ecompipe/internal/metrics"
	"ecompipe/internal/metrics/datadog"
	"ecompipe/internal/metrics/prompush"

	// register all backends with the storage factory.
	_ "ecompipe/internal/storage/all"
)

// Exit codes.
const (
	exitOK         = 0
	exitFailure    = 1
	exitGateFailed = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := realMain(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

// realMain parses args, loads the configuration and runs the pipeline. It
// returns the process exit code.
func realMain(ctx context.Context, args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("ecompipe", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		cfgPath           = fs.String("config", "config/pipeline_config.yaml", "pipeline config YAML path")
		envPath           = fs.String("env", ".env", "dotenv file exported before reading the environment")
		validate          = fs.Bool("validate", false, "validate the configuration and exit")
		verbose           = fs.Bool("v", false, "enable debug logs")
		metricsBackendFlg = fs.String("metrics-backend", "", "metrics backend to use (none, pushgateway, datadog); overrides metrics.backend")
		pushGatewayURLFlg = fs.String("pushgateway-url", "", "Pushgateway base URL; overrides metrics.pushgateway_url")
	)
	if err := fs.Parse(args); err != nil {
		return exitFailure
	}

	if err := config.LoadEnvFile(*envPath); err != nil {
		fmt.Fprintln(stderr, err)
		return exitFailure
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFailure
	}
	if *metricsBackendFlg != "" {
		cfg.Metrics.Backend = *metricsBackendFlg
	}
	if *pushGatewayURLFlg != "" {
		cfg.Metrics.PushgatewayURL = *pushGatewayURLFlg
	}
	if *verbose {
		cfg.Logging.Level = "debug"
	}

	issues := config.ValidatePipeline(*cfg)
	for _, iss := range issues {
		fmt.Fprintf(stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		fmt.Fprintf(stderr, "Configuration is invalid: %v\n", *cfgPath)
		return exitFailure
	}
	if *validate {
		fmt.Fprintf(stderr, "Configuration is valid: %v\n", *cfgPath)
		return exitOK
	}

	log, closer, err := logging.NewWithWriter(cfg.Logging, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFailure
	}
	defer closer.Close()

	flush := setupMetrics(cfg, log)
	defer flush()

	start := time.Now()
	report, err := run(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Error("pipeline failed")
		return exitFailure
	}
	log.WithFields(logrus.Fields{
		"run_id":  report.RunID,
		"elapsed": time.Since(start).Truncate(time.Millisecond),
	}).Info("pipeline finished")

	if cfg.Quality.Enforce && !report.GatePassed {
		return exitGateFailed
	}
	return exitOK
}

// setupMetrics installs the configured metrics backend and returns the
// function that flushes it at exit.
func setupMetrics(cfg *config.Pipeline, log logrus.FieldLogger) func() {
	var (
		b   metrics.Backend
		err error
	)
	switch cfg.Metrics.Backend {
	case "pushgateway":
		b, err = prompush.NewBackend(cfg.Job, cfg.Metrics.PushgatewayURL)
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       cfg.Metrics.DatadogAddr,
			GlobalTags: []string{"job:" + cfg.Job},
		})
	case "", "none":
		log.Debug("metrics: disabled")
		return func() {}
	default:
		log.Warnf("metrics: unknown backend %q; metrics disabled", cfg.Metrics.Backend)
		return func() {}
	}
	if err != nil {
		log.WithError(err).Warn("metrics: backend init failed; using nop")
		return func() {}
	}

	log.WithField("backend", cfg.Metrics.Backend).Info("metrics: enabled")
	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.WithError(err).Warn("metrics: flush error")
		}
	}
}
