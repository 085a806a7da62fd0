// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// A run is a short-lived batch job, so metrics are pushed to a Pushgateway at
// exit instead of being scraped. The job becomes the Pushgateway grouping
// key; the remaining labels stay Prometheus labels.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"ecompipe/internal/metrics"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string
	jobName    string
	reg        *prometheus.Registry

	counters map[string]*prometheus.CounterVec
	stepDur  *prometheus.HistogramVec
}

// counterLabels are the label names of every counter the backend accepts;
// the job label is carried by the push grouping key instead.
var counterLabels = map[string][]string{
	metrics.StepTotal:    {"step", "status"},
	metrics.RecordsTotal: {"kind"},
	metrics.SQLRowsTotal: {"table"},
}

var counterHelp = map[string]string{
	metrics.StepTotal:    "Pipeline stage executions by step and status.",
	metrics.RecordsTotal: "Rows seen by the run, by kind.",
	metrics.SQLRowsTotal: "Rows loaded into the output database, by table.",
}

// NewBackend builds a backend pushing to gatewayURL under jobName
// ("ecompipe" when empty).
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "ecompipe"
	}

	b := &Backend{
		gatewayURL: gatewayURL,
		jobName:    jobName,
		reg:        prometheus.NewRegistry(),
		counters:   make(map[string]*prometheus.CounterVec, len(counterLabels)),
	}
	for name, labels := range counterLabels {
		cv := prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: counterHelp[name]}, labels)
		if err := b.reg.Register(cv); err != nil {
			return nil, fmt.Errorf("prompush: register %s: %w", name, err)
		}
		b.counters[name] = cv
	}

	b.stepDur = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    metrics.StepDurationSeconds,
		Help:    "Pipeline stage duration in seconds, by step and status.",
		Buckets: []float64{.005, .01, .05, .1, .5, 1, 5, 15, 60},
	}, []string{"step", "status"})
	if err := b.reg.Register(b.stepDur); err != nil {
		return nil, fmt.Errorf("prompush: register %s: %w", metrics.StepDurationSeconds, err)
	}
	return b, nil
}

// IncCounter adds delta to a known counter. Unknown names are ignored.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	cv, ok := b.counters[name]
	if !ok {
		return
	}
	cv.WithLabelValues(values(counterLabels[name], labels)...).Add(delta)
}

// ObserveHistogram records a step duration. Other names are ignored.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != metrics.StepDurationSeconds || b.stepDur == nil {
		return
	}
	b.stepDur.WithLabelValues(labels["step"], labels["status"]).Observe(value)
}

// Flush pushes the registry, replacing the previous push of this job.
func (b *Backend) Flush() error {
	if err := push.New(b.gatewayURL, b.jobName).Gatherer(b.reg).Push(); err != nil {
		return fmt.Errorf("prompush: push to %s: %w", b.gatewayURL, err)
	}
	return nil
}

func values(names []string, labels metrics.Labels) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = labels[n]
	}
	return out
}
