// Package datadog sends pipeline metrics to a DogStatsD agent. Metric labels
// become Datadog tags.
package datadog

import (
	"fmt"
	"sort"

	"github.com/DataDog/datadog-go/v5/statsd"

	"ecompipe/internal/metrics"
)

// Config selects the agent and the tags stamped on every metric.
type Config struct {
	Addr       string // "127.0.0.1:8125" or "unix:///var/run/datadog/dsd.socket"
	Namespace  string
	GlobalTags []string
}

// Backend implements metrics.Backend. The zero value discards everything.
type Backend struct {
	client statsd.ClientInterface
}

// NewBackend dials the agent at cfg.Addr.
func NewBackend(cfg Config) (*Backend, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("datadog: agent address is required")
	}
	opts := []statsd.Option{statsd.WithoutTelemetry(), statsd.WithTags(cfg.GlobalTags)}
	if cfg.Namespace != "" {
		opts = append(opts, statsd.WithNamespace(cfg.Namespace))
	}
	c, err := statsd.New(cfg.Addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("datadog: dial %s: %w", cfg.Addr, err)
	}
	return &Backend{client: c}, nil
}

// IncCounter sends a count. DogStatsD counts are integral, so fractions are
// dropped.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	if b.client == nil {
		return
	}
	_ = b.client.Count(name, int64(delta), tags(labels), 1)
}

// ObserveHistogram sends a distribution sample so percentiles aggregate
// across hosts.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if b.client == nil {
		return
	}
	_ = b.client.Distribution(name, value, tags(labels), 1)
}

// Flush closes the client, sending whatever is still buffered. The backend
// is unusable afterwards.
func (b *Backend) Flush() error {
	if b.client == nil {
		return nil
	}
	if err := b.client.Close(); err != nil {
		return fmt.Errorf("datadog: flush: %w", err)
	}
	return nil
}

func tags(lbls metrics.Labels) []string {
	if len(lbls) == 0 {
		return nil
	}
	out := make([]string, 0, len(lbls))
	for k, v := range lbls {
		out = append(out, k+":"+v)
	}
	sort.Strings(out)
	return out
}
