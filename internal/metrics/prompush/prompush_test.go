package prompush

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecompipe/internal/metrics"
)

// gather returns the registry's families by name.
func gather(t *testing.T, b *Backend) map[string]*dto.MetricFamily {
	t.Helper()
	mfs, err := b.reg.Gather()
	require.NoError(t, err)
	out := make(map[string]*dto.MetricFamily, len(mfs))
	for _, mf := range mfs {
		out[mf.GetName()] = mf
	}
	return out
}

func labelsOf(m *dto.Metric) map[string]string {
	out := map[string]string{}
	for _, lp := range m.GetLabel() {
		out[lp.GetName()] = lp.GetValue()
	}
	return out
}

func TestNewBackend(t *testing.T) {
	t.Parallel()

	_, err := NewBackend("nightly", "")
	assert.EqualError(t, err, "prompush: gateway URL is required")

	b, err := NewBackend("", "http://pushgateway:9091")
	require.NoError(t, err)
	assert.Equal(t, "ecompipe", b.jobName)
	assert.Len(t, b.counters, 3)
}

func TestCounters(t *testing.T) {
	t.Parallel()

	b, err := NewBackend("nightly", "http://pushgateway:9091")
	require.NoError(t, err)

	b.IncCounter(metrics.StepTotal, 1, metrics.Labels{"job": "nightly", "step": "ingest", "status": "success"})
	b.IncCounter(metrics.StepTotal, 1, metrics.Labels{"job": "nightly", "step": "ingest", "status": "success"})
	b.IncCounter(metrics.RecordsTotal, 120, metrics.Labels{"job": "nightly", "kind": "sales"})
	b.IncCounter(metrics.SQLRowsTotal, 7, metrics.Labels{"job": "nightly", "table": "ecom_critical_stock"})
	b.IncCounter("ecompipe_unknown_total", 1, nil)

	fams := gather(t, b)
	assert.NotContains(t, fams, "ecompipe_unknown_total")

	step := fams[metrics.StepTotal].GetMetric()
	require.Len(t, step, 1)
	assert.Equal(t, map[string]string{"step": "ingest", "status": "success"}, labelsOf(step[0]))
	assert.Equal(t, 2.0, step[0].GetCounter().GetValue())

	rec := fams[metrics.RecordsTotal].GetMetric()
	require.Len(t, rec, 1)
	assert.Equal(t, "sales", labelsOf(rec[0])["kind"])
	assert.Equal(t, 120.0, rec[0].GetCounter().GetValue())

	sqlRows := fams[metrics.SQLRowsTotal].GetMetric()
	require.Len(t, sqlRows, 1)
	assert.Equal(t, "ecom_critical_stock", labelsOf(sqlRows[0])["table"])
	assert.Equal(t, 7.0, sqlRows[0].GetCounter().GetValue())
}

func TestObserveHistogram(t *testing.T) {
	t.Parallel()

	b, err := NewBackend("nightly", "http://pushgateway:9091")
	require.NoError(t, err)

	lbls := metrics.Labels{"step": "output", "status": "success"}
	b.ObserveHistogram(metrics.StepDurationSeconds, 0.2, lbls)
	b.ObserveHistogram(metrics.StepDurationSeconds, 3, lbls)
	b.ObserveHistogram("other_seconds", 1, lbls)

	fams := gather(t, b)
	h := fams[metrics.StepDurationSeconds].GetMetric()
	require.Len(t, h, 1)
	assert.Equal(t, uint64(2), h[0].GetHistogram().GetSampleCount())
	assert.InDelta(t, 3.2, h[0].GetHistogram().GetSampleSum(), 1e-9)
	assert.NotContains(t, fams, "other_seconds")
}

func TestFlush(t *testing.T) {
	t.Parallel()

	var (
		method, path string
		body         []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	b, err := NewBackend("nightly", srv.URL)
	require.NoError(t, err)
	b.IncCounter(metrics.RecordsTotal, 1, metrics.Labels{"kind": "merged"})

	require.NoError(t, b.Flush())
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/metrics/job/nightly", path)
	assert.NotEmpty(t, body)
}

func TestFlushReportsGatewayErrors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	b, err := NewBackend("nightly", srv.URL)
	require.NoError(t, err)
	err = b.Flush()
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "prompush: push to "), err.Error())
}
