package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerRecordsOutcome(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)

	require.NoError(t, metrics.Track("report_warmup").End(nil))
	boom := errors.New("boom")
	assert.ErrorIs(t, metrics.Track("report_warmup").End(boom), boom)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.runs.WithLabelValues("report_warmup", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.runs.WithLabelValues("report_warmup", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.failures.WithLabelValues("report_warmup")))
}

func TestAddWarmed(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())
	metrics.AddWarmed("report_warmup", 4)
	metrics.AddWarmed("report_warmup", 0)
	assert.Equal(t, 4.0, testutil.ToFloat64(metrics.warmed.WithLabelValues("report_warmup")))
}

func TestNilMetricsTrack(t *testing.T) {
	var metrics *Metrics
	boom := errors.New("boom")
	assert.ErrorIs(t, metrics.Track("x").End(boom), boom)
	metrics.AddWarmed("x", 1)
}
