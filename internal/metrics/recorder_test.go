package metrics

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder_CountsOutcomesPerPipeline(t *testing.T) {
	reg := prom.NewRegistry()
	rec := NewPrometheusRecorder(reg)

	rec.IncPipelineOutcome("overview", OutcomeUpdated)
	rec.IncPipelineOutcome("overview", OutcomeUpdated)
	rec.IncPipelineOutcome("changelog", OutcomeFailed)

	require.Equal(t, float64(2), testutil.ToFloat64(rec.pipelineOutcome.WithLabelValues("overview", "updated")))
	require.Equal(t, float64(1), testutil.ToFloat64(rec.pipelineOutcome.WithLabelValues("changelog", "failed")))
}

func TestPrometheusRecorder_GaugesTrackLastRun(t *testing.T) {
	reg := prom.NewRegistry()
	rec := NewPrometheusRecorder(reg)

	rec.SetFieldsUpdated(5)
	rec.SetReleasesRendered(42)

	require.Equal(t, float64(5), testutil.ToFloat64(rec.fieldsUpdated))
	require.Equal(t, float64(42), testutil.ToFloat64(rec.releasesRendered))
}

func TestPrometheusRecorder_NilReceiverIsSafe(t *testing.T) {
	var rec *PrometheusRecorder
	rec.ObservePipelineDuration("overview", time.Second)
	rec.IncPipelineOutcome("overview", OutcomeUpdated)
	rec.ObserveFetchDuration("readme", time.Second)
	rec.SetFieldsUpdated(1)
	rec.SetReleasesRendered(1)
}

func TestNoopRecorder_ImplementsRecorder(t *testing.T) {
	var _ Recorder = NoopRecorder{}
	var _ Recorder = &PrometheusRecorder{}
}
