package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	pipelineDuration *prom.HistogramVec
	pipelineOutcome  *prom.CounterVec
	fetchDuration    *prom.HistogramVec
	fieldsUpdated    prom.Gauge
	releasesRendered prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		pipelineDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "docsync",
			Name:      "pipeline_duration_seconds",
			Help:      "Duration of individual pipeline runs",
			Buckets:   prom.DefBuckets,
		}, []string{"pipeline"}),
		pipelineOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docsync",
			Name:      "pipeline_outcomes_total",
			Help:      "Pipeline run counts by outcome",
		}, []string{"pipeline", "outcome"}),
		fetchDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "docsync",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of remote fetches by source",
			Buckets:   prom.DefBuckets,
		}, []string{"source"}),
		fieldsUpdated: prom.NewGauge(prom.GaugeOpts{
			Namespace: "docsync",
			Name:      "overview_fields_updated",
			Help:      "Stat anchors rewritten by the last overview run",
		}),
		releasesRendered: prom.NewGauge(prom.GaugeOpts{
			Namespace: "docsync",
			Name:      "changelog_releases_rendered",
			Help:      "Releases rendered by the last changelog run",
		}),
	}
	reg.MustRegister(pr.pipelineDuration, pr.pipelineOutcome, pr.fetchDuration, pr.fieldsUpdated, pr.releasesRendered)
	return pr
}

func (p *PrometheusRecorder) ObservePipelineDuration(pipeline string, d time.Duration) {
	if p == nil || p.pipelineDuration == nil {
		return
	}
	p.pipelineDuration.WithLabelValues(pipeline).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncPipelineOutcome(pipeline string, outcome Outcome) {
	if p == nil || p.pipelineOutcome == nil {
		return
	}
	p.pipelineOutcome.WithLabelValues(pipeline, string(outcome)).Inc()
}

func (p *PrometheusRecorder) ObserveFetchDuration(source string, d time.Duration) {
	if p == nil || p.fetchDuration == nil {
		return
	}
	p.fetchDuration.WithLabelValues(source).Observe(d.Seconds())
}

func (p *PrometheusRecorder) SetFieldsUpdated(n int) {
	if p == nil || p.fieldsUpdated == nil {
		return
	}
	p.fieldsUpdated.Set(float64(n))
}

func (p *PrometheusRecorder) SetReleasesRendered(n int) {
	if p == nil || p.releasesRendered == nil {
		return
	}
	p.releasesRendered.Set(float64(n))
}
