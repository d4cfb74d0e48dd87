// Package metrics defines observability hooks for the sync pipelines.
package metrics

import "time"

// Outcome enumerates pipeline result categories for counters.
type Outcome string

const (
	OutcomeUpdated      Outcome = "updated"
	OutcomeUnchanged    Outcome = "unchanged"
	OutcomeNoStatistics Outcome = "no-statistics"
	OutcomeFailed       Outcome = "failed"
)

// Recorder defines observability hooks for pipeline runs. Implementations
// may forward to Prometheus; the NoopRecorder is used when metrics are not
// configured, allowing optional injection.
type Recorder interface {
	ObservePipelineDuration(pipeline string, d time.Duration)
	IncPipelineOutcome(pipeline string, outcome Outcome)
	ObserveFetchDuration(source string, d time.Duration)
	SetFieldsUpdated(n int)
	SetReleasesRendered(n int)
}

// NoopRecorder is a Recorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) ObservePipelineDuration(string, time.Duration) {}
func (NoopRecorder) IncPipelineOutcome(string, Outcome)           {}
func (NoopRecorder) ObserveFetchDuration(string, time.Duration)   {}
func (NoopRecorder) SetFieldsUpdated(int)                         {}
func (NoopRecorder) SetReleasesRendered(int)                      {}
