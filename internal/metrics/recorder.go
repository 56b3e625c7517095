// Package metrics provides observability hooks for batch processing.
// Components receive a Recorder through dependency injection; the default
// NoopRecorder makes metrics strictly optional with zero overhead.
package metrics

import "time"

// Outcome labels for document terminal states.
const (
	OutcomeResolved  = "resolved"
	OutcomeFailed    = "failed"
	OutcomeCancelled = "cancelled"
)

// Recorder defines observability hooks for batch and document metrics.
// Implementations may forward to Prometheus, OpenTelemetry, etc.
type Recorder interface {
	ObservePhaseDuration(phase string, d time.Duration)
	ObserveDocumentDuration(d time.Duration)
	ObserveQualityScore(score float64)
	IncDocumentOutcome(outcome string)
	AddWarnings(n int)
	AddUnresolvedLinks(n int)
	SetWorkerConcurrency(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not
// configured).
type NoopRecorder struct{}

func (NoopRecorder) ObservePhaseDuration(string, time.Duration) {}
func (NoopRecorder) ObserveDocumentDuration(time.Duration)      {}
func (NoopRecorder) ObserveQualityScore(float64)                {}
func (NoopRecorder) IncDocumentOutcome(string)                  {}
func (NoopRecorder) AddWarnings(int)                            {}
func (NoopRecorder) AddUnresolvedLinks(int)                     {}
func (NoopRecorder) SetWorkerConcurrency(int)                   {}
